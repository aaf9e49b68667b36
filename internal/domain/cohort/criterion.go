package cohort

import "time"

// Unbounded on a day window applies the temporal constraint with no limit.
const Unbounded = -1

// EventCriterion is one clinical-event filter within a patient selection.
// Values are immutable snapshots: every With* method returns a modified copy.
type EventCriterion struct {
	title      string
	eclBinding string
	initial    *string

	conceptECL string
	historyECL string
	display    string
	color      string

	withinDaysAfter  *int
	withinDaysBefore *int

	negated   bool
	subsetID  string
	frequency *Frequency
}

// CriterionPayload is the query-service request shape of a single criterion.
// Has is sent only as false, for a criterion the patient must not match.
type CriterionPayload struct {
	Has                                        *bool      `json:"has,omitempty"`
	ConceptECL                                 string     `json:"conceptECL"`
	ConceptSubsetID                            string     `json:"conceptSubsetId,omitempty"`
	MinDate                                    *Date      `json:"minDate,omitempty"`
	MaxDate                                    *Date      `json:"maxDate,omitempty"`
	Frequency                                  *Frequency `json:"frequency,omitempty"`
	WithinDaysBeforePreviouslyMatchedEncounter *int       `json:"withinDaysBeforePreviouslyMatchedEncounter,omitempty"`
	WithinDaysAfterPreviouslyMatchedEncounter  *int       `json:"withinDaysAfterPreviouslyMatchedEncounter,omitempty"`
}

// CriterionState is the saved UI form of a criterion. Nil fields were absent
// from the saved document.
type CriterionState struct {
	Title      *string `json:"title,omitempty"`
	ConceptECL *string `json:"conceptECL,omitempty"`
	Display    *string `json:"display,omitempty"`
	ECLBinding *string `json:"eclBinding,omitempty"`
	Color      *string `json:"color,omitempty"`

	Has             *bool      `json:"has,omitempty"`
	ConceptSubsetID *string    `json:"conceptSubsetId,omitempty"`
	Frequency       *Frequency `json:"frequency,omitempty"`

	// Saved for completeness; Restore does not read them.
	HistoryECL                                 *string `json:"historyECL,omitempty"`
	Initial                                    *string `json:"initial,omitempty"`
	WithinDaysAfterPreviouslyMatchedEncounter  *int    `json:"withinDaysAfterPreviouslyMatchedEncounter,omitempty"`
	WithinDaysBeforePreviouslyMatchedEncounter *int    `json:"withinDaysBeforePreviouslyMatchedEncounter,omitempty"`
}

// NewEventCriterion creates an empty criterion for the given title and binding.
func NewEventCriterion(title, eclBinding string) EventCriterion {
	return EventCriterion{title: title, eclBinding: eclBinding}
}

// NewSeededEventCriterion creates a criterion whose expression builder starts
// from initial.
func NewSeededEventCriterion(title, eclBinding, initial string) EventCriterion {
	c := NewEventCriterion(title, eclBinding)
	c.initial = &initial
	return c
}

func (c EventCriterion) Title() string      { return c.title }
func (c EventCriterion) ECLBinding() string { return c.eclBinding }
func (c EventCriterion) ConceptECL() string { return c.conceptECL }
func (c EventCriterion) HistoryECL() string { return c.historyECL }
func (c EventCriterion) Display() string    { return c.display }
func (c EventCriterion) Color() string      { return c.color }

// Initial returns the seed value and whether one was supplied.
func (c EventCriterion) Initial() (string, bool) {
	if c.initial == nil {
		return "", false
	}
	return *c.initial, true
}

// WithinDaysAfter returns the after-window and whether it is set.
func (c EventCriterion) WithinDaysAfter() (int, bool) {
	if c.withinDaysAfter == nil {
		return 0, false
	}
	return *c.withinDaysAfter, true
}

// WithinDaysBefore returns the before-window and whether it is set.
func (c EventCriterion) WithinDaysBefore() (int, bool) {
	if c.withinDaysBefore == nil {
		return 0, false
	}
	return *c.withinDaysBefore, true
}

// Has reports whether matching patients must have the event. It is false
// for a negated criterion.
func (c EventCriterion) Has() bool { return !c.negated }

// SubsetID returns the id of the subset the expression came from, if any.
func (c EventCriterion) SubsetID() string { return c.subsetID }

// Frequency returns a copy of the repetition constraint and whether one is set.
func (c EventCriterion) Frequency() (Frequency, bool) {
	if c.frequency == nil {
		return Frequency{}, false
	}
	return *c.frequency.clone(), true
}

// IsFilled reports whether the criterion carries an expression. Only filled
// criteria are sent to the query service.
func (c EventCriterion) IsFilled() bool {
	return c.conceptECL != ""
}

// WithExpression sets the expression and its human-readable rendering, as
// chosen in the expression builder. Any subset reference is dropped.
func (c EventCriterion) WithExpression(conceptECL, display string) EventCriterion {
	c.conceptECL = conceptECL
	c.display = display
	c.subsetID = ""
	return c
}

// ClearExpression unfills the criterion.
func (c EventCriterion) ClearExpression() EventCriterion {
	return c.WithExpression("", "")
}

// WithSubset fills the criterion from a saved subset and references it by id.
func (c EventCriterion) WithSubset(s Subset) EventCriterion {
	c = c.WithExpression(s.ECL, s.Name)
	c.subsetID = s.ID
	return c
}

// WithHas sets whether matching patients must (true) or must not (false)
// have the event.
func (c EventCriterion) WithHas(has bool) EventCriterion {
	c.negated = !has
	return c
}

// WithFrequency requires the event to repeat.
func (c EventCriterion) WithFrequency(f Frequency) EventCriterion {
	c.frequency = f.clone()
	return c
}

// WithoutFrequency drops the repetition constraint.
func (c EventCriterion) WithoutFrequency() EventCriterion {
	c.frequency = nil
	return c
}

// WithColor sets the presentation color.
func (c EventCriterion) WithColor(color string) EventCriterion {
	c.color = color
	return c
}

// WithHistoryECL sets the fragment appended to the expression on
// serialization, e.g. " OR <73211009".
func (c EventCriterion) WithHistoryECL(historyECL string) EventCriterion {
	c.historyECL = historyECL
	return c
}

// WithWithinDaysAfter requires the event to occur within days after the
// previously matched encounter.
func (c EventCriterion) WithWithinDaysAfter(days int) EventCriterion {
	c.withinDaysAfter = &days
	return c
}

// WithoutWithinDaysAfter drops the after-window.
func (c EventCriterion) WithoutWithinDaysAfter() EventCriterion {
	c.withinDaysAfter = nil
	return c
}

// WithWithinDaysBefore requires the event to occur within days before the
// previously matched encounter.
func (c EventCriterion) WithWithinDaysBefore(days int) EventCriterion {
	c.withinDaysBefore = &days
	return c
}

// WithoutWithinDaysBefore drops the before-window.
func (c EventCriterion) WithoutWithinDaysBefore() EventCriterion {
	c.withinDaysBefore = nil
	return c
}

// ToAPIPayload builds the request shape. Dates are included only when given;
// day windows and frequency whenever set, zero included. Has appears only
// for a negated criterion.
func (c EventCriterion) ToAPIPayload(minDate, maxDate *time.Time) CriterionPayload {
	p := CriterionPayload{
		ConceptECL:      c.conceptECL + c.historyECL,
		ConceptSubsetID: c.subsetID,
	}
	if c.negated {
		has := false
		p.Has = &has
	}
	if c.frequency != nil {
		p.Frequency = c.frequency.clone()
	}
	if minDate != nil {
		d := NewDate(*minDate)
		p.MinDate = &d
	}
	if maxDate != nil {
		d := NewDate(*maxDate)
		p.MaxDate = &d
	}
	if c.withinDaysBefore != nil {
		v := *c.withinDaysBefore
		p.WithinDaysBeforePreviouslyMatchedEncounter = &v
	}
	if c.withinDaysAfter != nil {
		v := *c.withinDaysAfter
		p.WithinDaysAfterPreviouslyMatchedEncounter = &v
	}
	return p
}

// Restore overwrites title, expression, display, binding and color from a
// saved state, along with has, subset reference and frequency. Absent fields
// take their defaults: empty, has true, no frequency. History, seed and day
// windows are left as they are.
func (c EventCriterion) Restore(s CriterionState) EventCriterion {
	// TODO: decide with the UI whether history and day windows should survive
	// a reload; saved states already carry them.
	c.title = stringOrEmpty(s.Title)
	c.conceptECL = stringOrEmpty(s.ConceptECL)
	c.display = stringOrEmpty(s.Display)
	c.eclBinding = stringOrEmpty(s.ECLBinding)
	c.color = stringOrEmpty(s.Color)
	c.negated = s.Has != nil && !*s.Has
	c.subsetID = stringOrEmpty(s.ConceptSubsetID)
	c.frequency = nil
	if s.Frequency != nil {
		c.frequency = s.Frequency.clone()
	}
	return c
}

// State snapshots every field for saving.
func (c EventCriterion) State() CriterionState {
	s := CriterionState{
		Title:      ptrStr(c.title),
		ConceptECL: ptrStr(c.conceptECL),
		Display:    ptrStr(c.display),
		ECLBinding: ptrStr(c.eclBinding),
		Color:      ptrStr(c.color),
		HistoryECL: ptrStr(c.historyECL),
	}
	if c.negated {
		s.Has = ptrBool(false)
	}
	if c.subsetID != "" {
		s.ConceptSubsetID = ptrStr(c.subsetID)
	}
	if c.frequency != nil {
		s.Frequency = c.frequency.clone()
	}
	if c.initial != nil {
		s.Initial = ptrStr(*c.initial)
	}
	if c.withinDaysAfter != nil {
		s.WithinDaysAfterPreviouslyMatchedEncounter = ptrInt(*c.withinDaysAfter)
	}
	if c.withinDaysBefore != nil {
		s.WithinDaysBeforePreviouslyMatchedEncounter = ptrInt(*c.withinDaysBefore)
	}
	return s
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrStr(s string) *string { return &s }
func ptrInt(i int) *int       { return &i }
func ptrBool(b bool) *bool    { return &b }
