package cohort

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCriterionNotFound is returned when an index does not address a criterion.
var ErrCriterionNotFound = errors.New("criterion not found")

// Variant selects the key under which criteria are sent and saved.
type Variant string

const (
	EventVariant     Variant = "eventCriteria"
	EncounterVariant Variant = "encounterCriteria"
)

// ParseVariant accepts "event", "encounter" or a full payload key.
func ParseVariant(s string) (Variant, error) {
	switch s {
	case "", "event", string(EventVariant):
		return EventVariant, nil
	case "encounter", string(EncounterVariant):
		return EncounterVariant, nil
	}
	return "", fmt.Errorf("unknown criteria variant %q", s)
}

// PatientCriteria holds a demographic filter and an ordered list of event
// criteria. Order matters: each criterion's day window is relative to the one
// matched before it.
type PatientCriteria struct {
	variant   Variant
	gender    string
	minAgeNow *int
	maxAgeNow *int
	criteria  []EventCriterion
	treatment bool

	exclusions []PatientCriteria
}

// PatientCriteriaPayload is the query-service request body.
type PatientCriteriaPayload struct {
	Variant   Variant
	Gender    string
	MinAgeNow *int
	MaxAgeNow *int
	Criteria  []CriterionPayload

	ExclusionCriteria []PatientCriteriaPayload
}

// PatientCriteriaState is the saved UI form of a patient selection.
type PatientCriteriaState struct {
	Gender            *string          `json:"gender,omitempty"`
	MinAgeNow         *int             `json:"minAgeNow,omitempty"`
	MaxAgeNow         *int             `json:"maxAgeNow,omitempty"`
	EventCriteria     []CriterionState `json:"eventCriteria,omitempty"`
	EncounterCriteria []CriterionState `json:"encounterCriteria,omitempty"`
	Treatment         bool             `json:"treatment,omitempty"`

	ExclusionCriteria []PatientCriteriaState `json:"exclusionCriteria,omitempty"`
}

// NewPatientCriteria creates an empty selection. An empty variant means
// EventVariant.
func NewPatientCriteria(variant Variant) PatientCriteria {
	if variant == "" {
		variant = EventVariant
	}
	return PatientCriteria{variant: variant}
}

func (p PatientCriteria) Variant() Variant { return p.variant }
func (p PatientCriteria) Gender() string   { return p.gender }
func (p PatientCriteria) Treatment() bool  { return p.treatment }
func (p PatientCriteria) Len() int         { return len(p.criteria) }

// AgeRange returns the current-age bounds; nil means unbounded.
func (p PatientCriteria) AgeRange() (minAge, maxAge *int) {
	return copyInt(p.minAgeNow), copyInt(p.maxAgeNow)
}

// Criteria returns a copy of the criteria in order.
func (p PatientCriteria) Criteria() []EventCriterion {
	out := make([]EventCriterion, len(p.criteria))
	copy(out, p.criteria)
	return out
}

// Criterion returns the criterion at i and whether i is in range.
func (p PatientCriteria) Criterion(i int) (EventCriterion, bool) {
	if i < 0 || i >= len(p.criteria) {
		return EventCriterion{}, false
	}
	return p.criteria[i], true
}

// Exclusions returns a copy of the nested selections whose patients are
// excluded from this one.
func (p PatientCriteria) Exclusions() []PatientCriteria {
	out := make([]PatientCriteria, len(p.exclusions))
	copy(out, p.exclusions)
	return out
}

// IsFilled reports whether the selection filters anything: a demographic
// bound or at least one filled criterion. Unfilled exclusions are not sent.
func (p PatientCriteria) IsFilled() bool {
	if p.gender != "" || p.minAgeNow != nil || p.maxAgeNow != nil {
		return true
	}
	for _, c := range p.criteria {
		if c.IsFilled() {
			return true
		}
	}
	return false
}

// WithGender sets the gender filter; "" removes it.
func (p PatientCriteria) WithGender(gender string) PatientCriteria {
	p.gender = gender
	return p
}

// WithTreatment marks the selection as treatment-scoped.
func (p PatientCriteria) WithTreatment(treatment bool) PatientCriteria {
	p.treatment = treatment
	return p
}

// WithAgeRange sets the current-age bounds; nil leaves a side open.
func (p PatientCriteria) WithAgeRange(minAge, maxAge *int) PatientCriteria {
	p.minAgeNow = copyInt(minAge)
	p.maxAgeNow = copyInt(maxAge)
	return p
}

// Append adds a criterion after the existing ones.
func (p PatientCriteria) Append(c EventCriterion) PatientCriteria {
	p.criteria = append(p.Criteria(), c)
	return p
}

// Replace swaps the criterion at i. It returns ErrCriterionNotFound when i
// is out of range.
func (p PatientCriteria) Replace(i int, c EventCriterion) (PatientCriteria, error) {
	if i < 0 || i >= len(p.criteria) {
		return p, fmt.Errorf("replace criterion %d of %d: %w", i, len(p.criteria), ErrCriterionNotFound)
	}
	criteria := p.Criteria()
	criteria[i] = c
	p.criteria = criteria
	return p, nil
}

// Remove drops the criterion at i, keeping the order of the rest. It returns
// ErrCriterionNotFound when i is out of range.
func (p PatientCriteria) Remove(i int) (PatientCriteria, error) {
	if i < 0 || i >= len(p.criteria) {
		return p, fmt.Errorf("remove criterion %d of %d: %w", i, len(p.criteria), ErrCriterionNotFound)
	}
	criteria := make([]EventCriterion, 0, len(p.criteria)-1)
	criteria = append(criteria, p.criteria[:i]...)
	criteria = append(criteria, p.criteria[i+1:]...)
	p.criteria = criteria
	return p, nil
}

// AppendExclusion adds a nested selection whose patients are excluded. The
// exclusion takes this selection's variant.
func (p PatientCriteria) AppendExclusion(e PatientCriteria) PatientCriteria {
	e.variant = p.variant
	p.exclusions = append(p.Exclusions(), e)
	return p
}

// RemoveExclusion drops the exclusion at i. It returns ErrCriterionNotFound
// when i is out of range.
func (p PatientCriteria) RemoveExclusion(i int) (PatientCriteria, error) {
	if i < 0 || i >= len(p.exclusions) {
		return p, fmt.Errorf("remove exclusion %d of %d: %w", i, len(p.exclusions), ErrCriterionNotFound)
	}
	exclusions := make([]PatientCriteria, 0, len(p.exclusions)-1)
	exclusions = append(exclusions, p.exclusions[:i]...)
	exclusions = append(exclusions, p.exclusions[i+1:]...)
	p.exclusions = exclusions
	return p, nil
}

// ToAPIPayload serializes the filled criteria in order. Gender is sent only
// when non-empty; age bounds only when set; exclusions only when filled.
func (p PatientCriteria) ToAPIPayload() PatientCriteriaPayload {
	out := PatientCriteriaPayload{
		Variant:   p.variant,
		Gender:    p.gender,
		MinAgeNow: copyInt(p.minAgeNow),
		MaxAgeNow: copyInt(p.maxAgeNow),
		Criteria:  []CriterionPayload{},
	}
	for _, c := range p.criteria {
		if c.IsFilled() {
			out.Criteria = append(out.Criteria, c.ToAPIPayload(nil, nil))
		}
	}
	for _, e := range p.exclusions {
		if e.IsFilled() {
			out.ExclusionCriteria = append(out.ExclusionCriteria, e.ToAPIPayload())
		}
	}
	return out
}

// Restore replaces the criteria and exclusions with those of a saved state
// and overwrites gender and age bounds, absent or not. Treatment is kept.
// Criteria are read from the variant's key, or from the other key when the
// saved state has none under it.
func (p PatientCriteria) Restore(s PatientCriteriaState) PatientCriteria {
	p.gender = stringOrEmpty(s.Gender)
	p.minAgeNow = copyInt(s.MinAgeNow)
	p.maxAgeNow = copyInt(s.MaxAgeNow)

	saved, other := s.EventCriteria, s.EncounterCriteria
	if p.variant == EncounterVariant {
		saved, other = other, saved
	}
	if saved == nil {
		saved = other
	}
	p.criteria = make([]EventCriterion, 0, len(saved))
	for _, cs := range saved {
		p.criteria = append(p.criteria, NewEventCriterion("", "").Restore(cs))
	}

	p.exclusions = make([]PatientCriteria, 0, len(s.ExclusionCriteria))
	for _, es := range s.ExclusionCriteria {
		p.exclusions = append(p.exclusions, NewPatientCriteria(p.variant).Restore(es))
	}
	return p
}

// State snapshots the selection for saving.
func (p PatientCriteria) State() PatientCriteriaState {
	s := PatientCriteriaState{
		Gender:    ptrStr(p.gender),
		MinAgeNow: copyInt(p.minAgeNow),
		MaxAgeNow: copyInt(p.maxAgeNow),
		Treatment: p.treatment,
	}
	criteria := make([]CriterionState, 0, len(p.criteria))
	for _, c := range p.criteria {
		criteria = append(criteria, c.State())
	}
	if p.variant == EncounterVariant {
		s.EncounterCriteria = criteria
	} else {
		s.EventCriteria = criteria
	}
	for _, e := range p.exclusions {
		s.ExclusionCriteria = append(s.ExclusionCriteria, e.State())
	}
	return s
}

// MarshalJSON writes the criteria under the variant key, always present.
func (p PatientCriteriaPayload) MarshalJSON() ([]byte, error) {
	key := p.Variant
	if key == "" {
		key = EventVariant
	}
	criteria := p.Criteria
	if criteria == nil {
		criteria = []CriterionPayload{}
	}
	out := map[string]interface{}{
		string(key): criteria,
	}
	if p.Gender != "" {
		out["gender"] = p.Gender
	}
	if p.MinAgeNow != nil {
		out["minAgeNow"] = *p.MinAgeNow
	}
	if p.MaxAgeNow != nil {
		out["maxAgeNow"] = *p.MaxAgeNow
	}
	if len(p.ExclusionCriteria) > 0 {
		out["exclusionCriteria"] = p.ExclusionCriteria
	}
	return json.Marshal(out)
}

func copyInt(i *int) *int {
	if i == nil {
		return nil
	}
	v := *i
	return &v
}
