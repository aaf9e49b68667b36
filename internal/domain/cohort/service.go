package cohort

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCriteria wraps every validation failure.
var ErrInvalidCriteria = errors.New("invalid patient criteria")

var validGenders = map[string]bool{
	"MALE": true, "FEMALE": true, "UNKNOWN": true,
}

// Validate checks the selection against what the query service accepts.
// Serialization does not call it.
func (p PatientCriteria) Validate() error {
	if p.gender != "" && !validGenders[strings.ToUpper(p.gender)] {
		return fmt.Errorf("%w: gender must be MALE, FEMALE or UNKNOWN, got %q", ErrInvalidCriteria, p.gender)
	}
	if p.minAgeNow != nil && *p.minAgeNow < 0 {
		return fmt.Errorf("%w: minAgeNow must not be negative, got %d", ErrInvalidCriteria, *p.minAgeNow)
	}
	if p.maxAgeNow != nil && *p.maxAgeNow < 0 {
		return fmt.Errorf("%w: maxAgeNow must not be negative, got %d", ErrInvalidCriteria, *p.maxAgeNow)
	}
	if p.minAgeNow != nil && p.maxAgeNow != nil && *p.minAgeNow > *p.maxAgeNow {
		return fmt.Errorf("%w: minAgeNow %d is greater than maxAgeNow %d", ErrInvalidCriteria, *p.minAgeNow, *p.maxAgeNow)
	}
	for i, c := range p.criteria {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("criterion %d (%q): %w", i, c.title, err)
		}
	}
	for i, e := range p.exclusions {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("exclusion %d: %w", i, err)
		}
	}
	return nil
}

// Validate checks the day windows. An unfilled criterion is valid; it is
// simply not sent.
func (c EventCriterion) Validate() error {
	if c.withinDaysAfter != nil && !validWindow(*c.withinDaysAfter) {
		return fmt.Errorf("%w: withinDaysAfterPreviouslyMatchedEncounter must be >= 0 or %d, got %d",
			ErrInvalidCriteria, Unbounded, *c.withinDaysAfter)
	}
	if c.withinDaysBefore != nil && !validWindow(*c.withinDaysBefore) {
		return fmt.Errorf("%w: withinDaysBeforePreviouslyMatchedEncounter must be >= 0 or %d, got %d",
			ErrInvalidCriteria, Unbounded, *c.withinDaysBefore)
	}
	if c.frequency != nil {
		if err := c.frequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that counts and gaps are non-negative, gaps are ordered and
// a unit is given whenever a gap is.
func (f Frequency) Validate() error {
	if f.MinRepetitions != nil && *f.MinRepetitions < 0 {
		return fmt.Errorf("%w: frequency minRepetitions must not be negative, got %d", ErrInvalidCriteria, *f.MinRepetitions)
	}
	if f.MinTimeBetween != nil && *f.MinTimeBetween < 0 {
		return fmt.Errorf("%w: frequency minTimeBetween must not be negative, got %d", ErrInvalidCriteria, *f.MinTimeBetween)
	}
	if f.MaxTimeBetween != nil && *f.MaxTimeBetween < 0 {
		return fmt.Errorf("%w: frequency maxTimeBetween must not be negative, got %d", ErrInvalidCriteria, *f.MaxTimeBetween)
	}
	if f.MinTimeBetween != nil && f.MaxTimeBetween != nil && *f.MinTimeBetween > *f.MaxTimeBetween {
		return fmt.Errorf("%w: frequency minTimeBetween %d is greater than maxTimeBetween %d",
			ErrInvalidCriteria, *f.MinTimeBetween, *f.MaxTimeBetween)
	}
	if (f.MinTimeBetween != nil || f.MaxTimeBetween != nil) && f.TimeUnit == "" {
		return fmt.Errorf("%w: frequency timeUnit is required with a time between repetitions", ErrInvalidCriteria)
	}
	if f.TimeUnit != "" && !validTimeUnits[f.TimeUnit] {
		return fmt.Errorf("%w: unknown frequency timeUnit %q", ErrInvalidCriteria, f.TimeUnit)
	}
	return nil
}

func validWindow(days int) bool {
	return days >= 0 || days == Unbounded
}
