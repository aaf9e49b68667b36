package cohort

// TimeUnit is the unit of the gaps in a Frequency.
type TimeUnit string

const (
	Second TimeUnit = "SECOND"
	Minute TimeUnit = "MINUTE"
	Hour   TimeUnit = "HOUR"
	Day    TimeUnit = "DAY"
	Week   TimeUnit = "WEEK"
	Month  TimeUnit = "MONTH"
	Year   TimeUnit = "YEAR"
)

var validTimeUnits = map[TimeUnit]bool{
	Second: true, Minute: true, Hour: true, Day: true,
	Week: true, Month: true, Year: true,
}

// Frequency requires an event to repeat, optionally with bounded gaps
// between repetitions.
type Frequency struct {
	MinRepetitions *int     `json:"minRepetitions,omitempty"`
	MinTimeBetween *int     `json:"minTimeBetween,omitempty"`
	MaxTimeBetween *int     `json:"maxTimeBetween,omitempty"`
	TimeUnit       TimeUnit `json:"timeUnit,omitempty"`
}

func (f Frequency) clone() *Frequency {
	return &Frequency{
		MinRepetitions: copyInt(f.MinRepetitions),
		MinTimeBetween: copyInt(f.MinTimeBetween),
		MaxTimeBetween: copyInt(f.MaxTimeBetween),
		TimeUnit:       f.TimeUnit,
	}
}
