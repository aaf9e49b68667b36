package cohort

import "github.com/google/uuid"

// Subset is a named, reusable ECL expression.
type Subset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ECL         string `json:"ecl"`
}

// NewSubset creates a subset. An empty id is replaced with a fresh UUID.
func NewSubset(id, name string) Subset {
	if id == "" {
		id = uuid.NewString()
	}
	return Subset{ID: id, Name: name}
}

// Clone returns an independent copy.
func (s Subset) Clone() Subset {
	return Subset{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		ECL:         s.ECL,
	}
}
