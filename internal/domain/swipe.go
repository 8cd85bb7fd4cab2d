package domain

import "time"

// Decision is the outcome of a single swipe.
type Decision string

const (
	DecisionLike Decision = "like"
	DecisionPass Decision = "pass"
)

func (d Decision) Valid() bool {
	return d == DecisionLike || d == DecisionPass
}

// ParseDecision validates a raw decision value.
func ParseDecision(raw string) (Decision, error) {
	d := Decision(raw)
	if !d.Valid() {
		return "", ErrInvalidDecision
	}
	return d, nil
}

// Swipe is one directional decision on a pet. Exactly one of UserID or
// InstitutionID is set.
type Swipe struct {
	ID            int       `json:"id" db:"id"`
	UserID        *int      `json:"usuario_id,omitempty" db:"usuario_id"`
	InstitutionID *int      `json:"instituicao_id,omitempty" db:"instituicao_id"`
	PetID         int       `json:"pet_id" db:"pet_id"`
	Decision      Decision  `json:"tipo" db:"tipo"`
	CreatedAt     time.Time `json:"data_swipe" db:"data_swipe"`
}

// Actor returns "usuario" or "instituicao" depending on which side swiped.
func (s *Swipe) Actor() string {
	if s.InstitutionID != nil {
		return "instituicao"
	}
	return "usuario"
}
