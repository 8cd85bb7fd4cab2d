package domain

import "time"

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	MatchStatusActive     MatchStatus = "ativo"
	MatchStatusConversing MatchStatus = "conversando"
	MatchStatusAdopted    MatchStatus = "adotado"
	MatchStatusCanceled   MatchStatus = "cancelado"
)

// MatchStatuses lists every status that can be written.
var MatchStatuses = []MatchStatus{
	MatchStatusActive,
	MatchStatusConversing,
	MatchStatusAdopted,
	MatchStatusCanceled,
}

func (s MatchStatus) Valid() bool {
	for _, v := range MatchStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Match struct {
	ID              int         `json:"id" db:"id"`
	UserID          int         `json:"usuario_id" db:"usuario_id"`
	InstitutionID   int         `json:"instituicao_id" db:"instituicao_id"`
	PetID           int         `json:"pet_id" db:"pet_id"`
	Status          MatchStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"data_match" db:"data_match"`
	LastInteraction time.Time   `json:"ultima_interacao" db:"ultima_interacao"`
}

// MatchDetail is a match with denormalized display fields. Related rows may
// be missing, so every display field is nullable.
type MatchDetail struct {
	ID              int         `json:"id" db:"id"`
	UserID          int         `json:"usuario_id" db:"usuario_id"`
	UserName        *string     `json:"usuario_nome" db:"usuario_nome"`
	UserEmail       *string     `json:"usuario_email" db:"usuario_email"`
	InstitutionID   int         `json:"instituicao_id" db:"instituicao_id"`
	InstitutionName *string     `json:"instituicao_nome" db:"instituicao_nome"`
	PetID           int         `json:"pet_id" db:"pet_id"`
	PetName         *string     `json:"pet_nome" db:"pet_nome"`
	PetSpecies      *string     `json:"pet_especie" db:"pet_especie"`
	PetBreed        *string     `json:"pet_raca" db:"pet_raca"`
	PetColor        *string     `json:"pet_cor" db:"pet_cor"`
	Status          MatchStatus `json:"status" db:"status"`
	CreatedAt       time.Time   `json:"data_match" db:"data_match"`
	LastInteraction time.Time   `json:"ultima_interacao" db:"ultima_interacao"`
}

// MatchScope optionally restricts a lookup to the matches of one party.
// Zero values mean "no restriction".
type MatchScope struct {
	UserID        int
	InstitutionID int
}

func (s MatchScope) Allows(m *MatchDetail) bool {
	if s.UserID != 0 && m.UserID != s.UserID {
		return false
	}
	if s.InstitutionID != 0 && m.InstitutionID != s.InstitutionID {
		return false
	}
	return true
}
