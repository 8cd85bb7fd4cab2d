package domain

import "time"

// PetStatusAvailable is the adoption status of pets open for matching.
const PetStatusAvailable = "disponível"

// Pet is the subset of the pet record the matching core reads.
type Pet struct {
	ID            int    `db:"id"`
	InstitutionID int    `db:"instituicao_id"`
	AdoptionState string `db:"status_adocao"`
	Active        bool   `db:"ativo"`
}

// Available reports whether the pet can be swiped on.
func (p *Pet) Available() bool {
	return p.AdoptionState == PetStatusAvailable && p.Active
}

// PetProfile is the card shown in a user's discovery feed.
type PetProfile struct {
	ID              int       `json:"id" db:"id"`
	Name            string    `json:"nome" db:"nome"`
	Species         string    `json:"especie" db:"especie"`
	Breed           *string   `json:"raca" db:"raca"`
	Sex             string    `json:"sexo" db:"sexo"`
	ApproximateAge  *string   `json:"idade_aproximada" db:"idade_aproximada"`
	Size            *string   `json:"porte" db:"porte"`
	Color           *string   `json:"cor" db:"cor"`
	Vaccinated      bool      `json:"vacinado" db:"vacinado"`
	Neutered        bool      `json:"castrado" db:"castrado"`
	HealthNotes     *string   `json:"descricao_saude" db:"descricao_saude"`
	Story           *string   `json:"historia" db:"historia"`
	InstitutionID   int       `json:"instituicao_id" db:"instituicao_id"`
	InstitutionName *string   `json:"instituicao_nome" db:"instituicao_nome"`
	RegisteredAt    time.Time `json:"data_cadastro" db:"data_cadastro"`
}
