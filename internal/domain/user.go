package domain

import "time"

// User is the credential view of a registered adopter.
type User struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"nome"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"senha_hash"`
	Active       bool      `json:"-" db:"ativo"`
	RegisteredAt time.Time `json:"-" db:"data_cadastro"`
}

// UserProfile is the card an institution sees for an interested adopter.
type UserProfile struct {
	ID             int       `json:"id" db:"id"`
	Name           string    `json:"nome" db:"nome"`
	Email          string    `json:"email" db:"email"`
	Phone          *string   `json:"telefone" db:"telefone"`
	RegisteredAt   time.Time `json:"data_cadastro" db:"data_cadastro"`
	AdoptionsCount int       `json:"total_adocoes" db:"total_adocoes"`
}
