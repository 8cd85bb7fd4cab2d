package repository

import (
	"context"

	"github.com/thalesfercaetano/Pets-API/internal/domain"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id int) (*domain.User, error)
}
