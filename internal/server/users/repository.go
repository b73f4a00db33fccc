package users

import (
	"context"

	"github.com/nytevibe/nytevibe/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	// GetUserByLogin matches the username or the email, ignoring case.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
}
