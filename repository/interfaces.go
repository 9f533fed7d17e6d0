package repository

import (
	"context"

	"locationShare/models"
)

// UserRepositoryI defines operations on User entities.
type UserRepositoryI interface {
	AdminExists(ctx context.Context) (bool, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) (*models.User, error)
	Create(ctx context.Context, username, passwordHash string, role models.Role) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
}

var _ UserRepositoryI = (*UserRepository)(nil)
