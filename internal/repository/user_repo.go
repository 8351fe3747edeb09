// internal/repository/user_repo.go
package repository

import (
	"context"

	"auction-house/internal/domain"
)

// UserRepository defines the interface for user/wallet data operations.
type UserRepository interface {
	// CreateUser adds a new user using the provided DBExecutor.
	CreateUser(ctx context.Context, q DBExecutor, user *domain.User) error
	// GetUserByID retrieves a user by their ID using the provided DBExecutor.
	GetUserByID(ctx context.Context, q DBExecutor, id int64) (*domain.User, error)
	// GetUserByEmail retrieves a user by email using the provided DBExecutor.
	GetUserByEmail(ctx context.Context, q DBExecutor, email string) (*domain.User, error)
	// UpdateWallet persists new absolute wallet balances for the user.
	UpdateWallet(ctx context.Context, q DBExecutor, userID, totalBalance, blockedBalance int64) error
}
