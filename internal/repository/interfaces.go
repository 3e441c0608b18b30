package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jnavarro/taskboard/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	GetByUserID(ctx context.Context, userID uint) ([]*domain.UserSession, error)
	DeleteByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	ListByUser(ctx context.Context, userID uint, filter domain.TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CategoryRepository interface {
	Create(ctx context.Context, category *domain.TaskCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TaskCategory, error)
	ListByUser(ctx context.Context, userID uint) ([]*domain.TaskCategory, error)
	Update(ctx context.Context, category *domain.TaskCategory) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TokenRevoker is the deny-list consulted on every protected request.
// A nil revoker means tokens stay valid until expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Repositories struct {
	User     UserRepository
	Session  SessionRepository
	Task     TaskRepository
	Category CategoryRepository
}
