package repositories

import (
	"context"

	"rezo-marketplace/internal/adapters/persistence/models"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines refresh token repository interface
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, id uint) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) error
	RevokeAllByUserID(ctx context.Context, userID uint) error
	DeleteExpired(ctx context.Context) error
}

// ProfileRepository defines profile repository interface
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
}

// RoleRequestRepository defines role request repository interface
type RoleRequestRepository interface {
	Create(ctx context.Context, request *models.RoleRequest) error
	GetByID(ctx context.Context, id uint) (*models.RoleRequest, error)
	GetLatestByUserAndKind(ctx context.Context, userID uint, kind string) (*models.RoleRequest, error)
	ListByUser(ctx context.Context, userID uint) ([]*models.RoleRequest, error)
	ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.RoleRequest, int64, error)
	Update(ctx context.Context, request *models.RoleRequest) error
	ExistsPending(ctx context.Context, userID uint, kind string) (bool, error)
}

// PropertyRepository defines property repository interface
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, filter PropertyFilter, offset, limit int) ([]*models.Property, int64, error)
	ListByOwner(ctx context.Context, ownerID uint) ([]*models.Property, error)
}

// PropertyFilter narrows property searches
type PropertyFilter struct {
	City     string
	Purpose  string
	Type     string
	MinPrice float64
	MaxPrice float64
}
