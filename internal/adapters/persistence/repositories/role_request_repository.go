package repositories

import (
	"context"

	"rezo-marketplace/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// roleRequestRepository implements RoleRequestRepository interface
type roleRequestRepository struct {
	db *gorm.DB
}

// NewRoleRequestRepository creates a new role request repository
func NewRoleRequestRepository(db *gorm.DB) RoleRequestRepository {
	return &roleRequestRepository{db: db}
}

// Create creates a new role request
func (r *roleRequestRepository) Create(ctx context.Context, request *models.RoleRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

// GetByID gets a role request by ID
func (r *roleRequestRepository) GetByID(ctx context.Context, id uint) (*models.RoleRequest, error) {
	var request models.RoleRequest
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// GetLatestByUserAndKind gets the most recent request of a kind for a user
func (r *roleRequestRepository) GetLatestByUserAndKind(ctx context.Context, userID uint, kind string) (*models.RoleRequest, error) {
	var request models.RoleRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("kind = ?", kind).
		Order("created_at DESC").
		First(&request).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// ListByUser lists all requests for a user
func (r *roleRequestRepository) ListByUser(ctx context.Context, userID uint) ([]*models.RoleRequest, error) {
	var requests []*models.RoleRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ListByStatus lists requests in a status with pagination (admin review queue)
func (r *roleRequestRepository) ListByStatus(ctx context.Context, status string, offset, limit int) ([]*models.RoleRequest, int64, error) {
	var requests []*models.RoleRequest
	var total int64

	query := r.db.WithContext(ctx).Model(&models.RoleRequest{}).Where("status = ?", status)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update updates a role request
func (r *roleRequestRepository) Update(ctx context.Context, request *models.RoleRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

// ExistsPending checks whether the user already has a PENDING request of a kind
func (r *roleRequestRepository) ExistsPending(ctx context.Context, userID uint, kind string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.RoleRequest{}).
		Where("user_id = ?", userID).
		Where("kind = ?", kind).
		Where("status = ?", "PENDING").
		Count(&count).Error
	return count > 0, err
}
