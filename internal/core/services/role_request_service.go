package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/core/domain"

	"gorm.io/gorm"
)

// Role request errors
var (
	ErrRequestNotFound        = errors.New("role request not found")
	ErrRequestAlreadyPending  = errors.New("role request already pending")
	ErrRequestAlreadyReviewed = errors.New("role request already reviewed")
	ErrRoleAlreadyHeld        = errors.New("role already held")
	ErrProfileIncomplete      = errors.New("profile incomplete")
	ErrInvalidRequestKind     = errors.New("invalid role request kind")
)

// RoleRequestService handles ownership/builder application workflow
type RoleRequestService struct {
	requestRepo repositories.RoleRequestRepository
	userRepo    repositories.UserRepository
	profileRepo repositories.ProfileRepository
}

// NewRoleRequestService creates a new role request service
func NewRoleRequestService(
	requestRepo repositories.RoleRequestRepository,
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
) *RoleRequestService {
	return &RoleRequestService{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// RoleStatusOutput reports which marketplace roles a user holds
type RoleStatusOutput struct {
	HasOwnerRole   bool `json:"hasOwnerRole"`
	HasBuilderRole bool `json:"hasBuilderRole"`
}

// Apply creates a PENDING request of the given kind.
// Gated server-side on profile completeness and on not having a
// duplicate PENDING request - the client disables the button, the
// server enforces it.
func (s *RoleRequestService) Apply(ctx context.Context, userID uint, kind domain.RoleRequestKind) (*models.RoleRequest, error) {
	if kind != domain.KindOwnership && kind != domain.KindBuilder {
		return nil, ErrInvalidRequestKind
	}

	// 1. Load user and reject if role already held
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if (kind == domain.KindOwnership && user.HasOwnerRole) ||
		(kind == domain.KindBuilder && user.HasBuilderRole) {
		return nil, ErrRoleAlreadyHeld
	}

	// 2. Reject duplicate PENDING requests
	pending, err := s.requestRepo.ExistsPending(ctx, userID, string(kind))
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestAlreadyPending
	}

	// 3. Profile must be fully complete before applying
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileIncomplete
		}
		return nil, err
	}
	if !profile.AreAllDetailsComplete() {
		return nil, ErrProfileIncomplete
	}

	// 4. Snapshot the profile the request was reviewed against
	snapshot, err := json.Marshal(profile)
	if err != nil {
		return nil, err
	}

	// 5. Create the request
	request := &models.RoleRequest{
		UserID:          userID,
		Email:           user.Email,
		Kind:            string(kind),
		Status:          string(domain.StatusPending),
		ProfileSnapshot: string(snapshot),
	}
	if err := s.requestRepo.Create(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Role request created: user=%d kind=%s", userID, kind)
	return request, nil
}

// MyRequests lists all requests the user has submitted
func (s *RoleRequestService) MyRequests(ctx context.Context, userID uint) ([]*models.RoleRequestResponse, error) {
	requests, err := s.requestRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]*models.RoleRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = r.ToResponse()
	}
	return out, nil
}

// Status returns the latest request status of a kind for a user,
// or the empty string when no request exists
func (s *RoleRequestService) Status(ctx context.Context, userID uint, kind domain.RoleRequestKind) (string, error) {
	request, err := s.requestRepo.GetLatestByUserAndKind(ctx, userID, string(kind))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return request.Status, nil
}

// ListPending lists PENDING requests for the admin review queue
func (s *RoleRequestService) ListPending(ctx context.Context, offset, limit int) ([]*models.RoleRequestResponse, int64, error) {
	requests, total, err := s.requestRepo.ListByStatus(ctx, string(domain.StatusPending), offset, limit)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*models.RoleRequestResponse, len(requests))
	for i, r := range requests {
		out[i] = r.ToResponse()
	}
	return out, total, nil
}

// Approve marks a PENDING request APPROVED and grants the role flag
func (s *RoleRequestService) Approve(ctx context.Context, requestID, reviewerID uint, remark string) (*models.RoleRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.Status != string(domain.StatusPending) {
		return nil, ErrRequestAlreadyReviewed
	}

	now := time.Now()
	request.Status = string(domain.StatusApproved)
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.Remark = remark
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	// Grant the role on the user record
	user, err := s.userRepo.GetByID(ctx, request.UserID)
	if err != nil {
		return nil, err
	}
	switch request.Kind {
	case string(domain.KindOwnership):
		user.HasOwnerRole = true
	case string(domain.KindBuilder):
		user.HasBuilderRole = true
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("✅ Role request approved: id=%d user=%d kind=%s", request.ID, request.UserID, request.Kind)
	return request, nil
}

// Reject marks a PENDING request REJECTED; the user may apply again
func (s *RoleRequestService) Reject(ctx context.Context, requestID, reviewerID uint, remark string) (*models.RoleRequest, error) {
	request, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.Status != string(domain.StatusPending) {
		return nil, ErrRequestAlreadyReviewed
	}

	now := time.Now()
	request.Status = string(domain.StatusRejected)
	request.ReviewedBy = &reviewerID
	request.ReviewedAt = &now
	request.Remark = remark
	if err := s.requestRepo.Update(ctx, request); err != nil {
		return nil, err
	}

	log.Printf("✅ Role request rejected: id=%d user=%d kind=%s", request.ID, request.UserID, request.Kind)
	return request, nil
}

// CheckRoles reports which roles a user currently holds
func (s *RoleRequestService) CheckRoles(ctx context.Context, userID uint) (*RoleStatusOutput, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &RoleStatusOutput{
		HasOwnerRole:   user.HasOwnerRole,
		HasBuilderRole: user.HasBuilderRole,
	}, nil
}
