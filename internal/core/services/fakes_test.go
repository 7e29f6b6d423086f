package services

import (
	"context"
	"sync"
	"time"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[uint]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _, _ int) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.User, 0, len(r.users))
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	return err == nil, err
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	nextID   uint
	profiles map[uint]*models.Profile // keyed by user ID
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{nextID: 1, profiles: make(map[uint]*models.Profile)}
}

func (r *fakeProfileRepo) Create(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile.ID = r.nextID
	r.nextID++
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

func (r *fakeProfileRepo) GetByUserID(_ context.Context, userID uint) (*models.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *profile
	return &copied, nil
}

func (r *fakeProfileRepo) Update(_ context.Context, profile *models.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.profiles[profile.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *profile
	r.profiles[profile.UserID] = &copied
	return nil
}

type fakeRefreshTokenRepo struct {
	mu     sync.Mutex
	nextID uint
	tokens map[uint]*models.RefreshToken
}

func newFakeRefreshTokenRepo() *fakeRefreshTokenRepo {
	return &fakeRefreshTokenRepo{nextID: 1, tokens: make(map[uint]*models.RefreshToken)}
}

func (r *fakeRefreshTokenRepo) Create(_ context.Context, token *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token.ID = r.nextID
	r.nextID++
	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *fakeRefreshTokenRepo) GetByTokenHash(_ context.Context, tokenHash string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash {
			copied := *token
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefreshTokenRepo) Revoke(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	token.RevokedAt = &now
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeByTokenHash(_ context.Context, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.TokenHash == tokenHash && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) RevokeAllByUserID(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, token := range r.tokens {
		if token.IsExpired() {
			delete(r.tokens, id)
		}
	}
	return nil
}

func (r *fakeRefreshTokenRepo) activeCount(userID uint) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, token := range r.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			count++
		}
	}
	return count
}

type fakeRoleRequestRepo struct {
	mu       sync.Mutex
	nextID   uint
	requests map[uint]*models.RoleRequest
}

func newFakeRoleRequestRepo() *fakeRoleRequestRepo {
	return &fakeRoleRequestRepo{nextID: 1, requests: make(map[uint]*models.RoleRequest)}
}

func (r *fakeRoleRequestRepo) Create(_ context.Context, request *models.RoleRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	request.ID = r.nextID
	r.nextID++
	request.CreatedAt = time.Now()
	copied := *request
	r.requests[request.ID] = &copied
	return nil
}

func (r *fakeRoleRequestRepo) GetByID(_ context.Context, id uint) (*models.RoleRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	request, ok := r.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (r *fakeRoleRequestRepo) GetLatestByUserAndKind(_ context.Context, userID uint, kind string) (*models.RoleRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *models.RoleRequest
	for _, request := range r.requests {
		if request.UserID != userID || request.Kind != kind {
			continue
		}
		if latest == nil || request.ID > latest.ID {
			latest = request
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeRoleRequestRepo) ListByUser(_ context.Context, userID uint) ([]*models.RoleRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RoleRequest
	for _, request := range r.requests {
		if request.UserID == userID {
			copied := *request
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeRoleRequestRepo) ListByStatus(_ context.Context, status string, offset, limit int) ([]*models.RoleRequest, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.RoleRequest
	for _, request := range r.requests {
		if request.Status == status {
			copied := *request
			all = append(all, &copied)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeRoleRequestRepo) Update(_ context.Context, request *models.RoleRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.requests[request.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	copied := *request
	r.requests[request.ID] = &copied
	return nil
}

func (r *fakeRoleRequestRepo) ExistsPending(_ context.Context, userID uint, kind string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, request := range r.requests {
		if request.UserID == userID && request.Kind == kind && request.Status == "PENDING" {
			return true, nil
		}
	}
	return false, nil
}

// Interface conformance
var (
	_ repositories.UserRepository         = (*fakeUserRepo)(nil)
	_ repositories.ProfileRepository      = (*fakeProfileRepo)(nil)
	_ repositories.RefreshTokenRepository = (*fakeRefreshTokenRepo)(nil)
	_ repositories.RoleRequestRepository  = (*fakeRoleRequestRepo)(nil)
)
