package services

import (
	"context"
	"errors"
	"log"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/pkg/validator"

	"gorm.io/gorm"
)

// Profile service errors
var (
	ErrProfileNotFound = errors.New("profile not found")
)

// ProfileService handles profile business logic
type ProfileService struct {
	profileRepo repositories.ProfileRepository
	userRepo    repositories.UserRepository
}

// NewProfileService creates a new profile service
func NewProfileService(
	profileRepo repositories.ProfileRepository,
	userRepo repositories.UserRepository,
) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// UpdateProfileInput represents profile update input.
// Nil fields are left untouched; set fields are last-write-wins.
// id and email are immutable and deliberately absent.
type UpdateProfileInput struct {
	FirstName            *string `json:"firstName" validate:"omitempty,max=50"`
	LastName             *string `json:"lastName" validate:"omitempty,max=50"`
	Phone                *string `json:"phone" validate:"omitempty,max=20"`
	DateOfBirth          *string `json:"dateOfBirth" validate:"omitempty,datetime=2006-01-02"`
	Gender               *string `json:"gender" validate:"omitempty,oneof=male female other"`
	CnicNumber           *string `json:"cnicNumber" validate:"omitempty,max=20"`
	Nationality          *string `json:"nationality" validate:"omitempty,max=50"`
	CurrentAddress       *string `json:"currentAddress" validate:"omitempty,max=255"`
	IsStudyingOrWorking  *string `json:"isStudyingOrWorking" validate:"omitempty,oneof=studying working"`
	InstitutionOrCompany *string `json:"institutionOrCompany" validate:"omitempty,max=100"`
}

// ProfileOutput bundles the profile with its user for the profile page
type ProfileOutput struct {
	Profile       *models.Profile      `json:"profile"`
	User          *models.UserResponse `json:"user"`
	ProfileExists bool                 `json:"profileExists"`
}

// CompletenessOutput reports the derived onboarding completeness flags
type CompletenessOutput struct {
	IsUserDetailsComplete        bool `json:"isUserDetailsComplete"`
	HasProfilePhoto              bool `json:"hasProfilePhoto"`
	AreAdditionalDetailsComplete bool `json:"areAdditionalDetailsComplete"`
	AreAllDetailsComplete        bool `json:"areAllDetailsComplete"`
}

// Get returns the profile together with its user
func (s *ProfileService) Get(ctx context.Context, userID uint) (*ProfileOutput, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	out := &ProfileOutput{User: user.ToResponse()}

	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Profile row may be missing for legacy accounts
			return out, nil
		}
		return nil, err
	}

	out.Profile = profile
	out.ProfileExists = true
	out.User.FirstName = profile.FirstName
	out.User.LastName = profile.LastName
	out.User.Phone = profile.Phone
	out.User.AvatarURL = profile.AvatarURL
	out.User.CnicNumber = profile.CnicNumber
	out.User.Nationality = profile.Nationality

	return out, nil
}

// Update applies a partial profile update. Each step of onboarding
// PUTs or PATCHes through here, so the operation is idempotent.
func (s *ProfileService) Update(ctx context.Context, userID uint, input *UpdateProfileInput) (*models.Profile, error) {
	// 1. Validate input
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	// 2. Load (or lazily create) the profile row
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		profile = &models.Profile{UserID: userID}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, err
		}
	}

	// 3. Shallow merge - set fields win, nil fields keep their value
	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Phone != nil {
		profile.Phone = *input.Phone
	}
	if input.DateOfBirth != nil {
		profile.DateOfBirth = *input.DateOfBirth
	}
	if input.Gender != nil {
		profile.Gender = *input.Gender
	}
	if input.CnicNumber != nil {
		profile.CnicNumber = *input.CnicNumber
	}
	if input.Nationality != nil {
		profile.Nationality = *input.Nationality
	}
	if input.CurrentAddress != nil {
		profile.CurrentAddress = *input.CurrentAddress
	}
	if input.IsStudyingOrWorking != nil {
		profile.IsStudyingOrWorking = *input.IsStudyingOrWorking
	}
	if input.InstitutionOrCompany != nil {
		profile.InstitutionOrCompany = *input.InstitutionOrCompany
	}

	// 4. Persist
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// SetAvatar records the stored avatar URL on the profile
func (s *ProfileService) SetAvatar(ctx context.Context, userID uint, avatarURL string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	profile.AvatarURL = avatarURL
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Avatar updated for user ID: %d", userID)
	return profile, nil
}

// SetDocuments records the stored onboarding document URLs
func (s *ProfileService) SetDocuments(ctx context.Context, userID uint, documentURL, cnicFrontURL, cnicBackURL string) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	// Empty values mean the file was not part of this upload
	if documentURL != "" {
		profile.DocumentURL = documentURL
	}
	if cnicFrontURL != "" {
		profile.CnicFrontURL = cnicFrontURL
	}
	if cnicBackURL != "" {
		profile.CnicBackURL = cnicBackURL
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}

	log.Printf("✅ Documents updated for user ID: %d", userID)
	return profile, nil
}

// Completeness returns the derived onboarding completeness flags
func (s *ProfileService) Completeness(ctx context.Context, userID uint) (*CompletenessOutput, error) {
	profile, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Missing profile means nothing is complete yet
			return &CompletenessOutput{}, nil
		}
		return nil, err
	}

	return &CompletenessOutput{
		IsUserDetailsComplete:        profile.IsUserDetailsComplete(),
		HasProfilePhoto:              profile.HasProfilePhoto(),
		AreAdditionalDetailsComplete: profile.AreAdditionalDetailsComplete(),
		AreAllDetailsComplete:        profile.AreAllDetailsComplete(),
	}, nil
}
