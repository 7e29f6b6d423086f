package services

import (
	"context"
	"errors"
	"log"

	"rezo-marketplace/internal/adapters/persistence/models"
	"rezo-marketplace/internal/adapters/persistence/repositories"
	"rezo-marketplace/internal/core/domain"
	"rezo-marketplace/internal/pkg/validator"

	"gorm.io/gorm"
)

// Property service errors
var (
	ErrPropertyNotFound = errors.New("property not found")
	ErrNotListingOwner  = errors.New("not the listing owner")
	ErrRoleRequired     = errors.New("owner or builder role required")
)

// PropertyService handles marketplace listing business logic
type PropertyService struct {
	propertyRepo repositories.PropertyRepository
	userRepo     repositories.UserRepository
}

// NewPropertyService creates a new property service
func NewPropertyService(
	propertyRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
) *PropertyService {
	return &PropertyService{
		propertyRepo: propertyRepo,
		userRepo:     userRepo,
	}
}

// CreatePropertyInput represents listing creation input
type CreatePropertyInput struct {
	Title       string  `json:"title" validate:"required,max=150"`
	Description string  `json:"description"`
	City        string  `json:"city" validate:"required,max=50"`
	Address     string  `json:"address" validate:"max=255"`
	Purpose     string  `json:"purpose" validate:"required,oneof=SALE RENT"`
	Type        string  `json:"type" validate:"omitempty,max=30"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Bedrooms    int     `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int     `json:"bathrooms" validate:"gte=0"`
	AreaSqft    float64 `json:"areaSqft" validate:"gte=0"`
}

// SearchPropertiesInput represents search filters
type SearchPropertiesInput struct {
	City     string
	Purpose  string
	Type     string
	MinPrice float64
	MaxPrice float64
	Offset   int
	Limit    int
}

// Create creates a listing. Only users holding the owner or builder
// role may list properties.
func (s *PropertyService) Create(ctx context.Context, userID uint, input *CreatePropertyInput) (*models.Property, error) {
	// 1. Validate input
	if err := validator.Struct(input); err != nil {
		return nil, err
	}

	// 2. Check the user holds a listing role
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !user.HasOwnerRole && !user.HasBuilderRole && user.Role != string(domain.RoleAdmin) {
		return nil, ErrRoleRequired
	}

	// 3. Create the listing
	property := &models.Property{
		OwnerID:     userID,
		Title:       input.Title,
		Description: input.Description,
		City:        input.City,
		Address:     input.Address,
		Purpose:     input.Purpose,
		Type:        input.Type,
		Price:       input.Price,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		AreaSqft:    input.AreaSqft,
		IsPublished: true,
	}
	if err := s.propertyRepo.Create(ctx, property); err != nil {
		return nil, err
	}

	log.Printf("✅ Property listed: id=%d owner=%d city=%s", property.ID, userID, property.City)
	return property, nil
}

// GetByID gets a property by ID
func (s *PropertyService) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return property, nil
}

// Search searches published listings with filters and pagination
func (s *PropertyService) Search(ctx context.Context, input *SearchPropertiesInput) ([]*models.Property, int64, error) {
	filter := repositories.PropertyFilter{
		City:     input.City,
		Purpose:  input.Purpose,
		Type:     input.Type,
		MinPrice: input.MinPrice,
		MaxPrice: input.MaxPrice,
	}
	return s.propertyRepo.Search(ctx, filter, input.Offset, input.Limit)
}

// ListMine lists all listings belonging to a user
func (s *PropertyService) ListMine(ctx context.Context, userID uint) ([]*models.Property, error) {
	return s.propertyRepo.ListByOwner(ctx, userID)
}

// Delete removes a listing; only the owner or an admin may delete
func (s *PropertyService) Delete(ctx context.Context, id, userID uint, isAdmin bool) error {
	property, err := s.propertyRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPropertyNotFound
		}
		return err
	}
	if property.OwnerID != userID && !isAdmin {
		return ErrNotListingOwner
	}

	return s.propertyRepo.Delete(ctx, id)
}
