package models

import (
	"time"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Email          string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password       string         `gorm:"size:255;not null" json:"-"`
	Role           string         `gorm:"size:20;default:'USER'" json:"role"`
	IsVerified     bool           `gorm:"default:false" json:"isVerified"`
	HasOwnerRole   bool           `gorm:"default:false" json:"hasOwnerRole"`
	HasBuilderRole bool           `gorm:"default:false" json:"hasBuilderRole"`
	CreatedAt      time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO - denormalized with profile fields the pages consume
type UserResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	IsVerified     bool      `json:"isVerified"`
	HasOwnerRole   bool      `json:"hasOwnerRole"`
	HasBuilderRole bool      `json:"hasBuilderRole"`
	FirstName      string    `json:"firstName,omitempty"`
	LastName       string    `json:"lastName,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	AvatarURL      string    `json:"avatarUrl,omitempty"`
	CnicNumber     string    `json:"cnicNumber,omitempty"`
	Nationality    string    `json:"nationality,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Role:           u.Role,
		IsVerified:     u.IsVerified,
		HasOwnerRole:   u.HasOwnerRole,
		HasBuilderRole: u.HasBuilderRole,
		CreatedAt:      u.CreatedAt,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Profile Table
// ============================================================

// Profile represents profiles table (1:1 with users)
type Profile struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	UserID               uint           `gorm:"uniqueIndex;not null" json:"userId"`
	FirstName            string         `gorm:"size:50" json:"firstName"`
	LastName             string         `gorm:"size:50" json:"lastName"`
	Phone                string         `gorm:"size:20" json:"phone"`
	DateOfBirth          string         `gorm:"size:10" json:"dateOfBirth"`
	Gender               string         `gorm:"size:10" json:"gender"`
	CnicNumber           string         `gorm:"size:20" json:"cnicNumber"`
	Nationality          string         `gorm:"size:50" json:"nationality"`
	CurrentAddress       string         `gorm:"size:255" json:"currentAddress"`
	AvatarURL            string         `gorm:"size:255" json:"avatarUrl"`
	IsStudyingOrWorking  string         `gorm:"size:20" json:"isStudyingOrWorking"`
	InstitutionOrCompany string         `gorm:"size:100" json:"institutionOrCompany"`
	DocumentURL          string         `gorm:"size:255" json:"documentUrl"`
	CnicFrontURL         string         `gorm:"size:255" json:"cnicFrontUrl"`
	CnicBackURL          string         `gorm:"size:255" json:"cnicBackUrl"`
	CreatedAt            time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsUserDetailsComplete reports whether the user-details onboarding step
// has been filled in
func (p *Profile) IsUserDetailsComplete() bool {
	return p.FirstName != "" &&
		p.LastName != "" &&
		p.Phone != "" &&
		p.DateOfBirth != "" &&
		p.Gender != ""
}

// HasProfilePhoto reports whether an avatar has been uploaded
func (p *Profile) HasProfilePhoto() bool {
	return p.AvatarURL != ""
}

// AreAdditionalDetailsComplete reports whether the additional-info
// onboarding step has been filled in
func (p *Profile) AreAdditionalDetailsComplete() bool {
	return p.Nationality != "" && p.CurrentAddress != ""
}

// AreAllDetailsComplete gates role applications
func (p *Profile) AreAllDetailsComplete() bool {
	return p.IsUserDetailsComplete() &&
		p.HasProfilePhoto() &&
		p.AreAdditionalDetailsComplete()
}

// ============================================================
// Role Request Table
// ============================================================

// RoleRequest represents role_requests table (ownership/builder applications)
type RoleRequest struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UserID          uint           `gorm:"index;not null" json:"userId"`
	Email           string         `gorm:"size:100;not null" json:"email"`
	Kind            string         `gorm:"size:20;not null;index" json:"kind"`
	Status          string         `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	ProfileSnapshot string         `gorm:"type:text" json:"-"`
	ReviewedBy      *uint          `json:"reviewedBy"`
	ReviewedAt      *time.Time     `json:"reviewedAt"`
	Remark          string         `gorm:"type:text" json:"remark"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	User     *User `gorm:"foreignKey:UserID" json:"-"`
	Reviewer *User `gorm:"foreignKey:ReviewedBy" json:"-"`
}

func (RoleRequest) TableName() string {
	return "role_requests"
}

// RoleRequestResponse DTO
type RoleRequestResponse struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"userId"`
	Email      string     `json:"email"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	Remark     string     `json:"remark,omitempty"`
	ReviewedAt *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func (r *RoleRequest) ToResponse() *RoleRequestResponse {
	return &RoleRequestResponse{
		ID:         r.ID,
		UserID:     r.UserID,
		Email:      r.Email,
		Kind:       r.Kind,
		Status:     r.Status,
		Remark:     r.Remark,
		ReviewedAt: r.ReviewedAt,
		CreatedAt:  r.CreatedAt,
	}
}

// ============================================================
// Property Table
// ============================================================

// Property represents properties table (marketplace listings)
type Property struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	OwnerID     uint           `gorm:"index;not null" json:"ownerId"`
	Title       string         `gorm:"size:150;not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	City        string         `gorm:"size:50;index" json:"city"`
	Address     string         `gorm:"size:255" json:"address"`
	Purpose     string         `gorm:"size:10;not null;index" json:"purpose"`
	Type        string         `gorm:"size:30" json:"type"`
	Price       float64        `gorm:"type:decimal(15,2);not null" json:"price"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	AreaSqft    float64        `gorm:"type:decimal(10,2)" json:"areaSqft"`
	IsPublished bool           `gorm:"default:true" json:"isPublished"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

func (Property) TableName() string {
	return "properties"
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Profile{},
		&RoleRequest{},
		&Property{},
	)
}
