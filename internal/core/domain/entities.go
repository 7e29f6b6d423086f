package domain

import "time"

// Role represents user role in the system
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// RoleRequestKind identifies which marketplace role a user applies for
type RoleRequestKind string

const (
	KindOwnership RoleRequestKind = "OWNERSHIP"
	KindBuilder   RoleRequestKind = "BUILDER"
)

// RoleRequestStatus tracks a role request through admin review
type RoleRequestStatus string

const (
	StatusPending  RoleRequestStatus = "PENDING"
	StatusApproved RoleRequestStatus = "APPROVED"
	StatusRejected RoleRequestStatus = "REJECTED"
)

// PropertyPurpose is what a listing is offered for
type PropertyPurpose string

const (
	PurposeSale PropertyPurpose = "SALE"
	PurposeRent PropertyPurpose = "RENT"
)

// User represents a user in the domain layer
type User struct {
	ID             uint
	Email          string
	Password       string // Hashed
	Role           Role
	IsVerified     bool
	HasOwnerRole   bool
	HasBuilderRole bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefreshToken represents a refresh token in the domain
type RefreshToken struct {
	ID        uint
	UserID    uint
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	RevokedAt *time.Time
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// VerificationPurpose selects which flow a 6-digit code belongs to
type VerificationPurpose string

const (
	PurposeEmailVerify   VerificationPurpose = "email_verify"
	PurposePasswordReset VerificationPurpose = "password_reset"
)
