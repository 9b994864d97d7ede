package identity

import (
	"time"

	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/google/uuid"
)

// RegisterRequest creates a user account
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest signs a user in. OrganizationID selects the active organization;
// when empty the user's first membership is used.
type LoginRequest struct {
	Email          string     `json:"email" binding:"required,email"`
	Password       string     `json:"password" binding:"required"`
	OrganizationID *uuid.UUID `json:"organization_id"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest optionally carries the refresh token so it is revoked too
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// ChangePasswordRequest changes the caller's password
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=72"`
}

// TokenResponse is an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is returned by register and login
type LoginResponse struct {
	TokenResponse
	User           UserResponse `json:"user"`
	OrganizationID *uuid.UUID   `json:"organization_id,omitempty"`
	Role           string       `json:"role,omitempty"`
}

// UserResponse is the public view of a user
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// CurrentUserResponse is the caller's profile with their organizations
type CurrentUserResponse struct {
	User          UserResponse            `json:"user"`
	Organizations []MembershipOrgResponse `json:"organizations"`
}

// MembershipOrgResponse is an organization the user belongs to, with the user's role
type MembershipOrgResponse struct {
	OrganizationResponse
	Role string `json:"role"`
}

// CreateOrganizationRequest creates an organization owned by the caller
type CreateOrganizationRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=200"`
	Slug         string `json:"slug" binding:"required,min=1,max=63"`
	BaseCurrency string `json:"base_currency" binding:"required,currency"`
	Locale       string `json:"locale" binding:"omitempty,max=35"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateOrganizationRequest updates organization settings
type UpdateOrganizationRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=200"`
	BaseCurrency *string `json:"base_currency" binding:"omitempty,currency"`
	Locale       *string `json:"locale" binding:"omitempty,max=35"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
}

// AddMemberRequest grants an existing user access to an organization
type AddMemberRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role" binding:"required,oneof=admin staff"`
}

// OrganizationResponse is the public view of an organization
type OrganizationResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Slug         string     `json:"slug"`
	BaseCurrency string     `json:"base_currency"`
	Locale       string     `json:"locale"`
	ContactEmail string     `json:"contact_email,omitempty"`
	Status       string     `json:"status"`
	OwnerID      *uuid.UUID `json:"owner_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// MembershipResponse is a user's access to an organization
type MembershipResponse struct {
	ID             uuid.UUID `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	OrganizationID uuid.UUID `json:"organization_id"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Access is the result of an organization access check
type Access struct {
	OrganizationID uuid.UUID
	Role           identity.MemberRole
	Active         bool
	BaseCurrency   string
	Locale         string
}

// ToUserResponse converts a domain User to UserResponse
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Status:      string(u.Status),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// ToOrganizationResponse converts a domain Organization to OrganizationResponse
func ToOrganizationResponse(o *organization.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		Slug:         o.Slug,
		BaseCurrency: o.BaseCurrency.String(),
		Locale:       o.Locale,
		ContactEmail: o.ContactEmail,
		Status:       string(o.Status),
		OwnerID:      o.OwnerID,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ToMembershipResponse converts a domain Membership to MembershipResponse
func ToMembershipResponse(m *identity.Membership) MembershipResponse {
	return MembershipResponse{
		ID:             m.ID,
		UserID:         m.UserID,
		OrganizationID: m.OrganizationID,
		Role:           string(m.Role),
		CreatedAt:      m.CreatedAt,
	}
}

func toTokenResponse(pair *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}
}
