package identity

import (
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// MemberRole is a user's role within one organization
type MemberRole string

const (
	MemberRoleOwner MemberRole = "owner"
	MemberRoleAdmin MemberRole = "admin"
	MemberRoleStaff MemberRole = "staff"
)

// IsValid reports whether r is a known role
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleAdmin, MemberRoleStaff:
		return true
	}
	return false
}

// CanApprove reports whether the role may approve expenses and confirm profit sharing
func (r MemberRole) CanApprove() bool {
	return r == MemberRoleOwner || r == MemberRoleAdmin
}

// Membership grants a user access to an organization
type Membership struct {
	shared.BaseEntity
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Role           MemberRole
}

// NewMembership creates a membership
func NewMembership(userID, organizationID uuid.UUID, role MemberRole) (*Membership, error) {
	if userID == uuid.Nil || organizationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBERSHIP", "User and organization are required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be owner, admin or staff")
	}
	return &Membership{
		BaseEntity:     shared.NewBaseEntity(),
		UserID:         userID,
		OrganizationID: organizationID,
		Role:           role,
	}, nil
}
