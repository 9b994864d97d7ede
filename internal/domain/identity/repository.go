package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, user *User) error
}

// MembershipRepository defines the interface for membership persistence
type MembershipRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Membership, error)
	FindByUserAndOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*Membership, error)
	Save(ctx context.Context, membership *Membership) error
}
