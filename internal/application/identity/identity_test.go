package identity

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/infrastructure/auth"
	"github.com/fintermediary/backoffice/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	restore := identity.SetBcryptCost(bcrypt.MinCost)
	code := m.Run()
	restore()
	os.Exit(code)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockMembershipRepository is a mock implementation of identity.MembershipRepository
type MockMembershipRepository struct {
	mock.Mock
}

func (m *MockMembershipRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]identity.Membership, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]identity.Membership), args.Error(1)
}

func (m *MockMembershipRepository) FindByUserAndOrganization(ctx context.Context, userID, organizationID uuid.UUID) (*identity.Membership, error) {
	args := m.Called(ctx, userID, organizationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Membership), args.Error(1)
}

func (m *MockMembershipRepository) Save(ctx context.Context, membership *identity.Membership) error {
	args := m.Called(ctx, membership)
	return args.Error(0)
}

// MockOrganizationRepository is a mock implementation of organization.Repository
type MockOrganizationRepository struct {
	mock.Mock
}

func (m *MockOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*organization.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindBySlug(ctx context.Context, slug string) (*organization.Organization, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*organization.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]organization.Organization, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]organization.Organization), args.Error(1)
}

func (m *MockOrganizationRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrganizationRepository) Save(ctx context.Context, org *organization.Organization) error {
	args := m.Called(ctx, org)
	return args.Error(0)
}

func (m *MockOrganizationRepository) FindAllActive(ctx context.Context) ([]organization.Organization, error) {
	args := m.Called(ctx)
	return args.Get(0).([]organization.Organization), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type testAuthEnv struct {
	users       *MockUserRepository
	memberships *MockMembershipRepository
	orgs        *MockOrganizationRepository
	blacklist   *auth.InMemoryTokenBlacklist
	jwt         *auth.JWTService
	service     *AuthService
}

func newTestAuthEnv() *testAuthEnv {
	env := &testAuthEnv{
		users:       new(MockUserRepository),
		memberships: new(MockMembershipRepository),
		orgs:        new(MockOrganizationRepository),
		blacklist:   auth.NewInMemoryTokenBlacklist(),
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-32-characters-long",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "test-issuer",
			MaxRefreshCount:        10,
		}),
	}
	orgService := NewOrganizationService(env.orgs, env.memberships, env.users)
	env.service = NewAuthService(env.users, env.memberships, orgService, env.jwt, env.blacklist,
		AuthServiceConfig{MaxLoginAttempts: 3, LockDuration: time.Minute, RevocationTTL: time.Hour}, nil)
	return env
}
