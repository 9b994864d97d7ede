package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/identity"
	"github.com/fintermediary/backoffice/internal/domain/organization"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RecordCounter counts tenant records that are denominated in the base currency
type RecordCounter interface {
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// OrganizationService manages organizations and memberships
type OrganizationService struct {
	orgRepo        organization.Repository
	membershipRepo identity.MembershipRepository
	userRepo       identity.UserRepository
	baseRecords    RecordCounter
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrganizationService creates a new OrganizationService
func NewOrganizationService(
	orgRepo organization.Repository,
	membershipRepo identity.MembershipRepository,
	userRepo identity.UserRepository,
) *OrganizationService {
	return &OrganizationService{
		orgRepo:        orgRepo,
		membershipRepo: membershipRepo,
		userRepo:       userRepo,
		logger:         zap.NewNop(),
	}
}

// SetEventPublisher sets the event publisher for domain events
func (s *OrganizationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetLogger sets the logger used for non-fatal failures
func (s *OrganizationService) SetLogger(logger *zap.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetBaseCurrencyGuard makes Update refuse a base currency change once counter reports records
func (s *OrganizationService) SetBaseCurrencyGuard(counter RecordCounter) {
	s.baseRecords = counter
}

// Create creates an organization and makes the caller its owner
func (s *OrganizationService) Create(ctx context.Context, ownerID uuid.UUID, req CreateOrganizationRequest) (*OrganizationResponse, error) {
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	exists, err := s.orgRepo.ExistsBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Organization with this slug already exists")
	}

	owner, err := s.userRepo.FindByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contact := req.ContactEmail
	if contact == "" {
		contact = owner.Email
	}
	org, err := organization.NewOrganization(req.Name, slug, req.BaseCurrency, req.Locale, contact)
	if err != nil {
		return nil, err
	}
	org.SetOwner(ownerID)

	membership, err := identity.NewMembership(ownerID, org.ID, identity.MemberRoleOwner)
	if err != nil {
		return nil, err
	}

	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}

	s.logger.Info("Organization created",
		zap.String("organization_id", org.ID.String()),
		zap.String("slug", org.Slug),
		zap.String("owner_id", ownerID.String()))
	s.publishEvents(ctx, org)

	response := ToOrganizationResponse(org)
	return &response, nil
}

// GetByID retrieves an organization
func (s *OrganizationService) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToOrganizationResponse(org)
	return &response, nil
}

// ListForUser returns the organizations the user belongs to, with the user's role
func (s *OrganizationService) ListForUser(ctx context.Context, userID uuid.UUID) ([]MembershipOrgResponse, error) {
	memberships, err := s.membershipRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return []MembershipOrgResponse{}, nil
	}

	ids := make([]uuid.UUID, len(memberships))
	roles := make(map[uuid.UUID]identity.MemberRole, len(memberships))
	for i, m := range memberships {
		ids[i] = m.OrganizationID
		roles[m.OrganizationID] = m.Role
	}
	orgs, err := s.orgRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	result := make([]MembershipOrgResponse, 0, len(orgs))
	for i := range orgs {
		result = append(result, MembershipOrgResponse{
			OrganizationResponse: ToOrganizationResponse(&orgs[i]),
			Role:                 string(roles[orgs[i].ID]),
		})
	}
	return result, nil
}

// Update changes organization settings
func (s *OrganizationService) Update(ctx context.Context, id uuid.UUID, req UpdateOrganizationRequest) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name, currency, locale, email := org.Name, org.BaseCurrency.String(), org.Locale, org.ContactEmail
	if req.Name != nil {
		name = *req.Name
	}
	if req.BaseCurrency != nil {
		currency = strings.ToUpper(strings.TrimSpace(*req.BaseCurrency))
	}
	if req.Locale != nil {
		locale = *req.Locale
	}
	if req.ContactEmail != nil {
		email = *req.ContactEmail
	}

	if currency != org.BaseCurrency.String() && s.baseRecords != nil {
		count, err := s.baseRecords.CountForTenant(ctx, id, shared.DefaultFilter())
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, shared.NewDomainError("BASE_CURRENCY_LOCKED",
				"Base currency cannot change once profit-sharing records exist")
		}
	}

	if err := org.Update(name, currency, locale, email); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	response := ToOrganizationResponse(org)
	return &response, nil
}

// Suspend suspends an organization
func (s *OrganizationService) Suspend(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	return s.changeStatus(ctx, id, (*organization.Organization).Suspend)
}

// Activate lifts an organization's suspension
func (s *OrganizationService) Activate(ctx context.Context, id uuid.UUID) (*OrganizationResponse, error) {
	return s.changeStatus(ctx, id, (*organization.Organization).Activate)
}

// AddMember grants an existing user access to the organization
func (s *OrganizationService) AddMember(ctx context.Context, orgID uuid.UUID, req AddMemberRequest) (*MembershipResponse, error) {
	if _, err := s.orgRepo.FindByID(ctx, orgID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "No account exists for this email")
		}
		return nil, err
	}

	existing, err := s.membershipRepo.FindByUserAndOrganization(ctx, user.ID, orgID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "User is already a member of this organization")
	}

	membership, err := identity.NewMembership(user.ID, orgID, identity.MemberRole(req.Role))
	if err != nil {
		return nil, err
	}
	if err := s.membershipRepo.Save(ctx, membership); err != nil {
		return nil, err
	}
	response := ToMembershipResponse(membership)
	return &response, nil
}

// Authorize checks that the user belongs to the organization.
// Suspended organizations are reported through Access.Active so callers decide what stays reachable.
func (s *OrganizationService) Authorize(ctx context.Context, userID, orgID uuid.UUID) (*Access, error) {
	membership, err := s.membershipRepo.FindByUserAndOrganization(ctx, userID, orgID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("FORBIDDEN", "You are not a member of this organization")
		}
		return nil, err
	}
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		return nil, err
	}
	return &Access{
		OrganizationID: org.ID,
		Role:           membership.Role,
		Active:         org.IsActive(),
		BaseCurrency:   org.BaseCurrency.String(),
		Locale:         org.Locale,
	}, nil
}

// ActiveOrganizationIDs lists every active organization, for background jobs
func (s *OrganizationService) ActiveOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	orgs, err := s.orgRepo.FindAllActive(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(orgs))
	for i := range orgs {
		ids[i] = orgs[i].ID
	}
	return ids, nil
}

func (s *OrganizationService) changeStatus(ctx context.Context, id uuid.UUID, transition func(*organization.Organization) error) (*OrganizationResponse, error) {
	org, err := s.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := transition(org); err != nil {
		return nil, err
	}
	if err := s.orgRepo.Save(ctx, org); err != nil {
		return nil, err
	}
	s.logger.Info("Organization status changed",
		zap.String("organization_id", org.ID.String()),
		zap.String("status", string(org.Status)))
	response := ToOrganizationResponse(org)
	return &response, nil
}

// publishEvents hands the recorded events to the bus. The organization is already
// saved, so a publish failure is only logged.
func (s *OrganizationService) publishEvents(ctx context.Context, org *organization.Organization) {
	if err := shared.PublishPending(ctx, s.eventPublisher, org); err != nil {
		s.logger.Warn("Failed to publish organization events",
			zap.String("organization_id", org.ID.String()),
			zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
