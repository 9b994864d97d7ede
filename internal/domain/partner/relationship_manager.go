package partner

import (
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ManagerRole distinguishes relationship managers from finders
type ManagerRole string

const (
	ManagerRoleRM     ManagerRole = "RM"
	ManagerRoleFinder ManagerRole = "FINDER"
)

// IsValid reports whether r is a known role
func (r ManagerRole) IsValid() bool {
	return r == ManagerRoleRM || r == ManagerRoleFinder
}

// ManagerStatus represents the status of a relationship manager
type ManagerStatus string

const (
	ManagerStatusActive   ManagerStatus = "active"
	ManagerStatusInactive ManagerStatus = "inactive"
)

// RelationshipManager is a staff member or referrer who earns a share of customer profit
type RelationshipManager struct {
	shared.TenantAggregateRoot
	Code                string
	Name                string
	Email               string
	Phone               string
	Role                ManagerRole
	DefaultSharePercent decimal.Decimal
	Status              ManagerStatus
}

// NewRelationshipManager creates a new active manager
func NewRelationshipManager(tenantID uuid.UUID, code, name string, role ManagerRole, defaultShare decimal.Decimal) (*RelationshipManager, error) {
	if err := shared.ValidateCode("Relationship manager", code); err != nil {
		return nil, err
	}
	if err := shared.ValidateName("Relationship manager", name); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be RM or FINDER")
	}
	if err := shared.ValidatePercent("Default share percent", defaultShare); err != nil {
		return nil, err
	}

	return &RelationshipManager{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                strings.ToUpper(strings.TrimSpace(code)),
		Name:                strings.TrimSpace(name),
		Role:                role,
		DefaultSharePercent: defaultShare,
		Status:              ManagerStatusActive,
	}, nil
}

// Update changes the manager's details
func (m *RelationshipManager) Update(name string, role ManagerRole, defaultShare decimal.Decimal) error {
	if err := shared.ValidateName("Relationship manager", name); err != nil {
		return err
	}
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be RM or FINDER")
	}
	if err := shared.ValidatePercent("Default share percent", defaultShare); err != nil {
		return err
	}
	m.Name = strings.TrimSpace(name)
	m.Role = role
	m.DefaultSharePercent = defaultShare
	m.Touch()
	return nil
}

// SetContact sets email and phone
func (m *RelationshipManager) SetContact(email, phone string) error {
	if err := shared.ValidateEmail(email); err != nil {
		return err
	}
	if err := shared.ValidatePhone(phone); err != nil {
		return err
	}
	m.Email = email
	m.Phone = phone
	m.Touch()
	return nil
}

// Activate activates the manager
func (m *RelationshipManager) Activate() error {
	if m.Status == ManagerStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Relationship manager is already active")
	}
	m.Status = ManagerStatusActive
	m.Touch()
	return nil
}

// Deactivate deactivates the manager. Inactive managers cannot receive new allocations.
func (m *RelationshipManager) Deactivate() error {
	if m.Status == ManagerStatusInactive {
		return shared.NewDomainError("INVALID_STATE", "Relationship manager is already inactive")
	}
	m.Status = ManagerStatusInactive
	m.Touch()
	return nil
}

// IsActive returns true if the manager is active
func (m *RelationshipManager) IsActive() bool {
	return m.Status == ManagerStatusActive
}

// Matches applies list filters in memory
func (m *RelationshipManager) Matches(f shared.Filter) bool {
	return shared.MatchesSearch(f.Search, m.Code, m.Name, m.Email) &&
		f.MatchesValue("status", m.Status) &&
		f.MatchesValue("role", m.Role)
}
