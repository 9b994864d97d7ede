package finance

import (
	"fmt"

	"github.com/fintermediary/backoffice/internal/domain/partner"
	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Party is a recipient slot in a profit split
type Party string

const (
	PartyCompany Party = "COMPANY"
	PartyRM1     Party = "RM1"
	PartyRM2     Party = "RM2"
	PartyFinder1 Party = "FINDER1"
	PartyFinder2 Party = "FINDER2"
)

// Parties lists the slots in display order
var Parties = []Party{PartyCompany, PartyRM1, PartyRM2, PartyFinder1, PartyFinder2}

// IsValid reports whether p is a known party
func (p Party) IsValid() bool {
	for _, v := range Parties {
		if v == p {
			return true
		}
	}
	return false
}

// ManagerRole returns the manager role the party must reference. COMPANY has none.
func (p Party) ManagerRole() (partner.ManagerRole, bool) {
	switch p {
	case PartyRM1, PartyRM2:
		return partner.ManagerRoleRM, true
	case PartyFinder1, PartyFinder2:
		return partner.ManagerRoleFinder, true
	}
	return "", false
}

// PercentTolerance is the allowed deviation of a split's total from 100
var PercentTolerance = decimal.RequireFromString("0.01")

var hundred = decimal.NewFromInt(100)

// Allocation errors
var (
	ErrPercentSumInvalid = shared.NewDomainError("PERCENT_SUM_INVALID", "Share percentages must sum to 100")
	ErrDuplicateParty    = shared.NewDomainError("DUPLICATE_PARTY", "Each party may appear only once")
	ErrInvalidPartyRole  = shared.NewDomainError("INVALID_PARTY_ROLE", "Manager role does not match the party")
	ErrNoShares          = shared.NewDomainError("NO_SHARES", "At least one share is required")
)

// Share is one party's percentage of the shareable amount
type Share struct {
	Party     Party
	ManagerID *uuid.UUID
	Percent   decimal.Decimal
}

// Allocation is a share resolved to amounts in the record currency and the base currency
type Allocation struct {
	Party      Party
	ManagerID  *uuid.UUID
	Percent    decimal.Decimal
	Amount     decimal.Decimal
	AmountBase decimal.Decimal
}

// SumPercent totals the share percentages
func SumPercent(shares []Share) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(s.Percent)
	}
	return sum
}

// ValidateShares checks the structure of a split: known parties at most once each,
// percentages in [0, 100] summing to 100 within PercentTolerance, a manager on every
// non-company party and no manager twice.
func ValidateShares(shares []Share) error {
	if len(shares) == 0 {
		return ErrNoShares
	}
	seenParty := make(map[Party]bool, len(shares))
	seenManager := make(map[uuid.UUID]bool, len(shares))
	for _, s := range shares {
		if !s.Party.IsValid() {
			return shared.Newf("INVALID_PARTY", "Unknown party: %s", s.Party)
		}
		if seenParty[s.Party] {
			return shared.Newf(ErrDuplicateParty.Code, "Party %s appears more than once", s.Party)
		}
		seenParty[s.Party] = true

		if err := shared.ValidatePercent(string(s.Party)+" percent", s.Percent); err != nil {
			return err
		}

		_, needsManager := s.Party.ManagerRole()
		switch {
		case needsManager && s.ManagerID == nil:
			return shared.Newf("MANAGER_REQUIRED", "Party %s requires a relationship manager", s.Party)
		case !needsManager && s.ManagerID != nil:
			return shared.NewDomainError(ErrInvalidPartyRole.Code, "COMPANY share cannot reference a relationship manager")
		}
		if s.ManagerID != nil {
			if seenManager[*s.ManagerID] {
				return shared.NewDomainError(ErrDuplicateParty.Code, "The same relationship manager appears in more than one party")
			}
			seenManager[*s.ManagerID] = true
		}
	}

	sum := SumPercent(shares)
	if sum.Sub(hundred).Abs().GreaterThan(PercentTolerance) {
		return shared.NewDomainError(ErrPercentSumInvalid.Code,
			fmt.Sprintf("Share percentages must sum to 100 (got %s)", sum.StringFixed(2)))
	}
	return nil
}

// ValidateManagerRoles checks every referenced manager against the role its party requires.
// roles maps manager IDs to their role; a missing manager is reported as not found.
func ValidateManagerRoles(shares []Share, roles map[uuid.UUID]partner.ManagerRole) error {
	for _, s := range shares {
		want, ok := s.Party.ManagerRole()
		if !ok || s.ManagerID == nil {
			continue
		}
		got, found := roles[*s.ManagerID]
		if !found {
			return shared.Newf(shared.ErrNotFound.Code, "Relationship manager for %s not found", s.Party)
		}
		if got != want {
			return shared.NewDomainError(ErrInvalidPartyRole.Code,
				fmt.Sprintf("Party %s requires a manager with role %s, got %s", s.Party, want, got))
		}
	}
	return nil
}

// Allocate splits base among the shares: amount = base × percent / 100, rounded half away
// from zero to the currency's minor unit. The rounding residual goes to COMPANY when present,
// otherwise to the largest share, so the amounts always sum to the rounded base. An excess
// the target cannot absorb is taken from the largest amounts instead; no amount is negative.
func Allocate(base decimal.Decimal, currency valueobject.Currency, shares []Share) ([]Allocation, error) {
	if err := shared.ValidateNonNegative("Shareable amount", base); err != nil {
		return nil, err
	}
	if !currency.IsValid() {
		return nil, shared.ErrInvalidCurrency
	}
	if err := ValidateShares(shares); err != nil {
		return nil, err
	}

	amounts := splitAmounts(base, currency.Fraction(), shares)
	out := make([]Allocation, len(shares))
	for i, s := range shares {
		out[i] = Allocation{
			Party:     s.Party,
			ManagerID: s.ManagerID,
			Percent:   s.Percent,
			Amount:    amounts[i],
		}
	}
	return out, nil
}

// AllocateWithBase splits base in its own currency and the converted total in the base
// currency. Both sides are allocated independently so each sums exactly.
func AllocateWithBase(base decimal.Decimal, currency valueobject.Currency, baseTotal decimal.Decimal, baseCurrency valueobject.Currency, shares []Share) ([]Allocation, error) {
	allocs, err := Allocate(base, currency, shares)
	if err != nil {
		return nil, err
	}
	if !baseCurrency.IsValid() {
		return nil, shared.ErrInvalidCurrency
	}
	baseAmounts := splitAmounts(baseTotal, baseCurrency.Fraction(), shares)
	for i := range allocs {
		allocs[i].AmountBase = baseAmounts[i]
	}
	return allocs, nil
}

func splitAmounts(total decimal.Decimal, places int32, shares []Share) []decimal.Decimal {
	total = total.Round(places)
	amounts := make([]decimal.Decimal, len(shares))
	sum := decimal.Zero
	target := -1
	for i, s := range shares {
		amounts[i] = total.Mul(s.Percent).Div(hundred).Round(places)
		sum = sum.Add(amounts[i])
		if s.Party == PartyCompany {
			target = i
		}
	}
	if target < 0 {
		target = largest(amounts)
	}

	residual := total.Sub(sum)
	if !amounts[target].Add(residual).IsNegative() {
		amounts[target] = amounts[target].Add(residual)
		return amounts
	}
	// Shares summing above 100 can over-allocate by a few minor units. Take
	// the excess from the largest amounts so none goes below zero.
	for residual.IsNegative() {
		i := largest(amounts)
		if !amounts[i].IsPositive() {
			break
		}
		take := decimal.Min(amounts[i], residual.Neg())
		amounts[i] = amounts[i].Sub(take)
		residual = residual.Add(take)
	}
	return amounts
}

func largest(amounts []decimal.Decimal) int {
	idx := 0
	for i := range amounts {
		if amounts[i].GreaterThan(amounts[idx]) {
			idx = i
		}
	}
	return idx
}
