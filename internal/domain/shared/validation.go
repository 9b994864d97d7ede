package shared

import (
	"regexp"
	"strings"

	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	codeRegex  = regexp.MustCompile(`^[A-Za-z0-9_\-]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9+\-() ]{5,30}$`)
)

// ValidateEmail checks an optional email address
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if len(email) > 200 {
		return NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return nil
}

// ValidatePhone checks an optional phone number
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}

// ValidateCode checks a business code such as a customer or product code
func ValidateCode(field, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return NewDomainError("INVALID_CODE", field+" code cannot be empty")
	}
	if len(code) > 50 {
		return NewDomainError("INVALID_CODE", field+" code cannot exceed 50 characters")
	}
	if !codeRegex.MatchString(code) {
		return NewDomainError("INVALID_CODE", field+" code can only contain letters, numbers, underscores, and hyphens")
	}
	return nil
}

// ValidateName checks a required display name
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return NewDomainError("INVALID_NAME", field+" name cannot be empty")
	}
	if len(name) > 200 {
		return NewDomainError("INVALID_NAME", field+" name cannot exceed 200 characters")
	}
	return nil
}

// ValidateCurrency normalizes and checks an ISO 4217 code
func ValidateCurrency(code string) (valueobject.Currency, error) {
	cur, ok := valueobject.ParseCurrency(code)
	if !ok {
		return "", NewDomainError(ErrInvalidCurrency.Code, "Invalid currency code: "+code)
	}
	return cur, nil
}

// ValidateNonNegative rejects negative amounts
func ValidateNonNegative(field string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return NewDomainError(ErrNegativeAmount.Code, field+" cannot be negative")
	}
	return nil
}

// ValidatePercent checks 0 <= p <= 100
func ValidatePercent(field string, p decimal.Decimal) error {
	if p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
		return NewDomainError("INVALID_PERCENT", field+" must be between 0 and 100")
	}
	return nil
}
