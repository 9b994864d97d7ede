package banking

import (
	"testing"

	"github.com/fintermediary/backoffice/internal/domain/shared"
	"github.com/fintermediary/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(t *testing.T) *BankAccount {
	t.Helper()
	acct, err := NewBankAccount(uuid.New(), uuid.New(), "DBS Bank", "Jane Tan", "0123-456789", "sgd")
	require.NoError(t, err)
	return acct
}

func TestNewBankAccount(t *testing.T) {
	acct := newAccount(t)
	assert.Equal(t, valueobject.SGD, acct.Currency)
	assert.Equal(t, AccountStatusActive, acct.Status)
	assert.False(t, acct.IsPrimary)

	_, err := NewBankAccount(uuid.New(), uuid.Nil, "DBS", "Jane", "123456", "SGD")
	assert.Error(t, err)

	_, err = NewBankAccount(uuid.New(), uuid.New(), "DBS", "Jane", "12", "SGD")
	assert.Error(t, err)

	_, err = NewBankAccount(uuid.New(), uuid.New(), "DBS", "Jane", "123456", "ZZZ")
	assert.ErrorIs(t, err, shared.ErrInvalidCurrency)
}

func TestMaskAccountNumber(t *testing.T) {
	assert.Equal(t, "******6789", MaskAccountNumber("0123-456789"))
	assert.Equal(t, "1234", MaskAccountNumber("1234"))
	assert.Equal(t, "****5678", MaskAccountNumber("1234 5678"))
}

func TestBankAccountLifecycle(t *testing.T) {
	acct := newAccount(t)

	require.NoError(t, acct.MarkPrimary())
	assert.True(t, acct.IsPrimary)

	require.NoError(t, acct.SetBranch("Raffles Place", "dbssSGSG"))
	assert.Equal(t, "DBSSSGSG", acct.SwiftCode)
	assert.Error(t, acct.SetBranch("", "BAD"))

	require.NoError(t, acct.Close())
	assert.False(t, acct.IsPrimary)
	assert.Error(t, acct.Close())
	assert.Error(t, acct.MarkPrimary())
	assert.Error(t, acct.Update("DBS", "Jane", "123456", "SGD"))
}

func TestBankAccountMatches(t *testing.T) {
	acct := newAccount(t)

	assert.True(t, acct.Matches(shared.Filter{Search: "dbs"}))
	assert.True(t, acct.Matches(shared.DefaultFilter().WithFilter("customer_id", acct.CustomerID.String())))
	assert.False(t, acct.Matches(shared.DefaultFilter().WithFilter("currency", "USD")))
	assert.False(t, acct.Matches(shared.DefaultFilter().WithFilter("status", "closed")))
}
