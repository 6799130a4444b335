package wallet

import (
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/phonomorph/phonomorph/internal/account"
	"github.com/phonomorph/phonomorph/internal/identity"
)

var (
	// ErrAlreadyExists indicates the identity already owns a wallet.
	ErrAlreadyExists = errors.New("wallet already exists")
	// ErrNotFound indicates the identity has no wallet.
	ErrNotFound = errors.New("wallet not found")
	// ErrInvalidSecret indicates imported key material failed validation.
	ErrInvalidSecret = errors.New("invalid secret")
)

// Record is the custodial wallet bound to a phone number. Address is derived
// from Secret when the record is written and stored alongside it.
type Record struct {
	ID        string
	Phone     identity.Phone
	Secret    account.Secret
	Address   common.Address
	CreatedAt time.Time
}

// Balance reports the holdings of a wallet.
type Balance struct {
	Address      common.Address
	FeeBalance   decimal.Decimal
	TokenBalance decimal.Decimal
	AsOf         time.Time
}
