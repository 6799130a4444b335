package ledger

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	// NativeDecimals is the precision of the chain's fee currency.
	NativeDecimals = 18
)

var (
	// ErrSubmissionFailed wraps any failure to build, sign or broadcast a transfer.
	ErrSubmissionFailed = errors.New("transfer submission failed")

	// ErrUnavailable wraps failures of read-only chain queries.
	ErrUnavailable = errors.New("chain node unavailable")

	// ErrInvalidAmount indicates an amount that is not positive or cannot be
	// represented in the token's base units.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Gateway is the contract against the external chain node. Amounts are in
// whole units (e.g. 1.5 tokens), not base units.
type Gateway interface {
	// FeeBalance returns the native balance used to pay for gas.
	FeeBalance(ctx context.Context, addr common.Address) (decimal.Decimal, error)
	// TokenBalance returns the fungible token balance held by addr.
	TokenBalance(ctx context.Context, addr, token common.Address) (decimal.Decimal, error)
	// SubmitTransfer signs a token transfer with signer and broadcasts it. It
	// returns the transaction hash as soon as the node accepts it and does not
	// wait for inclusion. signer is used for this call only.
	SubmitTransfer(ctx context.Context, signer *ecdsa.PrivateKey, token, to common.Address, amount decimal.Decimal) (common.Hash, error)
}

// MaxBaseUnitDigits is the number of decimal digits in 2^256-1, the largest
// uint256 an ERC-20 transfer can carry.
const MaxBaseUnitDigits = 78

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// ToBaseUnits converts a whole-unit amount to integer base units, rejecting
// values finer than the given precision or larger than a uint256. The
// magnitude is checked from the coefficient and exponent before any scaling.
func ToBaseUnits(amount decimal.Decimal, decimals int32) (*big.Int, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: must be positive", ErrInvalidAmount)
	}
	digits := int64(len(amount.Coefficient().String()))
	exp := int64(amount.Exponent()) + int64(decimals)
	if digits+exp > MaxBaseUnitDigits {
		return nil, fmt.Errorf("%w: exceeds the largest transferable amount", ErrInvalidAmount)
	}
	if exp < 0 && -exp > digits {
		return nil, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, decimals)
	}
	scaled := amount.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, decimals)
	}
	value := scaled.BigInt()
	if value.Cmp(maxUint256) > 0 {
		return nil, fmt.Errorf("%w: exceeds the largest transferable amount", ErrInvalidAmount)
	}
	return value, nil
}

// FromBaseUnits converts integer base units to whole units.
func FromBaseUnits(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}
