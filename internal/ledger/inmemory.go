package ledger

import (
	"context"
	"crypto/ecdsa"
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

// Submission records one SubmitTransfer call accepted by the in-memory gateway.
type Submission struct {
	From   common.Address
	Token  common.Address
	To     common.Address
	Amount decimal.Decimal
	Hash   common.Hash
}

type inMemoryGateway struct {
	mu          sync.RWMutex
	fee         map[common.Address]decimal.Decimal
	tokens      map[common.Address]map[common.Address]decimal.Decimal
	submissions []Submission
	submitCalls int
	submitErr   error
	readErr     error
}

// NewInMemory creates a concurrency-safe gateway useful for unit tests and
// local development. Submissions move token balances immediately and fail,
// like an ERC-20 transfer revert, when the sender's balance is short.
func NewInMemory() Gateway {
	return &inMemoryGateway{
		fee:    make(map[common.Address]decimal.Decimal),
		tokens: make(map[common.Address]map[common.Address]decimal.Decimal),
	}
}

func (g *inMemoryGateway) FeeBalance(_ context.Context, addr common.Address) (decimal.Decimal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.readErr != nil {
		return decimal.Zero, g.readErr
	}
	return g.fee[addr], nil
}

func (g *inMemoryGateway) TokenBalance(_ context.Context, addr, token common.Address) (decimal.Decimal, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.readErr != nil {
		return decimal.Zero, g.readErr
	}
	return g.tokens[token][addr], nil
}

func (g *inMemoryGateway) SubmitTransfer(_ context.Context, signer *ecdsa.PrivateKey, token, to common.Address, amount decimal.Decimal) (common.Hash, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitCalls++

	if g.submitErr != nil {
		return common.Hash{}, g.submitErr
	}
	if !amount.IsPositive() {
		return common.Hash{}, ErrInvalidAmount
	}
	from := crypto.PubkeyToAddress(signer.PublicKey)

	balances := g.tokens[token]
	if balances == nil {
		balances = make(map[common.Address]decimal.Decimal)
		g.tokens[token] = balances
	}
	if balances[from].LessThan(amount) {
		return common.Hash{}, fmt.Errorf("%w: transfer amount exceeds balance", ErrSubmissionFailed)
	}
	balances[from] = balances[from].Sub(amount)
	balances[to] = balances[to].Add(amount)

	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], uint64(len(g.submissions)))
	hash := crypto.Keccak256Hash(from.Bytes(), to.Bytes(), []byte(amount.String()), seq[:])

	g.submissions = append(g.submissions, Submission{From: from, Token: token, To: to, Amount: amount, Hash: hash})
	return hash, nil
}
