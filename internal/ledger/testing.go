package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// SeedFeeBalance sets the native balance of addr when using the in-memory gateway.
func SeedFeeBalance(g Gateway, addr common.Address, amount decimal.Decimal) {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.fee[addr] = amount
	}
}

// SeedTokenBalance sets the token balance of addr when using the in-memory gateway.
func SeedTokenBalance(g Gateway, token, addr common.Address, amount decimal.Decimal) {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if mem.tokens[token] == nil {
			mem.tokens[token] = make(map[common.Address]decimal.Decimal)
		}
		mem.tokens[token][addr] = amount
	}
}

// FailSubmissions makes every later SubmitTransfer return err (nil resets).
func FailSubmissions(g Gateway, err error) {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.submitErr = err
	}
}

// FailReads makes every later balance query return err (nil resets).
func FailReads(g Gateway, err error) {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		mem.readErr = err
	}
}

// SubmitCalls reports how many times SubmitTransfer was invoked, including failed calls.
func SubmitCalls(g Gateway) int {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.RLock()
		defer mem.mu.RUnlock()
		return mem.submitCalls
	}
	return 0
}

// Submissions returns the accepted submissions in order.
func Submissions(g Gateway) []Submission {
	if mem, ok := g.(*inMemoryGateway); ok {
		mem.mu.RLock()
		defer mem.mu.RUnlock()
		return append([]Submission(nil), mem.submissions...)
	}
	return nil
}
