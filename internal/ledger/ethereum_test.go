package ledger

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

type fakeBackend struct {
	balance  *big.Int
	tokenOut []byte
	baseFee  *big.Int
	sendErr  error
	block    bool

	calls []ethereum.CallMsg
	sent  []*types.Transaction
}

func (b *fakeBackend) BalanceAt(ctx context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if b.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return b.balance, nil
}

func (b *fakeBackend) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	b.calls = append(b.calls, call)
	return b.tokenOut, nil
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	return 7, nil
}

func (b *fakeBackend) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{Number: big.NewInt(100), BaseFee: b.baseFee}, nil
}

func (b *fakeBackend) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000), nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	return 52_000, nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *types.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.sent = append(b.sent, tx)
	return nil
}

func newTestGateway(t *testing.T, b *fakeBackend) *EthereumGateway {
	t.Helper()
	g, err := NewEthereumGateway(b, EthereumConfig{ChainID: big.NewInt(2810), TokenDecimals: 18, CallTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new gateway: %v", err)
	}
	return g
}

func decodeTransfer(t *testing.T, data []byte) (common.Address, *big.Int) {
	t.Helper()
	method, err := erc20ABI.MethodById(data[:4])
	if err != nil {
		t.Fatalf("method by id: %v", err)
	}
	if method.Name != "transfer" {
		t.Fatalf("expected transfer call, got %s", method.Name)
	}
	values, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	return values[0].(common.Address), values[1].(*big.Int)
}

func TestEthereumGateway_SubmitTransferDynamicFee(t *testing.T) {
	backend := &fakeBackend{baseFee: big.NewInt(10_000_000)}
	g := newTestGateway(t, backend)

	key, _ := crypto.GenerateKey()
	to := common.HexToAddress("0x00000000000000000000000000000000000000b2")

	hash, err := g.SubmitTransfer(context.Background(), key, testToken, to, decimal.RequireFromString("5.0"))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(backend.sent) != 1 {
		t.Fatalf("expected 1 broadcast, got %d", len(backend.sent))
	}
	tx := backend.sent[0]
	if tx.Hash() != hash {
		t.Fatalf("returned hash does not match broadcast tx")
	}
	if tx.Type() != types.DynamicFeeTxType {
		t.Fatalf("expected dynamic fee tx, got type %d", tx.Type())
	}
	if tx.Nonce() != 7 || tx.Gas() != 52_000 {
		t.Fatalf("unexpected nonce/gas %d/%d", tx.Nonce(), tx.Gas())
	}
	if tx.GasFeeCap().Cmp(big.NewInt(21_000_000)) != 0 {
		t.Fatalf("unexpected fee cap %s", tx.GasFeeCap())
	}
	if *tx.To() != testToken {
		t.Fatalf("tx must target the token contract")
	}

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(2810)), tx)
	if err != nil {
		t.Fatalf("recover sender: %v", err)
	}
	if sender != crypto.PubkeyToAddress(key.PublicKey) {
		t.Fatalf("tx signed by wrong key")
	}

	gotTo, gotAmount := decodeTransfer(t, tx.Data())
	if gotTo != to {
		t.Fatalf("unexpected recipient %s", gotTo.Hex())
	}
	if gotAmount.String() != "5000000000000000000" {
		t.Fatalf("unexpected amount %s", gotAmount)
	}
}

func TestEthereumGateway_SubmitTransferLegacyWithoutBaseFee(t *testing.T) {
	backend := &fakeBackend{}
	g := newTestGateway(t, backend)
	key, _ := crypto.GenerateKey()

	if _, err := g.SubmitTransfer(context.Background(), key, testToken, common.Address{1}, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tx := backend.sent[0]
	if tx.Type() != types.LegacyTxType {
		t.Fatalf("expected legacy tx, got type %d", tx.Type())
	}
	if tx.GasPrice().Cmp(big.NewInt(2_000_000_000)) != 0 {
		t.Fatalf("unexpected gas price %s", tx.GasPrice())
	}
	if tx.ChainId().Cmp(big.NewInt(2810)) != 0 {
		t.Fatalf("legacy tx must be replay protected, chain id %s", tx.ChainId())
	}
}

func TestEthereumGateway_SubmitTransferBroadcastFailure(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("nonce too low")}
	g := newTestGateway(t, backend)
	key, _ := crypto.GenerateKey()

	_, err := g.SubmitTransfer(context.Background(), key, testToken, common.Address{1}, decimal.NewFromInt(1))
	if !errors.Is(err, ErrSubmissionFailed) {
		t.Fatalf("expected submission failure, got %v", err)
	}
}

func TestEthereumGateway_SubmitTransferRejectsPrecision(t *testing.T) {
	backend := &fakeBackend{}
	g, _ := NewEthereumGateway(backend, EthereumConfig{ChainID: big.NewInt(1), TokenDecimals: 6})
	key, _ := crypto.GenerateKey()

	_, err := g.SubmitTransfer(context.Background(), key, testToken, common.Address{1}, decimal.RequireFromString("0.0000001"))
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if len(backend.sent) != 0 {
		t.Fatal("nothing must be broadcast")
	}
}

func TestEthereumGateway_SubmitTransferRejectsAmountAboveUint256(t *testing.T) {
	backend := &fakeBackend{}
	g := newTestGateway(t, backend)
	key, _ := crypto.GenerateKey()

	wrapped := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	_, err := g.SubmitTransfer(context.Background(), key, testToken, common.Address{1}, decimal.NewFromBigInt(wrapped, -18))
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if len(backend.sent) != 0 {
		t.Fatal("nothing must be broadcast")
	}
}

func TestEthereumGateway_Balances(t *testing.T) {
	out, err := erc20ABI.Methods["balanceOf"].Outputs.Pack(big.NewInt(2_500_000))
	if err != nil {
		t.Fatalf("pack output: %v", err)
	}
	backend := &fakeBackend{
		balance:  new(big.Int).Mul(big.NewInt(1), big.NewInt(10_000_000_000_000_000)),
		tokenOut: out,
	}
	g, _ := NewEthereumGateway(backend, EthereumConfig{ChainID: big.NewInt(2810), TokenDecimals: 6})
	addr := common.HexToAddress("0x00000000000000000000000000000000000000a1")

	fee, err := g.FeeBalance(context.Background(), addr)
	if err != nil {
		t.Fatalf("fee balance: %v", err)
	}
	if !fee.Equal(decimal.RequireFromString("0.01")) {
		t.Fatalf("expected 0.01, got %s", fee)
	}

	tok, err := g.TokenBalance(context.Background(), addr, testToken)
	if err != nil {
		t.Fatalf("token balance: %v", err)
	}
	if !tok.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("expected 2.5, got %s", tok)
	}
	if len(backend.calls) != 1 || *backend.calls[0].To != testToken {
		t.Fatalf("expected balanceOf call on token, got %+v", backend.calls)
	}
}

func TestEthereumGateway_CallTimeout(t *testing.T) {
	backend := &fakeBackend{block: true}
	g := newTestGateway(t, backend)

	_, err := g.FeeBalance(context.Background(), common.Address{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected unavailable after timeout, got %v", err)
	}
}
