package ledger

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"
)

const defaultCallTimeout = 15 * time.Second

// Backend is the subset of *ethclient.Client the gateway needs.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// EthereumConfig tunes an EthereumGateway.
type EthereumConfig struct {
	ChainID       *big.Int
	TokenDecimals int32
	// CallTimeout bounds every RPC round trip.
	CallTimeout time.Duration
}

// EthereumGateway implements Gateway against an EVM JSON-RPC node.
type EthereumGateway struct {
	backend  Backend
	chainID  *big.Int
	decimals int32
	timeout  time.Duration
}

// NewEthereumGateway builds a gateway on top of backend.
func NewEthereumGateway(backend Backend, cfg EthereumConfig) (*EthereumGateway, error) {
	if backend == nil {
		return nil, fmt.Errorf("ethereum backend is required")
	}
	if cfg.ChainID == nil || cfg.ChainID.Sign() <= 0 {
		return nil, fmt.Errorf("chain id is required")
	}
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	return &EthereumGateway{
		backend:  backend,
		chainID:  new(big.Int).Set(cfg.ChainID),
		decimals: cfg.TokenDecimals,
		timeout:  timeout,
	}, nil
}

// FeeBalance returns the latest native balance of addr.
func (g *EthereumGateway) FeeBalance(ctx context.Context, addr common.Address) (decimal.Decimal, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	wei, err := g.backend.BalanceAt(ctx, addr, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: balance of %s: %v", ErrUnavailable, addr.Hex(), err)
	}
	return FromBaseUnits(wei, NativeDecimals), nil
}

// TokenBalance calls balanceOf(addr) on token.
func (g *EthereumGateway) TokenBalance(ctx context.Context, addr, token common.Address) (decimal.Decimal, error) {
	data, err := packBalanceOf(addr)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	out, err := g.backend.CallContract(ctx, ethereum.CallMsg{To: &token, Data: data}, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: token balance of %s: %v", ErrUnavailable, addr.Hex(), err)
	}
	v, err := unpackBalanceOf(out)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: decode balanceOf: %v", ErrUnavailable, err)
	}
	return FromBaseUnits(v, g.decimals), nil
}

// SubmitTransfer builds a transfer(to, amount) call on token, signs it with
// signer and broadcasts it. Dynamic-fee transactions are used when the
// latest header carries a base fee, legacy ones otherwise.
func (g *EthereumGateway) SubmitTransfer(ctx context.Context, signer *ecdsa.PrivateKey, token, to common.Address, amount decimal.Decimal) (common.Hash, error) {
	if signer == nil {
		return common.Hash{}, fmt.Errorf("%w: signer is required", ErrSubmissionFailed)
	}
	value, err := ToBaseUnits(amount, g.decimals)
	if err != nil {
		return common.Hash{}, err
	}
	data, err := packTransfer(to, value)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: pack transfer: %v", ErrSubmissionFailed, err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	from := crypto.PubkeyToAddress(signer.PublicKey)

	nonce, err := g.backend.PendingNonceAt(ctx, from)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: nonce: %v", ErrSubmissionFailed, err)
	}
	gas, err := g.backend.EstimateGas(ctx, ethereum.CallMsg{From: from, To: &token, Data: data})
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: estimate gas: %v", ErrSubmissionFailed, err)
	}
	head, err := g.backend.HeaderByNumber(ctx, nil)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: latest header: %v", ErrSubmissionFailed, err)
	}

	var txData types.TxData
	if head.BaseFee != nil {
		tip, err := g.backend.SuggestGasTipCap(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("%w: gas tip: %v", ErrSubmissionFailed, err)
		}
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		txData = &types.DynamicFeeTx{
			ChainID:   g.chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &token,
			Value:     new(big.Int),
			Data:      data,
		}
	} else {
		price, err := g.backend.SuggestGasPrice(ctx)
		if err != nil {
			return common.Hash{}, fmt.Errorf("%w: gas price: %v", ErrSubmissionFailed, err)
		}
		txData = &types.LegacyTx{
			Nonce:    nonce,
			GasPrice: price,
			Gas:      gas,
			To:       &token,
			Value:    new(big.Int),
			Data:     data,
		}
	}

	signed, err := types.SignTx(types.NewTx(txData), types.LatestSignerForChainID(g.chainID), signer)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: sign: %v", ErrSubmissionFailed, err)
	}
	if err := g.backend.SendTransaction(ctx, signed); err != nil {
		return common.Hash{}, fmt.Errorf("%w: broadcast: %v", ErrSubmissionFailed, err)
	}
	return signed.Hash(), nil
}
