package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/phonomorph/phonomorph/internal/account"
	"github.com/phonomorph/phonomorph/internal/identity"
	"github.com/phonomorph/phonomorph/internal/ledger"
	"github.com/phonomorph/phonomorph/internal/logging"
	"github.com/phonomorph/phonomorph/internal/metrics"
)

const defaultStorageTimeout = 5 * time.Second

// Options configures a Service.
type Options struct {
	Token          common.Address
	StorageTimeout time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// Service provisions, imports and looks up custodial wallets.
type Service struct {
	repo    Repository
	ledger  ledger.Gateway
	token   common.Address
	timeout time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewService builds a wallet service instance.
func NewService(repo Repository, gateway ledger.Gateway, opts Options) *Service {
	timeout := opts.StorageTimeout
	if timeout <= 0 {
		timeout = defaultStorageTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{
		repo:    repo,
		ledger:  gateway,
		token:   opts.Token,
		timeout: timeout,
		logger:  logger,
		metrics: opts.Metrics,
	}
}

// ImportInput captures externally supplied key material.
type ImportInput struct {
	Kind   account.Kind
	Secret string
}

// Provision generates a new mnemonic for phone and stores it. It fails with
// ErrAlreadyExists if phone already owns a wallet.
func (s *Service) Provision(ctx context.Context, phone identity.Phone) (Record, error) {
	secret, addr, err := account.Generate()
	if err != nil {
		return Record{}, fmt.Errorf("generate secret: %w", err)
	}
	record, err := s.insert(ctx, phone, secret, addr)
	if err != nil {
		return Record{}, err
	}
	s.metrics.WalletCreated("generated")
	s.logger.Info("wallet provisioned", slog.String("phone", phone.Masked()), slog.String("address", addr.Hex()))
	return record.public(), nil
}

// Import validates externally supplied key material and stores it for phone.
func (s *Service) Import(ctx context.Context, phone identity.Phone, input ImportInput) (Record, error) {
	secret, addr, err := account.NewSecret(input.Kind, input.Secret)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	record, err := s.insert(ctx, phone, secret, addr)
	if err != nil {
		return Record{}, err
	}
	s.metrics.WalletCreated("imported")
	s.logger.Info("wallet imported",
		slog.String("phone", phone.Masked()),
		slog.String("kind", string(secret.Kind)),
		slog.String("address", addr.Hex()),
	)
	return record.public(), nil
}

// Get returns the wallet bound to phone without its secret.
func (s *Service) Get(ctx context.Context, phone identity.Phone) (Record, error) {
	record, err := s.Lookup(ctx, phone)
	if err != nil {
		return Record{}, err
	}
	return record.public(), nil
}

// Lookup returns the full record including secret material. The caller owns
// the returned secret for the duration of one operation only.
func (s *Service) Lookup(ctx context.Context, phone identity.Phone) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	record, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("lookup wallet: %w", err)
	}
	return record, nil
}

// Balance returns the fee-currency and token holdings of phone's wallet.
func (s *Service) Balance(ctx context.Context, phone identity.Phone) (Balance, error) {
	record, err := s.Get(ctx, phone)
	if err != nil {
		return Balance{}, err
	}
	fee, err := s.ledger.FeeBalance(ctx, record.Address)
	if err != nil {
		return Balance{}, err
	}
	token, err := s.ledger.TokenBalance(ctx, record.Address, s.token)
	if err != nil {
		return Balance{}, err
	}
	return Balance{Address: record.Address, FeeBalance: fee, TokenBalance: token, AsOf: time.Now().UTC()}, nil
}

func (s *Service) insert(ctx context.Context, phone identity.Phone, secret account.Secret, addr common.Address) (Record, error) {
	record := Record{
		ID:        uuid.NewString(),
		Phone:     phone,
		Secret:    secret,
		Address:   addr,
		CreatedAt: time.Now().UTC(),
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.repo.Insert(ctx, record); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return Record{}, ErrAlreadyExists
		}
		return Record{}, fmt.Errorf("store wallet: %w", err)
	}
	return record, nil
}

func (r Record) public() Record {
	r.Secret = account.Secret{Kind: r.Secret.Kind}
	return r
}
