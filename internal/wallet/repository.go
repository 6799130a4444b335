package wallet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phonomorph/phonomorph/internal/account"
	"github.com/phonomorph/phonomorph/internal/identity"
)

const uniqueViolation = "23505"

// Repository persists wallet records. Insert must fail with ErrAlreadyExists
// when the phone already has a record, atomically with the write.
type Repository interface {
	Insert(ctx context.Context, record Record) error
	FindByPhone(ctx context.Context, phone identity.Phone) (Record, error)
}

// PostgresRepository stores wallets in PostgreSQL. Secrets are sealed before
// they reach the database.
type PostgresRepository struct {
	db     *pgxpool.Pool
	sealer *Sealer
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool, sealer *Sealer) *PostgresRepository {
	return &PostgresRepository{db: db, sealer: sealer}
}

// Insert writes record unless the phone is already bound. The unique index on
// phone makes the check and the write a single statement.
func (r *PostgresRepository) Insert(ctx context.Context, record Record) error {
	id, err := uuid.Parse(record.ID)
	if err != nil {
		return err
	}
	sealed, err := r.sealer.Seal([]byte(record.Secret.Value), record.Phone.String())
	if err != nil {
		return fmt.Errorf("seal secret: %w", err)
	}
	cmd, err := r.db.Exec(ctx, `INSERT INTO wallets (id, phone, secret_kind, secret, address, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (phone) DO NOTHING`,
		id, record.Phone.String(), string(record.Secret.Kind), sealed, record.Address.Hex(), record.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAlreadyExists
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyExists
	}
	return nil
}

// FindByPhone fetches and unseals the record bound to phone.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone identity.Phone) (Record, error) {
	row := r.db.QueryRow(ctx, `SELECT id, secret_kind, secret, address, created_at
        FROM wallets WHERE phone = $1`, phone.String())
	var (
		id        uuid.UUID
		kind      string
		sealed    []byte
		address   string
		createdAt time.Time
	)
	if err := row.Scan(&id, &kind, &sealed, &address, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	plaintext, err := r.sealer.Open(sealed, phone.String())
	if err != nil {
		return Record{}, fmt.Errorf("wallet %s: %w", id, err)
	}
	return Record{
		ID:        id.String(),
		Phone:     phone,
		Secret:    account.Secret{Kind: account.Kind(kind), Value: string(plaintext)},
		Address:   common.HexToAddress(address),
		CreatedAt: createdAt.UTC(),
	}, nil
}
