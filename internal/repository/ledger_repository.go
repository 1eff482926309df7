package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// LedgerPoolInterface defines the database operations needed by LedgerRepository.
// This allows for easier testing with mocks.
type LedgerPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// LedgerRepository is the ledger store: the single owner of account balance
// rows. All writes go through AdjustBalance inside an engine transaction;
// GetBalance is the read-only accessor everything else uses.
type LedgerRepository struct {
	pool LedgerPoolInterface
}

// NewLedgerRepository creates a new LedgerRepository with the given pool.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// NewLedgerRepositoryWithPool creates a new LedgerRepository with a custom
// pool interface. This is primarily used for testing.
func NewLedgerRepositoryWithPool(pool LedgerPoolInterface) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// GetBalance retrieves an account's balance without locking.
// Returns service.ErrAccountNotFound if the account doesn't exist.
func (r *LedgerRepository) GetBalance(ctx context.Context, accountID string) (model.Medals, error) {
	query := `SELECT gold, silver, bronze FROM accounts WHERE id = $1`

	var bal model.Medals
	err := r.pool.QueryRow(ctx, query, accountID).Scan(&bal.Gold, &bal.Silver, &bal.Bronze)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Medals{}, service.ErrAccountNotFound
		}
		return model.Medals{}, fmt.Errorf("get balance for %s: %w", accountID, err)
	}
	return bal, nil
}

// GetBalanceForUpdate retrieves an account's balance with a row lock
// (SELECT FOR UPDATE). The lock is held until the transaction completes and
// serializes every concurrent balance or quota operation on the account.
// Returns service.ErrAccountNotFound if the account doesn't exist and
// service.ErrBusy if the lock wait timed out.
func (r *LedgerRepository) GetBalanceForUpdate(ctx context.Context, tx database.TxQuerier, accountID string) (model.Medals, error) {
	query := `SELECT gold, silver, bronze FROM accounts WHERE id = $1 FOR UPDATE`

	var bal model.Medals
	err := tx.QueryRow(ctx, query, accountID).Scan(&bal.Gold, &bal.Silver, &bal.Bronze)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Medals{}, service.ErrAccountNotFound
		}
		if database.IsLockTimeout(err) {
			return model.Medals{}, service.ErrBusy
		}
		return model.Medals{}, fmt.Errorf("get balance for update %s: %w", accountID, err)
	}
	return bal, nil
}

// AdjustBalance applies a three-denomination delta to an account atomically,
// all-or-nothing across the triple. Returns service.ErrInsufficientFunds if
// any resulting denomination would go negative; nothing is written in that
// case. Must be called within an engine transaction.
func (r *LedgerRepository) AdjustBalance(ctx context.Context, tx database.TxQuerier, accountID string, delta model.Medals) (model.Medals, error) {
	bal, err := r.GetBalanceForUpdate(ctx, tx, accountID)
	if err != nil {
		return model.Medals{}, err
	}

	next := bal.Add(delta)
	if next.Negative() {
		return model.Medals{}, service.ErrInsufficientFunds
	}

	query := `UPDATE accounts SET gold = $2, silver = $3, bronze = $4 WHERE id = $1`
	if _, err := tx.Exec(ctx, query, accountID, next.Gold, next.Silver, next.Bronze); err != nil {
		return model.Medals{}, fmt.Errorf("adjust balance for %s: %w", accountID, err)
	}
	return next, nil
}
