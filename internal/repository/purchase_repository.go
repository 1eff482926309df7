package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// PurchasePoolInterface defines the database operations needed by
// PurchaseRepository outside a transaction.
type PurchasePoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PurchaseRepository provides data access for purchases using pgx.
type PurchaseRepository struct {
	pool PurchasePoolInterface
}

// NewPurchaseRepository creates a new PurchaseRepository with the given pool.
func NewPurchaseRepository(pool *pgxpool.Pool) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

// NewPurchaseRepositoryWithPool creates a new PurchaseRepository with a custom
// pool interface. This is primarily used for testing.
func NewPurchaseRepositoryWithPool(pool PurchasePoolInterface) *PurchaseRepository {
	return &PurchaseRepository{pool: pool}
}

const purchaseColumns = `id, student_id, product_id, paid_gold, paid_silver, paid_bronze,
status, approved_by_id, approved_at, rejection_reason, created_at`

func scanPurchase(row pgx.Row) (*model.Purchase, error) {
	var p model.Purchase
	err := row.Scan(&p.ID, &p.StudentID, &p.ProductID,
		&p.MedalsPaid.Gold, &p.MedalsPaid.Silver, &p.MedalsPaid.Bronze,
		&p.Status, &p.ApprovedByID, &p.ApprovedAt, &p.RejectionReason, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert inserts a new purchase within the settlement transaction.
func (r *PurchaseRepository) Insert(ctx context.Context, tx database.TxQuerier, purchase *model.Purchase) error {
	query := `INSERT INTO purchases (id, student_id, product_id, paid_gold, paid_silver, paid_bronze, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		purchase.ID, purchase.StudentID, purchase.ProductID,
		purchase.MedalsPaid.Gold, purchase.MedalsPaid.Silver, purchase.MedalsPaid.Bronze,
		string(purchase.Status), purchase.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// Get retrieves a purchase by ID.
// Returns nil, nil if the purchase is not found (service layer handles this).
func (r *PurchaseRepository) Get(ctx context.Context, id string) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`

	p, err := scanPurchase(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get purchase %s: %w", id, err)
	}
	return p, nil
}

// GetForUpdate retrieves a purchase with a row lock (SELECT FOR UPDATE).
// The lock serializes concurrent settlement attempts on the same purchase.
// Returns service.ErrPurchaseNotFound if the purchase doesn't exist and
// service.ErrBusy if the lock wait timed out.
func (r *PurchaseRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1 FOR UPDATE`

	p, err := scanPurchase(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrPurchaseNotFound
		}
		if database.IsLockTimeout(err) {
			return nil, service.ErrBusy
		}
		return nil, fmt.Errorf("get purchase for update %s: %w", id, err)
	}
	return p, nil
}

// MarkApproved transitions a purchase to approved within the settlement
// transaction. The caller has already verified the purchase is pending under
// the row lock.
func (r *PurchaseRepository) MarkApproved(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time) error {
	query := `UPDATE purchases SET status = 'approved', approved_by_id = $2, approved_at = $3 WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, adminID, at); err != nil {
		return fmt.Errorf("mark purchase %s approved: %w", id, err)
	}
	return nil
}

// MarkRejected transitions a purchase to rejected within the settlement
// transaction.
func (r *PurchaseRepository) MarkRejected(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time, reason *string) error {
	query := `UPDATE purchases SET status = 'rejected', approved_by_id = $2, approved_at = $3, rejection_reason = $4 WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, adminID, at, reason); err != nil {
		return fmt.Errorf("mark purchase %s rejected: %w", id, err)
	}
	return nil
}

// ListByStatus retrieves purchases with the given status, oldest first so
// admins settle in arrival order.
func (r *PurchaseRepository) ListByStatus(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE status = $1 ORDER BY created_at`

	return r.list(ctx, query, string(status))
}

// ListByStudent retrieves a student's purchases, newest first.
func (r *PurchaseRepository) ListByStudent(ctx context.Context, studentID string) ([]model.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE student_id = $1 ORDER BY created_at DESC`

	return r.list(ctx, query, studentID)
}

func (r *PurchaseRepository) list(ctx context.Context, query string, args ...any) ([]model.Purchase, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []model.Purchase{}
	for rows.Next() {
		var p model.Purchase
		if err := rows.Scan(&p.ID, &p.StudentID, &p.ProductID,
			&p.MedalsPaid.Gold, &p.MedalsPaid.Silver, &p.MedalsPaid.Bronze,
			&p.Status, &p.ApprovedByID, &p.ApprovedAt, &p.RejectionReason, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate purchase rows: %w", err)
	}
	return purchases, nil
}
