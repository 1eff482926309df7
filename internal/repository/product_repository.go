package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/service"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// ProductPoolInterface defines the database operations needed by
// ProductRepository outside a transaction.
type ProductPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// ProductRepository provides data access for marketplace products using pgx.
type ProductRepository struct {
	pool ProductPoolInterface
}

// NewProductRepository creates a new ProductRepository with the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// NewProductRepositoryWithPool creates a new ProductRepository with a custom
// pool interface. This is primarily used for testing.
func NewProductRepositoryWithPool(pool ProductPoolInterface) *ProductRepository {
	return &ProductRepository{pool: pool}
}

const productColumns = `id, name, cost_gold, cost_silver, cost_bronze, quantity, is_active, created_at`

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(&p.ID, &p.Name, &p.Cost.Gold, &p.Cost.Silver, &p.Cost.Bronze,
		&p.Quantity, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Insert inserts a new product.
func (r *ProductRepository) Insert(ctx context.Context, product *model.Product) error {
	query := `INSERT INTO products (id, name, cost_gold, cost_silver, cost_bronze, quantity, is_active)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Cost.Gold, product.Cost.Silver,
		product.Cost.Bronze, product.Quantity, product.IsActive)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// Get retrieves a product by ID.
// Returns nil, nil if the product is not found (service layer handles this).
func (r *ProductRepository) Get(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return p, nil
}

// ListActive retrieves all active products, newest first.
func (r *ProductRepository) ListActive(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE is_active ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Cost.Gold, &p.Cost.Silver, &p.Cost.Bronze,
			&p.Quantity, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

// GetForUpdate retrieves a product with a row lock (SELECT FOR UPDATE).
// Returns service.ErrProductNotFound if the product doesn't exist and
// service.ErrBusy if the lock wait timed out.
func (r *ProductRepository) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`

	p, err := scanProduct(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrProductNotFound
		}
		if database.IsLockTimeout(err) {
			return nil, service.ErrBusy
		}
		return nil, fmt.Errorf("get product for update %s: %w", id, err)
	}
	return p, nil
}

// DecrementQuantity decrements a product's quantity by 1.
// Must be called within a transaction after locking the row.
func (r *ProductRepository) DecrementQuantity(ctx context.Context, tx database.TxQuerier, id string) error {
	query := `UPDATE products SET quantity = quantity - 1 WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("decrement quantity for %s: %w", id, err)
	}
	return nil
}

// Update writes a product's mutable fields. It replaces the whole row, so it
// must run in the same transaction as the GetForUpdate that read the product.
// Settlement-driven decrements go through DecrementQuantity inside the
// approval transaction.
func (r *ProductRepository) Update(ctx context.Context, tx database.TxQuerier, product *model.Product) error {
	query := `UPDATE products SET name = $2, cost_gold = $3, cost_silver = $4,
cost_bronze = $5, quantity = $6, is_active = $7 WHERE id = $1`

	_, err := tx.Exec(ctx, query,
		product.ID, product.Name, product.Cost.Gold, product.Cost.Silver,
		product.Cost.Bronze, product.Quantity, product.IsActive)
	if err != nil {
		return fmt.Errorf("update product %s: %w", product.ID, err)
	}
	return nil
}
