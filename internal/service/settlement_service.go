package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/notify"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// ProductRepositoryInterface defines the interface for product data access.
type ProductRepositoryInterface interface {
	Insert(ctx context.Context, product *model.Product) error
	Get(ctx context.Context, id string) (*model.Product, error)
	ListActive(ctx context.Context) ([]model.Product, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error)
	DecrementQuantity(ctx context.Context, tx database.TxQuerier, id string) error
	Update(ctx context.Context, tx database.TxQuerier, product *model.Product) error
}

// PurchaseRepositoryInterface defines the interface for purchase data access.
type PurchaseRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, purchase *model.Purchase) error
	Get(ctx context.Context, id string) (*model.Purchase, error)
	GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Purchase, error)
	MarkApproved(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time) error
	MarkRejected(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time, reason *string) error
	ListByStatus(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error)
	ListByStudent(ctx context.Context, studentID string) ([]model.Purchase, error)
}

// SettlementService is the marketplace settlement engine. A purchase debits
// the student at creation, then transitions exactly once from pending to
// approved (inventory decremented) or rejected (debit refunded from the
// medals-paid snapshot).
type SettlementService struct {
	pool         TxBeginner
	ledgerRepo   LedgerRepositoryInterface
	productRepo  ProductRepositoryInterface
	purchaseRepo PurchaseRepositoryInterface
	lockTimeout  time.Duration
	notifier     notify.Notifier
	now          func() time.Time
}

// NewSettlementService creates a new SettlementService with the given pool
// and repositories.
func NewSettlementService(pool *pgxpool.Pool, ledgerRepo LedgerRepositoryInterface, productRepo ProductRepositoryInterface, purchaseRepo PurchaseRepositoryInterface, lockTimeout time.Duration, notifier notify.Notifier) *SettlementService {
	return newSettlementService(pool, ledgerRepo, productRepo, purchaseRepo, lockTimeout, notifier)
}

// NewSettlementServiceWithTxBeginner creates a SettlementService with a
// custom TxBeginner. Primarily used for testing.
func NewSettlementServiceWithTxBeginner(pool TxBeginner, ledgerRepo LedgerRepositoryInterface, productRepo ProductRepositoryInterface, purchaseRepo PurchaseRepositoryInterface, lockTimeout time.Duration, notifier notify.Notifier) *SettlementService {
	return newSettlementService(pool, ledgerRepo, productRepo, purchaseRepo, lockTimeout, notifier)
}

func newSettlementService(pool TxBeginner, ledgerRepo LedgerRepositoryInterface, productRepo ProductRepositoryInterface, purchaseRepo PurchaseRepositoryInterface, lockTimeout time.Duration, notifier notify.Notifier) *SettlementService {
	return &SettlementService{
		pool:         pool,
		ledgerRepo:   ledgerRepo,
		productRepo:  productRepo,
		purchaseRepo: purchaseRepo,
		lockTimeout:  lockTimeout,
		notifier:     notifier,
		now:          time.Now,
	}
}

// CreatePurchase atomically debits the student by the product's cost and
// creates a pending purchase carrying the cost snapshot. The snapshot is what
// a later rejection refunds, regardless of price changes in between.
// Returns:
//   - ErrProductNotFound if the product doesn't exist
//   - ErrProductUnavailable if the product is inactive or out of stock
//   - ErrAccountNotFound if the student has no medal account
//   - ErrInsufficientFunds if any denomination cannot cover the cost
//   - ErrBusy if the account row lock could not be acquired in time
func (s *SettlementService) CreatePurchase(ctx context.Context, studentID, productID string) (*model.Purchase, error) {
	if studentID == "" || productID == "" {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, err
	}

	// 1. Check availability. The product row is not written here, so no lock;
	// approval re-checks quantity under its own lock.
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if !product.IsActive || product.Quantity <= 0 {
		return nil, ErrProductUnavailable
	}

	// 2. Debit under the account row lock; covers the affordability check.
	if _, err := s.ledgerRepo.AdjustBalance(ctx, tx, studentID, product.Cost.Neg()); err != nil {
		return nil, err
	}

	// 3. Create the pending purchase with the cost snapshot.
	purchase := &model.Purchase{
		ID:         uuid.NewString(),
		StudentID:  studentID,
		ProductID:  productID,
		MedalsPaid: product.Cost,
		Status:     model.PurchasePending,
		CreatedAt:  s.now(),
	}
	if err := s.purchaseRepo.Insert(ctx, tx, purchase); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit purchase: %w", err)
	}

	s.notifier.PurchaseCreated(ctx, notify.PurchaseEvent{
		PurchaseID: purchase.ID,
		StudentID:  studentID,
		Status:     model.PurchasePending,
	})
	return purchase, nil
}

// Approve settles a pending purchase: decrements product inventory by one
// and marks the purchase approved, in one transaction. The debit already
// happened at creation, so the balance is untouched.
// Returns:
//   - ErrPurchaseNotFound if the purchase doesn't exist
//   - ErrNotPending if the purchase was already settled
//   - ErrProductNotFound if the product row is gone
//   - ErrProductUnavailable if inventory is exhausted (purchase stays pending)
//   - ErrBusy if a row lock could not be acquired in time
func (s *SettlementService) Approve(ctx context.Context, adminID, purchaseID string) (*model.Purchase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, err
	}

	// 1. Lock the purchase row; the first settler wins, the second sees the
	// committed terminal status.
	purchase, err := s.purchaseRepo.GetForUpdate(ctx, tx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != model.PurchasePending {
		return nil, ErrNotPending
	}

	// 2. Lock the product row and re-check inventory.
	product, err := s.productRepo.GetForUpdate(ctx, tx, purchase.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Quantity <= 0 {
		return nil, ErrProductUnavailable
	}

	// 3. Decrement inventory and mark approved.
	if err := s.productRepo.DecrementQuantity(ctx, tx, product.ID); err != nil {
		return nil, err
	}
	approvedAt := s.now()
	if err := s.purchaseRepo.MarkApproved(ctx, tx, purchaseID, adminID, approvedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit approval: %w", err)
	}

	purchase.Status = model.PurchaseApproved
	purchase.ApprovedByID = &adminID
	purchase.ApprovedAt = &approvedAt

	s.notifier.PurchaseUpdated(ctx, notify.PurchaseEvent{
		PurchaseID: purchase.ID,
		StudentID:  purchase.StudentID,
		Status:     model.PurchaseApproved,
	})
	return purchase, nil
}

// Reject settles a pending purchase by refunding the medals-paid snapshot to
// the student and marking the purchase rejected, in one transaction.
// Returns:
//   - ErrPurchaseNotFound if the purchase doesn't exist
//   - ErrNotPending if the purchase was already settled
//   - ErrBusy if a row lock could not be acquired in time
func (s *SettlementService) Reject(ctx context.Context, adminID, purchaseID string, reason string) (*model.Purchase, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, err
	}

	purchase, err := s.purchaseRepo.GetForUpdate(ctx, tx, purchaseID)
	if err != nil {
		return nil, err
	}
	if purchase.Status != model.PurchasePending {
		return nil, ErrNotPending
	}

	// Refund exactly what was debited at creation time.
	if _, err := s.ledgerRepo.AdjustBalance(ctx, tx, purchase.StudentID, purchase.MedalsPaid); err != nil {
		return nil, err
	}

	var rejectionReason *string
	if reason != "" {
		rejectionReason = &reason
	}
	rejectedAt := s.now()
	if err := s.purchaseRepo.MarkRejected(ctx, tx, purchaseID, adminID, rejectedAt, rejectionReason); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit rejection: %w", err)
	}

	purchase.Status = model.PurchaseRejected
	purchase.ApprovedByID = &adminID
	purchase.ApprovedAt = &rejectedAt
	purchase.RejectionReason = rejectionReason

	s.notifier.PurchaseUpdated(ctx, notify.PurchaseEvent{
		PurchaseID: purchase.ID,
		StudentID:  purchase.StudentID,
		Status:     model.PurchaseRejected,
	})
	return purchase, nil
}

// CreateProduct adds a product to the catalog.
func (s *SettlementService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if req == nil || req.Quantity == nil {
		return nil, ErrInvalidRequest
	}

	product := &model.Product{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Cost:     req.Cost,
		Quantity: *req.Quantity,
		IsActive: true,
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.productRepo.Insert(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct applies a partial update to a product's catalog fields. The
// write replaces the whole row, so the read and write run in one transaction
// under the product row lock; otherwise a name-only patch could write back a
// quantity that a concurrent approval already decremented.
// Returns:
//   - ErrProductNotFound if the product doesn't exist
//   - ErrBusy if the product row lock could not be acquired in time
func (s *SettlementService) UpdateProduct(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Cost != nil {
		product.Cost = *req.Cost
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := s.productRepo.Update(ctx, tx, product); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit product update: %w", err)
	}
	return product, nil
}

// ListProducts retrieves the active product catalog.
func (s *SettlementService) ListProducts(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.ListActive(ctx)
}

// ListPurchasesByStatus retrieves purchases in a given settlement state.
func (s *SettlementService) ListPurchasesByStatus(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error) {
	return s.purchaseRepo.ListByStatus(ctx, status)
}

// ListStudentPurchases retrieves one student's purchase history.
func (s *SettlementService) ListStudentPurchases(ctx context.Context, studentID string) ([]model.Purchase, error) {
	return s.purchaseRepo.ListByStudent(ctx, studentID)
}
