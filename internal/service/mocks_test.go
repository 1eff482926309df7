package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/notify"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// mockLedgerRepo is a mock implementation of LedgerRepositoryInterface.
type mockLedgerRepo struct {
	getBalanceFn          func(ctx context.Context, accountID string) (model.Medals, error)
	getBalanceForUpdateFn func(ctx context.Context, tx database.TxQuerier, accountID string) (model.Medals, error)
	adjustBalanceFn       func(ctx context.Context, tx database.TxQuerier, accountID string, delta model.Medals) (model.Medals, error)
}

func (m *mockLedgerRepo) GetBalance(ctx context.Context, accountID string) (model.Medals, error) {
	if m.getBalanceFn != nil {
		return m.getBalanceFn(ctx, accountID)
	}
	return model.Medals{}, nil
}

func (m *mockLedgerRepo) GetBalanceForUpdate(ctx context.Context, tx database.TxQuerier, accountID string) (model.Medals, error) {
	if m.getBalanceForUpdateFn != nil {
		return m.getBalanceForUpdateFn(ctx, tx, accountID)
	}
	return model.Medals{}, nil
}

func (m *mockLedgerRepo) AdjustBalance(ctx context.Context, tx database.TxQuerier, accountID string, delta model.Medals) (model.Medals, error) {
	if m.adjustBalanceFn != nil {
		return m.adjustBalanceFn(ctx, tx, accountID, delta)
	}
	return model.Medals{}, nil
}

// mockAwardLogRepo is a mock implementation of AwardLogRepositoryInterface.
type mockAwardLogRepo struct {
	insertFn         func(ctx context.Context, tx database.TxQuerier, entry *model.AwardLogEntry) error
	sumForPeriodFn   func(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, from, to time.Time) (int, error)
	currentTotalFn   func(ctx context.Context, studentID string, medalType model.MedalType, from, to time.Time) (int, error)
	deleteMatchingFn func(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, reason string, relatedID *string) (int64, error)
}

func (m *mockAwardLogRepo) Insert(ctx context.Context, tx database.TxQuerier, entry *model.AwardLogEntry) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, entry)
	}
	return nil
}

func (m *mockAwardLogRepo) SumForPeriod(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, from, to time.Time) (int, error) {
	if m.sumForPeriodFn != nil {
		return m.sumForPeriodFn(ctx, tx, studentID, medalType, from, to)
	}
	return 0, nil
}

func (m *mockAwardLogRepo) CurrentTotal(ctx context.Context, studentID string, medalType model.MedalType, from, to time.Time) (int, error) {
	if m.currentTotalFn != nil {
		return m.currentTotalFn(ctx, studentID, medalType, from, to)
	}
	return 0, nil
}

func (m *mockAwardLogRepo) DeleteMatching(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, reason string, relatedID *string) (int64, error) {
	if m.deleteMatchingFn != nil {
		return m.deleteMatchingFn(ctx, tx, studentID, medalType, reason, relatedID)
	}
	return 0, nil
}

// mockProductRepo is a mock implementation of ProductRepositoryInterface.
type mockProductRepo struct {
	insertFn            func(ctx context.Context, product *model.Product) error
	getFn               func(ctx context.Context, id string) (*model.Product, error)
	listActiveFn        func(ctx context.Context) ([]model.Product, error)
	getForUpdateFn      func(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error)
	decrementQuantityFn func(ctx context.Context, tx database.TxQuerier, id string) error
	updateFn            func(ctx context.Context, tx database.TxQuerier, product *model.Product) error
}

func (m *mockProductRepo) Insert(ctx context.Context, product *model.Product) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, product)
	}
	return nil
}

func (m *mockProductRepo) Get(ctx context.Context, id string) (*model.Product, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) ListActive(ctx context.Context) ([]model.Product, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return []model.Product{}, nil
}

func (m *mockProductRepo) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Product, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, nil
}

func (m *mockProductRepo) DecrementQuantity(ctx context.Context, tx database.TxQuerier, id string) error {
	if m.decrementQuantityFn != nil {
		return m.decrementQuantityFn(ctx, tx, id)
	}
	return nil
}

func (m *mockProductRepo) Update(ctx context.Context, tx database.TxQuerier, product *model.Product) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, product)
	}
	return nil
}

// mockPurchaseRepo is a mock implementation of PurchaseRepositoryInterface.
type mockPurchaseRepo struct {
	insertFn        func(ctx context.Context, tx database.TxQuerier, purchase *model.Purchase) error
	getFn           func(ctx context.Context, id string) (*model.Purchase, error)
	getForUpdateFn  func(ctx context.Context, tx database.TxQuerier, id string) (*model.Purchase, error)
	markApprovedFn  func(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time) error
	markRejectedFn  func(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time, reason *string) error
	listByStatusFn  func(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error)
	listByStudentFn func(ctx context.Context, studentID string) ([]model.Purchase, error)
}

func (m *mockPurchaseRepo) Insert(ctx context.Context, tx database.TxQuerier, purchase *model.Purchase) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, purchase)
	}
	return nil
}

func (m *mockPurchaseRepo) Get(ctx context.Context, id string) (*model.Purchase, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPurchaseRepo) GetForUpdate(ctx context.Context, tx database.TxQuerier, id string) (*model.Purchase, error) {
	if m.getForUpdateFn != nil {
		return m.getForUpdateFn(ctx, tx, id)
	}
	return nil, nil
}

func (m *mockPurchaseRepo) MarkApproved(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time) error {
	if m.markApprovedFn != nil {
		return m.markApprovedFn(ctx, tx, id, adminID, at)
	}
	return nil
}

func (m *mockPurchaseRepo) MarkRejected(ctx context.Context, tx database.TxQuerier, id, adminID string, at time.Time, reason *string) error {
	if m.markRejectedFn != nil {
		return m.markRejectedFn(ctx, tx, id, adminID, at, reason)
	}
	return nil
}

func (m *mockPurchaseRepo) ListByStatus(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error) {
	if m.listByStatusFn != nil {
		return m.listByStatusFn(ctx, status)
	}
	return []model.Purchase{}, nil
}

func (m *mockPurchaseRepo) ListByStudent(ctx context.Context, studentID string) ([]model.Purchase, error) {
	if m.listByStudentFn != nil {
		return m.listByStudentFn(ctx, studentID)
	}
	return []model.Purchase{}, nil
}

// mockNotifier records emitted events for assertions.
type mockNotifier struct {
	awarded []notify.MedalAwardedEvent
	revoked []notify.MedalAwardedEvent
	created []notify.PurchaseEvent
	updated []notify.PurchaseEvent
}

func (m *mockNotifier) MedalAwarded(ctx context.Context, e notify.MedalAwardedEvent) {
	m.awarded = append(m.awarded, e)
}

func (m *mockNotifier) MedalRevoked(ctx context.Context, e notify.MedalAwardedEvent) {
	m.revoked = append(m.revoked, e)
}

func (m *mockNotifier) PurchaseCreated(ctx context.Context, e notify.PurchaseEvent) {
	m.created = append(m.created, e)
}

func (m *mockNotifier) PurchaseUpdated(ctx context.Context, e notify.PurchaseEvent) {
	m.updated = append(m.updated, e)
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
	rolledBack bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if !m.committed {
		m.rolledBack = true
	}
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

func intPtr(i int) *int {
	return &i
}
