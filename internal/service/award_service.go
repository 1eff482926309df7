package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/notify"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// LedgerRepositoryInterface defines the interface for balance data access.
type LedgerRepositoryInterface interface {
	GetBalance(ctx context.Context, accountID string) (model.Medals, error)
	GetBalanceForUpdate(ctx context.Context, tx database.TxQuerier, accountID string) (model.Medals, error)
	AdjustBalance(ctx context.Context, tx database.TxQuerier, accountID string, delta model.Medals) (model.Medals, error)
}

// AwardLogRepositoryInterface defines the interface for award-log data access.
type AwardLogRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, entry *model.AwardLogEntry) error
	SumForPeriod(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, from, to time.Time) (int, error)
	CurrentTotal(ctx context.Context, studentID string, medalType model.MedalType, from, to time.Time) (int, error)
	DeleteMatching(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, reason string, relatedID *string) (int64, error)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// AwardService is the award engine: it owns quota-checked medal awards and
// their reversal. Every operation that touches a balance runs inside one
// transaction holding the account row lock.
type AwardService struct {
	pool        TxBeginner
	ledgerRepo  LedgerRepositoryInterface
	logRepo     AwardLogRepositoryInterface
	limits      QuotaLimits
	lockTimeout time.Duration
	notifier    notify.Notifier
	now         func() time.Time
}

// NewAwardService creates a new AwardService with the given pool and repositories.
func NewAwardService(pool *pgxpool.Pool, ledgerRepo LedgerRepositoryInterface, logRepo AwardLogRepositoryInterface, limits QuotaLimits, lockTimeout time.Duration, notifier notify.Notifier) *AwardService {
	return newAwardService(pool, ledgerRepo, logRepo, limits, lockTimeout, notifier)
}

// NewAwardServiceWithTxBeginner creates an AwardService with a custom TxBeginner.
// Primarily used for testing.
func NewAwardServiceWithTxBeginner(pool TxBeginner, ledgerRepo LedgerRepositoryInterface, logRepo AwardLogRepositoryInterface, limits QuotaLimits, lockTimeout time.Duration, notifier notify.Notifier) *AwardService {
	return newAwardService(pool, ledgerRepo, logRepo, limits, lockTimeout, notifier)
}

func newAwardService(pool TxBeginner, ledgerRepo LedgerRepositoryInterface, logRepo AwardLogRepositoryInterface, limits QuotaLimits, lockTimeout time.Duration, notifier notify.Notifier) *AwardService {
	return &AwardService{
		pool:        pool,
		ledgerRepo:  ledgerRepo,
		logRepo:     logRepo,
		limits:      limits,
		lockTimeout: lockTimeout,
		notifier:    notifier,
		now:         time.Now,
	}
}

// Award atomically awards medals to a student: locks the account row,
// re-checks the monthly quota over the award log, credits the balance and
// appends the log entry. Either all of it commits or none of it does.
// Returns the new three-denomination balance.
// Returns:
//   - ErrAccountNotFound if the student has no medal account
//   - ErrQuotaExceeded if the award would exceed the monthly cap
//   - ErrBusy if the account row lock could not be acquired in time
func (s *AwardService) Award(ctx context.Context, actorID string, req *model.AwardRequest) (model.Medals, error) {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || req.Amount == nil || *req.Amount <= 0 {
		return model.Medals{}, ErrInvalidRequest
	}
	medalType := model.MedalType(req.MedalType)
	if !medalType.Valid() {
		return model.Medals{}, ErrInvalidRequest
	}
	amount := *req.Amount

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Medals{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return model.Medals{}, err
	}

	// 1. Lock the account row; all quota math happens under this lock so two
	// concurrent awards cannot both pass the check.
	if _, err := s.ledgerRepo.GetBalanceForUpdate(ctx, tx, req.StudentID); err != nil {
		return model.Medals{}, err
	}

	// 2. Re-check the quota inside the transaction.
	from, to := monthBounds(s.now())
	used, err := s.logRepo.SumForPeriod(ctx, tx, req.StudentID, medalType, from, to)
	if err != nil {
		return model.Medals{}, err
	}
	if used+amount > s.limits.Limit(medalType) {
		return model.Medals{}, ErrQuotaExceeded
	}

	// 3. Credit the balance.
	totals, err := s.ledgerRepo.AdjustBalance(ctx, tx, req.StudentID, model.Delta(medalType, amount))
	if err != nil {
		return model.Medals{}, err
	}

	// 4. Append the audit entry.
	entry := &model.AwardLogEntry{
		ID:        uuid.NewString(),
		StudentID: req.StudentID,
		MedalType: medalType,
		Amount:    amount,
		Reason:    req.Reason,
		AwardedAt: s.now(),
	}
	if req.RelatedID != "" {
		relatedID := req.RelatedID
		entry.RelatedID = &relatedID
	}
	if err := s.logRepo.Insert(ctx, tx, entry); err != nil {
		return model.Medals{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Medals{}, fmt.Errorf("commit award: %w", err)
	}

	s.notifier.MedalAwarded(ctx, notify.MedalAwardedEvent{
		StudentID: req.StudentID,
		Delta:     model.Delta(medalType, amount),
		Totals:    totals,
		AwardedBy: actorID,
		Reason:    req.Reason,
	})
	return totals, nil
}

// Revoke reverses a prior award: debits the balance and deletes the matching
// award-log entries in one transaction. If the debit would push the balance
// negative, nothing happens, including the log deletion.
// Returns the new three-denomination balance.
// Returns:
//   - ErrAccountNotFound if the student has no medal account
//   - ErrInsufficientFunds if the balance cannot cover the debit
//   - ErrBusy if the account row lock could not be acquired in time
func (s *AwardService) Revoke(ctx context.Context, actorID string, req *model.RevokeRequest) (model.Medals, error) {
	if req == nil || req.Amount == nil || *req.Amount <= 0 {
		return model.Medals{}, ErrInvalidRequest
	}
	medalType := model.MedalType(req.MedalType)
	if !medalType.Valid() {
		return model.Medals{}, ErrInvalidRequest
	}
	amount := *req.Amount

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return model.Medals{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := database.SetLockTimeout(ctx, tx, s.lockTimeout); err != nil {
		return model.Medals{}, err
	}

	// 1. Debit under the account row lock.
	totals, err := s.ledgerRepo.AdjustBalance(ctx, tx, req.StudentID, model.Delta(medalType, -amount))
	if err != nil {
		return model.Medals{}, err
	}

	// 2. Delete the matching audit entries in the same transaction.
	var relatedID *string
	if req.RelatedID != "" {
		relatedID = &req.RelatedID
	}
	if _, err := s.logRepo.DeleteMatching(ctx, tx, req.StudentID, medalType, req.Reason, relatedID); err != nil {
		return model.Medals{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return model.Medals{}, fmt.Errorf("commit revoke: %w", err)
	}

	s.notifier.MedalRevoked(ctx, notify.MedalAwardedEvent{
		StudentID: req.StudentID,
		Delta:     model.Delta(medalType, -amount),
		Totals:    totals,
		AwardedBy: actorID,
		Reason:    req.Reason,
	})
	return totals, nil
}

// Balance is the read-only balance accessor for display purposes.
func (s *AwardService) Balance(ctx context.Context, studentID string) (model.Medals, error) {
	return s.ledgerRepo.GetBalance(ctx, studentID)
}

// MonthUsage reports the current calendar month's award totals against the
// configured limits for all three denominations.
func (s *AwardService) MonthUsage(ctx context.Context, studentID string) (*model.QuotaResponse, error) {
	// Confirm the account exists so missing students 404 instead of reading
	// as all-zero usage.
	if _, err := s.ledgerRepo.GetBalance(ctx, studentID); err != nil {
		return nil, err
	}

	from, to := monthBounds(s.now())
	resp := &model.QuotaResponse{
		StudentID: studentID,
		Month:     from.Format("2006-01"),
	}
	for _, medalType := range []model.MedalType{model.MedalGold, model.MedalSilver, model.MedalBronze} {
		used, err := s.logRepo.CurrentTotal(ctx, studentID, medalType, from, to)
		if err != nil {
			return nil, err
		}
		usage := model.QuotaUsage{Used: used, Limit: s.limits.Limit(medalType)}
		switch medalType {
		case model.MedalGold:
			resp.Gold = usage
		case model.MedalSilver:
			resp.Silver = usage
		case model.MedalBronze:
			resp.Bronze = usage
		}
	}
	return resp, nil
}
