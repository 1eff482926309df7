package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/pkg/database"
)

// AwardLogPoolInterface defines the database operations needed by
// AwardLogRepository outside a transaction.
type AwardLogPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AwardLogRepository provides data access for the append-only award log.
// Inserts and deletes only happen inside award-engine transactions; the
// month-total read has a pool variant for the quota display endpoint.
type AwardLogRepository struct {
	pool AwardLogPoolInterface
}

// NewAwardLogRepository creates a new AwardLogRepository with the given pool.
func NewAwardLogRepository(pool *pgxpool.Pool) *AwardLogRepository {
	return &AwardLogRepository{pool: pool}
}

// NewAwardLogRepositoryWithPool creates a new AwardLogRepository with a custom
// pool interface. This is primarily used for testing.
func NewAwardLogRepositoryWithPool(pool AwardLogPoolInterface) *AwardLogRepository {
	return &AwardLogRepository{pool: pool}
}

const sumForPeriodQuery = `SELECT COALESCE(SUM(amount), 0) FROM award_log
WHERE student_id = $1 AND medal_type = $2 AND awarded_at >= $3 AND awarded_at < $4`

// Insert appends an award-log entry within a transaction.
func (r *AwardLogRepository) Insert(ctx context.Context, tx database.TxQuerier, entry *model.AwardLogEntry) error {
	query := `INSERT INTO award_log (id, student_id, medal_type, amount, reason, related_id, awarded_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		entry.ID, entry.StudentID, string(entry.MedalType), entry.Amount,
		entry.Reason, entry.RelatedID, entry.AwardedAt)
	if err != nil {
		return fmt.Errorf("insert award log entry: %w", err)
	}
	return nil
}

// SumForPeriod returns the total amount awarded to a student for one medal
// type in [from, to). Called inside the award transaction so the quota check
// and the award serialize on the account row lock.
func (r *AwardLogRepository) SumForPeriod(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, from, to time.Time) (int, error) {
	var total int
	err := tx.QueryRow(ctx, sumForPeriodQuery, studentID, string(medalType), from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum award log for %s/%s: %w", studentID, medalType, err)
	}
	return total, nil
}

// CurrentTotal is the read-side variant of SumForPeriod used by the quota
// display endpoint; it runs on the pool, outside any transaction.
func (r *AwardLogRepository) CurrentTotal(ctx context.Context, studentID string, medalType model.MedalType, from, to time.Time) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, sumForPeriodQuery, studentID, string(medalType), from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("current award total for %s/%s: %w", studentID, medalType, err)
	}
	return total, nil
}

// DeleteMatching removes award-log entries matching student + type + reason,
// narrowed by relatedID when supplied. This is the only deletion path into
// the log; it runs inside the revoke transaction. Returns the number of rows
// removed.
func (r *AwardLogRepository) DeleteMatching(ctx context.Context, tx database.TxQuerier, studentID string, medalType model.MedalType, reason string, relatedID *string) (int64, error) {
	query := `DELETE FROM award_log WHERE student_id = $1 AND medal_type = $2 AND reason = $3`
	args := []any{studentID, string(medalType), reason}
	if relatedID != nil {
		query += ` AND related_id = $4`
		args = append(args, *relatedID)
	}

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete award log entries for %s/%s: %w", studentID, medalType, err)
	}
	return tag.RowsAffected(), nil
}
