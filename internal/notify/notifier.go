// Package notify defines the event boundary between the medal engines and
// the CRM's client fan-out. Events are emitted fire-and-forget after a
// successful commit; a delivery failure must never roll back the underlying
// transaction, so none of the methods return an error.
package notify

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
)

// MedalAwardedEvent is emitted after an award or revoke commits.
type MedalAwardedEvent struct {
	StudentID string       `json:"student_id"`
	Delta     model.Medals `json:"delta"`
	Totals    model.Medals `json:"totals"`
	AwardedBy string       `json:"awarded_by"`
	Reason    string       `json:"reason"`
}

// PurchaseEvent is emitted when a purchase is created or settled.
type PurchaseEvent struct {
	PurchaseID string               `json:"purchase_id"`
	StudentID  string               `json:"student_id"`
	Status     model.PurchaseStatus `json:"status"`
}

// Notifier receives engine events for delivery to connected clients.
type Notifier interface {
	MedalAwarded(ctx context.Context, e MedalAwardedEvent)
	MedalRevoked(ctx context.Context, e MedalAwardedEvent)
	PurchaseCreated(ctx context.Context, e PurchaseEvent)
	PurchaseUpdated(ctx context.Context, e PurchaseEvent)
}

// LogNotifier writes events to the structured log. It stands in for the
// WebSocket hub in deployments where the fan-out runs in a separate process.
type LogNotifier struct{}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) MedalAwarded(ctx context.Context, e MedalAwardedEvent) {
	log.Info().
		Str("event", "medal_awarded").
		Str("student_id", e.StudentID).
		Str("awarded_by", e.AwardedBy).
		Str("reason", e.Reason).
		Interface("delta", e.Delta).
		Interface("totals", e.Totals).
		Msg("medal awarded")
}

func (n *LogNotifier) MedalRevoked(ctx context.Context, e MedalAwardedEvent) {
	log.Info().
		Str("event", "medal_revoked").
		Str("student_id", e.StudentID).
		Str("awarded_by", e.AwardedBy).
		Str("reason", e.Reason).
		Interface("delta", e.Delta).
		Interface("totals", e.Totals).
		Msg("medal revoked")
}

func (n *LogNotifier) PurchaseCreated(ctx context.Context, e PurchaseEvent) {
	log.Info().
		Str("event", "purchase_created").
		Str("purchase_id", e.PurchaseID).
		Str("student_id", e.StudentID).
		Str("status", string(e.Status)).
		Msg("purchase created")
}

func (n *LogNotifier) PurchaseUpdated(ctx context.Context, e PurchaseEvent) {
	log.Info().
		Str("event", "purchase_updated").
		Str("purchase_id", e.PurchaseID).
		Str("student_id", e.StudentID).
		Str("status", string(e.Status)).
		Msg("purchase updated")
}
