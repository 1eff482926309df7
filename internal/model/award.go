package model

import "time"

// AwardLogEntry is one row of the append-only award log. The log is the
// audit trail behind the mutable balance: monthly quota usage is recomputed
// from it, and revocation deletes matching rows.
type AwardLogEntry struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	MedalType MedalType `json:"medal_type"`
	Amount    int       `json:"amount"`
	Reason    string    `json:"reason"`
	RelatedID *string   `json:"related_id,omitempty"`
	AwardedAt time.Time `json:"awarded_at"`
}

// AwardRequest is the DTO for POST /api/medals/award.
type AwardRequest struct {
	StudentID string `json:"student_id" validate:"required,notblank,max=255"`
	MedalType string `json:"medal_type" validate:"required,oneof=gold silver bronze"`
	Amount    *int   `json:"amount" validate:"required,gte=1"`
	Reason    string `json:"reason" validate:"required,notblank,max=255"`
	RelatedID string `json:"related_id" validate:"omitempty,max=255"`
}

// RevokeRequest is the DTO for POST /api/medals/revoke. Matching log entries
// are selected by student + type + reason (+ related_id when supplied).
type RevokeRequest struct {
	StudentID string `json:"student_id" validate:"required,notblank,max=255"`
	MedalType string `json:"medal_type" validate:"required,oneof=gold silver bronze"`
	Amount    *int   `json:"amount" validate:"required,gte=1"`
	Reason    string `json:"reason" validate:"required,notblank,max=255"`
	RelatedID string `json:"related_id" validate:"omitempty,max=255"`
}

// QuotaUsage is one denomination's used-vs-limit pair for the current month.
type QuotaUsage struct {
	Used  int `json:"used"`
	Limit int `json:"limit"`
}

// QuotaResponse is the API response DTO for GET /api/students/:id/quota.
type QuotaResponse struct {
	StudentID string     `json:"student_id"`
	Month     string     `json:"month"` // YYYY-MM, server-local
	Gold      QuotaUsage `json:"gold"`
	Silver    QuotaUsage `json:"silver"`
	Bronze    QuotaUsage `json:"bronze"`
}
