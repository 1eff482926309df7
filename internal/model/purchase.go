package model

import "time"

// PurchaseStatus is the settlement state of a purchase. A purchase starts
// pending and transitions exactly once to approved or rejected.
type PurchaseStatus string

const (
	PurchasePending  PurchaseStatus = "pending"
	PurchaseApproved PurchaseStatus = "approved"
	PurchaseRejected PurchaseStatus = "rejected"
)

// Purchase is one marketplace purchase. MedalsPaid is the snapshot of the
// product cost at creation time; refunds use it, never the live price.
type Purchase struct {
	ID              string         `json:"id"`
	StudentID       string         `json:"student_id"`
	ProductID       string         `json:"product_id"`
	MedalsPaid      Medals         `json:"medals_paid"`
	Status          PurchaseStatus `json:"status"`
	ApprovedByID    *string        `json:"approved_by_id,omitempty"`
	ApprovedAt      *time.Time     `json:"approved_at,omitempty"`
	RejectionReason *string        `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
}

// CreatePurchaseRequest is the DTO for POST /api/purchases. StudentID is
// only honored for admin callers; students always purchase for themselves.
type CreatePurchaseRequest struct {
	ProductID string `json:"product_id" validate:"required,notblank,max=255"`
	StudentID string `json:"student_id" validate:"omitempty,max=255"`
}

// RejectPurchaseRequest is the DTO for POST /api/purchases/:id/reject.
type RejectPurchaseRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
