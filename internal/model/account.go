package model

// BalanceResponse is the API response DTO for GET /api/students/:id/balance.
// Accounts themselves have no richer shape here: the balance columns are the
// whole of what this service owns about a student.
type BalanceResponse struct {
	StudentID string `json:"student_id"`
	Balance   Medals `json:"balance"`
}
