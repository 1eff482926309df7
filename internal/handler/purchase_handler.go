package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/middleware"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
)

// SettlementServiceInterface defines the interface for settlement-engine
// business logic.
type SettlementServiceInterface interface {
	CreatePurchase(ctx context.Context, studentID, productID string) (*model.Purchase, error)
	Approve(ctx context.Context, adminID, purchaseID string) (*model.Purchase, error)
	Reject(ctx context.Context, adminID, purchaseID string, reason string) (*model.Purchase, error)
	ListPurchasesByStatus(ctx context.Context, status model.PurchaseStatus) ([]model.Purchase, error)
	ListStudentPurchases(ctx context.Context, studentID string) ([]model.Purchase, error)
}

// PurchaseHandler handles HTTP requests for purchase operations.
type PurchaseHandler struct {
	service   SettlementServiceInterface
	validator *validator.Validate
}

// NewPurchaseHandler creates a new PurchaseHandler with the given service and validator.
func NewPurchaseHandler(svc SettlementServiceInterface, v *validator.Validate) *PurchaseHandler {
	return &PurchaseHandler{service: svc, validator: v}
}

// Create handles POST /api/purchases requests. This is the single purchase
// entry point: students always buy for themselves, admins may buy on behalf
// of a student by supplying student_id.
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var req model.CreatePurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	studentID := req.StudentID
	if middleware.Role(c) != middleware.RoleAdmin {
		studentID = middleware.AccountID(c)
	}
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: student_id is required"})
	}

	purchase, err := h.service.CreatePurchase(c.Context(), studentID, req.ProductID)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("student_id", studentID).
				Str("product_id", req.ProductID).
				Msg("failed to create purchase")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("purchase_id", purchase.ID).
		Str("student_id", studentID).
		Str("product_id", req.ProductID).
		Msg("purchase created")

	return c.Status(fiber.StatusCreated).JSON(purchase)
}

// List handles GET /api/purchases requests. Admins see purchases by status
// (default pending); other callers see their own history.
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	if middleware.Role(c) == middleware.RoleAdmin {
		status := model.PurchaseStatus(c.Query("status", string(model.PurchasePending)))
		switch status {
		case model.PurchasePending, model.PurchaseApproved, model.PurchaseRejected:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: unknown status"})
		}

		purchases, err := h.service.ListPurchasesByStatus(c.Context(), status)
		if err != nil {
			log.Error().Err(err).Str("status", string(status)).Msg("failed to list purchases")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
		}
		return c.JSON(purchases)
	}

	purchases, err := h.service.ListStudentPurchases(c.Context(), middleware.AccountID(c))
	if err != nil {
		log.Error().Err(err).Msg("failed to list student purchases")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(purchases)
}

// Approve handles POST /api/purchases/:id/approve requests.
func (h *PurchaseHandler) Approve(c *fiber.Ctx) error {
	purchaseID := c.Params("id")
	if purchaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	adminID := middleware.AccountID(c)
	purchase, err := h.service.Approve(c.Context(), adminID, purchaseID)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("purchase_id", purchaseID).
				Msg("failed to approve purchase")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("purchase_id", purchaseID).
		Str("approved_by", adminID).
		Msg("purchase approved")

	return c.JSON(purchase)
}

// Reject handles POST /api/purchases/:id/reject requests. The body is
// optional and may carry a rejection reason.
func (h *PurchaseHandler) Reject(c *fiber.Ctx) error {
	purchaseID := c.Params("id")
	if purchaseID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	var req model.RejectPurchaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
		}
		if err := h.validator.Struct(req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
		}
	}

	adminID := middleware.AccountID(c)
	purchase, err := h.service.Reject(c.Context(), adminID, purchaseID, req.Reason)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("purchase_id", purchaseID).
				Msg("failed to reject purchase")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("purchase_id", purchaseID).
		Str("rejected_by", adminID).
		Msg("purchase rejected")

	return c.JSON(purchase)
}
