package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/middleware"
	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
)

// AwardServiceInterface defines the interface for award-engine business logic.
type AwardServiceInterface interface {
	Award(ctx context.Context, actorID string, req *model.AwardRequest) (model.Medals, error)
	Revoke(ctx context.Context, actorID string, req *model.RevokeRequest) (model.Medals, error)
	Balance(ctx context.Context, studentID string) (model.Medals, error)
	MonthUsage(ctx context.Context, studentID string) (*model.QuotaResponse, error)
}

// AwardHandler handles HTTP requests for award-engine operations.
type AwardHandler struct {
	service   AwardServiceInterface
	validator *validator.Validate
}

// NewAwardHandler creates a new AwardHandler with the given service and validator.
func NewAwardHandler(svc AwardServiceInterface, v *validator.Validate) *AwardHandler {
	return &AwardHandler{service: svc, validator: v}
}

// Award handles POST /api/medals/award requests.
func (h *AwardHandler) Award(c *fiber.Ctx) error {
	var req model.AwardRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	actorID := middleware.AccountID(c)
	totals, err := h.service.Award(c.Context(), actorID, &req)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("student_id", req.StudentID).
				Str("medal_type", req.MedalType).
				Msg("failed to award medals")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("student_id", req.StudentID).
		Str("medal_type", req.MedalType).
		Int("amount", *req.Amount).
		Str("awarded_by", actorID).
		Msg("medals awarded")

	return c.JSON(model.BalanceResponse{StudentID: req.StudentID, Balance: totals})
}

// Revoke handles POST /api/medals/revoke requests.
func (h *AwardHandler) Revoke(c *fiber.Ctx) error {
	var req model.RevokeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	actorID := middleware.AccountID(c)
	totals, err := h.service.Revoke(c.Context(), actorID, &req)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().
				Err(err).
				Str("request_id", c.GetRespHeader("X-Request-ID")).
				Str("student_id", req.StudentID).
				Str("medal_type", req.MedalType).
				Msg("failed to revoke medals")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	log.Info().
		Str("request_id", c.GetRespHeader("X-Request-ID")).
		Str("student_id", req.StudentID).
		Str("medal_type", req.MedalType).
		Int("amount", *req.Amount).
		Str("revoked_by", actorID).
		Msg("medals revoked")

	return c.JSON(model.BalanceResponse{StudentID: req.StudentID, Balance: totals})
}

// Balance handles GET /api/students/:id/balance requests. Students may only
// read their own balance; staff may read any.
func (h *AwardHandler) Balance(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}
	if middleware.Role(c) == middleware.RoleStudent && studentID != middleware.AccountID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	}

	balance, err := h.service.Balance(c.Context(), studentID)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("student_id", studentID).Msg("failed to get balance")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(model.BalanceResponse{StudentID: studentID, Balance: balance})
}

// Quota handles GET /api/students/:id/quota requests.
func (h *AwardHandler) Quota(c *fiber.Ctx) error {
	studentID := c.Params("id")
	if studentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	usage, err := h.service.MonthUsage(c.Context(), studentID)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("student_id", studentID).Msg("failed to get quota usage")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(usage)
}
