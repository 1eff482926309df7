package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/Ozoda-dev-dat/teens-it-academy-medals/internal/model"
)

// ProductServiceInterface defines the interface for product catalog logic.
type ProductServiceInterface interface {
	CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error)
	ListProducts(ctx context.Context) ([]model.Product, error)
}

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service   ProductServiceInterface
	validator *validator.Validate
}

// NewProductHandler creates a new ProductHandler with the given service and validator.
func NewProductHandler(svc ProductServiceInterface, v *validator.Validate) *ProductHandler {
	return &ProductHandler{service: svc, validator: v}
}

// Create handles POST /api/products requests.
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var req model.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	product, err := h.service.CreateProduct(c.Context(), &req)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("name", req.Name).Msg("failed to create product")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

// Update handles PATCH /api/products/:id requests.
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: id is required"})
	}

	var req model.UpdateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	product, err := h.service.UpdateProduct(c.Context(), id, &req)
	if err != nil {
		status, msg := mapServiceError(err)
		if status == fiber.StatusInternalServerError {
			log.Error().Err(err).Str("product_id", id).Msg("failed to update product")
		}
		return c.Status(status).JSON(fiber.Map{"error": msg})
	}

	return c.JSON(product)
}

// List handles GET /api/products requests, returning the active catalog.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list products")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.JSON(products)
}
