package model

import "time"

// Product is a marketplace item priced in medals.
type Product struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Cost      Medals    `json:"cost"`
	Quantity  int       `json:"quantity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"-"`
}

// CreateProductRequest is the DTO for POST /api/products.
type CreateProductRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Cost     Medals `json:"cost"`
	Quantity *int   `json:"quantity" validate:"required,gte=0"`
	IsActive *bool  `json:"is_active"`
}

// UpdateProductRequest is the DTO for PATCH /api/products/:id. Nil fields
// are left unchanged.
type UpdateProductRequest struct {
	Name     *string `json:"name" validate:"omitempty,notblank,max=255"`
	Cost     *Medals `json:"cost"`
	Quantity *int    `json:"quantity" validate:"omitempty,gte=0"`
	IsActive *bool   `json:"is_active"`
}
