package handlers

import (
	"fmt"
	"time"

	"catalog/internal/auth"
	"catalog/internal/middleware"
	"catalog/internal/models"
	"catalog/internal/sanitize"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

type createProductRequest struct {
	Name        string `json:"name" validate:"required,min=1"`
	Ingredients string `json:"ingredients" validate:"required,min=1"`
}

type updateProductRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1"`
	Ingredients *string `json:"ingredients" validate:"omitnil,min=1"`
}

type ownerResponse struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

type productResponse struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Ingredients string         `json:"ingredients"`
	CreatedByID string         `json:"created_by_id"`
	CreatedBy   *ownerResponse `json:"created_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// newProductResponse sanitizes ingredients on the way out.
func newProductResponse(p *models.Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Ingredients: sanitize.Ingredients(p.Ingredients),
		CreatedByID: p.CreatedByID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.CreatedBy != nil {
		resp.CreatedBy = &ownerResponse{ID: p.CreatedBy.ID, Name: p.CreatedBy.Name, Image: p.CreatedBy.Image}
	}
	return resp
}

// Procedures lists the product operations. All of them need a session.
func (h *ProductHandler) Procedures() []Procedure {
	return []Procedure{
		{Method: fiber.MethodGet, Path: "/products", Tier: auth.TierAuthenticated, Handle: h.HandleGetProducts},
		{Method: fiber.MethodGet, Path: "/products/latest", Tier: auth.TierAuthenticated, Handle: h.HandleGetLatestProduct},
		{Method: fiber.MethodGet, Path: "/products/:id", Tier: auth.TierAuthenticated, Handle: h.HandleGetProductByID},
		{Method: fiber.MethodGet, Path: "/products/:id/qr", Tier: auth.TierAuthenticated, Handle: h.HandleGetProductQRCode},
		{Method: fiber.MethodPost, Path: "/products", Tier: auth.TierAuthenticated, Handle: h.HandleCreateProduct},
		{Method: fiber.MethodPut, Path: "/products/:id", Tier: auth.TierAuthenticated, Handle: h.HandleUpdateProduct},
		{Method: fiber.MethodDelete, Path: "/products/:id", Tier: auth.TierAuthenticated, Handle: h.HandleDeleteProduct},
	}
}

// RegisterRoutes registers the product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	Mount(router, h.Procedures())
}

// HandleGetProducts retrieves all products, newest first.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.UserContext())
	if err != nil {
		return err
	}
	resp := make([]productResponse, 0, len(products))
	for i := range products {
		resp = append(resp, newProductResponse(&products[i]))
	}
	return c.JSON(resp)
}

// HandleGetLatestProduct retrieves the caller's newest product.
func (h *ProductHandler) HandleGetLatestProduct(c *fiber.Ctx) error {
	product, err := h.service.Latest(c.UserContext(), middleware.PrincipalFrom(c).UserID)
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleGetProductByID retrieves a single product with its owner.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleGetProductQRCode returns a PNG QR code linking to the product page.
func (h *ProductHandler) HandleGetProductQRCode(c *fiber.Ctx) error {
	qr, err := h.service.QRCode(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, qr.Filename))
	return c.Send(qr.PNG)
}

// HandleCreateProduct creates a product owned by the caller.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var req createProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.service.Create(c.UserContext(), middleware.PrincipalFrom(c).UserID, req.Name, req.Ingredients)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(newProductResponse(product))
}

// HandleUpdateProduct changes the name and/or ingredients of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var req updateProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	product, err := h.service.Update(c.UserContext(), middleware.PrincipalFrom(c).UserID, c.Params("id"),
		services.ProductPatch{Name: req.Name, Ingredients: req.Ingredients})
	if err != nil {
		return err
	}
	return c.JSON(newProductResponse(product))
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), middleware.PrincipalFrom(c).UserID, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
