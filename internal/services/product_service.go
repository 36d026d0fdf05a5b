package services

import (
	"context"
	"fmt"

	"catalog/internal/events"
	"catalog/internal/models"
	"catalog/internal/repositories"

	"github.com/gosimple/slug"
	"github.com/skip2/go-qrcode"
)

const qrCodeSize = 256

// ProductPatch carries the fields to change; nil fields are left as is.
type ProductPatch struct {
	Name        *string
	Ingredients *string
}

// QRCode is a PNG linking to a product page.
type QRCode struct {
	PNG      []byte
	Filename string
	URL      string
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher events.Publisher
	baseURL   string
}

// NewProductService creates a new ProductService. baseURL prefixes product
// page links embedded in QR codes.
func NewProductService(repo repositories.ProductRepository, publisher events.Publisher, baseURL string) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
		baseURL:   baseURL,
	}
}

// List retrieves all products, newest first.
func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	return s.repo.GetAll(ctx)
}

// Get retrieves a single product with its owner summary.
func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// Latest retrieves the newest product created by ownerID.
func (s *ProductService) Latest(ctx context.Context, ownerID string) (*models.Product, error) {
	return s.repo.GetLatestByOwner(ctx, ownerID)
}

// Create stores a product owned by ownerID.
func (s *ProductService) Create(ctx context.Context, ownerID, name, ingredients string) (*models.Product, error) {
	product := &models.Product{
		Name:        name,
		Ingredients: ingredients,
		CreatedByID: ownerID,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, events.New(events.ProductCreated, product.ID, ownerID))
	return product, nil
}

// Update applies patch to the product with id.
func (s *ProductService) Update(ctx context.Context, actorID, id string, patch ProductPatch) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Ingredients != nil {
		product.Ingredients = *patch.Ingredients
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	publish(ctx, s.publisher, events.New(events.ProductUpdated, id, actorID))
	return s.repo.GetByID(ctx, id)
}

// Delete deletes a product by its ID.
func (s *ProductService) Delete(ctx context.Context, actorID, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	publish(ctx, s.publisher, events.New(events.ProductDeleted, id, actorID))
	return nil
}

// URL returns the public page address of the product with id.
func (s *ProductService) URL(id string) string {
	return s.baseURL + "/product/" + id
}

// QRCode renders a QR code linking to the page of the product with id.
func (s *ProductService) QRCode(ctx context.Context, id string) (*QRCode, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.RenderQRCode(product)
}

// RenderQRCode renders a QR code linking to the page of product.
func (s *ProductService) RenderQRCode(product *models.Product) (*QRCode, error) {
	url := s.URL(product.ID)
	png, err := qrcode.Encode(url, qrcode.High, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}

	name := slug.Make(product.Name)
	if name == "" {
		name = "product"
	}
	return &QRCode{PNG: png, Filename: name + "-qr.png", URL: url}, nil
}
