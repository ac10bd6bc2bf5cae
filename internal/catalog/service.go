// Package catalog manages products and their variations. It is plain
// CRUD around the store; the interesting access rules live in the
// authorization middleware that gates its mutating endpoints.
package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/shoplight/shoplight/internal/apperr"
)

// Service manages the product catalog.
type Service struct {
	repo Repository
}

// NewService creates a catalog service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is the input to CreateProduct.
type CreateInput struct {
	Title       string
	Description string
	Brand       string
	CategoryID  string
}

// CreateProduct inserts a new, inactive product.
func (s *Service) CreateProduct(ctx context.Context, in CreateInput) (Product, error) {
	return s.repo.Create(ctx, Product{
		Title:       in.Title,
		Description: in.Description,
		Brand:       in.Brand,
		CategoryID:  in.CategoryID,
		Active:      false,
		Attributes:  []Attribute{},
		Variations:  []Variation{},
		CreatedAt:   time.Now().UTC(),
	})
}

// ListProducts returns the projected product summaries.
func (s *Service) ListProducts(ctx context.Context) ([]Summary, error) {
	return s.repo.List(ctx)
}

// GetProduct returns one product by id.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if errors.Is(err, ErrNoProduct) {
		return Product{}, apperr.NotFound("product not found")
	}
	return p, err
}

// UpdateProduct applies a partial update.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd Update) error {
	err := s.repo.Update(ctx, id, upd)
	if errors.Is(err, ErrNoProduct) {
		return apperr.NotFound("product not found")
	}
	return err
}

// DeleteProduct removes one product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, ErrNoProduct) {
		return apperr.NotFound("product not found")
	}
	return err
}

// DeleteProducts removes a batch of products and reports how many went.
func (s *Service) DeleteProducts(ctx context.Context, ids []string) (int64, error) {
	return s.repo.DeleteMany(ctx, ids)
}

// ReplaceVariations expands the attribute set into every combination of
// options and stores attributes plus variations on the product.
func (s *Service) ReplaceVariations(ctx context.Context, productID string, attrs []Attribute) (Product, error) {
	for _, attr := range attrs {
		if attr.Type == "" || len(attr.Options) == 0 {
			return Product{}, apperr.InvalidInput("every attribute needs a type and at least one option")
		}
	}
	p, err := s.repo.SetVariations(ctx, productID, attrs, GenerateVariations(attrs))
	if errors.Is(err, ErrNoProduct) {
		return Product{}, apperr.NotFound("product not found")
	}
	return p, err
}

// UpdateVariation patches the purchasable fields of a single variation.
func (s *Service) UpdateVariation(ctx context.Context, productID, variationID string, upd VariationUpdate) error {
	if upd.StockQuantity != nil && *upd.StockQuantity < 0 {
		return apperr.InvalidInput("provide a valid stock quantity")
	}
	err := s.repo.UpdateVariation(ctx, productID, variationID, upd)
	if errors.Is(err, ErrNoVariation) {
		return apperr.NotFound("variation not found")
	}
	return err
}

// ClearVariations drops all attributes and variations from the product.
func (s *Service) ClearVariations(ctx context.Context, productID string) error {
	_, err := s.repo.SetVariations(ctx, productID, nil, nil)
	if errors.Is(err, ErrNoProduct) {
		return apperr.NotFound("product not found")
	}
	return err
}

// GenerateVariations builds the cartesian product of the attribute
// options. Each variation maps attribute type to the chosen option name.
func GenerateVariations(attrs []Attribute) []Variation {
	variations := []Variation{}
	if len(attrs) == 0 {
		return variations
	}

	current := make(map[string]string, len(attrs))
	var expand func(index int)
	expand = func(index int) {
		if index == len(attrs) {
			selections := make(map[string]string, len(current))
			for k, v := range current {
				selections[k] = v
			}
			variations = append(variations, Variation{ID: uuid.NewString(), Selections: selections})
			return
		}
		for _, option := range attrs[index].Options {
			current[attrs[index].Type] = option.Name
			expand(index + 1)
		}
	}
	expand(0)
	return variations
}
