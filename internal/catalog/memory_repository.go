package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu       sync.RWMutex
	products map[string]Product
}

// NewMemoryRepository builds an in-memory catalog store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{products: make(map[string]Product)}
}

func (r *memoryRepository) Create(_ context.Context, p Product) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.NewString()
	r.products[p.ID] = p
	return p, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	summaries := make([]Summary, 0, len(r.products))
	for _, p := range r.products {
		summaries = append(summaries, Summary{ID: p.ID, Title: p.Title, Brand: p.Brand, CategoryID: p.CategoryID})
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].ID < summaries[j].ID })
	return summaries, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNoProduct
	}
	return p, nil
}

func (r *memoryRepository) Update(_ context.Context, id string, upd Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return ErrNoProduct
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Brand != nil {
		p.Brand = *upd.Brand
	}
	if upd.CategoryID != nil {
		p.CategoryID = *upd.CategoryID
	}
	if upd.RegularPrice != nil {
		p.RegularPrice = *upd.RegularPrice
	}
	if upd.SalePrice != nil {
		p.SalePrice = *upd.SalePrice
	}
	if upd.StockQuantity != nil {
		p.StockQuantity = *upd.StockQuantity
	}
	if upd.Active != nil {
		p.Active = *upd.Active
	}
	r.products[id] = p
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ErrNoProduct
	}
	delete(r.products, id)
	return nil
}

func (r *memoryRepository) DeleteMany(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted int64
	for _, id := range ids {
		if _, ok := r.products[id]; ok {
			delete(r.products, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepository) UpdateVariation(_ context.Context, productID, variationID string, upd VariationUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return ErrNoVariation
	}
	for i, v := range p.Variations {
		if v.ID != variationID {
			continue
		}
		if upd.RegularPrice != nil {
			v.RegularPrice = *upd.RegularPrice
		}
		if upd.SalePrice != nil {
			v.SalePrice = *upd.SalePrice
		}
		if upd.StockQuantity != nil {
			v.StockQuantity = *upd.StockQuantity
		}
		if upd.Available != nil {
			v.Available = *upd.Available
		}
		p.Variations[i] = v
		r.products[productID] = p
		return nil
	}
	return ErrNoVariation
}

func (r *memoryRepository) SetVariations(_ context.Context, id string, attrs []Attribute, vars []Variation) (Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNoProduct
	}
	p.Attributes = attrs
	p.Variations = vars
	r.products[id] = p
	return p, nil
}
