package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/errs"
)

// Repo is the in-memory product catalog. A SQL-backed implementation can
// replace it behind the same method set; durability is out of scope here.
type Repo struct {
	mu    sync.RWMutex
	byID  map[string]*Product
	bySKU map[string]string // SKU -> id
	order []string          // insertion order for stable listings
}

func NewRepo() *Repo {
	return &Repo{
		byID:  make(map[string]*Product),
		bySKU: make(map[string]string),
	}
}

// Create validates and stores a new product. Zero YieldPct defaults to 1
// (no production loss); out-of-range values are rejected here so the
// calculator never sees them.
func (r *Repo) Create(_ context.Context, p Product) (*Product, error) {
	if p.Name == "" || p.SKU == "" {
		return nil, errs.Invalidf("product name and SKU are required")
	}
	if p.YieldPct == 0 {
		p.YieldPct = 1
	}
	if p.YieldPct < 0 || p.YieldPct > 1 {
		return nil, errs.Invalidf("yield must be in (0,1], got %v", p.YieldPct)
	}
	if p.StockGrams < 0 || p.MinStockGrams < 0 || p.WeightPerPiece < 0 {
		return nil, errs.Invalidf("gram fields must be >= 0")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.Active = true

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.bySKU[p.SKU]; dup {
		return nil, errs.ErrAlreadyExists
	}
	if _, dup := r.byID[p.ID]; dup {
		return nil, errs.ErrAlreadyExists
	}
	stored := p
	r.byID[p.ID] = &stored
	r.bySKU[p.SKU] = p.ID
	r.order = append(r.order, p.ID)

	out := stored
	return &out, nil
}

func (r *Repo) GetByID(_ context.Context, id string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("product %s", id)
	}
	out := *p
	return &out, nil
}

func (r *Repo) GetBySKU(_ context.Context, sku string) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySKU[sku]
	if !ok {
		return nil, errs.NotFoundf("product sku %s", sku)
	}
	out := *r.byID[id]
	return &out, nil
}

// List returns products in insertion order. Zero-valued filters match all.
func (r *Repo) List(_ context.Context, onlyActive bool, kind Kind, metal Metal) []Product {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Product
	for _, id := range r.order {
		p := r.byID[id]
		if onlyActive && !p.Active {
			continue
		}
		if kind != "" && p.Kind != kind {
			continue
		}
		if metal != "" && p.Metal != metal {
			continue
		}
		out = append(out, *p)
	}
	return out
}

// SetActive is the soft delete: products are never physically removed.
func (r *Repo) SetActive(_ context.Context, id string, active bool) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("product %s", id)
	}
	p.Active = active
	out := *p
	return &out, nil
}

// ApplyStockDelta adds deltaGrams to the product's stock and returns the
// updated product. The inventory ledger is the only intended caller; going
// through it keeps a movement record for every change. No lower bound:
// callers may drive stock negative, matching the permissive stock model.
func (r *Repo) ApplyStockDelta(_ context.Context, id string, deltaGrams float64) (*Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("product %s", id)
	}
	p.StockGrams += deltaGrams
	out := *p
	return &out, nil
}
