package recipes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/errs"
)

// Repo is the in-memory recipe catalog. All reads return deep copies so
// template steps can never be mutated through an order.
type Repo struct {
	mu        sync.RWMutex
	byID      map[string]*Recipe
	byProduct map[string]string // productID -> recipe id
	order     []string
}

func NewRepo() *Repo {
	return &Repo{
		byID:      make(map[string]*Recipe),
		byProduct: make(map[string]string),
	}
}

func (r *Repo) Create(_ context.Context, rec Recipe) (*Recipe, error) {
	if rec.Name == "" || rec.ProductID == "" {
		return nil, errs.Invalidf("recipe name and product are required")
	}
	if rec.WastePct < 0 || rec.WastePct >= 1 {
		return nil, errs.Invalidf("waste percentage must be in [0,1), got %v", rec.WastePct)
	}
	for _, ing := range rec.Ingredients {
		if ing.ProductID == "" || ing.GramsRequired <= 0 {
			return nil, errs.Invalidf("ingredient needs a product and positive grams")
		}
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	for i := range rec.Steps {
		if rec.Steps[i].ID == "" {
			rec.Steps[i].ID = uuid.NewString()
		}
	}
	sortSteps(rec.Steps)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.byProduct[rec.ProductID]; dup {
		return nil, errs.ErrAlreadyExists
	}
	stored := clone(&rec)
	r.byID[rec.ID] = stored
	r.byProduct[rec.ProductID] = rec.ID
	r.order = append(r.order, rec.ID)
	return clone(stored), nil
}

func (r *Repo) GetByID(_ context.Context, id string) (*Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, errs.NotFoundf("recipe %s", id)
	}
	return clone(rec), nil
}

// GetByProduct returns the recipe producing the given product.
func (r *Repo) GetByProduct(_ context.Context, productID string) (*Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byProduct[productID]
	if !ok {
		return nil, errs.NotFoundf("no recipe for product %s", productID)
	}
	return clone(r.byID[id]), nil
}

func (r *Repo) List(_ context.Context) []Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Recipe, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *clone(r.byID[id]))
	}
	return out
}

// AddStep appends a template step, keeping steps sorted by Order.
func (r *Repo) AddStep(_ context.Context, recipeID string, s Step) (*Recipe, error) {
	if s.Name == "" {
		return nil, errs.Invalidf("step name is required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[recipeID]
	if !ok {
		return nil, errs.NotFoundf("recipe %s", recipeID)
	}
	rec.Steps = append(rec.Steps, s)
	sortSteps(rec.Steps)
	return clone(rec), nil
}

func (r *Repo) UpdateStep(_ context.Context, recipeID, stepID string, name string, order int, estimatedMinutes float64) (*Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[recipeID]
	if !ok {
		return nil, errs.NotFoundf("recipe %s", recipeID)
	}
	for i := range rec.Steps {
		if rec.Steps[i].ID != stepID {
			continue
		}
		if name != "" {
			rec.Steps[i].Name = name
		}
		if order != 0 {
			rec.Steps[i].Order = order
		}
		if estimatedMinutes != 0 {
			rec.Steps[i].EstimatedMinutes = estimatedMinutes
		}
		sortSteps(rec.Steps)
		return clone(rec), nil
	}
	return nil, errs.NotFoundf("step %s in recipe %s", stepID, recipeID)
}

func (r *Repo) RemoveStep(_ context.Context, recipeID, stepID string) (*Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[recipeID]
	if !ok {
		return nil, errs.NotFoundf("recipe %s", recipeID)
	}
	for i := range rec.Steps {
		if rec.Steps[i].ID == stepID {
			rec.Steps = append(rec.Steps[:i], rec.Steps[i+1:]...)
			return clone(rec), nil
		}
	}
	return nil, errs.NotFoundf("step %s in recipe %s", stepID, recipeID)
}

func sortSteps(steps []Step) {
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].Order < steps[j].Order })
}

func clone(rec *Recipe) *Recipe {
	out := *rec
	out.Steps = append([]Step(nil), rec.Steps...)
	out.Ingredients = append([]Ingredient(nil), rec.Ingredients...)
	return &out
}
