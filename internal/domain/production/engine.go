package production

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/alloy"
	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/errs"
	"github.com/gestiontall/taller/internal/domain/inventory"
	"github.com/gestiontall/taller/internal/domain/recipes"
)

// Engine owns all production orders and drives the step state machines.
// Step transitions roll up into order status: the first step start
// promotes a Planned order, the last step completion closes it. All reads
// return snapshots; the canonical orders never leave the engine.
type Engine struct {
	mu       sync.RWMutex
	orders   map[string]*Order
	order    []string // creation order
	products *catalog.Repo
	recipes  *recipes.Repo
	inv      *inventory.Ledger
	log      *slog.Logger

	now         func() time.Time
	folioPrefix string
	folioSeq    int
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the engine clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithFolioPrefix overrides the default "OP" folio prefix.
func WithFolioPrefix(prefix string) Option {
	return func(e *Engine) {
		if prefix != "" {
			e.folioPrefix = prefix
		}
	}
}

func NewEngine(products *catalog.Repo, recipeRepo *recipes.Repo, inv *inventory.Ledger, log *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		orders:      make(map[string]*Order),
		products:    products,
		recipes:     recipeRepo,
		inv:         inv,
		log:         log,
		now:         time.Now,
		folioPrefix: "OP",
		folioSeq:    100,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreateOrder clones the product's recipe into a new Planned order.
// The clone is deep: later edits to the recipe template never reach
// existing orders, and vice versa.
func (e *Engine) CreateOrder(ctx context.Context, productID string, quantity int, clientID, clientName, notes string) (*Order, error) {
	if quantity <= 0 {
		return nil, errs.Invalidf("quantity must be > 0, got %d", quantity)
	}
	product, err := e.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	recipe, err := e.recipes.GetByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	o := &Order{
		ID:              uuid.NewString(),
		ProductID:       product.ID,
		ProductName:     product.Name,
		RecipeID:        recipe.ID,
		ClientID:        clientID,
		ClientName:      clientName,
		Status:          StatusPlanned,
		QuantityPlanned: quantity,
		Notes:           notes,
		CreatedAt:       now,
	}

	for _, ts := range recipe.Steps {
		o.Steps = append(o.Steps, &Step{
			ID:     uuid.NewString(),
			Name:   ts.Name,
			Order:  ts.Order,
			Status: StepPending,
		})
	}

	if product.WeightPerPiece > 0 {
		mats, err := alloy.ProductionMaterials(product.WeightPerPiece, quantity, product.YieldPct, karatFor(product.Metal))
		if err != nil {
			return nil, err
		}
		o.EstimatedNetGrams = mats.TotalNetGrams
		o.EstimatedGrossGrams = mats.TotalGrossGrams
		o.WasteGrams = mats.WasteGrams
		o.Alloy = mats.Alloy
	}

	e.mu.Lock()
	e.folioSeq++
	o.Folio = fmt.Sprintf("%s-%s-%d", e.folioPrefix, now.Format("060102"), e.folioSeq)
	e.orders[o.ID] = o
	e.order = append(e.order, o.ID)
	snap := o.snapshot()
	e.mu.Unlock()

	e.log.Info("production order created",
		"folio", snap.Folio, "product", snap.ProductName, "quantity", quantity, "steps", len(snap.Steps))
	return snap, nil
}

// karatFor infers the alloy karat from the product's metal category.
// Non-gold metals get no alloy computation.
func karatFor(m catalog.Metal) alloy.Karat {
	switch m {
	case catalog.MetalGold10k:
		return alloy.Karat10
	case catalog.MetalGold14k:
		return alloy.Karat14
	default:
		return ""
	}
}

// StartStep starts (or resumes) the step's stopwatch. Allowed from
// Pending or from a paused InProgress step. The first start of any step
// promotes a Planned order to InProgress; the order never reverts.
func (e *Engine) StartStep(_ context.Context, orderID, stepID string) (*Order, error) {
	return e.withStep(orderID, stepID, func(o *Order, s *Step) error {
		if s.Status == StepDone {
			return errs.Invariantf("step %s is already done", s.Name)
		}
		if s.Running() {
			return nil
		}
		s.watch.Start(e.now())
		s.Status = StepInProgress
		if o.Status == StatusPlanned {
			o.Status = StatusInProgress
		}
		return nil
	})
}

// PauseStep stops the stopwatch and banks the running interval into
// AccumulatedMinutes. The step stays InProgress. Pausing a paused step is
// a no-op.
func (e *Engine) PauseStep(_ context.Context, orderID, stepID string) (*Order, error) {
	return e.withStep(orderID, stepID, func(_ *Order, s *Step) error {
		if s.Status == StepDone {
			return errs.Invariantf("step %s is already done", s.Name)
		}
		s.AccumulatedMinutes += s.watch.Flush(e.now())
		return nil
	})
}

// CompleteStep finishes the step. A still-running interval is flushed
// first so no worked time is lost. When the last step finishes, the order
// is promoted to Done; otherwise order status is left alone.
func (e *Engine) CompleteStep(_ context.Context, orderID, stepID string) (*Order, error) {
	return e.withStep(orderID, stepID, func(o *Order, s *Step) error {
		if s.Status == StepDone {
			return errs.Invariantf("step %s is already done", s.Name)
		}
		s.AccumulatedMinutes += s.watch.Flush(e.now())
		s.Status = StepDone
		if o.allStepsDone() {
			o.Status = StatusDone
			e.log.Info("production order done", "folio", o.Folio)
		}
		return nil
	})
}

// AssignOperator adds the operator to the step. Idempotent: assigning an
// already-assigned name is not an error.
func (e *Engine) AssignOperator(_ context.Context, orderID, stepID, operator string) (*Order, error) {
	if operator == "" {
		return nil, errs.Invalidf("operator name is required")
	}
	return e.withStep(orderID, stepID, func(_ *Order, s *Step) error {
		for _, op := range s.Operators {
			if op == operator {
				return nil
			}
		}
		s.Operators = append(s.Operators, operator)
		return nil
	})
}

// RemoveOperator removes the operator from the step, if present.
func (e *Engine) RemoveOperator(_ context.Context, orderID, stepID, operator string) (*Order, error) {
	return e.withStep(orderID, stepID, func(_ *Order, s *Step) error {
		for i, op := range s.Operators {
			if op == operator {
				s.Operators = append(s.Operators[:i], s.Operators[i+1:]...)
				return nil
			}
		}
		return nil
	})
}

// StepElapsed returns the step's total worked minutes as of now.
func (e *Engine) StepElapsed(_ context.Context, orderID, stepID string) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.orders[orderID]
	if !ok {
		return 0, errs.NotFoundf("order %s", orderID)
	}
	s := o.step(stepID)
	if s == nil {
		return 0, errs.NotFoundf("step %s in order %s", stepID, o.Folio)
	}
	return s.Elapsed(e.now()), nil
}

// StepCost prices the step's worked time at the given hourly rate.
func (e *Engine) StepCost(_ context.Context, orderID, stepID string, hourlyRate float64) (float64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.orders[orderID]
	if !ok {
		return 0, errs.NotFoundf("order %s", orderID)
	}
	s := o.step(stepID)
	if s == nil {
		return 0, errs.NotFoundf("step %s in order %s", stepID, o.Folio)
	}
	return s.Cost(e.now(), hourlyRate), nil
}

// ConsumeMaterials writes off the order's recipe ingredients from
// inventory, scaled by the planned quantity. Stock may go negative; the
// ledger keeps the movement trail either way.
func (e *Engine) ConsumeMaterials(ctx context.Context, orderID string) error {
	e.mu.RLock()
	o, ok := e.orders[orderID]
	if !ok {
		e.mu.RUnlock()
		return errs.NotFoundf("order %s", orderID)
	}
	recipeID, folio, qty := o.RecipeID, o.Folio, o.QuantityPlanned
	e.mu.RUnlock()

	recipe, err := e.recipes.GetByID(ctx, recipeID)
	if err != nil {
		return err
	}
	for _, ing := range recipe.Ingredients {
		grams := ing.GramsRequired * float64(qty)
		if _, err := e.inv.AdjustStock(ctx, ing.ProductID, -grams, fmt.Sprintf("consumed by %s", folio)); err != nil {
			return err
		}
	}
	return nil
}

// CancelOrder manually cancels a not-yet-finished order. Running
// stopwatches are flushed so worked time stays on the books.
func (e *Engine) CancelOrder(_ context.Context, orderID string) (*Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return nil, errs.NotFoundf("order %s", orderID)
	}
	if o.Status == StatusDone || o.Status == StatusCancelled {
		return nil, errs.Invariantf("order %s is already %s", o.Folio, o.Status)
	}
	now := e.now()
	for _, s := range o.Steps {
		s.AccumulatedMinutes += s.watch.Flush(now)
	}
	o.Status = StatusCancelled
	return o.snapshot(), nil
}

// Get returns a snapshot of the order.
func (e *Engine) Get(_ context.Context, orderID string) (*Order, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	o, ok := e.orders[orderID]
	if !ok {
		return nil, errs.NotFoundf("order %s", orderID)
	}
	return o.snapshot(), nil
}

// List returns snapshots of all orders in creation order.
func (e *Engine) List(_ context.Context) []*Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Order, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.orders[id].snapshot())
	}
	return out
}

// ListByStatus returns snapshots of orders in the given status.
func (e *Engine) ListByStatus(_ context.Context, status Status) []*Order {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*Order
	for _, id := range e.order {
		if o := e.orders[id]; o.Status == status {
			out = append(out, o.snapshot())
		}
	}
	return out
}

// withStep runs fn on the step under the write lock and returns a
// snapshot of the order afterwards.
func (e *Engine) withStep(orderID, stepID string, fn func(*Order, *Step) error) (*Order, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	o, ok := e.orders[orderID]
	if !ok {
		return nil, errs.NotFoundf("order %s", orderID)
	}
	s := o.step(stepID)
	if s == nil {
		return nil, errs.NotFoundf("step %s in order %s", stepID, o.Folio)
	}
	if err := fn(o, s); err != nil {
		return nil, err
	}
	return o.snapshot(), nil
}
