package production

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/errs"
	"github.com/gestiontall/taller/internal/domain/inventory"
	"github.com/gestiontall/taller/internal/domain/recipes"
)

// testClock is a manually advanced clock shared by the engine under test.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	clock    *testClock
	products *catalog.Repo
	recipes  *recipes.Repo
	inv      *inventory.Ledger
	engine   *Engine
	ring     *catalog.Product
	scrap    *catalog.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	clock := &testClock{t: time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)}

	products := catalog.NewRepo()
	recipeRepo := recipes.NewRepo()
	inv := inventory.NewLedger(products).WithClock(clock.now)

	scrap, err := products.Create(ctx, catalog.Product{
		SKU:        "MP-CHAT-14K",
		Name:       "Chatarra Oro 14k",
		Kind:       catalog.KindRawMaterial,
		Metal:      catalog.MetalGold14k,
		StockGrams: 100,
	})
	require.NoError(t, err)

	ring, err := products.Create(ctx, catalog.Product{
		SKU:            "PT-ANILLO-SOL",
		Name:           "Anillo Solitario",
		Kind:           catalog.KindFinishedGood,
		Metal:          catalog.MetalGold14k,
		WeightPerPiece: 5,
		YieldPct:       0.97,
	})
	require.NoError(t, err)

	_, err = recipeRepo.Create(ctx, recipes.Recipe{
		Name:      "Anillo Solitario",
		ProductID: ring.ID,
		Steps: []recipes.Step{
			{Name: "Fundición", Order: 10, EstimatedMinutes: 30},
			{Name: "Laminado", Order: 20},
			{Name: "Pulido", Order: 30},
		},
		Ingredients: []recipes.Ingredient{
			{ProductID: scrap.ID, GramsRequired: 5.2},
		},
	})
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := NewEngine(products, recipeRepo, inv, log, WithClock(clock.now))
	return &fixture{clock: clock, products: products, recipes: recipeRepo, inv: inv, engine: engine, ring: ring, scrap: scrap}
}

func (f *fixture) createOrder(t *testing.T, qty int) *Order {
	t.Helper()
	o, err := f.engine.CreateOrder(context.Background(), f.ring.ID, qty, "", "Joyería El Diamante", "")
	require.NoError(t, err)
	return o
}

func TestCreateOrderClonesRecipe(t *testing.T) {
	f := newFixture(t)
	o := f.createOrder(t, 10)

	require.Equal(t, StatusPlanned, o.Status)
	require.Len(t, o.Steps, 3)
	for _, s := range o.Steps {
		require.Equal(t, StepPending, s.Status)
		require.Empty(t, s.Operators)
		require.Zero(t, s.AccumulatedMinutes)
		require.False(t, s.Running())
	}
	require.NotEmpty(t, o.Folio)
	require.Contains(t, o.Folio, "OP-241120-")

	// Estimates for 10 pieces of 5g at 97% yield, 14k.
	require.InDelta(t, 50, o.EstimatedNetGrams, 0.005)
	require.InDelta(t, 51.55, o.EstimatedGrossGrams, 0.005)
	require.InDelta(t, 1.55, o.WasteGrams, 0.005)
	require.NotNil(t, o.Alloy)
	require.InDelta(t, o.EstimatedGrossGrams, o.Alloy.PureGoldGrams+o.Alloy.AlloyGrams, 0.01)
}

func TestCreateOrderCloneIndependence(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.createOrder(t, 1)

	// Work the first order's steps; the template must not notice.
	_, err := f.engine.CompleteStep(ctx, first.ID, first.Steps[0].ID)
	require.NoError(t, err)

	rec, err := f.recipes.GetByProduct(ctx, f.ring.ID)
	require.NoError(t, err)
	require.Len(t, rec.Steps, 3)

	second := f.createOrder(t, 1)
	for _, s := range second.Steps {
		require.Equal(t, StepPending, s.Status)
		require.Zero(t, s.AccumulatedMinutes)
	}
	// Step instances get fresh ids per order.
	require.NotEqual(t, first.Steps[0].ID, second.Steps[0].ID)
}

func TestCreateOrderValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateOrder(ctx, f.ring.ID, 0, "", "", "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = f.engine.CreateOrder(ctx, "missing", 1, "", "", "")
	require.ErrorIs(t, err, errs.ErrNotFound)

	// Product without a recipe.
	_, err = f.engine.CreateOrder(ctx, f.scrap.ID, 1, "", "", "")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestFolioUniqueness(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 25; i++ {
		o := f.createOrder(t, 1)
		require.False(t, seen[o.Folio], "duplicate folio %s", o.Folio)
		seen[o.Folio] = true
	}
}

func TestStopwatchAccumulation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	// play 5min, pause; play 2min, pause => 7 accumulated.
	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(5 * time.Minute)
	got, err := f.engine.PauseStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.InDelta(t, 5, got.Steps[0].AccumulatedMinutes, 1e-9)

	f.clock.advance(5 * time.Minute) // paused gap, must not count

	_, err = f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(2 * time.Minute)
	got, err = f.engine.PauseStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.InDelta(t, 7, got.Steps[0].AccumulatedMinutes, 1e-9)

	// Paused step stays InProgress with the watch stopped.
	require.Equal(t, StepInProgress, got.Steps[0].Status)
	require.False(t, got.Steps[0].Running())
}

func TestPauseWhenPausedIsNoop(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(3 * time.Minute)
	_, err = f.engine.PauseStep(ctx, o.ID, stepID)
	require.NoError(t, err)

	f.clock.advance(10 * time.Minute)
	got, err := f.engine.PauseStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.InDelta(t, 3, got.Steps[0].AccumulatedMinutes, 1e-9)
}

func TestCompleteFlushesRunningTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(12 * time.Minute)

	// Complete without pausing: the running interval must not be lost.
	got, err := f.engine.CompleteStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.Equal(t, StepDone, got.Steps[0].Status)
	require.False(t, got.Steps[0].Running())
	require.InDelta(t, 12, got.Steps[0].AccumulatedMinutes, 1e-9)
}

func TestOrderStatusRollUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)

	// First start promotes Planned -> InProgress.
	got, err := f.engine.StartStep(ctx, o.ID, o.Steps[0].ID)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, got.Status)

	// Completing N-1 of N steps leaves the order in progress.
	for _, s := range o.Steps[:len(o.Steps)-1] {
		got, err = f.engine.CompleteStep(ctx, o.ID, s.ID)
		require.NoError(t, err)
	}
	require.Equal(t, StatusInProgress, got.Status)

	// Completing the last one closes the order.
	got, err = f.engine.CompleteStep(ctx, o.ID, o.Steps[len(o.Steps)-1].ID)
	require.NoError(t, err)
	require.Equal(t, StatusDone, got.Status)
}

func TestDoneStepIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.CompleteStep(ctx, o.ID, stepID)
	require.NoError(t, err)

	_, err = f.engine.StartStep(ctx, o.ID, stepID)
	require.ErrorIs(t, err, errs.ErrInvariant)
	_, err = f.engine.CompleteStep(ctx, o.ID, stepID)
	require.ErrorIs(t, err, errs.ErrInvariant)
}

func TestStepElapsedLiveWhileRunning(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(90 * time.Second)

	elapsed, err := f.engine.StepElapsed(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.InDelta(t, 1.5, elapsed, 1e-9)

	// Still running: another tick keeps growing the reading.
	f.clock.advance(30 * time.Second)
	elapsed, err = f.engine.StepElapsed(ctx, o.ID, stepID)
	require.NoError(t, err)
	require.InDelta(t, 2, elapsed, 1e-9)
}

func TestOperatorAssignmentIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	for i := 0; i < 3; i++ {
		got, err := f.engine.AssignOperator(ctx, o.ID, stepID, "Carlos Mendez")
		require.NoError(t, err)
		require.Equal(t, []string{"Carlos Mendez"}, got.Steps[0].Operators)
	}

	got, err := f.engine.RemoveOperator(ctx, o.ID, stepID, "Carlos Mendez")
	require.NoError(t, err)
	require.Empty(t, got.Steps[0].Operators)

	// Removing an absent operator is not an error.
	_, err = f.engine.RemoveOperator(ctx, o.ID, stepID, "Carlos Mendez")
	require.NoError(t, err)
}

func TestStepCostFloorsOperatorCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(30 * time.Minute)
	_, err = f.engine.PauseStep(ctx, o.ID, stepID)
	require.NoError(t, err)

	// No assigned operators: costed as one implicit worker.
	cost, err := f.engine.StepCost(ctx, o.ID, stepID, 150)
	require.NoError(t, err)
	require.InDelta(t, 75, cost, 1e-9)

	_, err = f.engine.AssignOperator(ctx, o.ID, stepID, "Carlos Mendez")
	require.NoError(t, err)
	_, err = f.engine.AssignOperator(ctx, o.ID, stepID, "María García")
	require.NoError(t, err)

	cost, err = f.engine.StepCost(ctx, o.ID, stepID, 150)
	require.NoError(t, err)
	require.InDelta(t, 150, cost, 1e-9)
}

func TestConsumeMaterials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 10)

	require.NoError(t, f.engine.ConsumeMaterials(ctx, o.ID))

	p, err := f.products.GetByID(ctx, f.scrap.ID)
	require.NoError(t, err)
	require.InDelta(t, 100-52, p.StockGrams, 1e-9)

	moves := f.inv.Movements(ctx, f.scrap.ID)
	require.Len(t, moves, 1)
	require.Equal(t, "consumed by "+o.Folio, moves[0].Note)
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)
	stepID := o.Steps[0].ID

	_, err := f.engine.StartStep(ctx, o.ID, stepID)
	require.NoError(t, err)
	f.clock.advance(4 * time.Minute)

	got, err := f.engine.CancelOrder(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, got.Status)
	// Worked time stays on the books.
	require.InDelta(t, 4, got.Steps[0].AccumulatedMinutes, 1e-9)

	_, err = f.engine.CancelOrder(ctx, o.ID)
	require.ErrorIs(t, err, errs.ErrInvariant)
}

func TestListByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.createOrder(t, 1)
	b := f.createOrder(t, 2)

	_, err := f.engine.StartStep(ctx, b.ID, b.Steps[0].ID)
	require.NoError(t, err)

	planned := f.engine.ListByStatus(ctx, StatusPlanned)
	require.Len(t, planned, 1)
	require.Equal(t, a.ID, planned[0].ID)

	inProgress := f.engine.ListByStatus(ctx, StatusInProgress)
	require.Len(t, inProgress, 1)
	require.Equal(t, b.ID, inProgress[0].ID)
}

func TestSnapshotIsIndependent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.createOrder(t, 1)

	// Mutating a snapshot must not leak into the engine's state.
	o.Steps[0].Status = StepDone
	o.Steps[0].AccumulatedMinutes = 999

	fresh, err := f.engine.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, StepPending, fresh.Steps[0].Status)
	require.Zero(t, fresh.Steps[0].AccumulatedMinutes)
}
