package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/errs"
)

func newLedger(t *testing.T) (*Ledger, *catalog.Repo, *catalog.Product) {
	t.Helper()
	products := catalog.NewRepo()
	p, err := products.Create(context.Background(), catalog.Product{
		SKU:           "MP-ORO-FINO",
		Name:          "Oro Fino 24k",
		Kind:          catalog.KindRawMaterial,
		Metal:         catalog.MetalOther,
		StockGrams:    100,
		MinStockGrams: 50,
	})
	require.NoError(t, err)
	return NewLedger(products), products, p
}

func TestAdjustStockRecordsMovement(t *testing.T) {
	ctx := context.Background()
	ledger, _, p := newLedger(t)

	got, err := ledger.AdjustStock(ctx, p.ID, 25.5, "supplier receipt")
	require.NoError(t, err)
	require.InDelta(t, 125.5, got.StockGrams, 1e-9)

	got, err = ledger.AdjustStock(ctx, p.ID, -30, "melt for order")
	require.NoError(t, err)
	require.InDelta(t, 95.5, got.StockGrams, 1e-9)

	moves := ledger.Movements(ctx, p.ID)
	require.Len(t, moves, 2)
	require.Equal(t, MoveIn, moves[0].Type)
	require.InDelta(t, 25.5, moves[0].Grams, 1e-9)
	require.Equal(t, "supplier receipt", moves[0].Note)
	require.Equal(t, MoveOut, moves[1].Type)
	require.InDelta(t, 30, moves[1].Grams, 1e-9)
}

func TestAdjustStockAllowsNegativeBalance(t *testing.T) {
	// Withdrawals are unchecked; stock may go negative and the movement
	// trail still accounts for it.
	ctx := context.Background()
	ledger, products, p := newLedger(t)

	got, err := ledger.AdjustStock(ctx, p.ID, -150, "oversized melt")
	require.NoError(t, err)
	require.InDelta(t, -50, got.StockGrams, 1e-9)

	fresh, err := products.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.InDelta(t, -50, fresh.StockGrams, 1e-9)
}

func TestAdjustStockValidation(t *testing.T) {
	ctx := context.Background()
	ledger, _, p := newLedger(t)

	_, err := ledger.AdjustStock(ctx, p.ID, 0, "")
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = ledger.AdjustStock(ctx, "missing", 5, "")
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.Empty(t, ledger.Movements(ctx, ""))
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	ledger, products, p := newLedger(t)

	require.Empty(t, ledger.LowStock(ctx))

	_, err := ledger.AdjustStock(ctx, p.ID, -60, "melt")
	require.NoError(t, err)

	low := ledger.LowStock(ctx)
	require.Len(t, low, 1)
	require.Equal(t, p.ID, low[0].ID)

	// Inactive products are excluded from the report.
	_, err = products.SetActive(ctx, p.ID, false)
	require.NoError(t, err)
	require.Empty(t, ledger.LowStock(ctx))
}

func TestMovementTimestampsUseLedgerClock(t *testing.T) {
	ctx := context.Background()
	ledger, _, p := newLedger(t)
	fixed := time.Date(2024, 11, 20, 9, 30, 0, 0, time.UTC)
	ledger.WithClock(func() time.Time { return fixed })

	_, err := ledger.AdjustStock(ctx, p.ID, 1, "")
	require.NoError(t, err)
	require.Equal(t, fixed, ledger.Movements(ctx, p.ID)[0].CreatedAt)
}
