package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gestiontall/taller/internal/domain/errs"
)

func TestCreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	p, err := r.Create(ctx, Product{
		SKU:   "PT-ANILLO-SOL",
		Name:  "Anillo Solitario",
		Kind:  KindFinishedGood,
		Metal: MetalGold14k,
	})
	require.NoError(t, err)
	require.NotEmpty(t, p.ID)
	require.True(t, p.Active)
	require.InDelta(t, 1, p.YieldPct, 1e-9) // default: no loss

	bySKU, err := r.GetBySKU(ctx, "PT-ANILLO-SOL")
	require.NoError(t, err)
	require.Equal(t, p.ID, bySKU.ID)

	_, err = r.GetByID(ctx, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	_, err := r.Create(ctx, Product{Name: "sin sku"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Product{SKU: "X", Name: "bad yield", YieldPct: 1.2})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Product{SKU: "X", Name: "neg stock", StockGrams: -1})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Product{SKU: "DUP", Name: "a"})
	require.NoError(t, err)
	_, err = r.Create(ctx, Product{SKU: "DUP", Name: "b"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	mustCreate := func(sku, name string, kind Kind, metal Metal) *Product {
		p, err := r.Create(ctx, Product{SKU: sku, Name: name, Kind: kind, Metal: metal})
		require.NoError(t, err)
		return p
	}

	raw := mustCreate("MP-CHAT-10K", "Oro Chatarra 10k", KindRawMaterial, MetalGold10k)
	mustCreate("PT-CADENA", "Cadena Cubana", KindFinishedGood, MetalGold10k)
	svc := mustCreate("SV-FUND", "Servicio de Fundición", KindService, MetalOther)

	require.Len(t, r.List(ctx, false, "", ""), 3)
	require.Len(t, r.List(ctx, false, "", MetalGold10k), 2)

	rawOnly := r.List(ctx, false, KindRawMaterial, "")
	require.Len(t, rawOnly, 1)
	require.Equal(t, raw.ID, rawOnly[0].ID)

	// Soft delete hides from active listings but the product survives.
	_, err := r.SetActive(ctx, svc.ID, false)
	require.NoError(t, err)
	require.Len(t, r.List(ctx, true, "", ""), 2)
	kept, err := r.GetByID(ctx, svc.ID)
	require.NoError(t, err)
	require.False(t, kept.Active)
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()
	p, err := r.Create(ctx, Product{SKU: "A", Name: "a", StockGrams: 10})
	require.NoError(t, err)

	list := r.List(ctx, false, "", "")
	list[0].StockGrams = 999

	fresh, err := r.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.InDelta(t, 10, fresh.StockGrams, 1e-9)
}
