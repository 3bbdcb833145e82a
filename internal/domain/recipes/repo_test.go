package recipes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gestiontall/taller/internal/domain/errs"
)

func TestCreateSortsSteps(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	rec, err := r.Create(ctx, Recipe{
		Name:      "Anillo Solitario",
		ProductID: "prod-ring",
		Steps: []Step{
			{Name: "Pulido", Order: 30},
			{Name: "Fundición", Order: 10},
			{Name: "Laminado", Order: 20},
		},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Fundición", "Laminado", "Pulido"},
		[]string{rec.Steps[0].Name, rec.Steps[1].Name, rec.Steps[2].Name})
	for _, s := range rec.Steps {
		require.NotEmpty(t, s.ID)
	}
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	_, err := r.Create(ctx, Recipe{ProductID: "p"})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Recipe{Name: "x", ProductID: "p", WastePct: 1})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Recipe{Name: "x", ProductID: "p", Ingredients: []Ingredient{{ProductID: "m", GramsRequired: 0}}})
	require.ErrorIs(t, err, errs.ErrInvalidInput)

	_, err = r.Create(ctx, Recipe{Name: "x", ProductID: "p"})
	require.NoError(t, err)
	// One recipe per product.
	_, err = r.Create(ctx, Recipe{Name: "y", ProductID: "p"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestGetByProduct(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()

	created, err := r.Create(ctx, Recipe{Name: "Cadena", ProductID: "prod-chain"})
	require.NoError(t, err)

	got, err := r.GetByProduct(ctx, "prod-chain")
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = r.GetByProduct(ctx, "other")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestStepEditing(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()
	rec, err := r.Create(ctx, Recipe{Name: "Dije", ProductID: "prod-dije",
		Steps: []Step{{Name: "Fundición", Order: 10}, {Name: "Pulido", Order: 30}}})
	require.NoError(t, err)

	// Insert between the existing steps, 10/20/30 style.
	got, err := r.AddStep(ctx, rec.ID, Step{Name: "Laminado", Order: 20})
	require.NoError(t, err)
	require.Equal(t, "Laminado", got.Steps[1].Name)

	got, err = r.UpdateStep(ctx, rec.ID, got.Steps[1].ID, "Laminado Fino", 0, 15)
	require.NoError(t, err)
	require.Equal(t, "Laminado Fino", got.Steps[1].Name)
	require.InDelta(t, 15, got.Steps[1].EstimatedMinutes, 1e-9)

	got, err = r.RemoveStep(ctx, rec.ID, got.Steps[0].ID)
	require.NoError(t, err)
	require.Len(t, got.Steps, 2)

	_, err = r.RemoveStep(ctx, rec.ID, "missing")
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestReadsReturnDeepCopies(t *testing.T) {
	ctx := context.Background()
	r := NewRepo()
	rec, err := r.Create(ctx, Recipe{Name: "Argolla", ProductID: "prod-arg",
		Steps: []Step{{Name: "Fundición", Order: 10}}})
	require.NoError(t, err)

	got, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	got.Steps[0].Name = "Mutated"

	fresh, err := r.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	require.Equal(t, "Fundición", fresh.Steps[0].Name)
}
