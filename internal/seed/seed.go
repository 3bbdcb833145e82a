// Package seed loads a small demo dataset so the service is explorable
// without a persistence layer: scrap metals, a couple of finished goods
// with recipes, and clients carrying debt.
package seed

import (
	"context"
	"fmt"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/clients"
	"github.com/gestiontall/taller/internal/domain/recipes"
)

// Load populates the repositories. Scrap SKUs match the defaults in
// config/example.yaml.
func Load(ctx context.Context, products *catalog.Repo, recipeRepo *recipes.Repo, clientsRepo *clients.Repo, settlement *clients.Service) error {
	scrap10k, err := products.Create(ctx, catalog.Product{
		SKU: "MP-CHAT-10K", Name: "Oro Chatarra 10k",
		Kind: catalog.KindRawMaterial, Metal: catalog.MetalGold10k,
		StockGrams: 250.5, MinStockGrams: 50,
	})
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	scrap14k, err := products.Create(ctx, catalog.Product{
		SKU: "MP-CHAT-14K", Name: "Oro Chatarra 14k",
		Kind: catalog.KindRawMaterial, Metal: catalog.MetalGold14k,
		StockGrams: 180.3, MinStockGrams: 50,
	})
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if _, err := products.Create(ctx, catalog.Product{
		SKU: "MP-PLATA-925", Name: "Plata .925",
		Kind: catalog.KindRawMaterial, Metal: catalog.MetalSilver925,
		StockGrams: 500, MinStockGrams: 100,
	}); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	ring, err := products.Create(ctx, catalog.Product{
		SKU: "PT-ANILLO-SOL", Name: "Anillo Solitario",
		Kind: catalog.KindFinishedGood, Metal: catalog.MetalGold14k,
		WeightPerPiece: 5, YieldPct: 0.97, SalesPrice: 850, VisibleForSale: true,
	})
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	chain, err := products.Create(ctx, catalog.Product{
		SKU: "PT-CADENA-CUB", Name: "Cadena Eslabón Cubano",
		Kind: catalog.KindFinishedGood, Metal: catalog.MetalGold10k,
		WeightPerPiece: 32, YieldPct: 0.95, SalesPrice: 2400, VisibleForSale: true,
	})
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}
	if _, err := products.Create(ctx, catalog.Product{
		SKU: "SV-FUNDICION", Name: "Servicio de Fundición",
		Kind: catalog.KindService, Metal: catalog.MetalOther,
		SalesPrice: 300, VisibleForSale: true,
	}); err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	if _, err := recipeRepo.Create(ctx, recipes.Recipe{
		Name: "Anillo Solitario", ProductID: ring.ID, WastePct: 0.03,
		Steps: []recipes.Step{
			{Name: "Fundición", Order: 10, EstimatedMinutes: 40},
			{Name: "Laminado", Order: 20, EstimatedMinutes: 25},
			{Name: "Formado de Aro", Order: 30, EstimatedMinutes: 30},
			{Name: "Soldadura", Order: 40, EstimatedMinutes: 20},
			{Name: "Pulido", Order: 50, EstimatedMinutes: 15},
		},
		Ingredients: []recipes.Ingredient{
			{ProductID: scrap14k.ID, GramsRequired: 5.2},
		},
	}); err != nil {
		return fmt.Errorf("seed recipes: %w", err)
	}
	if _, err := recipeRepo.Create(ctx, recipes.Recipe{
		Name: "Cadena Eslabón Cubano", ProductID: chain.ID, WastePct: 0.05,
		Steps: []recipes.Step{
			{Name: "Fundición", Order: 10, EstimatedMinutes: 60},
			{Name: "Trefilado", Order: 20, EstimatedMinutes: 90},
			{Name: "Armado de Eslabones", Order: 30, EstimatedMinutes: 120},
			{Name: "Soldadura", Order: 40, EstimatedMinutes: 45},
			{Name: "Pulido", Order: 50, EstimatedMinutes: 30},
		},
		Ingredients: []recipes.Ingredient{
			{ProductID: scrap10k.ID, GramsRequired: 33.7},
		},
	}); err != nil {
		return fmt.Errorf("seed recipes: %w", err)
	}

	type demoClient struct {
		name, phone string
		debts       map[clients.BalanceKind]float64
	}
	for _, dc := range []demoClient{
		{"Joyería El Diamante", "555-0101", map[clients.BalanceKind]float64{
			clients.BalanceKindMoney: 4500, clients.BalanceKindGold14k: 25.5,
		}},
		{"Roberto Sánchez", "555-0102", map[clients.BalanceKind]float64{
			clients.BalanceKindGold10k: 12.8,
		}},
		{"Boutique Elegance", "555-0103", map[clients.BalanceKind]float64{
			clients.BalanceKindMoney: 1200, clients.BalanceKindSilver: 80,
		}},
		{"Patricia Morales", "555-0104", nil},
	} {
		c, err := clientsRepo.Create(ctx, dc.name, dc.phone, "")
		if err != nil {
			return fmt.Errorf("seed clients: %w", err)
		}
		for kind, amount := range dc.debts {
			if _, err := settlement.AddDebt(ctx, c.ID, kind, amount); err != nil {
				return fmt.Errorf("seed clients: %w", err)
			}
		}
	}
	return nil
}
