package cli

import (
	"context"
	"log/slog"

	"github.com/gestiontall/taller/internal/config"
	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/clients"
	"github.com/gestiontall/taller/internal/domain/inventory"
	"github.com/gestiontall/taller/internal/domain/production"
	"github.com/gestiontall/taller/internal/domain/recipes"
	"github.com/gestiontall/taller/internal/reports"
	"github.com/gestiontall/taller/internal/seed"
)

// app is the composed object graph: repositories constructed once and
// handed to the services by reference. No global state anywhere.
type app struct {
	products   *catalog.Repo
	inv        *inventory.Ledger
	recipes    *recipes.Repo
	clients    *clients.Repo
	settlement *clients.Service
	engine     *production.Engine
	exporter   *reports.Exporter
}

func buildApp(ctx context.Context, cfg config.Config, log *slog.Logger) (*app, error) {
	products := catalog.NewRepo()
	inv := inventory.NewLedger(products)
	recipeRepo := recipes.NewRepo()
	clientsRepo := clients.NewRepo()

	scrapSKUs := make(map[clients.MaterialKind]string, len(cfg.Materials.ScrapSKUs))
	for kind, sku := range cfg.Materials.ScrapSKUs {
		scrapSKUs[clients.MaterialKind(kind)] = sku
	}

	settlement := clients.NewService(clientsRepo, products, inv, scrapSKUs, log)
	engine := production.NewEngine(products, recipeRepo, inv, log,
		production.WithFolioPrefix(cfg.Production.FolioPrefix))
	exporter := reports.NewExporter(products, clientsRepo, engine)

	a := &app{
		products:   products,
		inv:        inv,
		recipes:    recipeRepo,
		clients:    clientsRepo,
		settlement: settlement,
		engine:     engine,
		exporter:   exporter,
	}

	if seedDemo {
		if err := seed.Load(ctx, products, recipeRepo, clientsRepo, settlement); err != nil {
			return nil, err
		}
		log.Info("demo dataset loaded")
	}
	return a, nil
}
