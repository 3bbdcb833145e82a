// Package reports renders tabular snapshots of the ledgers as an Excel
// workbook. It is a downstream consumer of the core: reads only, no
// mutation, and the core carries no knowledge of it.
package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/clients"
	"github.com/gestiontall/taller/internal/domain/production"
)

type Exporter struct {
	products *catalog.Repo
	clients  *clients.Repo
	engine   *production.Engine
	now      func() time.Time
}

func NewExporter(products *catalog.Repo, clientsRepo *clients.Repo, engine *production.Engine) *Exporter {
	return &Exporter{products: products, clients: clientsRepo, engine: engine, now: time.Now}
}

// Workbook builds the three-sheet report: inventory, client balances and
// production orders. The caller owns the returned file and must Close it.
func (e *Exporter) Workbook(ctx context.Context) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := e.inventorySheet(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.clientsSheet(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := e.ordersSheet(ctx, f); err != nil {
		_ = f.Close()
		return nil, err
	}

	// The default sheet was renamed to Inventario by the first builder.
	idx, err := f.GetSheetIndex("Inventario")
	if err == nil && idx >= 0 {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

// SaveAs writes the workbook to disk, for the CLI export command.
func (e *Exporter) SaveAs(ctx context.Context, path string) error {
	f, err := e.Workbook(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return f.SaveAs(path)
}

func (e *Exporter) inventorySheet(ctx context.Context, f *excelize.File) error {
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Inventario"); err != nil {
		return err
	}
	sheet = "Inventario"

	header := []interface{}{"SKU", "Nombre", "Tipo", "Categoría Metal", "Stock (g)", "Peso/Pieza (g)", "Stock Mínimo (g)", "Precio M.O.", "Activo"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, p := range e.products.List(ctx, false, "", "") {
		cells := []interface{}{
			p.SKU, p.Name, string(p.Kind), string(p.Metal),
			p.StockGrams, p.WeightPerPiece, p.MinStockGrams, p.SalesPrice, p.Active,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(sheet, "A", "D", 20)
}

func (e *Exporter) clientsSheet(ctx context.Context, f *excelize.File) error {
	const sheet = "Clientes"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Nombre", "Teléfono", "Email", "Deuda M.O. ($)", "Deuda Oro 10k (g)", "Deuda Oro 14k (g)", "Deuda Plata (g)", "Total Material (g)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, c := range e.clients.List(ctx) {
		cells := []interface{}{
			c.Name, c.Phone, c.Email,
			c.BalanceMoney, c.BalanceGold10k, c.BalanceGold14k, c.BalanceSilver,
			c.TotalMaterialGrams(),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(sheet, "A", "A", 30)
}

func (e *Exporter) ordersSheet(ctx context.Context, f *excelize.File) error {
	const sheet = "Órdenes"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	header := []interface{}{"Folio", "Producto", "Cliente", "Cantidad", "Estado", "Peso Bruto Est. (g)", "Minutos Trabajados", "Creada"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	now := e.now()
	row := 2
	for _, o := range e.engine.List(ctx) {
		var minutes float64
		for _, s := range o.Steps {
			minutes += s.Elapsed(now)
		}
		cells := []interface{}{
			o.Folio, o.ProductName, o.ClientName, o.QuantityPlanned, string(o.Status),
			o.EstimatedGrossGrams, fmt.Sprintf("%.1f", minutes),
			o.CreatedAt.Format("2006-01-02"),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
		row++
	}
	return f.SetColWidth(sheet, "A", "C", 22)
}
