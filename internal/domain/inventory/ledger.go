package inventory

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/errs"
)

// Ledger is the single entry point for stock mutation. Every adjustment
// writes a movement row, so any balance can be reconstructed from the log.
type Ledger struct {
	mu        sync.RWMutex
	products  *catalog.Repo
	movements []Movement
	now       func() time.Time
}

func NewLedger(products *catalog.Repo) *Ledger {
	return &Ledger{products: products, now: time.Now}
}

// WithClock overrides the ledger clock, for tests.
func (l *Ledger) WithClock(now func() time.Time) *Ledger {
	l.now = now
	return l
}

// AdjustStock adds deltaGrams (positive = receipt, negative = write-off)
// to the product's stock and records the movement. Write-offs are not
// checked against the balance and may drive stock negative.
func (l *Ledger) AdjustStock(ctx context.Context, productID string, deltaGrams float64, note string) (*catalog.Product, error) {
	if deltaGrams == 0 {
		return nil, errs.Invalidf("stock delta must be non-zero")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.products.ApplyStockDelta(ctx, productID, deltaGrams)
	if err != nil {
		return nil, err
	}

	mtype := MoveIn
	if deltaGrams < 0 {
		mtype = MoveOut
	}
	l.movements = append(l.movements, Movement{
		ID:        uuid.NewString(),
		ProductID: productID,
		Grams:     math.Abs(deltaGrams),
		Type:      mtype,
		Note:      note,
		CreatedAt: l.now(),
	})
	return p, nil
}

// LowStock returns active products whose stock has fallen below their
// minimum threshold.
func (l *Ledger) LowStock(ctx context.Context) []catalog.Product {
	var out []catalog.Product
	for _, p := range l.products.List(ctx, true, "", "") {
		if p.StockGrams < p.MinStockGrams {
			out = append(out, p)
		}
	}
	return out
}

// Movements returns the movement log in insertion order, optionally
// filtered by product.
func (l *Ledger) Movements(_ context.Context, productID string) []Movement {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Movement
	for _, m := range l.movements {
		if productID != "" && m.ProductID != productID {
			continue
		}
		out = append(out, m)
	}
	return out
}
