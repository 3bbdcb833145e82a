package catalog

import "time"

// Kind classifies what a catalog entry is.
type Kind string

const (
	KindRawMaterial  Kind = "raw_material"
	KindFinishedGood Kind = "finished_good"
	KindService      Kind = "service"
)

// Metal is the metal category of a product.
type Metal string

const (
	MetalGold10k   Metal = "gold_10k"
	MetalGold14k   Metal = "gold_14k"
	MetalSilver925 Metal = "silver_925"
	MetalPlated    Metal = "plated"
	MetalOther     Metal = "other"
)

// Product is a catalog entry: raw material, finished good or service.
// Stock is gram-denominated; StockGrams changes only through the
// inventory ledger so every movement is attributable.
type Product struct {
	ID             string
	SKU            string
	Name           string
	Kind           Kind
	Metal          Metal
	StockGrams     float64
	MinStockGrams  float64
	WeightPerPiece float64 // grams per piece, for goods produced by the piece
	YieldPct       float64 // surviving fraction after production losses, (0,1]
	SalesPrice     float64
	Active         bool
	VisibleForSale bool
	CreatedAt      time.Time
}
