package inventory

import "time"

// MoveType is the direction of a stock movement.
type MoveType string

const (
	MoveIn  MoveType = "in"
	MoveOut MoveType = "out"
)

// Movement is one attributable stock change. The log is append-only:
// movements are never edited or deleted.
type Movement struct {
	ID        string
	ProductID string
	Grams     float64 // absolute value; direction lives in Type
	Type      MoveType
	Note      string
	CreatedAt time.Time
}
