package recipes

import "time"

// Step is a template work step. Order follows the 10, 20, 30... convention
// so steps can be inserted between existing ones later.
type Step struct {
	ID               string
	Name             string
	Order            int
	EstimatedMinutes float64 // 0 = no estimate
}

// Ingredient is a material requirement per produced piece.
type Ingredient struct {
	ProductID     string
	GramsRequired float64
}

// Recipe is the production template for a finished product. Read-only at
// order-creation time: orders copy the steps by value, never reference them.
type Recipe struct {
	ID          string
	Name        string
	ProductID   string
	Steps       []Step
	Ingredients []Ingredient
	WastePct    float64 // [0,1)
	CreatedAt   time.Time
}
