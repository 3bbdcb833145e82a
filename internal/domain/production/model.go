package production

import (
	"time"

	"github.com/gestiontall/taller/internal/domain/alloy"
)

// Status is the order-level state. Planned -> InProgress -> Done are
// engine-driven, rolled up from step transitions; Cancelled is manual.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusCancelled  Status = "cancelled"
)

// StepStatus is the step-level state. Pending -> InProgress -> Done;
// Done is terminal.
type StepStatus string

const (
	StepPending    StepStatus = "pending"
	StepInProgress StepStatus = "in_progress"
	StepDone       StepStatus = "done"
)

// Step is an order-local work step, cloned by value from a recipe
// template at order creation. It is owned by its order and mutated only
// through the engine.
type Step struct {
	ID                 string
	Name               string
	Order              int
	Status             StepStatus
	Operators          []string // assigned operator names, no duplicates
	AccumulatedMinutes float64  // persisted worked time across pause/resume
	watch              Stopwatch
}

// Running reports whether the step's stopwatch is counting. Running
// implies InProgress; an InProgress step may be paused.
func (s *Step) Running() bool { return s.watch.Running() }

// Elapsed is the step's total worked minutes as of now: persisted time
// plus the live running interval, if any.
func (s *Step) Elapsed(now time.Time) float64 {
	return s.AccumulatedMinutes + s.watch.Live(now)
}

// Cost prices the step's worked time. An unassigned step is costed as one
// implicit worker — the operator count floors at 1, a documented business
// rule.
func (s *Step) Cost(now time.Time, hourlyRate float64) float64 {
	operators := len(s.Operators)
	if operators < 1 {
		operators = 1
	}
	return s.Elapsed(now) / 60 * float64(operators) * hourlyRate
}

// Order is a production order. Its steps are independent copies of the
// recipe's template steps and live and die with the order.
type Order struct {
	ID                  string
	Folio               string
	ProductID           string
	ProductName         string
	RecipeID            string
	ClientID            string
	ClientName          string
	Status              Status
	QuantityPlanned     int
	EstimatedNetGrams   float64
	EstimatedGrossGrams float64
	WasteGrams          float64
	Alloy               *alloy.Calculation
	Steps               []*Step
	Notes               string
	CreatedAt           time.Time
}

func (o *Order) step(stepID string) *Step {
	for _, s := range o.Steps {
		if s.ID == stepID {
			return s
		}
	}
	return nil
}

func (o *Order) allStepsDone() bool {
	for _, s := range o.Steps {
		if s.Status != StepDone {
			return false
		}
	}
	return true
}

// snapshot deep-copies the order so callers can read it without holding
// the engine lock.
func (o *Order) snapshot() *Order {
	out := *o
	out.Steps = make([]*Step, len(o.Steps))
	for i, s := range o.Steps {
		sc := *s
		sc.Operators = append([]string(nil), s.Operators...)
		out.Steps[i] = &sc
	}
	if o.Alloy != nil {
		ac := *o.Alloy
		out.Alloy = &ac
	}
	return &out
}
