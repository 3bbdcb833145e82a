package http

import (
	"time"

	"github.com/gestiontall/taller/internal/domain/alloy"
	"github.com/gestiontall/taller/internal/domain/clients"
	"github.com/gestiontall/taller/internal/domain/production"
)

// View types render domain snapshots for the API. Elapsed time and cost
// are computed per request from the snapshot and the current clock; the
// live reading is never cached.

type stepView struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Order              int      `json:"order"`
	Status             string   `json:"status"`
	Operators          []string `json:"operators"`
	AccumulatedMinutes float64  `json:"accumulated_minutes"`
	Running            bool     `json:"running"`
	ElapsedMinutes     float64  `json:"elapsed_minutes"`
	Cost               float64  `json:"cost"`
}

type orderView struct {
	ID                  string             `json:"id"`
	Folio               string             `json:"folio"`
	ProductID           string             `json:"product_id"`
	ProductName         string             `json:"product_name"`
	ClientID            string             `json:"client_id,omitempty"`
	ClientName          string             `json:"client_name,omitempty"`
	Status              string             `json:"status"`
	QuantityPlanned     int                `json:"quantity_planned"`
	EstimatedNetGrams   float64            `json:"estimated_net_grams"`
	EstimatedGrossGrams float64            `json:"estimated_gross_grams"`
	WasteGrams          float64            `json:"waste_grams"`
	Alloy               *alloy.Calculation `json:"alloy,omitempty"`
	Steps               []stepView         `json:"steps"`
	Notes               string             `json:"notes,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

func (h *Handler) renderOrder(o *production.Order) orderView {
	now := time.Now()
	v := orderView{
		ID:                  o.ID,
		Folio:               o.Folio,
		ProductID:           o.ProductID,
		ProductName:         o.ProductName,
		ClientID:            o.ClientID,
		ClientName:          o.ClientName,
		Status:              string(o.Status),
		QuantityPlanned:     o.QuantityPlanned,
		EstimatedNetGrams:   o.EstimatedNetGrams,
		EstimatedGrossGrams: o.EstimatedGrossGrams,
		WasteGrams:          o.WasteGrams,
		Alloy:               o.Alloy,
		Notes:               o.Notes,
		CreatedAt:           o.CreatedAt,
	}
	for _, s := range o.Steps {
		ops := s.Operators
		if ops == nil {
			ops = []string{}
		}
		v.Steps = append(v.Steps, stepView{
			ID:                 s.ID,
			Name:               s.Name,
			Order:              s.Order,
			Status:             string(s.Status),
			Operators:          ops,
			AccumulatedMinutes: s.AccumulatedMinutes,
			Running:            s.Running(),
			ElapsedMinutes:     s.Elapsed(now),
			Cost:               s.Cost(now, h.hourlyRate),
		})
	}
	return v
}

type paymentView struct {
	ID        string    `json:"id"`
	ClientID  string    `json:"client_id"`
	Kind      string    `json:"kind"`
	Amount    float64   `json:"amount,omitempty"`
	Grams     float64   `json:"grams,omitempty"`
	Material  string    `json:"material,omitempty"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func renderPayment(p clients.Payment) paymentView {
	grams, material := p.Material()
	return paymentView{
		ID:        p.ID,
		ClientID:  p.ClientID,
		Kind:      string(p.Kind()),
		Amount:    p.Amount(),
		Grams:     grams,
		Material:  string(material),
		Note:      p.Note,
		CreatedAt: p.CreatedAt,
	}
}
