package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/clients"
	"github.com/gestiontall/taller/internal/domain/errs"
	"github.com/gestiontall/taller/internal/domain/inventory"
	"github.com/gestiontall/taller/internal/domain/production"
	"github.com/gestiontall/taller/internal/domain/recipes"
	"github.com/gestiontall/taller/internal/infra/metrics"
	"github.com/gestiontall/taller/internal/reports"
)

// Handler is the thin HTTP collaborator over the domain: it decodes
// requests, calls the services and renders snapshots. No business logic
// lives here.
type Handler struct {
	log        *slog.Logger
	products   *catalog.Repo
	inv        *inventory.Ledger
	recipes    *recipes.Repo
	clients    *clients.Repo
	settlement *clients.Service
	engine     *production.Engine
	exporter   *reports.Exporter
	hourlyRate float64
}

func NewHandler(log *slog.Logger, products *catalog.Repo, inv *inventory.Ledger,
	recipeRepo *recipes.Repo, clientsRepo *clients.Repo, settlement *clients.Service,
	engine *production.Engine, exporter *reports.Exporter, hourlyRate float64) *Handler {

	return &Handler{
		log: log, products: products, inv: inv, recipes: recipeRepo,
		clients: clientsRepo, settlement: settlement, engine: engine,
		exporter: exporter, hourlyRate: hourlyRate,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.listProducts)
		r.Post("/", h.createProduct)
		r.Delete("/{id}", h.deactivateProduct)
	})

	r.Route("/inventory", func(r chi.Router) {
		r.Post("/adjustments", h.adjustStock)
		r.Get("/low-stock", h.lowStock)
		r.Get("/movements", h.listMovements)
	})

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", h.listRecipes)
		r.Post("/", h.createRecipe)
		r.Post("/{id}/steps", h.addRecipeStep)
		r.Delete("/{id}/steps/{stepID}", h.removeRecipeStep)
	})

	r.Route("/clients", func(r chi.Router) {
		r.Get("/", h.listClients)
		r.Post("/", h.createClient)
		r.Get("/{id}", h.getClient)
		r.Post("/{id}/debts", h.addDebt)
		r.Post("/{id}/payments", h.processPayment)
		r.Get("/{id}/payments", h.listPayments)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{id}", h.getOrder)
		r.Post("/{id}/cancel", h.cancelOrder)
		r.Post("/{id}/consume", h.consumeMaterials)
		r.Route("/{id}/steps/{stepID}", func(r chi.Router) {
			r.Post("/start", h.stepAction((*production.Engine).StartStep))
			r.Post("/pause", h.stepAction((*production.Engine).PauseStep))
			r.Post("/complete", h.completeStep)
			r.Get("/time", h.stepTime)
			r.Post("/operators", h.assignOperator)
			r.Delete("/operators", h.removeOperator)
		})
	})

	r.Get("/reports/export", h.exportReport)
}

/* Products */

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SKU            string  `json:"sku"`
		Name           string  `json:"name"`
		Kind           string  `json:"kind"`
		Metal          string  `json:"metal"`
		StockGrams     float64 `json:"stock_grams"`
		MinStockGrams  float64 `json:"min_stock_grams"`
		WeightPerPiece float64 `json:"weight_per_piece"`
		YieldPct       float64 `json:"yield_pct"`
		SalesPrice     float64 `json:"sales_price"`
		VisibleForSale bool    `json:"visible_for_sale"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.products.Create(r.Context(), catalog.Product{
		SKU:            req.SKU,
		Name:           req.Name,
		Kind:           catalog.Kind(req.Kind),
		Metal:          catalog.Metal(req.Metal),
		StockGrams:     req.StockGrams,
		MinStockGrams:  req.MinStockGrams,
		WeightPerPiece: req.WeightPerPiece,
		YieldPct:       req.YieldPct,
		SalesPrice:     req.SalesPrice,
		VisibleForSale: req.VisibleForSale,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	onlyActive := q.Get("active") == "true"
	list := h.products.List(r.Context(), onlyActive, catalog.Kind(q.Get("kind")), catalog.Metal(q.Get("metal")))
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.SetActive(r.Context(), chi.URLParam(r, "id"), false)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

/* Inventory */

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  string  `json:"product_id"`
		DeltaGrams float64 `json:"delta_grams"`
		Note       string  `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	p, err := h.inv.AdjustStock(r.Context(), req.ProductID, req.DeltaGrams, req.Note)
	if err != nil {
		h.writeError(w, err)
		return
	}
	direction := "in"
	if req.DeltaGrams < 0 {
		direction = "out"
	}
	metrics.StockAdjustments.WithLabelValues(direction).Inc()
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) lowStock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.LowStock(r.Context()))
}

func (h *Handler) listMovements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.inv.Movements(r.Context(), r.URL.Query().Get("product_id")))
}

/* Recipes */

func (h *Handler) createRecipe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string  `json:"name"`
		ProductID   string  `json:"product_id"`
		WastePct    float64 `json:"waste_pct"`
		Steps       []struct {
			Name             string  `json:"name"`
			Order            int     `json:"order"`
			EstimatedMinutes float64 `json:"estimated_minutes"`
		} `json:"steps"`
		Ingredients []struct {
			ProductID     string  `json:"product_id"`
			GramsRequired float64 `json:"grams_required"`
		} `json:"ingredients"`
	}
	if !decode(w, r, &req) {
		return
	}
	rec := recipes.Recipe{Name: req.Name, ProductID: req.ProductID, WastePct: req.WastePct}
	for _, s := range req.Steps {
		rec.Steps = append(rec.Steps, recipes.Step{Name: s.Name, Order: s.Order, EstimatedMinutes: s.EstimatedMinutes})
	}
	for _, ing := range req.Ingredients {
		rec.Ingredients = append(rec.Ingredients, recipes.Ingredient{ProductID: ing.ProductID, GramsRequired: ing.GramsRequired})
	}
	created, err := h.recipes.Create(r.Context(), rec)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) listRecipes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.recipes.List(r.Context()))
}

func (h *Handler) addRecipeStep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name             string  `json:"name"`
		Order            int     `json:"order"`
		EstimatedMinutes float64 `json:"estimated_minutes"`
	}
	if !decode(w, r, &req) {
		return
	}
	rec, err := h.recipes.AddStep(r.Context(), chi.URLParam(r, "id"),
		recipes.Step{Name: req.Name, Order: req.Order, EstimatedMinutes: req.EstimatedMinutes})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *Handler) removeRecipeStep(w http.ResponseWriter, r *http.Request) {
	rec, err := h.recipes.RemoveStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

/* Clients */

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.clients.Create(r.Context(), req.Name, req.Phone, req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("debtors") == "true" {
		writeJSON(w, http.StatusOK, h.clients.ListWithDebt(r.Context()))
		return
	}
	writeJSON(w, http.StatusOK, h.clients.List(r.Context()))
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	c, err := h.clients.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) addDebt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind   string  `json:"kind"`
		Amount float64 `json:"amount"`
	}
	if !decode(w, r, &req) {
		return
	}
	c, err := h.settlement.AddDebt(r.Context(), chi.URLParam(r, "id"), clients.BalanceKind(req.Kind), req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) processPayment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Kind     string  `json:"kind"` // cash | material
		Amount   float64 `json:"amount"`
		Grams    float64 `json:"grams"`
		Material string  `json:"material"`
		Note     string  `json:"note"`
	}
	if !decode(w, r, &req) {
		return
	}
	clientID := chi.URLParam(r, "id")

	var (
		p   clients.Payment
		err error
	)
	switch clients.PaymentKind(req.Kind) {
	case clients.PaymentCash:
		p, err = clients.NewCashPayment(clientID, req.Amount, req.Note)
	case clients.PaymentMaterial:
		p, err = clients.NewMaterialPayment(clientID, req.Grams, clients.MaterialKind(req.Material), req.Note)
	default:
		err = errs.Invalidf("unknown payment kind %q", req.Kind)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	c, err := h.settlement.ProcessPayment(r.Context(), p)
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.PaymentsProcessed.WithLabelValues(req.Kind).Inc()
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	history := h.clients.PaymentsByClient(r.Context(), chi.URLParam(r, "id"))
	out := make([]paymentView, 0, len(history))
	for _, p := range history {
		out = append(out, renderPayment(p))
	}
	writeJSON(w, http.StatusOK, out)
}

/* Orders */

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID  string `json:"product_id"`
		Quantity   int    `json:"quantity"`
		ClientID   string `json:"client_id"`
		ClientName string `json:"client_name"`
		Notes      string `json:"notes"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := h.engine.CreateOrder(r.Context(), req.ProductID, req.Quantity, req.ClientID, req.ClientName, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.OrdersCreated.Inc()
	writeJSON(w, http.StatusCreated, h.renderOrder(o))
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	var list []*production.Order
	if status := r.URL.Query().Get("status"); status != "" {
		list = h.engine.ListByStatus(r.Context(), production.Status(status))
	} else {
		list = h.engine.List(r.Context())
	}
	out := make([]orderView, 0, len(list))
	for _, o := range list {
		out = append(out, h.renderOrder(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderOrder(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderOrder(o))
}

func (h *Handler) consumeMaterials(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.ConsumeMaterials(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "consumed"})
}

// stepAction adapts the start/pause engine calls into one handler shape.
func (h *Handler) stepAction(fn func(*production.Engine, context.Context, string, string) (*production.Order, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := fn(h.engine, r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"))
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, h.renderOrder(o))
	}
}

func (h *Handler) completeStep(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.CompleteStep(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	metrics.StepsCompleted.Inc()
	writeJSON(w, http.StatusOK, h.renderOrder(o))
}

func (h *Handler) stepTime(w http.ResponseWriter, r *http.Request) {
	orderID, stepID := chi.URLParam(r, "id"), chi.URLParam(r, "stepID")
	elapsed, err := h.engine.StepElapsed(r.Context(), orderID, stepID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	cost, err := h.engine.StepCost(r.Context(), orderID, stepID, h.hourlyRate)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{
		"elapsed_minutes": elapsed,
		"cost":            cost,
	})
}

func (h *Handler) assignOperator(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}
	o, err := h.engine.AssignOperator(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"), req.Name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderOrder(o))
}

func (h *Handler) removeOperator(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.RemoveOperator(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "stepID"), r.URL.Query().Get("name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.renderOrder(o))
}

/* Reports */

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	f, err := h.exporter.Workbook(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	defer func() { _ = f.Close() }()

	filename := fmt.Sprintf("taller_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		h.log.Error("report export failed", "err", err)
	}
}

/* Helpers */

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errs.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, errs.ErrInvariant), errors.Is(err, errs.ErrAlreadyExists):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
