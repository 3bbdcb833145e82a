package clients

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gestiontall/taller/internal/domain/catalog"
	"github.com/gestiontall/taller/internal/domain/errs"
	"github.com/gestiontall/taller/internal/domain/inventory"
)

// Service applies payments to client balances. Material payments also
// credit the matching scrap product in inventory, so the two ledgers move
// together. The scrap product is resolved through a fixed materialKind->SKU
// mapping established at setup time, not by display-name matching.
type Service struct {
	clients   *Repo
	products  *catalog.Repo
	inventory *inventory.Ledger
	scrapSKUs map[MaterialKind]string
	log       *slog.Logger
	now       func() time.Time
}

func NewService(clientsRepo *Repo, products *catalog.Repo, inv *inventory.Ledger, scrapSKUs map[MaterialKind]string, log *slog.Logger) *Service {
	return &Service{
		clients:   clientsRepo,
		products:  products,
		inventory: inv,
		scrapSKUs: scrapSKUs,
		log:       log,
		now:       time.Now,
	}
}

// WithClock overrides the service clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ProcessPayment settles a payment against the client's balances.
//
// Cash reduces the labor balance; material reduces the matching metal
// balance and credits the configured scrap product in inventory. Both
// variants clamp the balance at zero — overpayment is forgiven silently,
// a deliberate business rule.
//
// The balance write, the inventory credit and the log append are
// sequenced in that order. There is no rollback between them; with the
// in-memory stores each write succeeds or the whole call has already
// failed on lookup, so the sequencing is the documented extent of
// atomicity here.
func (s *Service) ProcessPayment(ctx context.Context, p Payment) (*Client, error) {
	if p.kind == "" {
		return nil, errs.Invalidf("payment built without constructor")
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}

	var (
		updated *Client
		err     error
	)
	switch p.kind {
	case PaymentCash:
		updated, err = s.clients.mutate(p.ClientID, func(c *Client) {
			c.BalanceMoney = clampZero(c.BalanceMoney - p.amount)
		})
	case PaymentMaterial:
		updated, err = s.settleMaterial(ctx, p)
	default:
		return nil, errs.Invalidf("unknown payment kind %q", string(p.kind))
	}
	if err != nil {
		return nil, err
	}

	// Record last: the payment enters history only once the balance
	// mutation has happened.
	s.clients.appendPayment(p)
	return updated, nil
}

func (s *Service) settleMaterial(ctx context.Context, p Payment) (*Client, error) {
	updated, err := s.clients.mutate(p.ClientID, func(c *Client) {
		switch p.material {
		case MaterialGold10k:
			c.BalanceGold10k = clampZero(c.BalanceGold10k - p.grams)
		case MaterialGold14k:
			c.BalanceGold14k = clampZero(c.BalanceGold14k - p.grams)
		case MaterialSilver:
			c.BalanceSilver = clampZero(c.BalanceSilver - p.grams)
		}
	})
	if err != nil {
		return nil, err
	}

	// Correlated inventory side: received metal becomes scrap raw material.
	// A missing mapping or product skips the credit but keeps the payment;
	// the receipt is still owed to history.
	sku, ok := s.scrapSKUs[p.material]
	if !ok {
		s.log.Warn("no scrap product configured for material kind",
			"material", string(p.material), "payment_id", p.ID)
		return updated, nil
	}
	scrap, err := s.products.GetBySKU(ctx, sku)
	if err != nil {
		s.log.Warn("scrap product not found, inventory not credited",
			"sku", sku, "material", string(p.material), "payment_id", p.ID, "err", err)
		return updated, nil
	}
	if _, err := s.inventory.AdjustStock(ctx, scrap.ID, p.grams, fmt.Sprintf("payment %s", p.ID)); err != nil {
		s.log.Warn("scrap receipt failed, inventory not credited",
			"sku", sku, "payment_id", p.ID, "err", err)
	}
	return updated, nil
}

// AddDebt records a new charge against one of the client's balances,
// e.g. when a production order is delivered.
func (s *Service) AddDebt(_ context.Context, clientID string, kind BalanceKind, amount float64) (*Client, error) {
	if amount <= 0 {
		return nil, errs.Invalidf("debt amount must be > 0, got %v", amount)
	}
	switch kind {
	case BalanceKindMoney, BalanceKindGold10k, BalanceKindGold14k, BalanceKindSilver:
	default:
		return nil, errs.Invalidf("unknown balance kind %q", string(kind))
	}
	return s.clients.mutate(clientID, func(c *Client) {
		switch kind {
		case BalanceKindMoney:
			c.BalanceMoney += amount
		case BalanceKindGold10k:
			c.BalanceGold10k += amount
		case BalanceKindGold14k:
			c.BalanceGold14k += amount
		case BalanceKindSilver:
			c.BalanceSilver += amount
		}
	})
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
