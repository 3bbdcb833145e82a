package clients

import (
	"time"

	"github.com/gestiontall/taller/internal/domain/errs"
)

// Client carries four independent, non-negative debt balances: labor debt
// in money plus material debt in grams per metal. Balances are clamped at
// zero on payment, never allowed to go negative.
type Client struct {
	ID             string
	Name           string
	Phone          string
	Email          string
	BalanceMoney   float64
	BalanceGold10k float64
	BalanceGold14k float64
	BalanceSilver  float64
	CreatedAt      time.Time
}

// TotalMaterialGrams is the combined material debt across metals.
func (c Client) TotalMaterialGrams() float64 {
	return c.BalanceGold10k + c.BalanceGold14k + c.BalanceSilver
}

// HasDebt reports whether any balance is outstanding.
func (c Client) HasDebt() bool {
	return c.BalanceMoney > 0 || c.TotalMaterialGrams() > 0
}

// BalanceKind names one of the four client balances.
type BalanceKind string

const (
	BalanceKindMoney   BalanceKind = "money"
	BalanceKindGold10k BalanceKind = "gold10k"
	BalanceKindGold14k BalanceKind = "gold14k"
	BalanceKindSilver  BalanceKind = "silver"
)

// MaterialKind is a metal accepted as payment.
type MaterialKind string

const (
	MaterialGold10k MaterialKind = "gold10k"
	MaterialGold14k MaterialKind = "gold14k"
	MaterialSilver  MaterialKind = "silver"
)

// PaymentKind tags the payment variant.
type PaymentKind string

const (
	PaymentCash     PaymentKind = "cash"
	PaymentMaterial PaymentKind = "material"
)

// Payment is an immutable historical record of a settlement. It is a
// tagged variant: cash carries an amount, material carries grams plus a
// metal kind. The constructors are the only way to build one, so an
// invalid combination is unrepresentable.
type Payment struct {
	ID        string
	ClientID  string
	CreatedAt time.Time
	Note      string

	kind     PaymentKind
	amount   float64
	grams    float64
	material MaterialKind
}

// NewCashPayment builds a cash payment against the labor balance.
func NewCashPayment(clientID string, amount float64, note string) (Payment, error) {
	if clientID == "" {
		return Payment{}, errs.Invalidf("payment needs a client")
	}
	if amount <= 0 {
		return Payment{}, errs.Invalidf("cash amount must be > 0, got %v", amount)
	}
	return Payment{ClientID: clientID, Note: note, kind: PaymentCash, amount: amount}, nil
}

// NewMaterialPayment builds a scrap-metal payment against the matching
// material balance.
func NewMaterialPayment(clientID string, grams float64, material MaterialKind, note string) (Payment, error) {
	if clientID == "" {
		return Payment{}, errs.Invalidf("payment needs a client")
	}
	if grams <= 0 {
		return Payment{}, errs.Invalidf("material grams must be > 0, got %v", grams)
	}
	switch material {
	case MaterialGold10k, MaterialGold14k, MaterialSilver:
	default:
		return Payment{}, errs.Invalidf("unknown material kind %q", string(material))
	}
	return Payment{ClientID: clientID, Note: note, kind: PaymentMaterial, grams: grams, material: material}, nil
}

// Kind returns the payment variant tag.
func (p Payment) Kind() PaymentKind { return p.kind }

// Amount returns the cash amount; zero for material payments.
func (p Payment) Amount() float64 { return p.amount }

// Material returns the grams and metal kind; zero values for cash payments.
func (p Payment) Material() (float64, MaterialKind) { return p.grams, p.material }
