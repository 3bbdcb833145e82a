// Package alloy holds the pure gold-alloy and weight math used when
// planning a production run. No state, no side effects.
package alloy

import (
	"math"

	"github.com/gestiontall/taller/internal/domain/errs"
)

// Karat is gold purity in parts-per-24.
type Karat string

const (
	Karat10 Karat = "10k"
	Karat14 Karat = "14k"
)

// Fraction returns the pure-gold weight fraction as the exact
// parts-per-24 ratio. Rounded decimals would drift on large batches.
func (k Karat) Fraction() (float64, error) {
	switch k {
	case Karat10:
		return 10.0 / 24.0, nil
	case Karat14:
		return 14.0 / 24.0, nil
	default:
		return 0, errs.Invalidf("unknown karat %q", string(k))
	}
}

// Calculation is the split of a target weight into pure gold and alloy metal.
type Calculation struct {
	Karat            Karat   `json:"karat"`
	TargetGrams      float64 `json:"target_grams"`
	PureGoldGrams    float64 `json:"pure_gold_grams"`
	AlloyGrams       float64 `json:"alloy_grams"`
	PureGoldFraction float64 `json:"pure_gold_fraction"`
}

// Compute splits targetGrams of k-karat gold into pure gold and alloy.
// Gram results are rounded to 2 decimals for display.
func Compute(k Karat, targetGrams float64) (Calculation, error) {
	frac, err := k.Fraction()
	if err != nil {
		return Calculation{}, err
	}
	if targetGrams < 0 {
		return Calculation{}, errs.Invalidf("target weight must be >= 0, got %v", targetGrams)
	}

	pure := targetGrams * frac
	return Calculation{
		Karat:            k,
		TargetGrams:      targetGrams,
		PureGoldGrams:    round2(pure),
		AlloyGrams:       round2(targetGrams - pure),
		PureGoldFraction: frac,
	}, nil
}

// GrossWeight returns the raw weight that must be melted so that, after
// production losses, netGrams survive. yield is the surviving fraction.
func GrossWeight(netGrams, yield float64) (float64, error) {
	if yield <= 0 || yield > 1 {
		return 0, errs.Invalidf("yield must be in (0,1], got %v", yield)
	}
	if netGrams < 0 {
		return 0, errs.Invalidf("net weight must be >= 0, got %v", netGrams)
	}
	return round2(netGrams / yield), nil
}

// Materials is the full material plan for a production run.
type Materials struct {
	TotalNetGrams   float64      `json:"total_net_grams"`
	TotalGrossGrams float64      `json:"total_gross_grams"`
	WasteGrams      float64      `json:"waste_grams"`
	Alloy           *Calculation `json:"alloy,omitempty"`
}

// ProductionMaterials computes net/gross/waste weight for quantity pieces
// of weightPerPiece grams each. When karat is non-empty the gross weight
// is additionally split into pure gold and alloy metal.
func ProductionMaterials(weightPerPiece float64, quantity int, yield float64, karat Karat) (Materials, error) {
	if weightPerPiece < 0 {
		return Materials{}, errs.Invalidf("weight per piece must be >= 0, got %v", weightPerPiece)
	}
	if quantity <= 0 {
		return Materials{}, errs.Invalidf("quantity must be > 0, got %d", quantity)
	}

	net := weightPerPiece * float64(quantity)
	gross, err := GrossWeight(net, yield)
	if err != nil {
		return Materials{}, err
	}

	m := Materials{
		TotalNetGrams:   round2(net),
		TotalGrossGrams: gross,
		WasteGrams:      round2(gross - net),
	}
	if karat != "" {
		calc, err := Compute(karat, gross)
		if err != nil {
			return Materials{}, err
		}
		m.Alloy = &calc
	}
	return m, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
