package domain

import "math"

// Product is the canonical, unit-normalized product record used for
// comparison. It is created once by normalization and never mutated.
type Product struct {
	Store         string  `json:"store"`
	Name          string  `json:"name"`
	SizeML        float64 `json:"size_ml"`         // single-unit volume in millilitres
	PackQty       int     `json:"pack_qty"`        // units per pack, >= 1
	Price         float64 `json:"price"`           // total pack price
	PricePerLitre float64 `json:"price_per_litre"` // derived from price, size and pack qty
	InStock       bool    `json:"in_stock"`
	URL           string  `json:"url"`
	SizeText      string  `json:"size_text,omitempty"` // original size text, kept for display
	DeliveryInfo  string  `json:"delivery_info,omitempty"`
}

// priceTolerance is the allowed drift between the stored price-per-litre
// and the value recomputed from price, size and pack qty.
const priceTolerance = 0.005

// TotalVolumeML returns the resolved total volume of the pack.
func (p Product) TotalVolumeML() float64 {
	return p.SizeML * float64(p.PackQty)
}

// DerivePricePerLitre computes price per litre from price, single-unit
// size and pack qty. Returns 0 when the volume is unusable.
func DerivePricePerLitre(price, sizeML float64, packQty int) float64 {
	litres := sizeML / 1000 * float64(packQty)
	if litres <= 0 {
		return 0
	}
	return price / litres
}

// Consistent reports whether PricePerLitre agrees with the value derived
// from the other fields, within tolerance. A zero PricePerLitre with zero
// derivable volume is consistent (unusable pricing, not corruption).
func (p Product) Consistent() bool {
	derived := DerivePricePerLitre(p.Price, p.SizeML, p.PackQty)
	return math.Abs(p.PricePerLitre-derived) <= priceTolerance
}
