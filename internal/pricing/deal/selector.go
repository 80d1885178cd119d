// Package deal ranks validated products and picks the recommended
// purchase. Single-serve cans are preferred up to a higher per-litre
// ceiling than bottles; the tier order is deliberate economics, not a
// plain cheapest-wins rule.
package deal

import (
	"sort"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// Per-litre ceilings for the preferred tiers.
const (
	CanCeilingPerLitre    = 2.50
	BottleCeilingPerLitre = 2.00
)

// Selector applies the tiered best-deal rules using a pluggable
// packaging classifier.
type Selector struct {
	Classifier Classifier
	CanCeiling float64
	BotCeiling float64
}

// NewSelector builds a selector with the default classifier and ceilings.
func NewSelector() *Selector {
	return &Selector{
		CanCeiling: CanCeilingPerLitre,
		BotCeiling: BottleCeilingPerLitre,
	}
}

// eligible keeps products that can actually be bought and compared:
// in stock with usable per-litre pricing.
func (s *Selector) eligible(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.InStock && p.PricePerLitre > 0 && p.Price > 0 {
			out = append(out, p)
		}
	}
	return out
}

// Select picks the recommended product, or nil when nothing is eligible.
// Tier order: cheapest can under the can ceiling, cheapest bottle under
// the bottle ceiling, cheapest bottle at any price, cheapest can at any
// price (only when no bottles exist at all).
func (s *Selector) Select(products []domain.Product) *domain.Product {
	candidates := s.eligible(products)
	if len(candidates) == 0 {
		return nil
	}

	var cans, bottles []domain.Product
	for _, p := range candidates {
		if s.Classifier.IsCan(p.Name, p.SizeText, p.PackQty) {
			cans = append(cans, p)
		} else {
			bottles = append(bottles, p)
		}
	}

	if best := cheapestUnder(cans, s.CanCeiling); best != nil {
		return best
	}
	if best := cheapestUnder(bottles, s.BotCeiling); best != nil {
		return best
	}
	if best := cheapest(bottles); best != nil {
		return best
	}
	return cheapest(cans)
}

// Rank returns all eligible products sorted ascending by price per litre.
// The sort is stable so discovery order breaks ties.
func (s *Selector) Rank(products []domain.Product) []domain.Product {
	ranked := s.eligible(products)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PricePerLitre < ranked[j].PricePerLitre
	})
	return ranked
}

// Savings compares every other ranked product against the recommendation,
// most expensive gap first.
func (s *Selector) Savings(best *domain.Product, ranked []domain.Product) []domain.Saving {
	if best == nil || best.PricePerLitre == 0 {
		return nil
	}

	var savings []domain.Saving
	for _, p := range ranked {
		if p == *best || p.PricePerLitre <= 0 {
			continue
		}
		amount := p.PricePerLitre - best.PricePerLitre
		savings = append(savings, domain.Saving{
			Product:    p,
			AmountPerL: amount,
			Percent:    amount / p.PricePerLitre * 100,
		})
	}
	sort.SliceStable(savings, func(i, j int) bool {
		return savings[i].AmountPerL > savings[j].AmountPerL
	})
	return savings
}

func cheapestUnder(products []domain.Product, ceiling float64) *domain.Product {
	var under []domain.Product
	for _, p := range products {
		if p.PricePerLitre <= ceiling {
			under = append(under, p)
		}
	}
	return cheapest(under)
}

func cheapest(products []domain.Product) *domain.Product {
	if len(products) == 0 {
		return nil
	}
	best := products[0]
	for _, p := range products[1:] {
		if p.PricePerLitre < best.PricePerLitre {
			best = p
		}
	}
	return &best
}
