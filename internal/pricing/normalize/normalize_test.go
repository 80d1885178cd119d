package normalize

import (
	"fmt"
	"testing"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

func TestResolveSizePatterns(t *testing.T) {
	tests := []struct {
		sizeText string
		wantML   float64
		wantQty  int
	}{
		// multipack notation
		{"12 x 1250ml", 1250, 12},
		{"24 x 375ml", 375, 24},
		{"12x1.25l", 1250, 12},
		{"30 X 375 ml", 375, 30},
		// pack-of notation
		{"1250ml (pack of 12)", 1250, 12},
		{"375ml pack of 24", 375, 24},
		// single unit
		{"600ml", 600, 1},
		{"1.25l", 1250, 1},
		{"2 litre", 2000, 1},
		{"2 litres", 2000, 1},
		// bare number fallback
		{"355", 355, 1},
		// nothing usable
		{"", 0, 1},
		{"large", 0, 1},
	}

	for _, tt := range tests {
		ml, qty, qtyFound := resolveSize(tt.sizeText)
		if !qtyFound {
			qty = resolvePackQty(tt.sizeText, "")
		}
		if ml != tt.wantML || qty != tt.wantQty {
			t.Errorf("resolveSize(%q) = (%v ml, qty %d), want (%v ml, qty %d)",
				tt.sizeText, ml, qty, tt.wantML, tt.wantQty)
		}
	}
}

func TestMultipackNotationsAgree(t *testing.T) {
	// "12 x 1250ml" and "1250ml (pack of 12)" must resolve to the same
	// total volume.
	a, _ := Normalize(domain.RawRecord{Name: "Soda", SizeText: "12 x 1250ml", PriceText: "30.00", InStock: true}, "coles")
	b, _ := Normalize(domain.RawRecord{Name: "Soda", SizeText: "1250ml (pack of 12)", PriceText: "30.00", InStock: true}, "coles")

	if a.TotalVolumeML() != 15000 || b.TotalVolumeML() != 15000 {
		t.Errorf("total volumes = %v, %v, want both 15000", a.TotalVolumeML(), b.TotalVolumeML())
	}
	if a.PricePerLitre != b.PricePerLitre {
		t.Errorf("price per litre differs between notations: %v vs %v", a.PricePerLitre, b.PricePerLitre)
	}
}

func TestPackQtyFromNameWhenSizeSilent(t *testing.T) {
	p, err := Normalize(domain.RawRecord{
		Name:      "Soda Cans Pack of 24",
		SizeText:  "375ml",
		PriceText: "22.00",
		InStock:   true,
	}, "woolworths")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PackQty != 24 {
		t.Errorf("PackQty = %d, want 24 (from name)", p.PackQty)
	}
	if p.SizeML != 375 {
		t.Errorf("SizeML = %v, want 375", p.SizeML)
	}
}

func TestPricePerLitreScaleInvariant(t *testing.T) {
	single, err := Normalize(domain.RawRecord{
		Name: "Soda", SizeText: "1000ml", PriceText: "3.00", InStock: true,
	}, "coles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pack, err := Normalize(domain.RawRecord{
		Name: "Soda", SizeText: "4 x 250ml", PriceText: "3.00", InStock: true,
	}, "coles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if single.PricePerLitre != pack.PricePerLitre {
		t.Errorf("price per litre not scale-invariant: %v vs %v",
			single.PricePerLitre, pack.PricePerLitre)
	}
	if single.PricePerLitre != 3.00 {
		t.Errorf("PricePerLitre = %v, want 3.00", single.PricePerLitre)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	first, err := Normalize(domain.RawRecord{
		Name:      "Sunkist Zero Sugar",
		SizeText:  "4 x 250ml",
		PriceText: "$5.00",
		InStock:   true,
		URL:       "https://example.com/p/1",
	}, "coles")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Feed the canonical product back through as its own raw record.
	again, err := Normalize(domain.RawRecord{
		Name:      first.Name,
		SizeText:  first.SizeText,
		PriceText: fmt.Sprintf("%.2f", first.Price),
		InStock:   first.InStock,
		URL:       first.URL,
	}, first.Store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first != again {
		t.Errorf("re-normalization changed the product:\nfirst: %+v\nagain: %+v", first, again)
	}
}

func TestCoercePrice(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"$4.50", 4.50},
		{"4.50", 4.50},
		{"1,299.00", 1299.00},
		{"from $12", 12},
		{"", 0},
		{"call for price", 0},
	}
	for _, tt := range tests {
		if got := CoercePrice(tt.text); got != tt.want {
			t.Errorf("CoercePrice(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestUnusablePricingIsStorableNotError(t *testing.T) {
	p, err := Normalize(domain.RawRecord{
		Name: "Mystery Soda", SizeText: "unknown", PriceText: "", InStock: true,
	}, "amazon")
	if err != nil {
		t.Fatalf("zero price/volume should normalize, got error: %v", err)
	}
	if p.PricePerLitre != 0 {
		t.Errorf("PricePerLitre = %v, want 0 for unusable pricing", p.PricePerLitre)
	}
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		raw       domain.RawRecord
		store     string
		wantField string
	}{
		{"missing name", domain.RawRecord{SizeText: "375ml", PriceText: "2.00"}, "coles", "name"},
		{"missing store", domain.RawRecord{Name: "Soda", SizeText: "375ml"}, "", "store"},
	}

	for _, tt := range tests {
		_, err := Normalize(tt.raw, tt.store)
		verr, ok := err.(*ValidationError)
		if !ok {
			t.Errorf("%s: err = %v, want *ValidationError", tt.name, err)
			continue
		}
		if verr.Field != tt.wantField {
			t.Errorf("%s: field = %q, want %q", tt.name, verr.Field, tt.wantField)
		}
	}
}
