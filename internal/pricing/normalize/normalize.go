// Package normalize converts raw, source-native product records into the
// canonical Product schema: size text resolved to millilitres, pack
// quantity resolved from size or name, price coerced, price-per-litre
// derived, and the result validated.
package normalize

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/vietddude/pricewatch/internal/core/domain"
)

// ValidationError reports the first field that failed semantic validation.
type ValidationError struct {
	Field   string
	Reason  string
	Product string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid field %q (%s) in product %q", e.Field, e.Reason, e.Product)
}

// Size text patterns, in precedence order. The first match wins and later
// patterns are not tried.
var (
	// "12 x 1250ml", "24 x 375 ml", "12 x 1.25l"
	reMultipack = regexp.MustCompile(`(?i)(\d+)\s*x\s*(\d+(?:\.\d+)?)\s*(ml|litres?|l)\b`)
	// "1250ml (pack of 12)"
	rePackOf = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|litres?|l)\b\s*\(?\s*pack\s*of\s*(\d+)\s*\)?`)
	// "375ml", "1.25l", "2 litre"
	reSingle = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(ml|litres?|l)\b`)
	// fallback: first bare number, interpreted as millilitres
	reBareNumber = regexp.MustCompile(`\d+(?:\.\d+)?`)
)

// Pack quantity patterns applied to size text first, then name text.
var packQtyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pack\s*of\s*(\d+)`),
	regexp.MustCompile(`(?i)(\d+)\s*x\s*\d+`),
	regexp.MustCompile(`(?i)(\d+)\s*pack`),
}

var rePrice = regexp.MustCompile(`\d+(?:\.\d+)?`)

// Normalize converts a raw record from the given store into a canonical
// Product, or a *ValidationError if the record is semantically unusable.
// Records with unusable pricing (pricePerLitre == 0) still normalize; the
// selector excludes them from ranking.
func Normalize(raw domain.RawRecord, store string) (domain.Product, error) {
	name := strings.TrimSpace(raw.Name)

	sizeML, packQty, qtyFound := resolveSize(raw.SizeText)
	if !qtyFound {
		packQty = resolvePackQty(raw.SizeText, raw.Name)
	}

	price := CoercePrice(raw.PriceText)

	p := domain.Product{
		Store:         store,
		Name:          name,
		SizeML:        sizeML,
		PackQty:       packQty,
		Price:         price,
		PricePerLitre: domain.DerivePricePerLitre(price, sizeML, packQty),
		InStock:       raw.InStock,
		URL:           strings.TrimSpace(raw.URL),
		SizeText:      strings.TrimSpace(raw.SizeText),
		DeliveryInfo:  strings.TrimSpace(raw.DeliveryInfo),
	}

	if err := validate(p); err != nil {
		slog.Debug("dropping record failing validation",
			"store", store, "product", name, "field", err.Field, "reason", err.Reason)
		return domain.Product{}, err
	}
	return p, nil
}

// resolveSize applies the ordered size patterns to the size text. It
// returns the single-unit volume in millilitres and, for the multipack
// notations, the pack quantity encoded in the same match.
func resolveSize(sizeText string) (sizeML float64, packQty int, qtyFound bool) {
	if strings.TrimSpace(sizeText) == "" {
		return 0, 1, false
	}

	if m := reMultipack.FindStringSubmatch(sizeText); m != nil {
		qty, _ := strconv.Atoi(m[1])
		vol, _ := strconv.ParseFloat(m[2], 64)
		return toMillilitres(vol, m[3]), qty, true
	}

	if m := rePackOf.FindStringSubmatch(sizeText); m != nil {
		vol, _ := strconv.ParseFloat(m[1], 64)
		qty, _ := strconv.Atoi(m[3])
		return toMillilitres(vol, m[2]), qty, true
	}

	if m := reSingle.FindStringSubmatch(sizeText); m != nil {
		vol, _ := strconv.ParseFloat(m[1], 64)
		return toMillilitres(vol, m[2]), 1, false
	}

	if m := reBareNumber.FindString(sizeText); m != "" {
		vol, _ := strconv.ParseFloat(m, 64)
		return vol, 1, false
	}

	return 0, 1, false
}

func toMillilitres(vol float64, unit string) float64 {
	if strings.EqualFold(unit, "ml") {
		return vol
	}
	return vol * 1000
}

// resolvePackQty scans size text then name text for a pack indicator.
// Defaults to 1 when none is found.
func resolvePackQty(sizeText, nameText string) int {
	for _, text := range []string{sizeText, nameText} {
		if strings.TrimSpace(text) == "" {
			continue
		}
		for _, re := range packQtyPatterns {
			if m := re.FindStringSubmatch(text); m != nil {
				qty, err := strconv.Atoi(m[1])
				if err == nil && qty >= 1 {
					return qty
				}
			}
		}
	}
	return 1
}

// CoercePrice extracts a non-negative price from loosely formatted text
// such as "$4.50" or "1,299.00". Absent or unparsable text yields 0.
func CoercePrice(text string) float64 {
	cleaned := strings.ReplaceAll(text, ",", "")
	m := rePrice.FindString(cleaned)
	if m == "" {
		return 0
	}
	price, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return price
}

func validate(p domain.Product) *ValidationError {
	switch {
	case p.Store == "":
		return &ValidationError{Field: "store", Reason: "missing", Product: p.Name}
	case p.Name == "":
		return &ValidationError{Field: "name", Reason: "missing", Product: p.Name}
	case p.SizeML < 0:
		return &ValidationError{Field: "size_ml", Reason: "negative", Product: p.Name}
	case p.PackQty < 1:
		return &ValidationError{Field: "pack_qty", Reason: "below 1", Product: p.Name}
	case p.Price < 0:
		return &ValidationError{Field: "price", Reason: "negative", Product: p.Name}
	case p.PricePerLitre < 0:
		return &ValidationError{Field: "price_per_litre", Reason: "negative", Product: p.Name}
	case !p.Consistent():
		return &ValidationError{Field: "price_per_litre", Reason: "inconsistent with price and volume", Product: p.Name}
	}
	return nil
}
