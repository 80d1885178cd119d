package deal

import "strings"

// PackagingClass is the container class a product competes in. Pack
// economics differ from single-serve economics, so multipacks are kept
// out of the can class entirely.
type PackagingClass string

const (
	ClassCan    PackagingClass = "can"
	ClassBottle PackagingClass = "bottle"
)

// Keyword tables are data, not control flow: the rules can change without
// touching the selector. The can/bottle lists deliberately overlap the
// original heuristics, including their known ambiguities (a record
// matching both tables counts as not-a-can).
var (
	packIndicators = []string{
		"pack of", "multi", "bulk", "case of", "x24", "x12", "x6",
	}
	canIndicators = []string{
		"can", "tin", "355ml", "375ml", "330ml",
	}
	bottleIndicators = []string{
		"bottle", "2l", "1.25l", "1l", "600ml",
	}
)

// Classifier decides the packaging class of a product from its name and
// size text. The zero value uses the default keyword tables.
type Classifier struct {
	Packs   []string
	Cans    []string
	Bottles []string
}

func (c Classifier) packs() []string {
	if c.Packs != nil {
		return c.Packs
	}
	return packIndicators
}

func (c Classifier) cans() []string {
	if c.Cans != nil {
		return c.Cans
	}
	return canIndicators
}

func (c Classifier) bottles() []string {
	if c.Bottles != nil {
		return c.Bottles
	}
	return bottleIndicators
}

// IsCan reports whether the product is a single-serve can. Multipacks are
// never cans, whatever their container keywords, and a record matching
// both can and bottle indicators resolves to not-a-can.
func (c Classifier) IsCan(name, sizeText string, packQty int) bool {
	nameLower := strings.ToLower(name)
	sizeLower := strings.ToLower(sizeText)

	if packQty >= 2 || containsAny(nameLower, c.packs()) {
		return false
	}

	hasCan := containsAny(nameLower, c.cans()) || containsAny(sizeLower, c.cans())
	hasBottle := containsAny(nameLower, c.bottles()) || containsAny(sizeLower, c.bottles())

	return hasCan && !hasBottle
}

// Class returns the packaging class for selection purposes. Everything
// that is not a single-serve can competes as a bottle.
func (c Classifier) Class(name, sizeText string, packQty int) PackagingClass {
	if c.IsCan(name, sizeText, packQty) {
		return ClassCan
	}
	return ClassBottle
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
