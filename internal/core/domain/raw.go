package domain

// RawRecord is a source-native, loosely typed product record as returned
// by a source adapter. Price is kept as text so normalization owns the
// coercion rules; everything else is best-effort.
type RawRecord struct {
	Name         string `json:"name"`
	PriceText    string `json:"price"`
	SizeText     string `json:"size"`
	InStock      bool   `json:"in_stock"`
	URL          string `json:"url"`
	DeliveryInfo string `json:"delivery_info,omitempty"`
}
