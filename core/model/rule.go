package model

// SelectorBucket is one quantity-bucketed product override. A nil Max always
// matches.
type SelectorBucket struct {
	Max       *float64
	ProductID string
}

// ProductSelector overrides the quality-based product resolution for a rule.
// Buckets take precedence over the static product id.
type ProductSelector struct {
	Buckets         []SelectorBucket
	StaticProductID string
}

// ItemRule describes how much of a product group a package needs.
type ItemRule struct {
	PackageID    string
	GroupID      string
	QuantityBase float64
	Material     []FormulaEntry
	Hours        []FormulaEntry
	Selector     *ProductSelector
}
