package model

// ProtectionPackageID is the sentinel package id carried by synthesized
// protection-device line items, distinguishing them from real packages.
const ProtectionPackageID = "auto-schutzorgane"

// ProtectionItemPrefix namespaces the ids of synthesized protection-device
// line items.
const ProtectionItemPrefix = "schutz-"

// LineItem is one resolved, priceable row of the configuration. Identity is
// the (instance, product) composite: repeats of the same product within an
// instance accumulate instead of duplicating.
type LineItem struct {
	ID         string
	InstanceID string
	PackageID  string
	ProductID  string
	Name       string
	Unit       string
	GroupID    string
	Category   string
	Quality    QualityLevel
	// Quantity is rounded to whole units, minimum 1 when positive.
	Quantity float64
	// UnitPrice is the catalog base price; entity pricing and overrides are
	// applied by the pricing aggregator, never stored here.
	UnitPrice float64
	// HoursPerUnit already includes the rule's hours multiplier.
	HoursPerUnit RoleHours
	// Hours are the accumulated totals, HoursPerUnit scaled by Quantity and
	// summed over merged rules.
	Hours RoleHours
}

// LineItemID builds the composite key for a package line item.
func LineItemID(instanceID, productID string) string {
	return instanceID + "-" + productID
}
