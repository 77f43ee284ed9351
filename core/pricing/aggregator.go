// Package pricing turns resolved line items into money. Every figure is a
// pure function of the current items, rates and the override overlay; totals
// are derived on demand and never stored.
package pricing

import (
	"gonum.org/v1/gonum/floats"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// Flags marks pricing-data gaps found while costing an item. Both are
// non-fatal, the item still participates in quantity and labor totals.
type Flags struct {
	// MissingPrice: the price book has the product but no base price, the
	// effective price is 0.
	MissingPrice bool
	// MissingColumn: no factor for the current location, factor defaults
	// to 1.0.
	MissingColumn bool
}

// Override is the user-entered overlay of a single line item, keyed by item
// id outside of this package. Overrides persist across recalculation.
type Override struct {
	Price  *float64
	Markup *float64
	// Hours replaces the accumulated total hours of a role.
	Hours map[model.Role]float64
}

// Clone returns a deep copy.
func (o Override) Clone() Override {
	cp := Override{}
	if o.Price != nil {
		v := *o.Price
		cp.Price = &v
	}
	if o.Markup != nil {
		v := *o.Markup
		cp.Markup = &v
	}
	if len(o.Hours) > 0 {
		cp.Hours = make(map[model.Role]float64, len(o.Hours))
		for r, h := range o.Hours {
			cp.Hours[r] = h
		}
	}
	return cp
}

// Empty reports whether the override carries no values.
func (o Override) Empty() bool {
	return o.Price == nil && o.Markup == nil && len(o.Hours) == 0
}

// ItemCost is the full money breakdown of one line item.
type ItemCost struct {
	ItemID            string
	PurchasePrice     float64
	MarkupPercent     float64
	SalesPricePerUnit float64
	MaterialTotal     float64
	LaborCost         float64
	Total             float64
	Flags             Flags
}

// Aggregator computes effective prices and totals. It holds only reference
// data and the overlay, no derived state.
type Aggregator struct {
	Prices        map[string]catalogue.PriceEntry
	Rates         catalogue.Rates
	Location      string
	Overrides     map[string]Override
	WageOverrides map[model.Role]float64
}

// PurchasePrice resolves the effective per-unit purchase price: local
// override, else entity price (base times location factor), else the catalog
// unit price.
func (a Aggregator) PurchasePrice(it model.LineItem) (float64, Flags) {
	if ov, ok := a.Overrides[it.ID]; ok && ov.Price != nil {
		return *ov.Price, Flags{}
	}
	entry, ok := a.Prices[it.ProductID]
	if !ok {
		return it.UnitPrice, Flags{}
	}
	var flags Flags
	if !entry.HasBase {
		flags.MissingPrice = true
		return 0, flags
	}
	factor, ok := entry.Factors[a.Location]
	if !ok {
		factor = 1.0
		flags.MissingColumn = true
	}
	return entry.Base * factor, flags
}

// MarkupPercent returns the item's markup: local override else the global
// rate.
func (a Aggregator) MarkupPercent(itemID string) float64 {
	if ov, ok := a.Overrides[itemID]; ok && ov.Markup != nil {
		return *ov.Markup
	}
	return a.Rates.MarkupPercent
}

// Wage returns the effective hourly wage for a role: session override else
// the catalog rate. A missing rate is 0, surfacing in labor totals rather
// than failing.
func (a Aggregator) Wage(r model.Role) float64 {
	if w, ok := a.WageOverrides[r]; ok {
		return w
	}
	return a.Rates.Wages[r]
}

// EffectiveHours returns the item's accumulated role hours after manual
// overrides.
func (a Aggregator) EffectiveHours(it model.LineItem) model.RoleHours {
	h := it.Hours
	if ov, ok := a.Overrides[it.ID]; ok {
		for r, v := range ov.Hours {
			h = h.Set(r, v)
		}
	}
	return h
}

// LaborCost sums role hours times effective wages for one item.
func (a Aggregator) LaborCost(it model.LineItem) float64 {
	h := a.EffectiveHours(it)
	var cost float64
	for _, r := range model.Roles {
		cost += h.Get(r) * a.Wage(r)
	}
	return cost
}

// ItemCost computes the complete breakdown of one item.
func (a Aggregator) ItemCost(it model.LineItem) ItemCost {
	purchase, flags := a.PurchasePrice(it)
	markup := a.MarkupPercent(it.ID)
	sales := purchase * (1 + markup/100)
	material := sales * it.Quantity
	labor := a.LaborCost(it)
	return ItemCost{
		ItemID:            it.ID,
		PurchasePrice:     purchase,
		MarkupPercent:     markup,
		SalesPricePerUnit: sales,
		MaterialTotal:     material,
		LaborCost:         labor,
		Total:             material + labor,
		Flags:             flags,
	}
}

// Totals is the aggregation of a full configuration. Each level is a plain
// grouping over the same item costs, so the figures tie out exactly.
type Totals struct {
	Material   float64
	Labor      float64
	Grand      float64
	ByInstance map[string]float64
	ByPackage  map[string]float64
	// ByCategory groups per instance, then per item category.
	ByCategory map[string]map[string]float64
	Protection float64
}

// Totals aggregates package and protection items at every scope.
func (a Aggregator) Totals(items, protection []model.LineItem) Totals {
	t := Totals{
		ByInstance: make(map[string]float64),
		ByPackage:  make(map[string]float64),
		ByCategory: make(map[string]map[string]float64),
	}
	perItem := make([]float64, 0, len(items)+len(protection))

	for _, it := range items {
		c := a.ItemCost(it)
		perItem = append(perItem, c.Total)
		t.Material += c.MaterialTotal
		t.Labor += c.LaborCost
		t.ByInstance[it.InstanceID] += c.Total
		t.ByPackage[it.PackageID] += c.Total
		cat := t.ByCategory[it.InstanceID]
		if cat == nil {
			cat = make(map[string]float64)
			t.ByCategory[it.InstanceID] = cat
		}
		cat[it.Category] += c.Total
	}
	for _, it := range protection {
		c := a.ItemCost(it)
		perItem = append(perItem, c.Total)
		t.Material += c.MaterialTotal
		t.Labor += c.LaborCost
		t.Protection += c.Total
	}
	t.Grand = floats.Sum(perItem)
	return t
}
