package resolve

import (
	"fmt"
	"math"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// enclosureTiers is the fixed ascending ladder of enclosure capacities in
// module slots.
var enclosureTiers = []int{12, 24, 36, 48, 60}

// RequiredSlots computes the module slots needed for the given protection
// items: one slot per breaker, one surge-protection slot, three per RCD.
func RequiredSlots(protection []model.LineItem) int {
	var breakers float64
	for _, it := range protection {
		switch it.GroupID {
		case GroupBreaker16, GroupBreaker10, GroupBreaker3P16:
			breakers += it.Quantity
		}
	}
	if breakers <= 0 {
		return 0
	}
	rcds := math.Ceil(breakers / breakersPerRCD)
	return int(breakers) + surgeProtectorSlot + int(rcds)*slotsPerRCD
}

// enclosureTier returns the smallest ladder tier that fits, or the largest
// tier with overflow=true when the slots exceed it.
func enclosureTier(slots int) (int, bool) {
	for _, t := range enclosureTiers {
		if slots <= t {
			return t, false
		}
	}
	return enclosureTiers[len(enclosureTiers)-1], true
}

// ResizeEnclosure updates an existing enclosure line item in place to the
// product sized for the protection devices. Items are modified in the given
// slice. Without breakers, or without an enclosure item, nothing changes:
// enclosure items only enter through the normal package-rule path.
func ResizeEnclosure(items []model.LineItem, protection []model.LineItem, cat *catalogue.Snapshot, location string) []Diagnostic {
	slots := RequiredSlots(protection)
	if slots == 0 {
		return nil
	}

	idx := -1
	for i := range items {
		if items[i].GroupID == GroupEnclosure {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}

	var diags []Diagnostic
	tier, overflow := enclosureTier(slots)
	if overflow {
		diags = append(diags, Diagnostic{
			Kind:    DiagEnclosureOverflow,
			GroupID: GroupEnclosure,
			Detail:  fmt.Sprintf("%d slots exceed the %d-module tier", slots, tier),
		})
	}

	p, ok := enclosureProduct(cat, location, tier)
	if !ok {
		diags = append(diags, Diagnostic{
			Kind:    DiagNoProduct,
			GroupID: GroupEnclosure,
			Detail:  fmt.Sprintf("no enclosure product with %d modules", tier),
		})
		return diags
	}

	it := &items[idx]
	it.ProductID = p.ID
	it.Name = p.Name
	it.Unit = p.Unit
	it.Quality = p.Quality
	it.UnitPrice = p.UnitPrice
	it.HoursPerUnit = p.HoursPerUnit
	it.Hours = p.HoursPerUnit.Scale(it.Quantity)
	it.ID = model.LineItemID(it.InstanceID, p.ID)
	return diags
}

// enclosureProduct picks the group product matching the tier, or the smallest
// one that still fits, or the largest available.
func enclosureProduct(cat *catalogue.Snapshot, location string, tier int) (model.Product, bool) {
	products := cat.GroupProducts(GroupEnclosure, location)
	if len(products) == 0 {
		return model.Product{}, false
	}
	best := model.Product{}
	found := false
	largest := products[0]
	for _, p := range products {
		if p.Modules > largest.Modules {
			largest = p
		}
		if p.Modules >= tier && (!found || p.Modules < best.Modules) {
			best = p
			found = true
		}
	}
	if found {
		return best, true
	}
	return largest, true
}
