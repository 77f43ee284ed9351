package resolve

import (
	"math"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/formula"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// HoursMultiplier evaluates the hours formula of a rule: starts at 1.0, adds
// every lookup/product contribution, then clamps with the floor entry if one
// is present.
func HoursMultiplier(rule model.ItemRule, env model.Env, groups formula.GroupQuantities) float64 {
	mult := 1.0
	for _, entry := range rule.Hours {
		mult += formula.Evaluate(entry, env, groups)
	}
	if min, ok := formula.Floor(rule.Hours); ok && mult < min {
		mult = min
	}
	return mult
}

// builder deduplicates line items by their (instance, product) composite key
// while preserving first-seen order.
type builder struct {
	order []string
	items map[string]*model.LineItem
}

func newBuilder() *builder {
	return &builder{items: make(map[string]*model.LineItem)}
}

// add merges one resolved rule result into the item set. quantity must be the
// unrounded pass-two figure; non-positive quantities never reach here.
func (b *builder) add(instanceID, packageID string, p model.Product, quantity, hoursMult float64) {
	rounded := math.Round(quantity)
	if rounded < 1 {
		rounded = 1
	}
	perUnit := p.HoursPerUnit.Scale(hoursMult)
	id := model.LineItemID(instanceID, p.ID)
	if existing, ok := b.items[id]; ok {
		existing.Quantity += rounded
		existing.Hours = existing.Hours.Add(perUnit.Scale(rounded))
		if existing.Quantity > 0 {
			existing.HoursPerUnit = existing.Hours.Scale(1 / existing.Quantity)
		}
		return
	}
	item := &model.LineItem{
		ID:           id,
		InstanceID:   instanceID,
		PackageID:    packageID,
		ProductID:    p.ID,
		Name:         p.Name,
		Unit:         p.Unit,
		GroupID:      p.GroupID,
		Category:     p.Category,
		Quality:      p.Quality,
		Quantity:     rounded,
		UnitPrice:    p.UnitPrice,
		HoursPerUnit: perUnit,
		Hours:        perUnit.Scale(rounded),
	}
	b.items[id] = item
	b.order = append(b.order, id)
}

func (b *builder) list() []model.LineItem {
	out := make([]model.LineItem, 0, len(b.order))
	for _, id := range b.order {
		out = append(out, *b.items[id])
	}
	return out
}
