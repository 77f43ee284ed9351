package resolve

import (
	"math"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// Engineering ratios for protection devices.
const (
	socketsPerBreaker  = 8
	lightsPerBreaker   = 10
	breakersPerRCD     = 6
	surgeProtectorSlot = 1
	slotsPerRCD        = 3
)

// consumerCounts tallies the downstream consumers found in the current line
// items.
type consumerCounts struct {
	Sockets float64
	Lights  float64
	Stoves  float64
}

func countConsumers(items []model.LineItem) consumerCounts {
	var c consumerCounts
	for _, it := range items {
		switch it.GroupID {
		case GroupSocketSingle:
			c.Sockets += it.Quantity
		case GroupSocketDouble:
			c.Sockets += 2 * it.Quantity
		case GroupLightSwitch:
			c.Lights += it.Quantity
		case GroupStove:
			c.Stoves += it.Quantity
		}
	}
	return c
}

// breakerCounts derives the protection-device quantities from consumer
// counts, ceiling division throughout.
type breakerCounts struct {
	B16   float64 // 1-pole 16 A, one per 8 sockets
	B10   float64 // 1-pole 10 A, one per 10 lights
	B3P16 float64 // 3-pole 16 A, one per stove connection
}

func (b breakerCounts) Total() float64 { return b.B16 + b.B10 + b.B3P16 }

func deriveBreakers(c consumerCounts) breakerCounts {
	return breakerCounts{
		B16:   math.Ceil(c.Sockets / socketsPerBreaker),
		B10:   math.Ceil(c.Lights / lightsPerBreaker),
		B3P16: c.Stoves,
	}
}

// DeriveProtection synthesizes protection-device line items from the current
// line-item set. It is a pure function re-run on every recalculation and
// depends only on consumer line items, never on the enclosure.
func DeriveProtection(items []model.LineItem, globalQuality model.QualityLevel, cat *catalogue.Snapshot, location string) ([]model.LineItem, []Diagnostic) {
	breakers := deriveBreakers(countConsumers(items))
	total := breakers.Total()
	if total <= 0 {
		return nil, nil
	}

	counts := []struct {
		groupID string
		qty     float64
	}{
		{GroupBreaker16, breakers.B16},
		{GroupBreaker10, breakers.B10},
		{GroupBreaker3P16, breakers.B3P16},
		{GroupRCD, math.Ceil(total / breakersPerRCD)},
		{GroupMainSwitch, 1},
	}

	var out []model.LineItem
	var diags []Diagnostic
	for _, c := range counts {
		if c.qty <= 0 {
			continue
		}
		p, ok := selectByQuality(cat, c.groupID, location, globalQuality, model.QualityStandard, model.QualityBasic)
		if !ok {
			diags = append(diags, Diagnostic{
				Kind:      DiagNoProduct,
				GroupID:   c.groupID,
				PackageID: model.ProtectionPackageID,
				Detail:    "no protection-device product for group",
			})
			continue
		}
		out = append(out, model.LineItem{
			ID:           model.ProtectionItemPrefix + c.groupID,
			InstanceID:   model.ProtectionPackageID,
			PackageID:    model.ProtectionPackageID,
			ProductID:    p.ID,
			Name:         p.Name,
			Unit:         p.Unit,
			GroupID:      c.groupID,
			Category:     p.Category,
			Quality:      p.Quality,
			Quantity:     c.qty,
			UnitPrice:    p.UnitPrice,
			HoursPerUnit: p.HoursPerUnit,
			Hours:        p.HoursPerUnit.Scale(c.qty),
		})
	}
	return out, diags
}
