package pricing

import (
	"math"
	"testing"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

func floatPtr(f float64) *float64 { return &f }

func testAggregator() Aggregator {
	return Aggregator{
		Prices: map[string]catalogue.PriceEntry{
			"SOCK-STD": {Base: 10, HasBase: true, Factors: map[string]float64{"nord": 1.2, "sued": 0.9}},
			"NO-BASE":  {HasBase: false},
		},
		Rates: catalogue.Rates{
			Wages:         map[model.Role]float64{model.RoleMeister: 80, model.RoleGeselle: 60, model.RoleMonteur: 45},
			MarkupPercent: 15,
		},
		Location:  "nord",
		Overrides: map[string]Override{},
	}
}

func socketItem() model.LineItem {
	return model.LineItem{
		ID:         "inst-1-SOCK-STD",
		InstanceID: "inst-1",
		PackageID:  "pkg-room",
		ProductID:  "SOCK-STD",
		Category:   "elektro",
		Quantity:   4,
		UnitPrice:  11,
		Hours:      model.RoleHours{Geselle: 1.0},
	}
}

func TestPurchasePrice_EntityPricing(t *testing.T) {
	a := testAggregator()
	price, flags := a.PurchasePrice(socketItem())
	if price != 12 { // 10 * 1.2
		t.Fatalf("expected 12 got %v", price)
	}
	if flags.MissingPrice || flags.MissingColumn {
		t.Fatalf("unexpected flags %+v", flags)
	}
}

func TestPurchasePrice_MissingColumn(t *testing.T) {
	a := testAggregator()
	a.Location = "ost"
	price, flags := a.PurchasePrice(socketItem())
	if price != 10 {
		t.Fatalf("expected base with factor 1.0, got %v", price)
	}
	if !flags.MissingColumn || flags.MissingPrice {
		t.Fatalf("expected missing-column flag, got %+v", flags)
	}
}

func TestPurchasePrice_MissingBase(t *testing.T) {
	a := testAggregator()
	it := socketItem()
	it.ProductID = "NO-BASE"
	price, flags := a.PurchasePrice(it)
	if price != 0 {
		t.Fatalf("expected 0 got %v", price)
	}
	if !flags.MissingPrice {
		t.Fatalf("expected missing-price flag, got %+v", flags)
	}
}

func TestPurchasePrice_FallsBackToCatalogPrice(t *testing.T) {
	a := testAggregator()
	it := socketItem()
	it.ProductID = "UNPRICED"
	price, flags := a.PurchasePrice(it)
	if price != 11 {
		t.Fatalf("expected catalog unit price 11 got %v", price)
	}
	if flags.MissingPrice || flags.MissingColumn {
		t.Fatalf("unexpected flags %+v", flags)
	}
}

func TestPurchasePrice_OverrideWins(t *testing.T) {
	a := testAggregator()
	a.Overrides["inst-1-SOCK-STD"] = Override{Price: floatPtr(7.5)}
	price, flags := a.PurchasePrice(socketItem())
	if price != 7.5 {
		t.Fatalf("expected override 7.5 got %v", price)
	}
	if flags.MissingPrice || flags.MissingColumn {
		t.Fatalf("override must clear flags, got %+v", flags)
	}
}

func TestItemCost_Breakdown(t *testing.T) {
	a := testAggregator()
	c := a.ItemCost(socketItem())
	// purchase 12, markup 15% -> sales 13.8, material 55.2, labor 1h geselle = 60
	if math.Abs(c.SalesPricePerUnit-13.8) > 1e-9 {
		t.Fatalf("expected sales 13.8 got %v", c.SalesPricePerUnit)
	}
	if math.Abs(c.MaterialTotal-55.2) > 1e-9 {
		t.Fatalf("expected material 55.2 got %v", c.MaterialTotal)
	}
	if c.LaborCost != 60 {
		t.Fatalf("expected labor 60 got %v", c.LaborCost)
	}
	if math.Abs(c.Total-115.2) > 1e-9 {
		t.Fatalf("expected total 115.2 got %v", c.Total)
	}
}

func TestItemCost_MarkupOverrideIsLocal(t *testing.T) {
	a := testAggregator()
	a.Overrides["inst-1-SOCK-STD"] = Override{Markup: floatPtr(0)}
	c := a.ItemCost(socketItem())
	if c.SalesPricePerUnit != c.PurchasePrice {
		t.Fatalf("zero markup: sales %v must equal purchase %v", c.SalesPricePerUnit, c.PurchasePrice)
	}

	other := socketItem()
	other.ID = "inst-2-SOCK-STD"
	other.InstanceID = "inst-2"
	if co := a.ItemCost(other); co.MarkupPercent != 15 {
		t.Fatalf("other items keep the global markup, got %v", co.MarkupPercent)
	}
}

func TestEffectiveHours_OverrideReplacesOneRole(t *testing.T) {
	a := testAggregator()
	it := socketItem()
	it.Hours = model.RoleHours{Meister: 0.5, Geselle: 1.0}
	a.Overrides[it.ID] = Override{Hours: map[model.Role]float64{model.RoleGeselle: 2}}

	h := a.EffectiveHours(it)
	if h.Geselle != 2 {
		t.Fatalf("expected overridden 2 got %v", h.Geselle)
	}
	if h.Meister != 0.5 {
		t.Fatalf("other roles keep their computed hours, got %v", h.Meister)
	}
	if it.Hours.Geselle != 1.0 {
		t.Fatal("override must not mutate the item")
	}
}

func TestLaborCost_ManualHoursAndWageOverride(t *testing.T) {
	a := testAggregator()
	a.Overrides["inst-1-SOCK-STD"] = Override{Hours: map[model.Role]float64{model.RoleGeselle: 2}}
	if got := a.LaborCost(socketItem()); got != 120 {
		t.Fatalf("expected 120 with manual hours got %v", got)
	}

	a.WageOverrides = map[model.Role]float64{model.RoleGeselle: 50}
	if got := a.LaborCost(socketItem()); got != 100 {
		t.Fatalf("expected 100 with wage override got %v", got)
	}
}

func TestTotals_TieOut(t *testing.T) {
	a := testAggregator()
	items := []model.LineItem{socketItem()}
	second := socketItem()
	second.ID = "inst-2-SOCK-STD"
	second.InstanceID = "inst-2"
	second.PackageID = "pkg-other"
	items = append(items, second)

	protection := []model.LineItem{{
		ID:         "schutz-GRP-MCB-B16",
		InstanceID: model.ProtectionPackageID,
		PackageID:  model.ProtectionPackageID,
		ProductID:  "MCB-B16",
		Quantity:   1,
		UnitPrice:  12,
	}}

	t2 := a.Totals(items, protection)

	var sum float64
	for _, id := range []string{"inst-1", "inst-2"} {
		sum += t2.ByInstance[id]
	}
	sum += t2.Protection
	if math.Abs(sum-t2.Grand) > 1e-9 {
		t.Fatalf("instance totals %v + protection %v must tie out to grand %v", sum-t2.Protection, t2.Protection, t2.Grand)
	}
	if math.Abs(t2.Material+t2.Labor-t2.Grand) > 1e-9 {
		t.Fatalf("material %v + labor %v must equal grand %v", t2.Material, t2.Labor, t2.Grand)
	}
	if t2.ByPackage["pkg-room"] != t2.ByInstance["inst-1"] {
		t.Fatal("single-instance package must equal its instance total")
	}
	if t2.ByCategory["inst-1"]["elektro"] != t2.ByInstance["inst-1"] {
		t.Fatal("category split must tie out to the instance total")
	}
}

func TestOverride_CloneAndEmpty(t *testing.T) {
	ov := Override{Price: floatPtr(5), Hours: map[model.Role]float64{model.RoleMeister: 1}}
	cp := ov.Clone()
	*cp.Price = 9
	cp.Hours[model.RoleMeister] = 3
	if *ov.Price != 5 || ov.Hours[model.RoleMeister] != 1 {
		t.Fatal("clone must not share storage")
	}
	if ov.Empty() {
		t.Fatal("populated override reported empty")
	}
	if !(Override{}).Empty() {
		t.Fatal("zero override must be empty")
	}
}
