package resolve

import (
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// SelectProduct resolves a rule to a concrete catalog product, first match
// wins: quantity-bucketed selector rules, static preferred id, then the
// quality fallback chain (global quality, the package's own level, Standard,
// Basic). Every step is location-filtered. The boolean is false when the
// chain is exhausted; the rule then contributes nothing.
func SelectProduct(rule model.ItemRule, quantity float64, pkgQuality, globalQuality model.QualityLevel, cat *catalogue.Snapshot, location string) (model.Product, bool) {
	if sel := rule.Selector; sel != nil {
		if len(sel.Buckets) > 0 {
			bucket := sel.Buckets[len(sel.Buckets)-1]
			for _, b := range sel.Buckets {
				if b.Max == nil || quantity <= *b.Max {
					bucket = b
					break
				}
			}
			if p, ok := cat.Product(bucket.ProductID, location); ok {
				return p, true
			}
		}
		if sel.StaticProductID != "" {
			if p, ok := cat.Product(sel.StaticProductID, location); ok {
				return p, true
			}
		}
	}
	return selectByQuality(cat, rule.GroupID, location, globalQuality, pkgQuality, model.QualityStandard, model.QualityBasic)
}

// selectByQuality walks the quality chain and returns the first group product
// matching a level. Empty and repeated levels are skipped.
func selectByQuality(cat *catalogue.Snapshot, groupID, location string, chain ...model.QualityLevel) (model.Product, bool) {
	products := cat.GroupProducts(groupID, location)
	if len(products) == 0 {
		return model.Product{}, false
	}
	seen := make(map[model.QualityLevel]bool, len(chain))
	for _, level := range chain {
		if level == "" || seen[level] {
			continue
		}
		seen[level] = true
		for _, p := range products {
			if p.Quality == level {
				return p, true
			}
		}
	}
	return model.Product{}, false
}
