// Package catalogue defines the data-provider contracts of the quoting core.
// The core never touches a network or database itself; catalogs, rates and
// prices are injected through these interfaces and cached per session.
package catalogue

import (
	"context"
	"errors"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// ErrCatalogUnavailable signals that no usable catalog could be loaded. It is
// the only top-level failure of the core; everything else recovers by
// omission.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Snapshot bundles one session's reference data. It is read-only after load.
type Snapshot struct {
	Packages map[string]model.Package
	Rules    []model.ItemRule
	Products []model.Product
	Params   map[string]model.ParameterDef
	Links    []model.ParameterLink
}

// Validate checks that the snapshot is usable at all.
func (s *Snapshot) Validate() error {
	if s == nil || len(s.Packages) == 0 || len(s.Products) == 0 {
		return ErrCatalogUnavailable
	}
	return nil
}

// RulesFor returns the item rules of one package.
func (s *Snapshot) RulesFor(packageID string) []model.ItemRule {
	var rules []model.ItemRule
	for _, r := range s.Rules {
		if r.PackageID == packageID {
			rules = append(rules, r)
		}
	}
	return rules
}

// GroupProducts returns the products of a group available at the location.
func (s *Snapshot) GroupProducts(groupID, location string) []model.Product {
	var out []model.Product
	for _, p := range s.Products {
		if p.GroupID == groupID && p.AvailableAt(location) {
			out = append(out, p)
		}
	}
	return out
}

// Product looks a product up by id, location-filtered.
func (s *Snapshot) Product(id, location string) (model.Product, bool) {
	for _, p := range s.Products {
		if p.ID == id {
			if !p.AvailableAt(location) {
				return model.Product{}, false
			}
			return p, true
		}
	}
	return model.Product{}, false
}

// LocalParamsFor returns the parameter definitions a package exposes locally.
func (s *Snapshot) LocalParamsFor(packageID string) []model.ParameterDef {
	var defs []model.ParameterDef
	for _, l := range s.Links {
		if l.PackageID != packageID {
			continue
		}
		if d, ok := s.Params[l.ParamKey]; ok && !d.Global {
			defs = append(defs, d)
		}
	}
	return defs
}

// GlobalDefaults returns the default environment of all global parameters.
func (s *Snapshot) GlobalDefaults() model.Env {
	env := model.Env{}
	for _, d := range s.Params {
		if d.Global {
			env[d.Key] = d.Default
		}
	}
	return env
}

// Rates holds the location wage table and the global markup percentage.
type Rates struct {
	Wages         map[model.Role]float64
	MarkupPercent float64
}

// PriceEntry is the entity-pricing row of one product: a base price plus
// per-location multiplicative factors.
type PriceEntry struct {
	Base    float64
	HasBase bool
	Factors map[string]float64
}

// CatalogProvider loads the reference data of a session.
type CatalogProvider interface {
	Catalog(ctx context.Context) (*Snapshot, error)
}

// RatesProvider returns hourly wages and the markup for a location.
type RatesProvider interface {
	Rates(ctx context.Context, location string) (Rates, error)
}

// PriceProvider returns the entity-pricing table keyed by product id.
type PriceProvider interface {
	Prices(ctx context.Context) (map[string]PriceEntry, error)
}

// LocationProvider lists the valid locations.
type LocationProvider interface {
	Locations(ctx context.Context) ([]string, error)
}
