// Package catalogue provides the data-provider implementations: a static
// in-memory source for tests and tooling, and a file-backed source loading a
// full catalog document. A Postgres-backed source lives in the gormstore
// subpackage.
package catalogue

import (
	"context"

	core "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
)

// Static serves fixed in-memory reference data. Zero-valued fields behave as
// empty datasets.
type Static struct {
	Snapshot  *core.Snapshot
	RateTable map[string]core.Rates
	PriceBook map[string]core.PriceEntry
	Locs      []string
}

// Catalog implements core CatalogProvider.
func (s *Static) Catalog(context.Context) (*core.Snapshot, error) {
	if err := s.Snapshot.Validate(); err != nil {
		return nil, err
	}
	return s.Snapshot, nil
}

// Rates implements core RatesProvider. Unknown locations yield empty rates;
// missing wage data surfaces in labor totals, not as a failure.
func (s *Static) Rates(_ context.Context, location string) (core.Rates, error) {
	return s.RateTable[location], nil
}

// Prices implements core PriceProvider.
func (s *Static) Prices(context.Context) (map[string]core.PriceEntry, error) {
	return s.PriceBook, nil
}

// Locations implements core LocationProvider.
func (s *Static) Locations(context.Context) ([]string, error) {
	return s.Locs, nil
}
