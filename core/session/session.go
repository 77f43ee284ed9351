// Package session implements the caller-facing configurator: package
// instances, parameters, the user override overlay and the serialized
// recalculation loop. The session owns the single source of truth; the
// resolution pipeline itself stays a pure function.
package session

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/logger"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/pricing"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/resolve"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/internal/eventbus"
)

// GlobalQualityParam is the global parameter steering product selection.
const GlobalQualityParam = "qualitaetsstufe"

// Providers bundles the injected data sources of a session.
type Providers struct {
	Catalog   catalogue.CatalogProvider
	Rates     catalogue.RatesProvider
	Prices    catalogue.PriceProvider
	Locations catalogue.LocationProvider
}

// Option configures optional session collaborators.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log logger.Logger) Option { return func(s *Session) { s.log = log } }

// WithBus attaches an event bus receiving recalculation events.
func WithBus(bus eventbus.EventBus) Option { return func(s *Session) { s.bus = bus } }

// WithMetrics attaches a metrics sink.
func WithMetrics(sink quotemetrics.Sink) Option { return func(s *Session) { s.sink = sink } }

// Session is one configurator session for one location. All mutating
// operations run a full recalculation before returning; passes are serialized
// by the session mutex so two passes never interleave on the same output set.
type Session struct {
	id       string
	location string

	mu       sync.Mutex
	catalog  *catalogue.Snapshot
	prices   map[string]catalogue.PriceEntry
	rates    catalogue.Rates
	global   model.Env
	insts    []model.PackageInstance
	overlay  map[string]pricing.Override
	wages    map[model.Role]float64
	out      resolve.Outputs
	resolver *resolve.Resolver

	log  logger.Logger
	bus  eventbus.EventBus
	sink quotemetrics.Sink
}

// New loads the reference data through the providers and returns a ready
// session. A failing or empty catalog surfaces as ErrCatalogUnavailable.
func New(ctx context.Context, p Providers, location string, opts ...Option) (*Session, error) {
	if p.Catalog == nil {
		return nil, fmt.Errorf("catalog provider required: %w", catalogue.ErrCatalogUnavailable)
	}
	if p.Locations != nil {
		locs, err := p.Locations.Locations(ctx)
		if err != nil {
			return nil, fmt.Errorf("load locations: %w", err)
		}
		known := false
		for _, l := range locs {
			if l == location {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown location %q", location)
		}
	}
	cat, err := p.Catalog.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w: %v", catalogue.ErrCatalogUnavailable, err)
	}
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	var rates catalogue.Rates
	if p.Rates != nil {
		if rates, err = p.Rates.Rates(ctx, location); err != nil {
			return nil, fmt.Errorf("load rates for %s: %w", location, err)
		}
	}
	prices := map[string]catalogue.PriceEntry{}
	if p.Prices != nil {
		if prices, err = p.Prices.Prices(ctx); err != nil {
			return nil, fmt.Errorf("load prices: %w", err)
		}
	}

	s := &Session{
		id:       uuid.NewString(),
		location: location,
		catalog:  cat,
		prices:   prices,
		rates:    rates,
		global:   cat.GlobalDefaults(),
		overlay:  make(map[string]pricing.Override),
		wages:    make(map[model.Role]float64),
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = nopLogger{}
	}
	s.resolver = resolve.NewResolver(s.log)
	s.recalcLocked()
	return s, nil
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Location returns the session location.
func (s *Session) Location() string { return s.location }

// SelectPackage adds one instance of a package with local parameter defaults
// and returns the new instance id.
func (s *Session) SelectPackage(packageID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.catalog.Packages[packageID]; !ok {
		return "", fmt.Errorf("unknown package %q", packageID)
	}
	inst := model.PackageInstance{
		ID:          uuid.NewString(),
		PackageID:   packageID,
		LocalParams: model.Env{},
	}
	for _, def := range s.catalog.LocalParamsFor(packageID) {
		inst.LocalParams[def.Key] = def.Default
	}
	s.insts = append(s.insts, inst)
	s.recalcLocked()
	return inst.ID, nil
}

// RemoveInstance drops a package instance.
func (s *Session) RemoveInstance(instanceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, inst := range s.insts {
		if inst.ID == instanceID {
			s.insts = append(s.insts[:i], s.insts[i+1:]...)
			s.recalcLocked()
			return nil
		}
	}
	return fmt.Errorf("unknown instance %q", instanceID)
}

// SetGlobalParam commits a global parameter value. Invalid input is rejected
// without touching the previous committed value.
func (s *Session) SetGlobalParam(key string, raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.catalog.Params[key]
	if !ok || !def.Global {
		return fmt.Errorf("unknown global parameter %q", key)
	}
	v, err := def.Coerce(raw)
	if err != nil {
		return err
	}
	s.global[key] = v
	s.recalcLocked()
	return nil
}

// SetInstanceParam commits a local parameter value on one instance.
func (s *Session) SetInstanceParam(instanceID, key string, raw any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, ok := s.catalog.Params[key]
	if !ok || def.Global {
		return fmt.Errorf("unknown local parameter %q", key)
	}
	v, err := def.Coerce(raw)
	if err != nil {
		return err
	}
	for i := range s.insts {
		if s.insts[i].ID == instanceID {
			s.insts[i].LocalParams[key] = v
			s.recalcLocked()
			return nil
		}
	}
	return fmt.Errorf("unknown instance %q", instanceID)
}

// SetLocalPrice sets or clears (nil) the purchase-price override of an item.
func (s *Session) SetLocalPrice(itemID string, price *float64) error {
	if price != nil && (math.IsNaN(*price) || *price < 0) {
		return fmt.Errorf("invalid price override")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ov := s.overlay[itemID]
	ov.Price = price
	s.storeOverride(itemID, ov)
	return nil
}

// SetLocalMarkup sets or clears (nil) the markup override of an item.
func (s *Session) SetLocalMarkup(itemID string, percent *float64) error {
	if percent != nil && math.IsNaN(*percent) {
		return fmt.Errorf("invalid markup override")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ov := s.overlay[itemID]
	ov.Markup = percent
	s.storeOverride(itemID, ov)
	return nil
}

// SetManualHours replaces the accumulated total hours of one role on an
// item, or restores the computed figure when hours is nil.
func (s *Session) SetManualHours(itemID string, role model.Role, hours *float64) error {
	if hours != nil && (math.IsNaN(*hours) || *hours < 0) {
		return fmt.Errorf("invalid hours override")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ov := s.overlay[itemID]
	if hours == nil {
		delete(ov.Hours, role)
	} else {
		if ov.Hours == nil {
			ov.Hours = make(map[model.Role]float64)
		}
		ov.Hours[role] = *hours
	}
	s.storeOverride(itemID, ov)
	return nil
}

// SetWage overrides the hourly wage of a role for this session, or restores
// the catalog rate when wage is nil.
func (s *Session) SetWage(role model.Role, wage *float64) error {
	if wage != nil && (math.IsNaN(*wage) || *wage < 0) {
		return fmt.Errorf("invalid wage override")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if wage == nil {
		delete(s.wages, role)
	} else {
		s.wages[role] = *wage
	}
	return nil
}

func (s *Session) storeOverride(itemID string, ov pricing.Override) {
	if ov.Empty() {
		delete(s.overlay, itemID)
		return
	}
	s.overlay[itemID] = ov
}

// LineItems returns the current package line items.
func (s *Session) LineItems() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LineItem(nil), s.out.Items...)
}

// ProtectionDeviceItems returns the synthesized protection-device items.
func (s *Session) ProtectionDeviceItems() []model.LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.LineItem(nil), s.out.Protection...)
}

// Diagnostics returns the diagnostics of the last recalculation.
func (s *Session) Diagnostics() []resolve.Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]resolve.Diagnostic(nil), s.out.Diagnostics...)
}

// GroupTotals returns the resolved pass-two quantities per product group.
func (s *Session) GroupTotals() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make(map[string]float64, len(s.out.GroupTotals))
	for k, v := range s.out.GroupTotals {
		cp[k] = v
	}
	return cp
}

// ItemCost computes the money breakdown of one item on demand.
func (s *Session) ItemCost(itemID string) (pricing.ItemCost, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := s.aggregatorLocked()
	for _, it := range s.out.AllItems() {
		if it.ID == itemID {
			return agg.ItemCost(it), true
		}
	}
	return pricing.ItemCost{}, false
}

// Totals aggregates the current configuration at every scope.
func (s *Session) Totals() pricing.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalsLocked()
}

func (s *Session) totalsLocked() pricing.Totals {
	return s.aggregatorLocked().Totals(s.out.Items, s.out.Protection)
}

func (s *Session) aggregatorLocked() pricing.Aggregator {
	return pricing.Aggregator{
		Prices:        s.prices,
		Rates:         s.rates,
		Location:      s.location,
		Overrides:     s.overlay,
		WageOverrides: s.wages,
	}
}

// globalQualityLocked reads the active quality tier from the global params.
func (s *Session) globalQualityLocked() model.QualityLevel {
	if v, ok := s.global[GlobalQualityParam]; ok && v.Str != "" {
		return model.QualityLevel(v.Str)
	}
	return model.QualityStandard
}

// recalcLocked re-runs the full pipeline. The derived item set is replaced
// wholesale; the override overlay survives because it is keyed by item id and
// merged at pricing time, never stored on the items.
func (s *Session) recalcLocked() {
	start := time.Now()
	insts := make([]model.PackageInstance, len(s.insts))
	for i, inst := range s.insts {
		insts[i] = model.PackageInstance{
			ID:          inst.ID,
			PackageID:   inst.PackageID,
			LocalParams: inst.LocalParams.Clone(),
		}
	}
	s.out = s.resolver.Resolve(resolve.Inputs{
		Instances:     insts,
		GlobalParams:  s.global.Clone(),
		GlobalQuality: s.globalQualityLocked(),
		Location:      s.location,
		Catalog:       s.catalog,
	})
	dur := time.Since(start)

	totals := s.totalsLocked()
	ev := RecalculatedEvent{
		SessionID:       s.id,
		Location:        s.location,
		Duration:        dur,
		LineItems:       len(s.out.Items),
		ProtectionItems: len(s.out.Protection),
		Diagnostics:     len(s.out.Diagnostics),
		GrandTotal:      totals.Grand,
		Time:            time.Now(),
	}
	if s.bus != nil {
		s.bus.Publish(ev)
		for _, d := range s.out.Diagnostics {
			s.bus.Publish(DiagnosticEvent{
				SessionID: s.id,
				Kind:      string(d.Kind),
				GroupID:   d.GroupID,
				Detail:    d.Detail,
			})
		}
	}
	if s.sink != nil {
		if err := s.sink.RecordRecalculation(quotemetrics.RecalcEvent{
			SessionID:       ev.SessionID,
			Location:        ev.Location,
			Duration:        ev.Duration,
			LineItems:       ev.LineItems,
			ProtectionItems: ev.ProtectionItems,
			Diagnostics:     ev.Diagnostics,
			GrandTotal:      ev.GrandTotal,
			Time:            ev.Time,
		}); err != nil {
			s.log.Warnf("metrics sink: %v", err)
		}
	}
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
