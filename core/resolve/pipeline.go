package resolve

import (
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/logger"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// Inputs is one full recalculation snapshot. The pipeline is a pure function
// of it: no I/O, no retained state, safe to re-run wholesale on every change.
type Inputs struct {
	Instances     []model.PackageInstance
	GlobalParams  model.Env
	GlobalQuality model.QualityLevel
	Location      string
	Catalog       *catalogue.Snapshot
}

// Outputs is the fully derived line-item state.
type Outputs struct {
	Items       []model.LineItem
	Protection  []model.LineItem
	GroupTotals map[string]float64
	Rules       []ResolvedRule
	Diagnostics []Diagnostic
}

// AllItems returns package and protection items in one slice.
func (o Outputs) AllItems() []model.LineItem {
	all := make([]model.LineItem, 0, len(o.Items)+len(o.Protection))
	all = append(all, o.Items...)
	all = append(all, o.Protection...)
	return all
}

// Resolver runs the full resolution pipeline.
type Resolver struct {
	log logger.Logger
}

// NewResolver creates a Resolver. A nil logger is replaced by a no-op.
func NewResolver(log logger.Logger) *Resolver {
	if log == nil {
		log = nopLogger{}
	}
	return &Resolver{log: log}
}

// Resolve computes the complete line-item state for the inputs: two-pass
// quantity resolution, product selection, deduplicated line items,
// protection-device derivation and enclosure sizing.
func (r *Resolver) Resolve(in Inputs) Outputs {
	out := Outputs{}
	if in.Catalog == nil {
		return out
	}

	totals, resolved, diags := ResolveQuantities(in.Instances, in.GlobalParams, in.Catalog)
	out.GroupTotals = totals
	out.Rules = resolved
	out.Diagnostics = diags

	groupLookup := func(groupID string) float64 { return totals[groupID] }
	quality := make(map[string]model.QualityLevel, len(in.Catalog.Packages))
	for id, pkg := range in.Catalog.Packages {
		quality[id] = pkg.QualityLevel
	}

	b := newBuilder()
	for _, rr := range resolved {
		if rr.Quantity <= 0 {
			continue
		}
		p, ok := SelectProduct(rr.Rule, rr.Quantity, quality[rr.PackageID], in.GlobalQuality, in.Catalog, in.Location)
		if !ok {
			r.log.Warnf("no product for group %s (package %s), rule skipped", rr.Rule.GroupID, rr.PackageID)
			out.Diagnostics = append(out.Diagnostics, Diagnostic{
				Kind:       DiagNoProduct,
				GroupID:    rr.Rule.GroupID,
				PackageID:  rr.PackageID,
				InstanceID: rr.InstanceID,
				Detail:     "fallback chain exhausted",
			})
			continue
		}
		mult := HoursMultiplier(rr.Rule, rr.Env, groupLookup)
		b.add(rr.InstanceID, rr.PackageID, p, rr.Quantity, mult)
	}
	out.Items = b.list()

	protection, pdiags := DeriveProtection(out.Items, in.GlobalQuality, in.Catalog, in.Location)
	out.Protection = protection
	out.Diagnostics = append(out.Diagnostics, pdiags...)

	ediags := ResizeEnclosure(out.Items, out.Protection, in.Catalog, in.Location)
	out.Diagnostics = append(out.Diagnostics, ediags...)

	for _, d := range out.Diagnostics {
		r.log.Debugw("resolution diagnostic", map[string]any{
			"kind":     string(d.Kind),
			"group_id": d.GroupID,
			"detail":   d.Detail,
		})
	}
	return out
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}
