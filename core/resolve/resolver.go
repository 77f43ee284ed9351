package resolve

import (
	"fmt"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/formula"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// ResolvedRule is the per-rule detail of the second resolver pass. Quantity
// is unrounded; rounding happens only at line-item creation.
type ResolvedRule struct {
	InstanceID string
	PackageID  string
	Rule       model.ItemRule
	Env        model.Env
	Quantity   float64
}

// ResolveQuantities runs the two-pass quantity resolution over all rules of
// all selected instances. The first pass accumulates group totals from direct
// parameter terms only; the second pass re-evaluates every rule with group
// references enabled against the frozen pass-one totals. Rules targeting
// protection-device groups are skipped entirely, those groups are synthesized
// by the deriver.
func ResolveQuantities(instances []model.PackageInstance, global model.Env, cat *catalogue.Snapshot) (map[string]float64, []ResolvedRule, []Diagnostic) {
	totals := make(map[string]float64)
	var diags []Diagnostic

	type pending struct {
		instanceID string
		packageID  string
		rule       model.ItemRule
		env        model.Env
	}
	var work []pending

	for _, inst := range instances {
		env := global.Merge(inst.LocalParams)
		for _, rule := range cat.RulesFor(inst.PackageID) {
			if IsProtectionGroup(rule.GroupID) {
				continue
			}
			work = append(work, pending{inst.ID, inst.PackageID, rule, env})
			q := rule.QuantityBase
			for _, entry := range rule.Material {
				if _, ok := entry.(model.GroupRefEntry); ok {
					continue
				}
				q += formula.Evaluate(entry, env, nil)
			}
			// Negative intermediates are clamped only when merged into
			// the group total, not in the per-rule figure.
			if q > 0 {
				totals[rule.GroupID] += q
			}
		}
	}

	lookup := func(groupID string) float64 { return totals[groupID] }

	resolved := make([]ResolvedRule, 0, len(work))
	final := make(map[string]float64, len(totals))
	for _, w := range work {
		q := w.rule.QuantityBase
		for _, entry := range w.rule.Material {
			if ref, ok := entry.(model.GroupRefEntry); ok && ref.GroupID == w.rule.GroupID {
				diags = append(diags, Diagnostic{
					Kind:       DiagMalformedFormula,
					GroupID:    w.rule.GroupID,
					PackageID:  w.packageID,
					InstanceID: w.instanceID,
					Detail:     fmt.Sprintf("group_ref cycles onto %s, term ignored", ref.GroupID),
				})
				continue
			}
			q += formula.Evaluate(entry, w.env, lookup)
		}
		resolved = append(resolved, ResolvedRule{
			InstanceID: w.instanceID,
			PackageID:  w.packageID,
			Rule:       w.rule,
			Env:        w.env,
			Quantity:   q,
		})
		if q > 0 {
			final[w.rule.GroupID] += q
		}
	}
	return final, resolved, diags
}
