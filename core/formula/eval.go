package formula

import (
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// GroupQuantities supplies resolved group quantities for group-reference
// terms. A nil func makes group references contribute 0, which is exactly the
// first resolver pass.
type GroupQuantities func(groupID string) float64

// Evaluate returns the additive contribution of a single entry under the
// given parameter environment. Unknown or inapplicable entries contribute 0;
// Evaluate never fails.
func Evaluate(entry model.FormulaEntry, env model.Env, groups GroupQuantities) float64 {
	switch e := entry.(type) {
	case model.LookupEntry:
		v, ok := env[e.Param]
		if !ok {
			return 0
		}
		return e.Table[v.Key()]
	case model.ProductTermEntry:
		product := e.Coeff
		for _, p := range e.Params {
			v, ok := env[p]
			if !ok {
				return 0
			}
			n, ok := v.Numeric()
			if !ok {
				return 0
			}
			product *= n
		}
		return product
	case model.GroupRefEntry:
		if groups == nil {
			return 0
		}
		return e.Factor * groups(e.GroupID)
	}
	// FloorEntry is a clamp on the summed multiplier, not an additive term.
	return 0
}

// Floor returns the strongest floor clamp among the entries and whether one
// exists.
func Floor(entries []model.FormulaEntry) (float64, bool) {
	var min float64
	found := false
	for _, e := range entries {
		if f, ok := e.(model.FloorEntry); ok {
			if !found || f.Min > min {
				min = f.Min
			}
			found = true
		}
	}
	return min, found
}
