// Package formula normalizes and evaluates the multiplier expressions of
// package item rules. Raw catalog specs are duck-typed JSON (objects or
// arrays, mixed entry kinds); they are parsed into tagged variants exactly
// once at catalog-load time so recalculation never re-sniffs shapes.
package formula

import (
	"sort"
	"strings"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// Normalize converts a raw formula spec into its normalized entries.
// Malformed entries are skipped, never an error: a bad rule must not abort
// catalog loading.
func Normalize(raw any) []model.FormulaEntry {
	switch v := raw.(type) {
	case nil:
		return nil
	case []any:
		var entries []model.FormulaEntry
		for _, el := range v {
			entries = append(entries, Normalize(el)...)
		}
		return entries
	case map[string]any:
		return normalizeObject(v)
	}
	return nil
}

func normalizeObject(obj map[string]any) []model.FormulaEntry {
	if t, ok := obj["type"].(string); ok && t == "group_ref" {
		group, _ := obj["group_id"].(string)
		factor, ok := toFloat(obj["factor"])
		if group == "" || !ok {
			return nil
		}
		return []model.FormulaEntry{model.GroupRefEntry{GroupID: group, Factor: factor}}
	}

	// Deterministic entry order regardless of map iteration.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var entries []model.FormulaEntry
	for _, key := range keys {
		val := obj[key]
		if key == "floor" {
			if min, ok := toFloat(val); ok {
				entries = append(entries, model.FloorEntry{Min: min})
			}
			continue
		}
		switch tv := val.(type) {
		case map[string]any:
			table := make(map[string]float64, len(tv))
			for tk, raw := range tv {
				if f, ok := toFloat(raw); ok {
					table[tk] = f
				}
			}
			if len(table) > 0 {
				entries = append(entries, model.LookupEntry{Param: key, Table: table})
			}
		default:
			coeff, ok := toFloat(val)
			if !ok {
				continue
			}
			params := strings.Split(key, "*")
			for i := range params {
				params[i] = strings.TrimSpace(params[i])
			}
			entries = append(entries, model.ProductTermEntry{Params: params, Coeff: coeff})
		}
	}
	return entries
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	}
	return 0, false
}
