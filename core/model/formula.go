package model

// FormulaEntry is one normalized multiplier term of a package item rule.
// Raw catalog specs come in several duck-typed shapes; they are normalized
// into these variants once at catalog-load time.
type FormulaEntry interface{ formulaEntry() }

// LookupEntry adds a quantity delta from a table keyed by the stringified
// value of a single parameter. A missing parameter or key contributes 0.
type LookupEntry struct {
	Param string
	Table map[string]float64
}

// ProductTermEntry multiplies the values of all named parameters with the
// coefficient and adds the result. If any named parameter is absent the whole
// term contributes 0.
type ProductTermEntry struct {
	Params []string
	Coeff  float64
}

// GroupRefEntry adds Factor times the resolved quantity of another product
// group, summed across all instances. Resolved quantities are supplied by the
// quantity resolver in its second pass.
type GroupRefEntry struct {
	GroupID string
	Factor  float64
}

// FloorEntry clamps the final hours multiplier to at least Min. Applied after
// summation, never per term. Only meaningful in hours formulas.
type FloorEntry struct {
	Min float64
}

func (LookupEntry) formulaEntry()      {}
func (ProductTermEntry) formulaEntry() {}
func (GroupRefEntry) formulaEntry()    {}
func (FloorEntry) formulaEntry()       {}
