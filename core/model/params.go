package model

import (
	"fmt"
	"strconv"
)

// ParamType enumerates the supported parameter kinds.
type ParamType string

const (
	ParamBool   ParamType = "boolean"
	ParamNumber ParamType = "number"
	ParamSelect ParamType = "select"
	ParamString ParamType = "string"
)

// ParameterDef declares a configurable input. Global parameters apply to the
// whole configuration, local parameters are set per package instance.
type ParameterDef struct {
	Key        string
	Label      string
	Type       ParamType
	Unit       string
	Default    Value
	Global     bool
	TrueLabel  string
	FalseLabel string
	// Options restricts select parameters to a fixed set of values.
	Options []string
}

// Value is a committed, validated parameter value. Which field is meaningful
// depends on Kind.
type Value struct {
	Kind ParamType
	Num  float64
	Str  string
	Flag bool
}

// Number builds a numeric value.
func Number(v float64) Value { return Value{Kind: ParamNumber, Num: v} }

// Bool builds a boolean value.
func Bool(b bool) Value { return Value{Kind: ParamBool, Flag: b} }

// Text builds a string value. Select parameters are stored as text too.
func Text(s string) Value { return Value{Kind: ParamString, Str: s} }

// Numeric returns the value as a float64 for use in multiplicative formula
// terms. Booleans coerce to 1/0, numeric strings are parsed. The second return
// is false when the value has no numeric interpretation.
func (v Value) Numeric() (float64, bool) {
	switch v.Kind {
	case ParamNumber:
		return v.Num, true
	case ParamBool:
		if v.Flag {
			return 1, true
		}
		return 0, true
	case ParamString, ParamSelect:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Key returns the canonical stringified form used as lookup-table key.
// Numbers are rendered without a trailing fraction so 20 and 20.0 collide.
func (v Value) Key() string {
	switch v.Kind {
	case ParamNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ParamBool:
		return strconv.FormatBool(v.Flag)
	default:
		return v.Str
	}
}

// String implements fmt.Stringer.
func (v Value) String() string { return v.Key() }

// Env maps parameter keys to committed values.
type Env map[string]Value

// Merge returns a copy of e overlaid with the entries of over. Neither input
// is modified.
func (e Env) Merge(over Env) Env {
	merged := make(Env, len(e)+len(over))
	for k, v := range e {
		merged[k] = v
	}
	for k, v := range over {
		merged[k] = v
	}
	return merged
}

// Clone returns a shallow copy of the environment.
func (e Env) Clone() Env {
	cp := make(Env, len(e))
	for k, v := range e {
		cp[k] = v
	}
	return cp
}

// Coerce converts an untyped input into a Value matching the definition.
// Invalid inputs are rejected so no partial state ever reaches an Env.
func (d ParameterDef) Coerce(raw any) (Value, error) {
	switch d.Type {
	case ParamBool:
		switch x := raw.(type) {
		case bool:
			return Bool(x), nil
		case string:
			b, err := strconv.ParseBool(x)
			if err != nil {
				return Value{}, fmt.Errorf("parameter %s: not a boolean: %q", d.Key, x)
			}
			return Bool(b), nil
		}
	case ParamNumber:
		switch x := raw.(type) {
		case float64:
			return Number(x), nil
		case int:
			return Number(float64(x)), nil
		case string:
			f, err := strconv.ParseFloat(x, 64)
			if err != nil {
				return Value{}, fmt.Errorf("parameter %s: not a number: %q", d.Key, x)
			}
			return Number(f), nil
		}
	case ParamSelect:
		s, ok := raw.(string)
		if !ok {
			return Value{}, fmt.Errorf("parameter %s: select value must be a string", d.Key)
		}
		if len(d.Options) > 0 {
			found := false
			for _, o := range d.Options {
				if o == s {
					found = true
					break
				}
			}
			if !found {
				return Value{}, fmt.Errorf("parameter %s: %q is not an option", d.Key, s)
			}
		}
		return Value{Kind: ParamSelect, Str: s}, nil
	case ParamString:
		if s, ok := raw.(string); ok {
			return Text(s), nil
		}
	}
	return Value{}, fmt.Errorf("parameter %s: unsupported value %T", d.Key, raw)
}
