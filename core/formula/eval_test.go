package formula

import (
	"testing"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

func TestEvaluate_Lookup(t *testing.T) {
	entry := model.LookupEntry{Param: "raumgroesse", Table: map[string]float64{"15": 4, "20": 6}}
	env := model.Env{"raumgroesse": model.Number(20)}
	if got := Evaluate(entry, env, nil); got != 6 {
		t.Fatalf("expected 6 got %v", got)
	}
}

func TestEvaluate_LookupNumericKeyCanonical(t *testing.T) {
	// 20.0 must hit the "20" key.
	entry := model.LookupEntry{Param: "raumgroesse", Table: map[string]float64{"20": 6}}
	env := model.Env{"raumgroesse": model.Number(20.0)}
	if got := Evaluate(entry, env, nil); got != 6 {
		t.Fatalf("expected 6 got %v", got)
	}
}

func TestEvaluate_LookupMisses(t *testing.T) {
	entry := model.LookupEntry{Param: "raumgroesse", Table: map[string]float64{"15": 4}}
	if got := Evaluate(entry, model.Env{"raumgroesse": model.Number(99)}, nil); got != 0 {
		t.Fatalf("unknown key: expected 0 got %v", got)
	}
	if got := Evaluate(entry, model.Env{}, nil); got != 0 {
		t.Fatalf("missing param: expected 0 got %v", got)
	}
}

func TestEvaluate_ProductTerm(t *testing.T) {
	entry := model.ProductTermEntry{Params: []string{"raumgroesse", "faktor"}, Coeff: 0.5}
	env := model.Env{"raumgroesse": model.Number(20), "faktor": model.Number(2)}
	if got := Evaluate(entry, env, nil); got != 20 {
		t.Fatalf("expected 20 got %v", got)
	}
}

func TestEvaluate_ProductTermBoolCoercion(t *testing.T) {
	entry := model.ProductTermEntry{Params: []string{"aufputz"}, Coeff: 0.3}
	if got := Evaluate(entry, model.Env{"aufputz": model.Bool(true)}, nil); got != 0.3 {
		t.Fatalf("true: expected 0.3 got %v", got)
	}
	if got := Evaluate(entry, model.Env{"aufputz": model.Bool(false)}, nil); got != 0 {
		t.Fatalf("false: expected 0 got %v", got)
	}
}

func TestEvaluate_ProductTermMissingParam(t *testing.T) {
	entry := model.ProductTermEntry{Params: []string{"unbekannt"}, Coeff: 2}
	if got := Evaluate(entry, model.Env{}, nil); got != 0 {
		t.Fatalf("expected 0 got %v", got)
	}
}

func TestEvaluate_GroupRef(t *testing.T) {
	entry := model.GroupRefEntry{GroupID: "GRP-SOCKET-1", Factor: 0.5}
	groups := func(id string) float64 {
		if id == "GRP-SOCKET-1" {
			return 10
		}
		return 0
	}
	if got := Evaluate(entry, model.Env{}, groups); got != 5 {
		t.Fatalf("expected 5 got %v", got)
	}
	if got := Evaluate(entry, model.Env{}, nil); got != 0 {
		t.Fatalf("nil groups: expected 0 got %v", got)
	}
}

func TestFloor(t *testing.T) {
	entries := []model.FormulaEntry{
		model.FloorEntry{Min: 0.5},
		model.ProductTermEntry{Params: []string{"x"}, Coeff: 1},
		model.FloorEntry{Min: 1.0},
	}
	min, ok := Floor(entries)
	if !ok || min != 1.0 {
		t.Fatalf("expected strongest floor 1.0 got %v (ok=%v)", min, ok)
	}
	if _, ok := Floor(nil); ok {
		t.Fatal("expected no floor for empty entries")
	}
}
