package scenarios

import (
	"context"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/quotemetrics"
)

// Apply builds a session from the scenario definition.
func (sc *Scenario) Apply(ctx context.Context, p session.Providers, opts ...session.Option) (*session.Session, error) {
	sess, err := session.New(ctx, p, sc.Location, opts...)
	if err != nil {
		return nil, err
	}
	for key, raw := range sc.GlobalParams {
		if err := sess.SetGlobalParam(key, raw); err != nil {
			return nil, err
		}
	}
	for _, def := range sc.Packages {
		count := def.Count
		if count <= 0 {
			count = 1
		}
		for i := 0; i < count; i++ {
			instID, err := sess.SelectPackage(def.PackageID)
			if err != nil {
				return nil, err
			}
			for key, raw := range def.Params {
				if err := sess.SetInstanceParam(instID, key, raw); err != nil {
					return nil, err
				}
			}
		}
	}
	return sess, nil
}

// RunScenario applies the scenario against the providers and checks the
// expected figures.
func RunScenario(t *testing.T, sc *Scenario, p session.Providers) {
	reg := prometheus.NewRegistry()
	sink, err := quotemetrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	sess, err := sc.Apply(context.Background(), p, session.WithMetrics(sink))
	if err != nil {
		t.Fatalf("scenario %s: %v", sc.Name, err)
	}

	if got := len(sess.LineItems()); got != sc.Expected.LineItems {
		t.Errorf("scenario %s expected %d line items, got %d", sc.Name, sc.Expected.LineItems, got)
	}
	if got := len(sess.ProtectionDeviceItems()); got != sc.Expected.ProtectionItems {
		t.Errorf("scenario %s expected %d protection items, got %d", sc.Name, sc.Expected.ProtectionItems, got)
	}
	if sc.Expected.GrandTotal != nil {
		got := sess.Totals().Grand
		if math.Abs(got-*sc.Expected.GrandTotal) > 1e-6 {
			t.Errorf("scenario %s expected grand total %.2f, got %.2f", sc.Name, *sc.Expected.GrandTotal, got)
		}
	}
}
