package quotemetrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"
)

// PromSink records recalculation events in Prometheus metrics.
type PromSink struct {
	recalcs     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	diagnostics *prometheus.CounterVec
	items       *prometheus.GaugeVec
	grandTotal  *prometheus.GaugeVec
}

// NewPromSink registers the quote metrics on the default registerer.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers the metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	recalcs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_recalculations_total",
		Help: "Total number of completed recalculation passes",
	}, []string{"location"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_recalculation_seconds",
		Help:    "Duration of one full resolution pass",
		Buckets: prometheus.DefBuckets,
	}, []string{"location"})
	diagnostics := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_resolution_diagnostics_total",
		Help: "Non-fatal resolution diagnostics emitted during recalculation",
	}, []string{"location"})
	items := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quote_line_items",
		Help: "Line items of the latest recalculation, protection devices included",
	}, []string{"location"})
	grandTotal := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "quote_grand_total",
		Help: "Grand total of the latest recalculation",
	}, []string{"location"})

	collectors := map[string]prometheus.Collector{
		"recalcs":     recalcs,
		"duration":    duration,
		"diagnostics": diagnostics,
		"items":       items,
		"grand_total": grandTotal,
	}
	for name, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch name {
			case "recalcs":
				recalcs = are.ExistingCollector.(*prometheus.CounterVec)
			case "duration":
				duration = are.ExistingCollector.(*prometheus.HistogramVec)
			case "diagnostics":
				diagnostics = are.ExistingCollector.(*prometheus.CounterVec)
			case "items":
				items = are.ExistingCollector.(*prometheus.GaugeVec)
			case "grand_total":
				grandTotal = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
	}

	return &PromSink{
		recalcs:     recalcs,
		duration:    duration,
		diagnostics: diagnostics,
		items:       items,
		grandTotal:  grandTotal,
	}, nil
}

// RecordRecalculation implements the Sink interface.
func (s *PromSink) RecordRecalculation(ev coremetrics.RecalcEvent) error {
	s.recalcs.WithLabelValues(ev.Location).Inc()
	s.duration.WithLabelValues(ev.Location).Observe(ev.Duration.Seconds())
	s.diagnostics.WithLabelValues(ev.Location).Add(float64(ev.Diagnostics))
	s.items.WithLabelValues(ev.Location).Set(float64(ev.LineItems + ev.ProtectionItems))
	s.grandTotal.WithLabelValues(ev.Location).Set(ev.GrandTotal)
	return nil
}
