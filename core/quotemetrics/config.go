package quotemetrics

import (
	"fmt"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/factory"
)

// Config selects the metric sinks of a deployment.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusPort is the listen address of the /metrics server,
	// required when a prometheus sink is configured.
	PrometheusPort string `json:"prometheus_port"`
}

var registry = factory.NewRegistry[Sink]()

// RegisterSink adds a sink factory under the given type name.
func RegisterSink(name string, f factory.Factory[Sink]) error {
	return registry.Register(name, f)
}

// NewSink instantiates a sink from its module configuration.
func NewSink(cfg factory.ModuleConfig) (Sink, error) {
	s, err := registry.Create(cfg)
	if err != nil {
		return nil, fmt.Errorf("metrics sink %q: %w", cfg.Type, err)
	}
	return s, nil
}
