package app

import (
	"context"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/api/quotes"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/config"
	coremetrics "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/session"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/catalogue/gormstore"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/logger"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/mqtt"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/quotemetrics"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/internal/eventbus"
)

// Service wires the catalogue providers, metric sinks, event publisher and
// HTTP API together.
type Service struct {
	Handler   *quotes.Handler
	addr      string
	log       logger.Logger
	sink      coremetrics.Sink
	bus       *eventbus.Bus
	publisher *mqtt.Publisher
	promPort  string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	providers, err := Providers(cfg.Catalog)
	if err != nil {
		return nil, err
	}

	var sinks []coremetrics.Sink
	promPort := ""
	for _, sc := range cfg.Metrics.Sinks {
		sink, err := coremetrics.NewSink(sc)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, sink)
		if sc.Type == "prometheus" {
			promPort = cfg.Metrics.PrometheusPort
		}
	}
	var sink coremetrics.Sink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = quotemetrics.NewMultiSink(sinks...)
	}

	var publisher *mqtt.Publisher
	if cfg.MQTT.Enabled {
		publisher, err = mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	bus := eventbus.New()
	handler := &quotes.Handler{
		Providers: providers,
		Log:       logger.New("api"),
		Sink:      sink,
		Bus:       bus,
	}

	s := &Service{
		Handler:   handler,
		addr:      cfg.API.Addr,
		log:       logg,
		sink:      sink,
		bus:       bus,
		publisher: publisher,
		promPort:  promPort,
	}
	go s.consumeEvents(bus.Subscribe())
	return s, nil
}

// consumeEvents forwards session events from the bus: recalculations go to
// the MQTT publisher, diagnostics are logged. Runs until the bus is closed.
func (s *Service) consumeEvents(events <-chan eventbus.Event) {
	for e := range events {
		switch ev := e.(type) {
		case session.RecalculatedEvent:
			if s.publisher == nil {
				continue
			}
			if err := s.publisher.Publish(mqtt.QuoteEvent{
				SessionID:       ev.SessionID,
				Location:        ev.Location,
				LineItems:       ev.LineItems,
				ProtectionItems: ev.ProtectionItems,
				Diagnostics:     ev.Diagnostics,
				GrandTotal:      ev.GrandTotal,
				Time:            ev.Time,
			}); err != nil {
				s.log.Errorf("quote event publish: %v", err)
			}
		case session.DiagnosticEvent:
			s.log.Debugw("resolution diagnostic", map[string]any{
				"session_id": ev.SessionID,
				"kind":       ev.Kind,
				"group_id":   ev.GroupID,
				"detail":     ev.Detail,
			})
		}
	}
}

// Providers builds the catalogue providers for the configured source.
func Providers(cfg config.CatalogConfig) (session.Providers, error) {
	switch cfg.Source {
	case "file":
		p := catalogue.NewFileProvider(cfg.Path)
		return session.Providers{Catalog: p, Rates: p, Prices: p, Locations: p}, nil
	case "postgres":
		store, err := gormstore.Open(cfg.DSN)
		if err != nil {
			return session.Providers{}, fmt.Errorf("catalog store: %w", err)
		}
		return session.Providers{Catalog: store, Rates: store, Prices: store, Locations: store}, nil
	default:
		return session.Providers{}, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.promPort != "" {
		go func() {
			if err := quotemetrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	srv := &fasthttp.Server{
		Handler: s.Handler.Handle,
		Name:    "wallbox-quotes",
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("quote API listening on %s", s.addr)
		errCh <- srv.ListenAndServe(s.addr)
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.ShutdownWithContext(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	if s.publisher != nil {
		s.publisher.Close()
	}
	if closer, ok := s.sink.(interface{ Close() }); ok {
		closer.Close()
	}
	return nil
}
