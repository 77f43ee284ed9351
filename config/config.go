package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/quotemetrics"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/infra/mqtt"
)

type Config struct {
	// Location is the default site used when a request does not name one.
	Location string              `json:"location"`
	Catalog  CatalogConfig       `json:"catalog"`
	API      APIConfig           `json:"api"`
	Metrics  quotemetrics.Config `json:"metrics"`
	MQTT     mqtt.Config         `json:"mqtt"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("WB_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "wb_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.API.SetDefaults()
	if cfg.MQTT.Enabled {
		cfg.MQTT.SetDefaults()
		if err := cfg.MQTT.Validate(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Catalog.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.API.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
