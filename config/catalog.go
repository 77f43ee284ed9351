package config

import "fmt"

// CatalogConfig selects where the product catalogue, rates and prices are
// loaded from.
type CatalogConfig struct {
	// Source is "file" or "postgres".
	Source string `json:"source"`
	// Path is the catalogue file for the file source (.json, .yaml).
	Path string `json:"path"`
	// DSN is the connection string for the postgres source.
	DSN string `json:"dsn"`
}

// Validate checks mandatory fields.
func (c CatalogConfig) Validate() error {
	switch c.Source {
	case "file":
		if c.Path == "" {
			return fmt.Errorf("catalog path is required for file source")
		}
	case "postgres":
		if c.DSN == "" {
			return fmt.Errorf("catalog dsn is required for postgres source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Source)
	}
	return nil
}
