package scenarios

import (
	"os"

	"gopkg.in/yaml.v3"
)

// PackageDef selects a package for the scenario session.
type PackageDef struct {
	PackageID string         `yaml:"package_id"`
	Count     int            `yaml:"count"`
	Params    map[string]any `yaml:"params,omitempty"`
}

// Expected holds the figures the scenario must produce.
type Expected struct {
	LineItems       int      `yaml:"line_items"`
	ProtectionItems int      `yaml:"protection_items"`
	GrandTotal      *float64 `yaml:"grand_total,omitempty"`
}

type Scenario struct {
	Name         string         `yaml:"name"`
	Description  string         `yaml:"description,omitempty"`
	Location     string         `yaml:"location"`
	GlobalParams map[string]any `yaml:"global_params,omitempty"`
	Packages     []PackageDef   `yaml:"packages"`
	Expected     Expected       `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
