package catalogue

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	core "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/formula"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

// catalogDoc is the raw on-disk catalog document.
type catalogDoc struct {
	Locations     []string                      `json:"locations"`
	MarkupPercent float64                       `json:"markup_percent"`
	Rates         map[string]map[string]float64 `json:"rates"`
	Parameters    []paramDoc                    `json:"parameters"`
	Packages      []packageDoc                  `json:"packages"`
	Rules         []ruleDoc                     `json:"rules"`
	Products      []productDoc                  `json:"products"`
	Prices        []priceDoc                    `json:"prices"`
}

type paramDoc struct {
	Key        string   `json:"key"`
	Label      string   `json:"label"`
	Type       string   `json:"type"`
	Unit       string   `json:"unit"`
	Default    any      `json:"default"`
	Global     bool     `json:"global"`
	TrueLabel  string   `json:"true_label"`
	FalseLabel string   `json:"false_label"`
	Options    []string `json:"options"`
}

type packageDoc struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	QualityLevel string   `json:"quality_level"`
	Params       []string `json:"params"`
}

type ruleDoc struct {
	PackageID    string       `json:"package_id"`
	GroupID      string       `json:"group_id"`
	QuantityBase float64      `json:"quantity_base"`
	Material     any          `json:"multipliers_material"`
	Hours        any          `json:"multipliers_hours"`
	Selector     *selectorDoc `json:"product_selector"`
}

type selectorDoc struct {
	Buckets []bucketDoc `json:"buckets"`
	Static  string      `json:"product_id"`
}

type bucketDoc struct {
	Max       *float64 `json:"max"`
	ProductID string   `json:"product_id"`
}

type productDoc struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Unit      string             `json:"unit"`
	UnitPrice float64            `json:"unit_price"`
	GroupID   string             `json:"group_id"`
	Quality   string             `json:"quality"`
	Category  string             `json:"category"`
	Modules   int                `json:"modules"`
	Locations []string           `json:"locations"`
	Hours     map[string]float64 `json:"hours"`
}

type priceDoc struct {
	ProductID string             `json:"product_id"`
	Base      *float64           `json:"base"`
	Factors   map[string]float64 `json:"factors"`
}

// FileProvider loads the whole catalog from one json/yaml document. The file
// is read once and cached for the lifetime of the provider, matching the
// once-per-session load model.
type FileProvider struct {
	Path string

	once sync.Once
	doc  catalogDoc
	snap *core.Snapshot
	err  error
}

// NewFileProvider creates a provider for the given path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) load() {
	k := koanf.New(".")
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(p.Path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		p.err = fmt.Errorf("unsupported catalog format: %s", p.Path)
		return
	}
	if err := k.Load(file.Provider(p.Path), parser); err != nil {
		p.err = fmt.Errorf("read catalog: %w", err)
		return
	}
	if err := k.UnmarshalWithConf("", &p.doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		p.err = fmt.Errorf("decode catalog: %w", err)
		return
	}
	p.snap, p.err = p.doc.snapshot()
}

func (d *catalogDoc) snapshot() (*core.Snapshot, error) {
	snap := &core.Snapshot{
		Packages: make(map[string]model.Package, len(d.Packages)),
		Params:   make(map[string]model.ParameterDef, len(d.Parameters)),
	}
	for _, pd := range d.Parameters {
		def := model.ParameterDef{
			Key:        pd.Key,
			Label:      pd.Label,
			Type:       model.ParamType(pd.Type),
			Unit:       pd.Unit,
			Global:     pd.Global,
			TrueLabel:  pd.TrueLabel,
			FalseLabel: pd.FalseLabel,
			Options:    pd.Options,
		}
		if pd.Default != nil {
			v, err := def.Coerce(pd.Default)
			if err != nil {
				return nil, fmt.Errorf("default of %s: %w", pd.Key, err)
			}
			def.Default = v
		}
		snap.Params[def.Key] = def
	}
	for _, pk := range d.Packages {
		snap.Packages[pk.ID] = model.Package{
			ID:           pk.ID,
			Name:         pk.Name,
			Category:     pk.Category,
			QualityLevel: model.QualityLevel(pk.QualityLevel),
		}
		for _, key := range pk.Params {
			snap.Links = append(snap.Links, model.ParameterLink{PackageID: pk.ID, ParamKey: key})
		}
	}
	for _, rd := range d.Rules {
		rule := model.ItemRule{
			PackageID:    rd.PackageID,
			GroupID:      rd.GroupID,
			QuantityBase: rd.QuantityBase,
			Material:     formula.Normalize(rd.Material),
			Hours:        formula.Normalize(rd.Hours),
		}
		if sd := rd.Selector; sd != nil {
			sel := &model.ProductSelector{StaticProductID: sd.Static}
			for _, b := range sd.Buckets {
				sel.Buckets = append(sel.Buckets, model.SelectorBucket{Max: b.Max, ProductID: b.ProductID})
			}
			rule.Selector = sel
		}
		snap.Rules = append(snap.Rules, rule)
	}
	for _, pd := range d.Products {
		snap.Products = append(snap.Products, model.Product{
			ID:        pd.ID,
			Name:      pd.Name,
			Unit:      pd.Unit,
			UnitPrice: pd.UnitPrice,
			GroupID:   pd.GroupID,
			Quality:   model.QualityLevel(pd.Quality),
			Category:  pd.Category,
			Modules:   pd.Modules,
			Locations: pd.Locations,
			HoursPerUnit: model.RoleHours{
				Meister: pd.Hours[string(model.RoleMeister)],
				Geselle: pd.Hours[string(model.RoleGeselle)],
				Monteur: pd.Hours[string(model.RoleMonteur)],
			},
		})
	}
	return snap, snap.Validate()
}

// Catalog implements core CatalogProvider.
func (p *FileProvider) Catalog(context.Context) (*core.Snapshot, error) {
	p.once.Do(p.load)
	return p.snap, p.err
}

// Rates implements core RatesProvider.
func (p *FileProvider) Rates(_ context.Context, location string) (core.Rates, error) {
	p.once.Do(p.load)
	if p.err != nil {
		return core.Rates{}, p.err
	}
	rates := core.Rates{MarkupPercent: p.doc.MarkupPercent}
	if wages, ok := p.doc.Rates[location]; ok {
		rates.Wages = make(map[model.Role]float64, len(wages))
		for role, w := range wages {
			rates.Wages[model.Role(role)] = w
		}
	}
	return rates, nil
}

// Prices implements core PriceProvider.
func (p *FileProvider) Prices(context.Context) (map[string]core.PriceEntry, error) {
	p.once.Do(p.load)
	if p.err != nil {
		return nil, p.err
	}
	book := make(map[string]core.PriceEntry, len(p.doc.Prices))
	for _, pd := range p.doc.Prices {
		entry := core.PriceEntry{Factors: pd.Factors}
		if pd.Base != nil {
			entry.Base = *pd.Base
			entry.HasBase = true
		}
		book[pd.ProductID] = entry
	}
	return book, nil
}

// Locations implements core LocationProvider.
func (p *FileProvider) Locations(context.Context) ([]string, error) {
	p.once.Do(p.load)
	if p.err != nil {
		return nil, p.err
	}
	return p.doc.Locations, nil
}
