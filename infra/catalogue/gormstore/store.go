// Package gormstore implements the catalog providers on top of a Postgres
// database accessed through gorm. Formula specs and availability tags are
// stored as JSON columns and normalized at load time.
package gormstore

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	core "github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/catalogue"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/formula"
	"github.com/Kloppi-byte/wallbox-blitz-builder-sub000/core/model"
)

type packageRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Category     string
	QualityLevel string
}

func (packageRow) TableName() string { return "packages" }

type parameterRow struct {
	Key        string `gorm:"primaryKey"`
	Label      string
	Type       string
	Unit       string
	Default    string
	Global     bool
	TrueLabel  string
	FalseLabel string
	Options    string // JSON array
}

func (parameterRow) TableName() string { return "parameters" }

type linkRow struct {
	PackageID string `gorm:"primaryKey"`
	ParamKey  string `gorm:"primaryKey"`
}

func (linkRow) TableName() string { return "parameter_links" }

type ruleRow struct {
	ID           uint `gorm:"primaryKey"`
	PackageID    string
	GroupID      string
	QuantityBase float64
	Material     string // JSON formula spec
	Hours        string // JSON formula spec
	Selector     string // JSON selector
}

func (ruleRow) TableName() string { return "package_items" }

type productRow struct {
	ID           string `gorm:"primaryKey"`
	Name         string
	Unit         string
	UnitPrice    float64
	GroupID      string
	Quality      string
	Category     string
	Modules      int
	Locations    string // JSON array
	MeisterHours float64
	GeselleHours float64
	MonteurHours float64
}

func (productRow) TableName() string { return "products" }

type priceRow struct {
	ProductID string `gorm:"primaryKey"`
	Base      *float64
	Factors   string // JSON map location -> factor
}

func (priceRow) TableName() string { return "product_prices" }

type rateRow struct {
	Location string `gorm:"primaryKey"`
	Meister  float64
	Geselle  float64
	Monteur  float64
}

func (rateRow) TableName() string { return "hourly_rates" }

type settingRow struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (settingRow) TableName() string { return "quote_settings" }

// Store serves the catalog from Postgres.
type Store struct {
	db *gorm.DB
}

// Open connects to the database.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStore wraps an existing gorm handle, used by tests.
func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

type selectorDoc struct {
	Buckets []struct {
		Max       *float64 `json:"max"`
		ProductID string   `json:"product_id"`
	} `json:"buckets"`
	Static string `json:"product_id"`
}

// Catalog implements core CatalogProvider by loading the full reference
// dataset.
func (s *Store) Catalog(ctx context.Context) (*core.Snapshot, error) {
	snap := &core.Snapshot{
		Packages: map[string]model.Package{},
		Params:   map[string]model.ParameterDef{},
	}

	var pkgs []packageRow
	if err := s.db.WithContext(ctx).Find(&pkgs).Error; err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}
	for _, r := range pkgs {
		snap.Packages[r.ID] = model.Package{
			ID:           r.ID,
			Name:         r.Name,
			Category:     r.Category,
			QualityLevel: model.QualityLevel(r.QualityLevel),
		}
	}

	var params []parameterRow
	if err := s.db.WithContext(ctx).Find(&params).Error; err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}
	for _, r := range params {
		def := model.ParameterDef{
			Key:        r.Key,
			Label:      r.Label,
			Type:       model.ParamType(r.Type),
			Unit:       r.Unit,
			Global:     r.Global,
			TrueLabel:  r.TrueLabel,
			FalseLabel: r.FalseLabel,
		}
		if r.Options != "" {
			if err := json.Unmarshal([]byte(r.Options), &def.Options); err != nil {
				return nil, fmt.Errorf("options of %s: %w", r.Key, err)
			}
		}
		if r.Default != "" {
			var raw any
			if err := json.Unmarshal([]byte(r.Default), &raw); err != nil {
				return nil, fmt.Errorf("default of %s: %w", r.Key, err)
			}
			v, err := def.Coerce(raw)
			if err != nil {
				return nil, err
			}
			def.Default = v
		}
		snap.Params[def.Key] = def
	}

	var links []linkRow
	if err := s.db.WithContext(ctx).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("load parameter links: %w", err)
	}
	for _, r := range links {
		snap.Links = append(snap.Links, model.ParameterLink{PackageID: r.PackageID, ParamKey: r.ParamKey})
	}

	var rules []ruleRow
	if err := s.db.WithContext(ctx).Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("load package items: %w", err)
	}
	for _, r := range rules {
		rule := model.ItemRule{
			PackageID:    r.PackageID,
			GroupID:      r.GroupID,
			QuantityBase: r.QuantityBase,
			Material:     normalizeJSON(r.Material),
			Hours:        normalizeJSON(r.Hours),
		}
		if r.Selector != "" {
			var sd selectorDoc
			if err := json.Unmarshal([]byte(r.Selector), &sd); err == nil {
				sel := &model.ProductSelector{StaticProductID: sd.Static}
				for _, b := range sd.Buckets {
					sel.Buckets = append(sel.Buckets, model.SelectorBucket{Max: b.Max, ProductID: b.ProductID})
				}
				rule.Selector = sel
			}
		}
		snap.Rules = append(snap.Rules, rule)
	}

	var products []productRow
	if err := s.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, r := range products {
		p := model.Product{
			ID:        r.ID,
			Name:      r.Name,
			Unit:      r.Unit,
			UnitPrice: r.UnitPrice,
			GroupID:   r.GroupID,
			Quality:   model.QualityLevel(r.Quality),
			Category:  r.Category,
			Modules:   r.Modules,
			HoursPerUnit: model.RoleHours{
				Meister: r.MeisterHours,
				Geselle: r.GeselleHours,
				Monteur: r.MonteurHours,
			},
		}
		if r.Locations != "" {
			if err := json.Unmarshal([]byte(r.Locations), &p.Locations); err != nil {
				return nil, fmt.Errorf("locations of %s: %w", r.ID, err)
			}
		}
		snap.Products = append(snap.Products, p)
	}

	return snap, snap.Validate()
}

// normalizeJSON decodes a raw formula column and normalizes it. Malformed
// JSON behaves like an absent formula.
func normalizeJSON(raw string) []model.FormulaEntry {
	if raw == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return formula.Normalize(v)
}

// Rates implements core RatesProvider.
func (s *Store) Rates(ctx context.Context, location string) (core.Rates, error) {
	rates := core.Rates{}
	var setting settingRow
	err := s.db.WithContext(ctx).Where("key = ?", "markup_percent").First(&setting).Error
	if err == nil {
		if _, e := fmt.Sscanf(setting.Value, "%f", &rates.MarkupPercent); e != nil {
			return core.Rates{}, fmt.Errorf("markup setting: %w", e)
		}
	} else if err != gorm.ErrRecordNotFound {
		return core.Rates{}, fmt.Errorf("load settings: %w", err)
	}

	var row rateRow
	err = s.db.WithContext(ctx).Where("location = ?", location).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return rates, nil
	}
	if err != nil {
		return core.Rates{}, fmt.Errorf("load rates: %w", err)
	}
	rates.Wages = map[model.Role]float64{
		model.RoleMeister: row.Meister,
		model.RoleGeselle: row.Geselle,
		model.RoleMonteur: row.Monteur,
	}
	return rates, nil
}

// Prices implements core PriceProvider.
func (s *Store) Prices(ctx context.Context) (map[string]core.PriceEntry, error) {
	var rows []priceRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}
	book := make(map[string]core.PriceEntry, len(rows))
	for _, r := range rows {
		entry := core.PriceEntry{}
		if r.Base != nil {
			entry.Base = *r.Base
			entry.HasBase = true
		}
		if r.Factors != "" {
			if err := json.Unmarshal([]byte(r.Factors), &entry.Factors); err != nil {
				return nil, fmt.Errorf("factors of %s: %w", r.ProductID, err)
			}
		}
		book[r.ProductID] = entry
	}
	return book, nil
}

// Locations implements core LocationProvider.
func (s *Store) Locations(ctx context.Context) ([]string, error) {
	var rows []rateRow
	if err := s.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load locations: %w", err)
	}
	locs := make([]string, 0, len(rows))
	for _, r := range rows {
		locs = append(locs, r.Location)
	}
	return locs, nil
}
