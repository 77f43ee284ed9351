package model

// QualityLevel is the product quality tier used for fallback selection.
type QualityLevel string

const (
	QualityBasic    QualityLevel = "Basic"
	QualityStandard QualityLevel = "Standard"
	QualityPremium  QualityLevel = "Premium"
)

// Package is a purchasable bundle of installation work, e.g. a bathroom
// refurbishment. Packages are immutable reference data loaded from the catalog.
type Package struct {
	ID       string
	Name     string
	Category string
	// QualityLevel is an optional package-level tier used as a fallback when
	// the global quality parameter yields no product.
	QualityLevel QualityLevel
}

// PackageInstance is one user-added occurrence of a package. The same package
// may be added multiple times (two bathrooms, two bedrooms) and each instance
// carries its own local parameter values.
type PackageInstance struct {
	ID          string
	PackageID   string
	LocalParams Env
}

// ParameterLink declares that a package exposes a parameter as a local input.
type ParameterLink struct {
	PackageID string
	ParamKey  string
}
