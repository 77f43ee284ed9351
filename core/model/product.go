package model

// Role identifies a labor role with its own hourly wage.
type Role string

const (
	RoleMeister Role = "meister"
	RoleGeselle Role = "geselle"
	RoleMonteur Role = "monteur"
)

// Roles lists all labor roles in a stable order.
var Roles = []Role{RoleMeister, RoleGeselle, RoleMonteur}

// RoleHours holds hour figures per labor role.
type RoleHours struct {
	Meister float64
	Geselle float64
	Monteur float64
}

// Get returns the hours for one role.
func (h RoleHours) Get(r Role) float64 {
	switch r {
	case RoleMeister:
		return h.Meister
	case RoleGeselle:
		return h.Geselle
	case RoleMonteur:
		return h.Monteur
	}
	return 0
}

// Set assigns the hours for one role and returns the updated struct.
func (h RoleHours) Set(r Role, v float64) RoleHours {
	switch r {
	case RoleMeister:
		h.Meister = v
	case RoleGeselle:
		h.Geselle = v
	case RoleMonteur:
		h.Monteur = v
	}
	return h
}

// Add returns the element-wise sum of two RoleHours.
func (h RoleHours) Add(o RoleHours) RoleHours {
	return RoleHours{
		Meister: h.Meister + o.Meister,
		Geselle: h.Geselle + o.Geselle,
		Monteur: h.Monteur + o.Monteur,
	}
}

// Scale returns the RoleHours multiplied by f.
func (h RoleHours) Scale(f float64) RoleHours {
	return RoleHours{Meister: h.Meister * f, Geselle: h.Geselle * f, Monteur: h.Monteur * f}
}

// Total returns the sum over all roles.
func (h RoleHours) Total() float64 { return h.Meister + h.Geselle + h.Monteur }

// Product is one catalog entry inside a product group.
type Product struct {
	ID           string
	Name         string
	Unit         string
	UnitPrice    float64
	GroupID      string
	Quality      QualityLevel
	HoursPerUnit RoleHours
	Category     string
	// Locations restricts availability to the named locations. Empty means
	// universally available.
	Locations []string
	// Modules is the physical slot capacity for enclosure products, 0 for
	// everything else.
	Modules int
}

// AvailableAt reports whether the product may be sold at the given location.
func (p Product) AvailableAt(location string) bool {
	if len(p.Locations) == 0 {
		return true
	}
	for _, l := range p.Locations {
		if l == location {
			return true
		}
	}
	return false
}
