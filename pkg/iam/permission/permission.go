package permission

import "sort"

// Permission is a named capability a user may hold within a tenant.
// The catalog is closed: permission names arriving from the store are
// parsed through Parse and unknown names are dropped, so a typo in a
// grant row can never widen access.
type Permission string

const (
	ViewFranchises       Permission = "ViewFranchises"
	MaintainFranchises   Permission = "MaintainFranchises"
	ViewStores           Permission = "ViewStores"
	MaintainStores       Permission = "MaintainStores"
	ViewLocations        Permission = "ViewLocations"
	MaintainLocations    Permission = "MaintainLocations"
	ViewRestaurants      Permission = "ViewRestaurants"
	MaintainRestaurants  Permission = "MaintainRestaurants"
	ViewMenus            Permission = "ViewMenus"
	MaintainMenus        Permission = "MaintainMenus"
	ViewItems            Permission = "ViewItems"
	MaintainItems        Permission = "MaintainItems"
	ViewIngredients      Permission = "ViewIngredients"
	MaintainIngredients  Permission = "MaintainIngredients"
	ViewVarieties        Permission = "ViewVarieties"
	MaintainVarieties    Permission = "MaintainVarieties"
	ViewEmployees        Permission = "ViewEmployees"
	MaintainEmployees    Permission = "MaintainEmployees"
	ViewMediaLibrary     Permission = "ViewMediaLibrary"
	MaintainMediaLibrary Permission = "MaintainMediaLibrary"
	ViewOrders           Permission = "ViewOrders"
	MaintainOrders       Permission = "MaintainOrders"
)

// catalog is the full set of defined permissions.
var catalog = []Permission{
	ViewFranchises, MaintainFranchises,
	ViewStores, MaintainStores,
	ViewLocations, MaintainLocations,
	ViewRestaurants, MaintainRestaurants,
	ViewMenus, MaintainMenus,
	ViewItems, MaintainItems,
	ViewIngredients, MaintainIngredients,
	ViewVarieties, MaintainVarieties,
	ViewEmployees, MaintainEmployees,
	ViewMediaLibrary, MaintainMediaLibrary,
	ViewOrders, MaintainOrders,
}

var known = func() map[Permission]struct{} {
	m := make(map[Permission]struct{}, len(catalog))
	for _, p := range catalog {
		m[p] = struct{}{}
	}
	return m
}()

// String returns the permission name.
func (p Permission) String() string { return string(p) }

// Parse maps a stored permission name onto the catalog. The second
// return is false for names not in the catalog.
func Parse(name string) (Permission, bool) {
	p := Permission(name)
	_, ok := known[p]
	return p, ok
}

// Catalog returns every defined permission.
func Catalog() []Permission {
	out := make([]Permission, len(catalog))
	copy(out, catalog)
	return out
}

// ============================================================================
// Set
// ============================================================================

// Set is an unordered collection of permissions.
type Set map[Permission]struct{}

// NewSet builds a set from the given permissions.
func NewSet(perms ...Permission) Set {
	s := make(Set, len(perms))
	for _, p := range perms {
		s[p] = struct{}{}
	}
	return s
}

// ParseSet builds a set from stored names, dropping unknown ones.
func ParseSet(names []string) Set {
	s := make(Set, len(names))
	for _, name := range names {
		if p, ok := Parse(name); ok {
			s[p] = struct{}{}
		}
	}
	return s
}

// FullSet returns a set containing the whole catalog.
func FullSet() Set {
	return NewSet(catalog...)
}

// Has reports whether p is in the set.
func (s Set) Has(p Permission) bool {
	_, ok := s[p]
	return ok
}

// HasAny reports whether at least one of the given permissions is present.
func (s Set) HasAny(perms ...Permission) bool {
	for _, p := range perms {
		if s.Has(p) {
			return true
		}
	}
	return false
}

// HasAll reports whether every given permission is present.
func (s Set) HasAll(perms ...Permission) bool {
	for _, p := range perms {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// Names returns the sorted permission names, for responses and logs.
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for p := range s {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}
