package permission_test

import (
	"sort"
	"testing"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
)

func TestParse_UnknownNameDropped(t *testing.T) {
	if _, ok := permission.Parse("ViewFranchises"); !ok {
		t.Fatal("catalog name should parse")
	}
	if _, ok := permission.Parse("DeleteEverything"); ok {
		t.Fatal("unknown name should not parse")
	}
	if _, ok := permission.Parse("viewfranchises"); ok {
		t.Fatal("permission names are case sensitive")
	}
}

func TestParseSet_DropsUnknownNames(t *testing.T) {
	s := permission.ParseSet([]string{"ViewMenus", "bogus", "MaintainItems", ""})
	if len(s) != 2 {
		t.Fatalf("expected 2 parsed permissions, got %d", len(s))
	}
	if !s.Has(permission.ViewMenus) || !s.Has(permission.MaintainItems) {
		t.Fatalf("unexpected set contents: %v", s.Names())
	}
}

func TestSet_HasAnyHasAll(t *testing.T) {
	s := permission.NewSet(permission.ViewStores, permission.ViewMenus)

	if !s.HasAny(permission.ViewStores, permission.MaintainStores) {
		t.Fatal("HasAny should pass with one held permission")
	}
	if s.HasAny(permission.MaintainStores, permission.MaintainMenus) {
		t.Fatal("HasAny should fail with none held")
	}
	if !s.HasAll(permission.ViewStores, permission.ViewMenus) {
		t.Fatal("HasAll should pass when every permission is held")
	}
	if s.HasAll(permission.ViewStores, permission.MaintainMenus) {
		t.Fatal("HasAll should fail with one missing")
	}
}

func TestSet_EmptyRequirements(t *testing.T) {
	s := permission.NewSet(permission.ViewStores)

	// No requirement means nothing to satisfy.
	if s.HasAny() {
		t.Fatal("HasAny with no requirements should be false")
	}
	if !s.HasAll() {
		t.Fatal("HasAll with no requirements should be vacuously true")
	}
}

func TestSet_NamesSorted(t *testing.T) {
	s := permission.FullSet()
	names := s.Names()
	if len(names) != len(permission.Catalog()) {
		t.Fatalf("expected %d names, got %d", len(permission.Catalog()), len(names))
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("expected sorted names, got %v", names)
	}
}
