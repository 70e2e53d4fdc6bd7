package permission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// fakeGrants serves canned grant and catalog rows.
type fakeGrants struct {
	grants     []string
	catalog    []string
	grantsErr  error
	catalogErr error
}

func (f *fakeGrants) FindGrantNames(context.Context, kernel.UserID) ([]string, error) {
	return f.grants, f.grantsErr
}

func (f *fakeGrants) FindCatalogNames(context.Context) ([]string, error) {
	return f.catalog, f.catalogErr
}

// fakeMemberships answers the owner flag.
type fakeMemberships struct {
	owner bool
	err   error
}

func (f *fakeMemberships) IsOwner(context.Context, kernel.UserID, kernel.TenantID) (bool, error) {
	return f.owner, f.err
}

var (
	userID   = kernel.NewUserID("user-1")
	tenantID = kernel.NewTenantID("tenant-1")
)

func TestResolver_ExplicitGrants(t *testing.T) {
	r := permission.NewResolver(
		&fakeGrants{grants: []string{"ViewMenus", "ViewItems"}},
		&fakeMemberships{owner: false},
	)

	effective, err := r.Effective(context.Background(), userID, tenantID)
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 2 {
		t.Fatalf("expected 2 effective permissions, got %v", effective.Names())
	}
	if !effective.Has(permission.ViewMenus) {
		t.Fatal("expected granted permission in effective set")
	}
	if effective.Has(permission.MaintainMenus) {
		t.Fatal("ungranted permission leaked into effective set")
	}
}

func TestResolver_OwnerGetsFullCatalog(t *testing.T) {
	grants := &fakeGrants{
		grants:  []string{"ViewMenus"}, // explicit grants must be ignored for owners
		catalog: []string{"ViewMenus", "MaintainMenus", "ViewOrders"},
	}
	r := permission.NewResolver(grants, &fakeMemberships{owner: true})

	effective, err := r.Effective(context.Background(), userID, tenantID)
	if err != nil {
		t.Fatal(err)
	}
	if len(effective) != 3 {
		t.Fatalf("expected the full catalog, got %v", effective.Names())
	}
	if !effective.Has(permission.MaintainMenus) {
		t.Fatal("owner should hold every cataloged permission")
	}
}

func TestResolver_MembershipErrorDenies(t *testing.T) {
	r := permission.NewResolver(
		&fakeGrants{grants: []string{"ViewMenus"}},
		&fakeMemberships{err: errors.New("connection refused")},
	)

	if _, err := r.Effective(context.Background(), userID, tenantID); err == nil {
		t.Fatal("membership store failure must surface as an error")
	}
}

func TestResolver_GrantErrorDenies(t *testing.T) {
	r := permission.NewResolver(
		&fakeGrants{grantsErr: errors.New("connection refused")},
		&fakeMemberships{owner: false},
	)

	ok, err := r.HasAny(context.Background(), userID, tenantID, permission.ViewMenus)
	if err == nil {
		t.Fatal("grant store failure must surface as an error")
	}
	if ok {
		t.Fatal("a failed resolution must never allow")
	}
}

func TestResolver_HasAnyHasAll(t *testing.T) {
	r := permission.NewResolver(
		&fakeGrants{grants: []string{"ViewMenus", "ViewItems"}},
		&fakeMemberships{owner: false},
	)
	ctx := context.Background()

	ok, err := r.HasAny(ctx, userID, tenantID, permission.ViewMenus, permission.MaintainMenus)
	if err != nil || !ok {
		t.Fatalf("HasAny: expected pass, got ok=%v err=%v", ok, err)
	}

	ok, err = r.HasAll(ctx, userID, tenantID, permission.ViewMenus, permission.MaintainMenus)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("HasAll should fail with a missing permission")
	}
}
