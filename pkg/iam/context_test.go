package iam_test

import (
	"testing"

	"github.com/williamhuntjr/grubstack-api/pkg/iam"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

func TestAuthContext_IsValid(t *testing.T) {
	valid := &iam.AuthContext{
		UserID:   kernel.NewUserID("user-1"),
		TenantID: kernel.NewTenantID("tenant-1"),
	}
	if !valid.IsValid() {
		t.Fatal("user context with user and tenant should be valid")
	}

	noTenant := &iam.AuthContext{UserID: kernel.NewUserID("user-1")}
	if noTenant.IsValid() {
		t.Fatal("missing tenant should invalidate the context")
	}

	service := &iam.AuthContext{IsService: true, TenantID: kernel.NewTenantID("tenant-1")}
	if !service.IsValid() {
		t.Fatal("service context needs no user id")
	}
}

func TestAuthContext_AllowsOwnerShortCircuit(t *testing.T) {
	owner := &iam.AuthContext{IsOwner: true}

	// Owners pass regardless of the effective set.
	if !owner.Allows(permission.NewSet(), true, permission.MaintainOrders) {
		t.Fatal("owner should pass every permission check")
	}
}

func TestAuthContext_AllowsModes(t *testing.T) {
	ac := &iam.AuthContext{}
	held := permission.NewSet(permission.ViewMenus)

	if !ac.Allows(held, false, permission.ViewMenus, permission.MaintainMenus) {
		t.Fatal("any-mode should pass with one held permission")
	}
	if ac.Allows(held, true, permission.ViewMenus, permission.MaintainMenus) {
		t.Fatal("all-mode should fail with a missing permission")
	}
}
