package user_test

import (
	"context"
	"errors"
	"testing"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/user"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// fakeMembershipRepo serves a single canned membership row.
type fakeMembershipRepo struct {
	membership *user.TenantMembership
	err        error
}

func (f *fakeMembershipRepo) FindMembership(context.Context, kernel.UserID, kernel.TenantID) (*user.TenantMembership, error) {
	return f.membership, f.err
}

func (f *fakeMembershipRepo) IsOwner(context.Context, kernel.UserID, kernel.TenantID) (bool, error) {
	if f.membership == nil {
		return false, f.err
	}
	return f.membership.IsOwner, f.err
}

func TestTenantGuard_Member(t *testing.T) {
	tenant := kernel.NewTenantID("tenant-1")
	repo := &fakeMembershipRepo{membership: &user.TenantMembership{
		UserID:   kernel.NewUserID("user-1"),
		TenantID: tenant,
		IsOwner:  true,
	}}
	g := user.NewTenantGuard(repo, tenant)

	membership, err := g.VerifyMembership(context.Background(), kernel.NewUserID("user-1"))
	if err != nil {
		t.Fatal(err)
	}
	if !membership.IsOwner {
		t.Fatal("expected the stored owner flag")
	}
}

func TestTenantGuard_NonMemberDenied(t *testing.T) {
	g := user.NewTenantGuard(&fakeMembershipRepo{}, kernel.NewTenantID("tenant-1"))

	_, err := g.VerifyMembership(context.Background(), kernel.NewUserID("user-1"))
	if err == nil {
		t.Fatal("expected a denial for a non-member")
	}
	if !errx.HasCode(err, user.CodeTenantMismatch) {
		t.Fatalf("expected TENANT_MISMATCH, got %v", err)
	}
}

func TestTenantGuard_StoreFailureDenies(t *testing.T) {
	g := user.NewTenantGuard(
		&fakeMembershipRepo{err: errors.New("connection refused")},
		kernel.NewTenantID("tenant-1"),
	)

	if _, err := g.VerifyMembership(context.Background(), kernel.NewUserID("user-1")); err == nil {
		t.Fatal("store failure must deny, not pass")
	}
}
