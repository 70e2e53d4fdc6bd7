package iam

import (
	"github.com/williamhuntjr/grubstack-api/pkg/iam/permission"
	"github.com/williamhuntjr/grubstack-api/pkg/kernel"
)

// ============================================================================
// AuthContext
// ============================================================================

// AuthContext is the resolved identity attached to every authenticated
// request. For service credentials UserID is empty and IsService is set;
// the gate restricts those to the configured allow-list.
type AuthContext struct {
	UserID    kernel.UserID   `json:"user_id"`
	TenantID  kernel.TenantID `json:"tenant_id"`
	Username  string          `json:"username"`
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`

	// IsOwner marks the tenant owner; owners pass every permission gate
	IsOwner bool `json:"is_owner"`

	// IsService marks a shared-secret service credential
	IsService bool `json:"is_service"`

	// Federated marks identities established through the external
	// identity provider rather than a locally issued session token
	Federated bool `json:"federated"`

	// TokenJTI is the presented token's id, empty for service calls
	TokenJTI string `json:"token_jti"`
}

// IsValid reports whether the context carries enough identity to act on.
func (ac *AuthContext) IsValid() bool {
	if ac.IsService {
		return !ac.TenantID.IsEmpty()
	}
	return !ac.UserID.IsEmpty() && !ac.TenantID.IsEmpty()
}

// Allows reports whether this context satisfies the required permissions
// against an effective permission set. Ownership short-circuits.
func (ac *AuthContext) Allows(effective permission.Set, requireAll bool, required ...permission.Permission) bool {
	if ac.IsOwner {
		return true
	}
	if requireAll {
		return effective.HasAll(required...)
	}
	return effective.HasAny(required...)
}
