package kernel

// ============================================================================
// Context Keys
// ============================================================================

type ContextKey string

const (
	// AuthContextKey stores the resolved identity in request locals
	AuthContextKey ContextKey = "auth_context"

	// RequestIDKey stores the request id
	RequestIDKey ContextKey = "request_id"
)
