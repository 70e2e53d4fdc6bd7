package errx

// Type categorizes an error for HTTP mapping and logging.
type Type string

const (
	// TypeInternal represents internal server errors
	TypeInternal Type = "INTERNAL"

	// TypeValidation represents malformed or invalid input
	TypeValidation Type = "VALIDATION"

	// TypeAuthentication represents failures to establish identity
	TypeAuthentication Type = "AUTHENTICATION"

	// TypeAuthorization represents denied access for a known identity
	TypeAuthorization Type = "AUTHORIZATION"

	// TypeNotFound represents resource not found errors
	TypeNotFound Type = "NOT_FOUND"

	// TypeExternal represents errors from upstream services
	TypeExternal Type = "EXTERNAL"
)

// String returns the string representation of the error type
func (t Type) String() string {
	return string(t)
}

// typeToHTTPStatus maps error types to HTTP status codes
func typeToHTTPStatus(t Type) int {
	switch t {
	case TypeValidation:
		return 400
	case TypeAuthentication:
		return 401
	case TypeAuthorization:
		return 403
	case TypeNotFound:
		return 404
	case TypeExternal:
		return 502
	default:
		return 500
	}
}
