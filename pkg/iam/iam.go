package iam

import (
	"net/http"

	"github.com/williamhuntjr/grubstack-api/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("IAM")

var (
	CodeUnauthorized = ErrRegistry.Register("UNAUTHORIZED", errx.TypeAuthentication, http.StatusUnauthorized, "Unauthorized")
	CodeAccessDenied = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Forbidden")
)

func ErrUnauthorized() *errx.Error {
	return ErrRegistry.New(CodeUnauthorized)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}
