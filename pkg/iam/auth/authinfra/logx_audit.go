package authinfra

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/logx"
)

// LogxAuditService implements auth.AuditLogger on structured logx
// logging. Denied requests carry the full forensic trail.
type LogxAuditService struct{}

func NewLogxAuditService() *LogxAuditService {
	return &LogxAuditService{}
}

func (s *LogxAuditService) LogDenied(_ context.Context, userID, clientIP, url, body string, httpStatus int, reason string) {
	if userID == "" {
		userID = "anonymous"
	}
	logx.WithFields(logx.Fields{
		"audit_event": "access_denied",
		"http_status": httpStatus,
		"user":        userID,
		"client":      clientIP,
		"request":     url,
		"body":        body,
		"reason":      reason,
	}).Error("Audit: access denied")
}

func (s *LogxAuditService) LogAuthorized(_ context.Context, userID, clientIP, url string) {
	logx.WithFields(logx.Fields{
		"audit_event": "request_authorized",
		"user":        userID,
		"client":      clientIP,
		"request":     url,
	}).Info("Audit: request authorized")
}
