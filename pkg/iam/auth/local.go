package auth

import (
	"context"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/token"
)

// LocalSessionAuthenticator verifies session tokens signed with the
// service's own key.
type LocalSessionAuthenticator struct {
	codec *token.Codec
}

func NewLocalSessionAuthenticator(codec *token.Codec) *LocalSessionAuthenticator {
	return &LocalSessionAuthenticator{codec: codec}
}

func (a *LocalSessionAuthenticator) Verify(_ context.Context, credential string) (*VerifiedSubject, error) {
	claims, err := a.codec.Decode(credential)
	if err != nil {
		return nil, err
	}
	return &VerifiedSubject{
		Subject:   claims.Subject,
		JTI:       claims.JTI,
		TokenType: claims.Type,
	}, nil
}
