package authinfra

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
)

// HTTPClient is the slice of http.Client the JWKS fetcher needs.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// JWKSClient fetches the identity provider's key set and caches it for
// a bounded TTL. A key id missing from a fresh-enough cache triggers
// one refetch, which covers provider key rotation.
type JWKSClient struct {
	url    string
	ttl    time.Duration
	client HTTPClient

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

func NewJWKSClient(url string, ttl time.Duration, client HTTPClient) *JWKSClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &JWKSClient{
		url:    url,
		ttl:    ttl,
		client: client,
	}
}

// PublicKey implements auth.KeyProvider.
func (c *JWKSClient) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	fresh := time.Since(c.fetchedAt) < c.ttl
	key, cached := c.keys[kid]
	c.mu.RUnlock()

	if fresh && cached {
		return key, nil
	}

	keys, err := c.fetch(ctx)
	if err != nil {
		return nil, &auth.KeyFetchError{Err: err}
	}

	c.mu.Lock()
	c.keys = keys
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	key, ok := keys[kid]
	if !ok {
		return nil, fmt.Errorf("unable to find appropriate key %q", kid)
	}
	return key, nil
}

// jwksDocument is the provider's published key-set shape.
type jwksDocument struct {
	Keys []struct {
		Kid string `json:"kid"`
		Kty string `json:"kty"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

func (c *JWKSClient) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build JWKS request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("JWKS request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	// Bound the response to 1 MB.
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read JWKS response: %w", err)
	}

	var doc jwksDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse JWKS document: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kid == "" || k.Kty != "RSA" {
			continue
		}
		key, err := parseRSAKey(k.N, k.E)
		if err != nil {
			// Skip malformed keys rather than failing the whole set.
			continue
		}
		keys[k.Kid] = key
	}
	return keys, nil
}

// parseRSAKey reconstructs a public key from base64url modulus and
// exponent.
func parseRSAKey(n, e string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, fmt.Errorf("failed to decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, fmt.Errorf("failed to decode exponent: %w", err)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nBytes),
		E: int(new(big.Int).SetBytes(eBytes).Int64()),
	}, nil
}
