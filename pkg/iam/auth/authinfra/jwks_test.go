package authinfra_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth/authinfra"
)

type jwkEntry struct {
	Kid string `json:"kid"`
	Kty string `json:"kty"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func newRSAKey(t *testing.T) *rsa.PublicKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	return &key.PublicKey
}

func entryFor(kid string, key *rsa.PublicKey) jwkEntry {
	return jwkEntry{
		Kid: kid,
		Kty: "RSA",
		Use: "sig",
		N:   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
		E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
	}
}

// jwksServer serves a mutable key set and counts fetches.
type jwksServer struct {
	*httptest.Server
	entries []jwkEntry
	fetches int
	status  int
}

func newJWKSServer(entries ...jwkEntry) *jwksServer {
	s := &jwksServer{entries: entries, status: http.StatusOK}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		s.fetches++
		if s.status != http.StatusOK {
			w.WriteHeader(s.status)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"keys": s.entries})
	}))
	return s
}

func TestJWKSClient_FindsKey(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(entryFor("kid-1", key))
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Minute, nil)
	got, err := c.PublicKey(context.Background(), "kid-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.N.Cmp(key.N) != 0 || got.E != key.E {
		t.Fatal("returned key does not match the published key")
	}
}

func TestJWKSClient_CachesWithinTTL(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(entryFor("kid-1", key))
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Minute, nil)
	if _, err := c.PublicKey(context.Background(), "kid-1"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PublicKey(context.Background(), "kid-1"); err != nil {
		t.Fatal(err)
	}
	if srv.fetches != 1 {
		t.Fatalf("expected one fetch for a cached kid, got %d", srv.fetches)
	}
}

func TestJWKSClient_RefetchesOnUnknownKid(t *testing.T) {
	oldKey := newRSAKey(t)
	srv := newJWKSServer(entryFor("kid-old", oldKey))
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Hour, nil)
	if _, err := c.PublicKey(context.Background(), "kid-old"); err != nil {
		t.Fatal(err)
	}

	// Provider rotates its keys; the cache is still fresh but the new
	// kid forces a refetch.
	newKey := newRSAKey(t)
	srv.entries = []jwkEntry{entryFor("kid-new", newKey)}

	got, err := c.PublicKey(context.Background(), "kid-new")
	if err != nil {
		t.Fatal(err)
	}
	if got.N.Cmp(newKey.N) != 0 {
		t.Fatal("expected the rotated key")
	}
	if srv.fetches != 2 {
		t.Fatalf("expected a refetch on kid miss, got %d fetches", srv.fetches)
	}
}

func TestJWKSClient_UnknownKidAfterRefetch(t *testing.T) {
	srv := newJWKSServer(entryFor("kid-1", newRSAKey(t)))
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Minute, nil)
	if _, err := c.PublicKey(context.Background(), "kid-missing"); err == nil {
		t.Fatal("expected an error for a kid the provider never published")
	}
}

func TestJWKSClient_FetchFailureFailsClosed(t *testing.T) {
	srv := newJWKSServer(entryFor("kid-1", newRSAKey(t)))
	srv.status = http.StatusInternalServerError
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Minute, nil)
	_, err := c.PublicKey(context.Background(), "kid-1")
	if err == nil {
		t.Fatal("expected a fetch failure")
	}
	var fetchErr *auth.KeyFetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected a KeyFetchError, got %T", err)
	}
}

func TestJWKSClient_SkipsNonRSAKeys(t *testing.T) {
	key := newRSAKey(t)
	ec := jwkEntry{Kid: "kid-ec", Kty: "EC", Use: "sig"}
	srv := newJWKSServer(ec, entryFor("kid-rsa", key))
	defer srv.Close()

	c := authinfra.NewJWKSClient(srv.URL, time.Minute, nil)
	if _, err := c.PublicKey(context.Background(), "kid-rsa"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.PublicKey(context.Background(), "kid-ec"); err == nil {
		t.Fatal("non-RSA keys must not be usable")
	}
}
