package authinfra

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/williamhuntjr/grubstack-api/pkg/iam/auth"
)

// UserinfoClient implements auth.ProfileFetcher against the identity
// provider's userinfo endpoint.
type UserinfoClient struct {
	url    string
	client HTTPClient
}

func NewUserinfoClient(url string, client HTTPClient) *UserinfoClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &UserinfoClient{url: url, client: client}
}

func (c *UserinfoClient) FetchProfile(ctx context.Context, bearerToken string) (*auth.ProviderProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+bearerToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read userinfo response: %w", err)
	}

	var profile auth.ProviderProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return &profile, nil
}
