package airmeet

import (
	"context"
	"fmt"
	"net/http"
)

type authResponse struct {
	Token string `json:"token"`
}

// accessToken returns the cached token, exchanging the access and secret
// keys for a new one when it is missing or expired.
func (a *Adapter) accessToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && a.now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	header := http.Header{}
	header.Set("X-Airmeet-Access-Key", a.accessKey)
	header.Set("X-Airmeet-Secret-Key", a.secretKey)

	var resp authResponse
	if err := a.do(ctx, http.MethodPost, "/auth", nil, header, &resp); err != nil {
		return "", fmt.Errorf("failed to authenticate with airmeet: %w", err)
	}
	if resp.Token == "" {
		return "", fmt.Errorf("airmeet auth returned an empty token")
	}

	a.token = resp.Token
	a.tokenExpiry = a.now().Add(a.tokenTTL)
	return a.token, nil
}

// invalidateToken clears the cache unless another caller already refreshed it.
func (a *Adapter) invalidateToken(stale string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token == stale {
		a.token = ""
		a.tokenExpiry = a.now()
	}
}
