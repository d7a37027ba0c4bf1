package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

// DatabricksCredentials are the client-credentials inputs for a
// Databricks workspace's OIDC token endpoint.
type DatabricksCredentials struct {
	ClientID     string
	ClientSecret string
}

func (c DatabricksCredentials) cacheKey(apiBase string) string {
	return fingerprint(c.ClientID, apiBase)
}

type cachedDatabricksToken struct {
	value     string
	tokenType string
	expiresAt time.Time
}

// DatabricksTokenManager mints and caches Databricks OAuth access
// tokens per (client, workspace) pair, using HTTP Basic auth and the
// "all-apis" scope. Grounded on auth/databricks.rs's
// DatabricksTokenManager.
type DatabricksTokenManager struct {
	mu      sync.Mutex
	entries map[string]cachedDatabricksToken
}

func NewDatabricksTokenManager() *DatabricksTokenManager {
	return &DatabricksTokenManager{entries: make(map[string]cachedDatabricksToken)}
}

// GetToken returns a cached (access_token, token_type) pair for
// (creds, apiBase), refreshing via the client-credentials grant when
// the cached token is missing or near expiry.
func (m *DatabricksTokenManager) GetToken(ctx context.Context, creds DatabricksCredentials, apiBase string) (string, string, error) {
	key := creds.cacheKey(apiBase)

	m.mu.Lock()
	if entry, ok := m.entries[key]; ok && time.Now().Add(tokenExpiryBuffer).Before(entry.expiresAt) {
		m.mu.Unlock()
		return entry.value, entry.tokenType, nil
	}
	m.mu.Unlock()

	tokenURL := strings.TrimRight(apiBase, "/") + "/oidc/v1/token"
	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     tokenURL,
		Scopes:       []string{"all-apis"},
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		return "", "", &gwerrors.AuthError{Reason: fmt.Sprintf("databricks oauth token request failed: %v", err)}
	}

	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	m.mu.Lock()
	m.entries[key] = cachedDatabricksToken{value: token.AccessToken, tokenType: tokenType, expiresAt: token.Expiry}
	m.mu.Unlock()

	return token.AccessToken, tokenType, nil
}
