package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

const azureTokenEndpoint = "https://login.microsoftonline.com"

// AzureEntraCredentials are the client-credentials inputs for an Azure
// Entra ID (formerly Azure AD) confidential-client token request.
type AzureEntraCredentials struct {
	ClientID     string
	TenantID     string
	Scope        string
	ClientSecret string
	// TokenURL overrides the derived tenant token endpoint. Used in
	// tests and for sovereign-cloud token endpoints.
	TokenURL string
}

func (c AzureEntraCredentials) cacheKey() string {
	if c.TokenURL != "" {
		return fingerprint(c.ClientID, c.TenantID, c.Scope, c.TokenURL)
	}
	return fingerprint(c.ClientID, c.TenantID, c.Scope)
}

func (c AzureEntraCredentials) tokenURL() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return fmt.Sprintf("%s/%s/oauth2/v2.0/token", azureTokenEndpoint, c.TenantID)
}

// AzureEntraTokenManager mints and caches Azure Entra bearer tokens,
// refreshing once the cached token is within tokenExpiryBuffer of
// expiry. Grounded on auth/azure.rs's AzureEntraTokenManager.
type AzureEntraTokenManager struct {
	cache *tokenCache
}

func NewAzureEntraTokenManager() *AzureEntraTokenManager {
	return &AzureEntraTokenManager{cache: newTokenCache()}
}

// GetToken returns a cached bearer token for creds, fetching a new one
// via the OAuth2 client-credentials grant if none is cached or the
// cached one is about to expire.
func (m *AzureEntraTokenManager) GetToken(ctx context.Context, creds AzureEntraCredentials) (string, error) {
	key := creds.cacheKey()
	if v, ok := m.cache.get(key); ok {
		return v, nil
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.tokenURL(),
		Scopes:       []string{creds.Scope},
	}

	token, err := cfg.Token(ctx)
	if err != nil {
		return "", &gwerrors.AuthError{Reason: fmt.Sprintf("azure entra token request failed: %v", err)}
	}

	m.cache.set(key, token.AccessToken, token.Expiry)
	return token.AccessToken, nil
}
