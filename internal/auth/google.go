package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/oauth2/jwt"

	"github.com/howard-nolan/llmgateway/internal/gwerrors"
)

const (
	defaultGoogleTokenURI = "https://oauth2.googleapis.com/token"
	defaultGoogleScope    = "https://www.googleapis.com/auth/cloud-platform"
)

// ServiceAccountKey is the subset of a Google service-account JSON key
// file needed to mint a JWT-bearer access token.
type ServiceAccountKey struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
	TokenURI    string `json:"token_uri"`
}

// GoogleServiceAccountConfig pairs a parsed service-account key with the
// OAuth scopes it should request.
type GoogleServiceAccountConfig struct {
	Key    ServiceAccountKey
	Scopes []string
}

// ParseGoogleServiceAccountConfig parses a raw service-account JSON key
// and applies the default token endpoint and scope when absent, mirroring
// GoogleServiceAccountConfig::from_json.
func ParseGoogleServiceAccountConfig(payload []byte, scopes []string) (GoogleServiceAccountConfig, error) {
	var key ServiceAccountKey
	if err := json.Unmarshal(payload, &key); err != nil {
		return GoogleServiceAccountConfig{}, fmt.Errorf("failed to parse Google service account JSON: %w", err)
	}
	if key.TokenURI == "" {
		key.TokenURI = defaultGoogleTokenURI
	}
	if len(scopes) == 0 {
		scopes = []string{defaultGoogleScope}
	}
	return GoogleServiceAccountConfig{Key: key, Scopes: scopes}, nil
}

func (c GoogleServiceAccountConfig) scopeString() string {
	if len(c.Scopes) == 0 {
		return defaultGoogleScope
	}
	return strings.Join(c.Scopes, " ")
}

func (c GoogleServiceAccountConfig) cacheKey() string {
	return fingerprint(c.Key.ClientEmail, c.Key.PrivateKey, c.scopeString())
}

// GoogleTokenManager mints and caches Google service-account access
// tokens via the RS256 JWT-bearer grant
// (urn:ietf:params:oauth:grant-type:jwt-bearer), which
// golang.org/x/oauth2/jwt implements directly. Grounded on
// auth/google.rs's GoogleTokenManager.
type GoogleTokenManager struct {
	cache *tokenCache
}

func NewGoogleTokenManager() *GoogleTokenManager {
	return &GoogleTokenManager{cache: newTokenCache()}
}

// GetToken returns a cached access token for config, refreshing via a
// freshly signed JWT assertion when no valid cached token exists.
func (m *GoogleTokenManager) GetToken(ctx context.Context, config GoogleServiceAccountConfig) (string, error) {
	key := config.cacheKey()
	if v, ok := m.cache.get(key); ok {
		return v, nil
	}

	cfg := &jwt.Config{
		Email:      config.Key.ClientEmail,
		PrivateKey: []byte(config.Key.PrivateKey),
		Scopes:     config.Scopes,
		TokenURL:   config.Key.TokenURI,
	}

	token, err := cfg.TokenSource(ctx).Token()
	if err != nil {
		return "", &gwerrors.AuthError{Reason: fmt.Sprintf("google service account token request failed: %v", err)}
	}

	m.cache.set(key, token.AccessToken, token.Expiry)
	return token.AccessToken, nil
}
