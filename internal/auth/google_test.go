package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServiceAccountJSON(t *testing.T, tokenURI string) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	payload, err := json.Marshal(map[string]string{
		"client_email": "svc@example-project.iam.gserviceaccount.com",
		"private_key":  string(keyPEM),
		"token_uri":    tokenURI,
	})
	require.NoError(t, err)
	return payload
}

func TestGoogleTokenManagerFetchesAndCachesToken(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "urn:ietf:params:oauth:grant-type:jwt-bearer", r.Form.Get("grant_type"))
		assert.NotEmpty(t, r.Form.Get("assertion"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"g-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	payload := testServiceAccountJSON(t, server.URL)
	config, err := ParseGoogleServiceAccountConfig(payload, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{defaultGoogleScope}, config.Scopes)

	m := NewGoogleTokenManager()

	first, err := m.GetToken(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "g-token", first)

	second, err := m.GetToken(context.Background(), config)
	require.NoError(t, err)
	assert.Equal(t, "g-token", second)

	assert.Equal(t, 1, requests)
}

func TestParseGoogleServiceAccountConfigDefaultsTokenURI(t *testing.T) {
	payload := []byte(`{"client_email":"a@b.iam.gserviceaccount.com","private_key":"pk"}`)
	config, err := ParseGoogleServiceAccountConfig(payload, []string{"scope-a", "scope-b"})
	require.NoError(t, err)
	assert.Equal(t, defaultGoogleTokenURI, config.Key.TokenURI)
	assert.Equal(t, "scope-a scope-b", config.scopeString())
}
