package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabricksTokenManagerFetchesAndCachesToken(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/oidc/v1/token", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "client", user)
		assert.Equal(t, "secret", pass)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"db-token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer server.Close()

	creds := DatabricksCredentials{ClientID: "client", ClientSecret: "secret"}
	m := NewDatabricksTokenManager()

	token, tokenType, err := m.GetToken(context.Background(), creds, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "db-token", token)
	assert.Equal(t, "Bearer", tokenType)

	token, tokenType, err = m.GetToken(context.Background(), creds, server.URL)
	require.NoError(t, err)
	assert.Equal(t, "db-token", token)
	assert.Equal(t, "Bearer", tokenType)

	assert.Equal(t, 1, requests)
}
