package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyHeadersAPIKeyDefaultsToAuthorization(t *testing.T) {
	c := NewAPIKey("sk-test", "", "")
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Equal(t, "sk-test", h.Get("Authorization"))
}

func TestApplyHeadersAPIKeyWithPrefixAndCustomHeader(t *testing.T) {
	c := NewAPIKey("secret123", "x-api-key", "Bearer")
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Equal(t, "Bearer secret123", h.Get("x-api-key"))
}

func TestApplyHeadersOAuthDefaultsToBearer(t *testing.T) {
	c := NewOAuth("tok-abc", "")
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Equal(t, "Bearer tok-abc", h.Get("Authorization"))
}

func TestApplyHeadersAzureEntra(t *testing.T) {
	c := NewAzureEntra("entra-tok")
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Equal(t, "Bearer entra-tok", h.Get("Authorization"))
}

func TestApplyHeadersCustom(t *testing.T) {
	c := NewCustom(map[string]string{"X-Custom": "v1"})
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Equal(t, "v1", h.Get("X-Custom"))
}

func TestApplyHeadersAWSSignatureV4IsNoOp(t *testing.T) {
	c := NewAWSSignatureV4("ak", "sk", "", "us-east-1", "bedrock")
	h := http.Header{}
	require.NoError(t, c.ApplyHeaders(h))
	assert.Empty(t, h)
}
