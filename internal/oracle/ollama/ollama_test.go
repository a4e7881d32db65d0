package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llm-crypto-agent/internal/interfaces"
	"llm-crypto-agent/internal/store"
	"llm-crypto-agent/internal/types"
)

func testConfig(endpoint string) *store.Config {
	cfg := &store.Config{}
	cfg.Oracle.Model = "llama3"
	cfg.Oracle.Endpoint = endpoint
	cfg.Oracle.Temperature = 0.2
	cfg.Oracle.TimeoutSeconds = 5
	return cfg
}

func TestDecideParsesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req["model"])
		assert.Equal(t, false, req["stream"])
		assert.Contains(t, req["prompt"], "autonomous crypto trading strategist")

		_ = json.NewEncoder(w).Encode(map[string]any{
			"response": `{"action":"buy","product_id":"ADA","amount_usdc":40,"rationale":"dip"}`,
		})
	}))
	defer srv.Close()

	d := New(testConfig(srv.URL))
	dec, err := d.Decide(context.Background(), interfaces.Prompt{})
	require.NoError(t, err)
	assert.Equal(t, "buy", dec.Action)
	assert.Equal(t, "ADA", dec.ProductID)
	assert.Equal(t, 40.0, dec.Amount())
}

func TestDecideMalformedReplyIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "sorry, I cannot decide"})
	}))
	defer srv.Close()

	d := New(testConfig(srv.URL))
	_, err := d.Decide(context.Background(), interfaces.Prompt{})
	require.Error(t, err)

	var malformed *types.MalformedResponseError
	assert.True(t, errors.As(err, &malformed))
}

func TestDecideHTTPErrorIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	d := New(testConfig(srv.URL))
	_, err := d.Decide(context.Background(), interfaces.Prompt{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama http 404")
}
