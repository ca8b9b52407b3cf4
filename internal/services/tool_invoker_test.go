package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmchat/backend-go/internal/mcp"
)

func newGatewayStub(t *testing.T, handler http.HandlerFunc) (*ToolInvoker, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := mcp.NewClient(server.URL, "", 5)
	require.NotNil(t, client)

	return NewToolInvoker(client, nil), server
}

func TestInvokeAll_Success(t *testing.T) {
	invoker, _ := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/tools/soil-health", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":{"ph":6.8,"nitrogen":"medium"}}`))
	})

	results := invoker.InvokeAll(context.Background(), []string{ToolSoilHealth}, map[string]interface{}{
		"query": "soil test for wheat",
	})

	require.Contains(t, results, ToolSoilHealth)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(results[ToolSoilHealth], &payload))
	assert.Equal(t, 6.8, payload["ph"])
}

func TestInvokeAll_FailureOmitted(t *testing.T) {
	invoker, _ := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	results := invoker.InvokeAll(context.Background(), []string{ToolPestIdentifier}, nil)
	assert.Empty(t, results)
}

func TestInvokeAll_PartialFailure(t *testing.T) {
	invoker, _ := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/tools/web-search" {
			http.Error(w, "search backend down", http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"success":true,"data":{"ok":true}}`))
	})

	results := invoker.InvokeAll(context.Background(), []string{ToolSoilHealth, ToolWebSearch}, nil)
	assert.Contains(t, results, ToolSoilHealth)
	assert.NotContains(t, results, ToolWebSearch)
}

func TestInvokeAll_GatewayErrorEnvelope(t *testing.T) {
	invoker, _ := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false,"error":"unknown tool"}`))
	})

	results := invoker.InvokeAll(context.Background(), []string{ToolPestIdentifier}, nil)
	assert.Empty(t, results)
}

func TestInvokeAll_NoTools(t *testing.T) {
	invoker, _ := newGatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("gateway should not be called")
	})

	results := invoker.InvokeAll(context.Background(), nil, nil)
	assert.Empty(t, results)
}

func TestCacheKey_StableAcrossParamOrder(t *testing.T) {
	invoker := NewToolInvoker(nil, nil)

	a := invoker.cacheKey(ToolWeather, map[string]interface{}{"district": "ludhiana", "crop": "wheat"})
	b := invoker.cacheKey(ToolWeather, map[string]interface{}{"crop": "wheat", "district": "ludhiana"})
	assert.Equal(t, a, b)

	c := invoker.cacheKey(ToolWeather, map[string]interface{}{"crop": "rice", "district": "ludhiana"})
	assert.NotEqual(t, a, c)
}
