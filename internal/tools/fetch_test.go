package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchArguments(t *testing.T, args map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return raw
}

func TestFetchReturnsBodyAndMetadata(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"name": "toolhost", "stars": 7}`)
	}))
	defer server.Close()

	tool := NewFetchTool(server.Client(), 5*time.Second, "toolhost-test")
	result, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{"url": server.URL}))
	require.NoError(t, err)

	outcome, ok := result.(FetchResult)
	require.True(t, ok)
	assert.True(t, outcome.Success)
	assert.Equal(t, http.StatusOK, outcome.Status)
	assert.Equal(t, "application/json", outcome.ContentType)
	assert.JSONEq(t, `{"name": "toolhost", "stars": 7}`, outcome.Body)
	assert.Equal(t, len(outcome.Body), outcome.BodyLength)
}

func TestFetchForwardsMethodAndHeaders(t *testing.T) {
	t.Parallel()

	var gotMethod, gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotHeader = r.Header.Get("X-Custom")
	}))
	defer server.Close()

	tool := NewFetchTool(server.Client(), 5*time.Second, "toolhost-test")
	_, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{
		"url":     server.URL,
		"method":  "post",
		"headers": map[string]string{"X-Custom": "yes"},
	}))
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "yes", gotHeader)
}

func TestFetchExtractsJSONPath(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": [{"id": "a"}, {"id": "b"}]}`)
	}))
	defer server.Close()

	tool := NewFetchTool(server.Client(), 5*time.Second, "toolhost-test")
	result, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{
		"url":     server.URL,
		"extract": "items.1.id",
	}))
	require.NoError(t, err)

	outcome := result.(FetchResult)
	assert.Equal(t, `"b"`, outcome.Extracted)
}

func TestFetchExtractRequiresJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain text")
	}))
	defer server.Close()

	tool := NewFetchTool(server.Client(), 5*time.Second, "toolhost-test")
	_, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{
		"url":     server.URL,
		"extract": "field",
	}))
	require.Error(t, err)
}

func TestFetchRejectsNonHTTPSchemes(t *testing.T) {
	t.Parallel()

	tool := NewFetchTool(nil, time.Second, "toolhost-test")
	_, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{
		"url": "file:///etc/passwd",
	}))
	require.Error(t, err)
}

func TestFetchReportsFailureStatuses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	tool := NewFetchTool(server.Client(), 5*time.Second, "toolhost-test")
	result, err := tool.Handler(context.Background(), fetchArguments(t, map[string]any{"url": server.URL}))
	require.NoError(t, err)

	outcome := result.(FetchResult)
	assert.False(t, outcome.Success)
	assert.Equal(t, http.StatusNotFound, outcome.Status)
}
