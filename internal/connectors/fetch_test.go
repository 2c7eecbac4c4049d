package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conveyorhq/conveyor/internal/core"
	"github.com/conveyorhq/conveyor/internal/domain/model"
)

func fetchRequest(t *testing.T, cfg FetchConfig) core.WorkRequest {
	t.Helper()
	raw, err := json.Marshal(cfg)
	require.NoError(t, err)
	return core.WorkRequest{
		Task:   &model.Task{ID: "fetch", Type: model.TaskTypeFetchAPIData},
		Config: raw,
		Stage:  model.NewStageContext(),
	}
}

func TestFetchConnectorGet(t *testing.T) {
	var gotHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Get("X-Api-Key")
		fmt.Fprint(w, `{"status":"ok"}`)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	result, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{
		URL:     server.URL,
		Headers: map[string]string{"X-Api-Key": "secret"},
	}))

	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(result.Output))
	assert.Equal(t, "secret", gotHeader)
	assert.Contains(t, result.Detail, server.URL)
}

func TestFetchConnectorPostBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	_, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{
		URL:    server.URL,
		Method: http.MethodPost,
		Body:   `{"name":"report"}`,
	}))
	require.NoError(t, err)
}

func TestFetchConnectorStatusHandling(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())

	// Any 2xx passes by default.
	_, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{URL: server.URL}))
	require.NoError(t, err)

	// An explicit OkStatus must match exactly.
	_, err = connector.Run(context.Background(), fetchRequest(t, FetchConfig{URL: server.URL, OkStatus: http.StatusOK}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 202")
}

func TestFetchConnectorNon2xxFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	_, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{URL: server.URL}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}

func TestFetchConnectorExtract(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"id":1,"title":"first"},{"id":2,"title":"second"}]}`)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	result, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{
		URL:     server.URL,
		Extract: "items[*].title",
	}))

	require.NoError(t, err)
	assert.JSONEq(t, `["first","second"]`, string(result.Output))
}

func TestFetchConnectorExtractNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain text")
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	_, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{
		URL:     server.URL,
		Extract: "items",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "response is not JSON")
}

func TestFetchConnectorExtractNoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer server.Close()

	connector := NewFetchConnector(server.Client())
	_, err := connector.Run(context.Background(), fetchRequest(t, FetchConfig{
		URL:     server.URL,
		Extract: "missing",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no value matched")
}

func TestFetchConnectorConfigValidation(t *testing.T) {
	connector := NewFetchConnector(http.DefaultClient)

	_, err := connector.Run(context.Background(), core.WorkRequest{
		Config: json.RawMessage(`{"url":"  "}`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "url is required")

	_, err = connector.Run(context.Background(), core.WorkRequest{
		Config: json.RawMessage(`not json`),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode fetch config")
}
