package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	apperrors "github.com/fhirflare/capfilter/internal/errors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUpstreamSource_Fetch(t *testing.T) {
	document := `{"resourceType": "CapabilityStatement", "rest": []}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fhir/metadata", r.URL.Path)
		assert.Equal(t, "application/fhir+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/fhir+json")
		_, _ = w.Write([]byte(document))
	}))
	defer server.Close()

	source := NewUpstreamSource(server.URL+"/fhir", time.Second)
	defer source.client.CloseIdleConnections()

	body, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, document, string(body))
}

func TestUpstreamSource_Fetch_TrailingSlashBaseURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fhir/metadata", r.URL.Path)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	source := NewUpstreamSource(server.URL+"/fhir/", time.Second)
	defer source.client.CloseIdleConnections()

	_, err := source.Fetch(context.Background())
	require.NoError(t, err)
}

func TestUpstreamSource_Fetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	source := NewUpstreamSource(server.URL, time.Second)
	defer source.client.CloseIdleConnections()

	_, err := source.Fetch(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestUpstreamSource_Fetch_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // Close immediately so the fetch fails to connect.

	source := NewUpstreamSource(server.URL, time.Second)

	_, err := source.Fetch(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrUpstreamUnavailable)
}

func TestFileSource_Fetch(t *testing.T) {
	document := `{"resourceType": "CapabilityStatement"}`
	path := t.TempDir() + "/capability.json"
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))

	source := NewFileSource(path)

	body, err := source.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, document, string(body))
}

func TestFileSource_Fetch_MissingFile(t *testing.T) {
	source := NewFileSource(t.TempDir() + "/missing.json")

	_, err := source.Fetch(context.Background())
	assert.Error(t, err)
}
