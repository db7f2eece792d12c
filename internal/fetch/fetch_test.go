package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datasets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
datasets:
  - name: prices.csv
    url: https://example.com/prices.csv
    sha256: abc123
  - name: factors.csv
    url: https://example.com/factors.csv
`), 0644))

	m, err := LoadManifest(path)
	require.NoError(t, err)

	require.Len(t, m.Datasets, 2)
	assert.Equal(t, "prices.csv", m.Datasets[0].Name)
	assert.Equal(t, "abc123", m.Datasets[0].SHA256)
	assert.Empty(t, m.Datasets[1].SHA256)
}

func TestLoadManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty manifest", content: "datasets: []\n"},
		{name: "missing url", content: "datasets:\n  - name: prices.csv\n"},
		{name: "missing name", content: "datasets:\n  - url: https://example.com/x\n"},
		{name: "malformed yaml", content: "datasets: [oops\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "datasets.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))
			_, err := LoadManifest(path)
			assert.Error(t, err)
		})
	}

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadManifest(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestFetchAll(t *testing.T) {
	payloads := map[string]string{
		"/prices.csv":  "date,symbol,close\n2024-01-31,AAA,100\n",
		"/factors.csv": "date,market\n2024-01-31,0.01\n",
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	sum := sha256.Sum256([]byte(payloads["/prices.csv"]))
	manifest := &Manifest{Datasets: []Dataset{
		{Name: "prices.csv", URL: server.URL + "/prices.csv", SHA256: hex.EncodeToString(sum[:])},
		{Name: "factors.csv", URL: server.URL + "/factors.csv"},
	}}

	dest := filepath.Join(t.TempDir(), "data")
	fetcher := NewFetcher(nil, 2)
	require.NoError(t, fetcher.FetchAll(context.Background(), manifest, dest))

	for name, want := range map[string]string{
		"prices.csv":  payloads["/prices.csv"],
		"factors.csv": payloads["/factors.csv"],
	} {
		data, err := os.ReadFile(filepath.Join(dest, name))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

func TestFetchAll_ChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("tampered content"))
	}))
	defer server.Close()

	manifest := &Manifest{Datasets: []Dataset{
		{Name: "prices.csv", URL: server.URL + "/prices.csv", SHA256: "0000"},
	}}

	dest := t.TempDir()
	err := NewFetcher(nil, 1).FetchAll(context.Background(), manifest, dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksum mismatch")

	_, statErr := os.Stat(filepath.Join(dest, "prices.csv"))
	assert.True(t, os.IsNotExist(statErr), "a failed download must not leave a file behind")
}

func TestFetchAll_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	manifest := &Manifest{Datasets: []Dataset{
		{Name: "prices.csv", URL: server.URL + "/prices.csv"},
	}}

	err := NewFetcher(nil, 1).FetchAll(context.Background(), manifest, t.TempDir())
	assert.Error(t, err)
}

func TestFetchAll_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer server.Close()

	manifest := &Manifest{Datasets: []Dataset{
		{Name: "prices.csv", URL: server.URL + "/prices.csv"},
	}}

	err := NewFetcher(nil, 1).FetchAll(ctx, manifest, t.TempDir())
	assert.Error(t, err)
}
