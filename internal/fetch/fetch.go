package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"
)

// Dataset describes one remote flat file to download.
type Dataset struct {
	// Name is the local filename to write under the destination directory.
	Name string `yaml:"name"`
	// URL is the remote location of the file.
	URL string `yaml:"url"`
	// SHA256 optionally pins the expected content hash.
	SHA256 string `yaml:"sha256,omitempty"`
}

// Manifest lists the datasets a course or study needs locally.
type Manifest struct {
	Datasets []Dataset `yaml:"datasets"`
}

// LoadManifest reads a YAML dataset manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	if len(m.Datasets) == 0 {
		return nil, fmt.Errorf("manifest lists no datasets")
	}
	for i, d := range m.Datasets {
		if d.Name == "" || d.URL == "" {
			return nil, fmt.Errorf("manifest entry %d missing name or url", i)
		}
	}
	return &m, nil
}

// Fetcher downloads datasets into a local directory.
type Fetcher struct {
	client      *http.Client
	logger      *slog.Logger
	concurrency int
}

// NewFetcher creates a fetcher. concurrency limits simultaneous downloads.
func NewFetcher(logger *slog.Logger, concurrency int) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency < 1 {
		concurrency = 4
	}
	return &Fetcher{
		client:      &http.Client{Timeout: 5 * time.Minute},
		logger:      logger,
		concurrency: concurrency,
	}
}

// FetchAll downloads every dataset in the manifest into destDir. Downloads run
// concurrently; the first failure cancels the rest.
func (f *Fetcher) FetchAll(ctx context.Context, manifest *Manifest, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("create destination directory: %w", err)
	}

	f.logger.InfoContext(ctx, "fetching datasets",
		"count", len(manifest.Datasets),
		"dest", destDir,
		"concurrency", f.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)

	for _, d := range manifest.Datasets {
		d := d
		g.Go(func() error {
			return f.fetchOne(ctx, d, filepath.Join(destDir, d.Name))
		})
	}

	return g.Wait()
}

// fetchOne downloads a single dataset to path, writing through a temp file so
// a failed download never leaves a truncated dataset behind.
func (f *Fetcher) fetchOne(ctx context.Context, d Dataset, path string) error {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return fmt.Errorf("build request for %s: %w", d.Name, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", d.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", d.Name, resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", d.Name, err)
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", d.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file for %s: %w", d.Name, err)
	}

	sum := hex.EncodeToString(hasher.Sum(nil))
	if d.SHA256 != "" && sum != d.SHA256 {
		return fmt.Errorf("checksum mismatch for %s: got %s, want %s", d.Name, sum, d.SHA256)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("move %s into place: %w", d.Name, err)
	}

	f.logger.InfoContext(ctx, "dataset downloaded",
		"name", d.Name,
		"bytes", size,
		"sha256", sum,
		"duration", time.Since(start),
	)

	return nil
}
