package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves where datasets, reports, and cache files live. It is the
// single source of truth for file locations across the CLIs.
type Paths struct {
	DataDir    string
	ReportsDir string
	CacheDir   string
}

// NewPaths builds a Paths from configuration, creating missing directories.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	p := &Paths{
		DataDir:    cfg.DataDir,
		ReportsDir: cfg.ReportsDir,
		CacheDir:   cfg.CacheDir,
	}
	for _, dir := range []string{p.DataDir, p.ReportsDir, p.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return p, nil
}

// GetDataPath returns the full path of a dataset file.
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// GetReportPath returns the full path of a generated report.
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetCachePath returns the full path of a cache file.
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}
