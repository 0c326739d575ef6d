package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
)

// readDirYAML reads every *.yaml/*.yml file in dir and returns their raw
// bytes, for descriptor-pack loading.
func readDirYAML(dir string) ([][]byte, error) {
	var matches []string

	for _, pattern := range []string{"*.yaml", "*.yml"} {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("glob descriptor dir: %w", err)
		}

		matches = append(matches, m...)
	}

	out := make([][]byte, 0, len(matches))

	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read descriptor pack %s: %w", path, err)
		}

		out = append(out, raw)
	}

	return out, nil
}

// parseCacheSize parses a human-readable size string ("256MB") into bytes.
func parseCacheSize(s string) (int64, error) {
	if s == "" {
		return cacheDefaultMaxSize, nil
	}

	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("parse cache max size %q: %w", s, err)
	}

	return int64(n), nil
}

const cacheDefaultMaxSize = 256 * 1024 * 1024
