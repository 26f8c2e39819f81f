// Package viz writes and serves the interactive hotspot visualization.
package viz

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huangsam/hotmap/schema"
)

//go:embed index.html
var indexHTML []byte

// ErrNoBundle means a directory does not hold a visualization bundle.
var ErrNoBundle = errors.New("no visualization bundle found")

// WriteBundle writes the data document and the viewer page into dir and
// returns its absolute path. The data file is replaced atomically.
func WriteBundle(dir string, result *schema.AnalysisResult) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", schema.DataFileName, err)
	}
	if err := writeFileAtomic(filepath.Join(abs, schema.DataFileName), data); err != nil {
		return "", err
	}
	if err := writeFileAtomic(filepath.Join(abs, schema.IndexFileName), indexHTML); err != nil {
		return "", err
	}
	return abs, nil
}

// ReadBundle loads the data document of an existing bundle.
func ReadBundle(dir string) (*schema.AnalysisResult, error) {
	data, err := os.ReadFile(filepath.Join(dir, schema.DataFileName))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w in %s", ErrNoBundle, dir)
	} else if err != nil {
		return nil, err
	}
	var result schema.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode %s: %w", schema.DataFileName, err)
	}
	return &result, nil
}

// CheckBundle verifies that dir holds both bundle files.
func CheckBundle(dir string) error {
	for _, name := range []string{schema.DataFileName, schema.IndexFileName} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil || !info.Mode().IsRegular() {
			return fmt.Errorf("%w in %s (missing %s)", ErrNoBundle, dir, name)
		}
	}
	return nil
}

// writeFileAtomic writes data to a temp file in the target directory and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
