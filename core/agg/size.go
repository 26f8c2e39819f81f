package agg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
)

// binarySniffLen is how many leading bytes are checked for NUL.
const binarySniffLen = 8000

// lineCount is one result from the size workers.
type lineCount struct {
	path  string
	lines int
}

// CountLines measures every tracked, non-excluded regular file in the work tree.
// It spawns cfg.Workers goroutines. Unreadable, binary and missing files are omitted.
func CountLines(ctx context.Context, cfg *contract.Config, client contract.GitClient, m *match.Matcher) (map[string]int, error) {
	files, err := client.ListTrackedFiles(ctx, cfg.RepoPath)
	if errors.Is(err, contract.ErrGitCommandFailed) {
		contract.LogWarn("size query returned no data", err)
		return map[string]int{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("size query: %w", err)
	}

	fileCh := make(chan string, len(files))
	resultCh := make(chan lineCount, len(files))
	var wg sync.WaitGroup

	for range max(cfg.Workers, 1) {
		wg.Go(func() {
			for path := range fileCh {
				if ctx.Err() != nil {
					continue
				}
				full := filepath.Join(cfg.RepoPath, filepath.FromSlash(path))
				if n, ok := countFileLines(full); ok {
					resultCh <- lineCount{path: path, lines: n}
				}
			}
		})
	}

	for _, f := range files {
		if !m.Match(f) {
			fileCh <- f
		}
	}
	close(fileCh)

	wg.Wait()
	close(resultCh)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	loc := make(map[string]int, len(resultCh))
	for r := range resultCh {
		loc[r.path] = r.lines
	}
	return loc, nil
}

// countFileLines counts lines the way a text reader with universal newlines
// would: "\n", "\r\n" and a lone "\r" each end a line, and a trailing partial
// line counts. It returns false for non-regular, unreadable or binary files.
func countFileLines(path string) (int, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, false
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, 32*1024)
	var (
		lines   int
		prevCR  bool
		last    byte
		seen    int
		started bool
	)
	for {
		n, err := f.Read(buf)
		chunk := buf[:n]
		if seen < binarySniffLen {
			sniff := chunk[:min(n, binarySniffLen-seen)]
			if bytes.IndexByte(sniff, 0) >= 0 {
				return 0, false
			}
		}
		seen += n
		for _, b := range chunk {
			switch b {
			case '\n':
				if !prevCR {
					lines++
				}
				prevCR = false
			case '\r':
				lines++
				prevCR = true
			default:
				prevCR = false
			}
		}
		if n > 0 {
			last = chunk[n-1]
			started = true
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false
		}
	}

	if started && last != '\n' && last != '\r' {
		lines++
	}
	return lines, true
}
