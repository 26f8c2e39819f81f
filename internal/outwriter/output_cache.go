package outwriter

import (
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const cacheTimeFormat = "2006-01-02 15:04:05"

// PrintCacheEntries lists cached analyses in the configured output format.
func PrintCacheEntries(entries []schema.CacheEntryInfo, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return emit(cfg.OutputFile, "JSON", func(w io.Writer) error {
			if entries == nil {
				entries = []schema.CacheEntryInfo{}
			}
			return encodeJSON(w, entries)
		})
	case schema.CSVOut:
		return emit(cfg.OutputFile, "CSV", func(w io.Writer) error {
			return writeCacheCSV(w, entries)
		})
	default:
		return emit(cfg.OutputFile, "table", func(w io.Writer) error {
			return writeCacheTable(w, entries, cfg)
		})
	}
}

func writeCacheTable(w io.Writer, entries []schema.CacheEntryInfo, cfg *contract.Config) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No cached analyses.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Key", "Repository", "Since", "Head", "Commits", "Size", "Cached At"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	pathWidth := GetMaxTablePathWidth(cfg)
	data := make([][]string, 0, len(entries))
	for _, e := range entries {
		since := e.SinceDate
		if since == "" {
			since = "-"
		}
		data = append(data, []string{
			shorten(e.Key, 12),
			contract.TruncatePath(e.Repository, pathWidth),
			since,
			shorten(e.GitHead, 7),
			strconv.Itoa(e.CommitCount),
			formatBytes(e.SizeBytes),
			e.CachedAt.Format(cacheTimeFormat),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCacheCSV(w io.Writer, entries []schema.CacheEntryInfo) error {
	header := []string{"key", "repository", "since_date", "git_head", "commit_count", "size_bytes", "cached_at"}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.Key,
			e.Repository,
			e.SinceDate,
			e.GitHead,
			strconv.Itoa(e.CommitCount),
			strconv.FormatInt(e.SizeBytes, 10),
			e.CachedAt.Format(cacheTimeFormat),
		})
	}
	return writeCSV(w, header, rows)
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
