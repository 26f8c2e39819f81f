package outwriter

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/parquet"
	"github.com/huangsam/hotmap/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// ErrParquetNeedsFile is returned when parquet output is requested without --output-file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// hotspotRow is the JSON shape of a ranked hotspot.
type hotspotRow struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	schema.HotspotEntry
}

// PrintHotspots outputs ranked hotspots, dispatching on the configured output format.
func PrintHotspots(entries []schema.HotspotEntry, cfg *contract.Config, duration time.Duration) error {
	nf := numberFormat{precision: cfg.Precision}

	switch cfg.Output {
	case schema.JSONOut:
		return emit(cfg.OutputFile, "JSON", func(w io.Writer) error {
			return writeHotspotJSON(w, entries)
		})
	case schema.CSVOut:
		return emit(cfg.OutputFile, "CSV", func(w io.Writer) error {
			return writeHotspotCSV(w, entries, nf)
		})
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return ErrParquetNeedsFile
		}
		if err := parquet.WriteHotspotsParquet(parquet.ConvertHotspotEntries(entries), cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", cfg.OutputFile)
		return nil
	default:
		return emit(cfg.OutputFile, "table", func(w io.Writer) error {
			return writeHotspotTable(w, entries, cfg, nf, duration)
		})
	}
}

// writeHotspotTable generates and writes the human-readable table.
func writeHotspotTable(w io.Writer, entries []schema.HotspotEntry, cfg *contract.Config, nf numberFormat, duration time.Duration) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Rank", "Path", "Score", "Label", "Revisions", "Lines", "Authors", "Churn"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	label := contract.GetPlainLabel
	if cfg.UseColors {
		label = contract.GetColorLabel
	}
	pathWidth := GetMaxTablePathWidth(cfg)

	data := make([][]string, 0, len(entries))
	totalRevisions, totalChurn := 0, 0
	for i, e := range entries {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			contract.TruncatePath(e.Path, pathWidth),
			nf.ratio(e.HotspotScore),
			label(e.HotspotScore),
			nf.count(e.Revisions),
			nf.count(e.Lines),
			nf.count(e.Authors),
			nf.count(e.ChurnAdded + e.ChurnDeleted),
		})
		totalRevisions += e.Revisions
		totalChurn += e.ChurnAdded + e.ChurnDeleted
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Showing top %d hotspots (total revisions: %d, total churn: %d)\n", len(entries), totalRevisions, totalChurn); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Analysis completed in %v with %d workers. Cache backend: %s\n", duration.Round(time.Millisecond), cfg.Workers, cfg.CacheBackend)
	return err
}

// writeHotspotCSV writes one row per hotspot.
func writeHotspotCSV(w io.Writer, entries []schema.HotspotEntry, nf numberFormat) error {
	header := []string{
		"rank",
		"file",
		"hotspot_score",
		"label",
		"revisions",
		"lines",
		"norm_revisions",
		"authors",
		"churn_added",
		"churn_deleted",
	}
	rows := make([][]string, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			e.Path,
			nf.ratio(e.HotspotScore),
			contract.GetPlainLabel(e.HotspotScore),
			nf.count(e.Revisions),
			nf.count(e.Lines),
			nf.ratio(e.NormRevisions),
			nf.count(e.Authors),
			nf.count(e.ChurnAdded),
			nf.count(e.ChurnDeleted),
		})
	}
	return writeCSV(w, header, rows)
}

// writeHotspotJSON writes the hotspots as an array with rank and label added.
func writeHotspotJSON(w io.Writer, entries []schema.HotspotEntry) error {
	output := make([]hotspotRow, len(entries))
	for i, e := range entries {
		output[i] = hotspotRow{
			Rank:         i + 1,
			Label:        contract.GetPlainLabel(e.HotspotScore),
			HotspotEntry: e,
		}
	}
	return encodeJSON(w, output)
}
