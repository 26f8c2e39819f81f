package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/parquet"
)

// Suffixes appended to the export base path.
const (
	analysisRunsSuffix   = ".analysis_runs.parquet"
	hotspotRecordsSuffix = ".hotspot_records.parquet"
)

// ExecuteAnalysisExport writes every tracked run and hotspot row to two Parquet files
// named after outputFile.
func ExecuteAnalysisExport(w io.Writer, store contract.AnalysisStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("analysis tracking is not enabled. Set --analysis-backend to export data")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get analysis status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no analysis data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total analysis runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total hotspot records: %d\n", status.TableSizes[hotspotRecordsTable])

	analysisRuns, err := store.GetAllAnalysisRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve analysis runs: %w", err)
	}
	hotspotRecords, err := store.GetAllHotspotRecords()
	if err != nil {
		return fmt.Errorf("failed to retrieve hotspot records: %w", err)
	}

	runs := parquet.ConvertAnalysisRunRecords(analysisRuns)
	runsFile := outputFile + analysisRunsSuffix
	if err := parquet.WriteAnalysisRunsParquet(runs, runsFile); err != nil {
		return fmt.Errorf("failed to write analysis runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d analysis runs to: %s\n", len(runs), runsFile)

	records := parquet.ConvertHotspotRecords(hotspotRecords)
	recordsFile := outputFile + hotspotRecordsSuffix
	if err := parquet.WriteHotspotRecordsParquet(records, recordsFile); err != nil {
		return fmt.Errorf("failed to write hotspot records: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d hotspot records to: %s\n", len(records), recordsFile)

	_, _ = fmt.Fprintln(w, "\nExport complete! The Parquet files can be read by DuckDB, Pandas (via pyarrow), Spark or any other Parquet-compatible tool.")
	return nil
}
