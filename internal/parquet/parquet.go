// Package parquet provides data structures and functions for exporting hotspot
// data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/parquet-go/parquet-go"
)

// AnalysisRun represents a single analysis run with metadata.
// This struct maps to the hotmap_analysis_runs database table.
type AnalysisRun struct {
	// AnalysisID is the unique identifier for this analysis run
	AnalysisID int64 `parquet:"analysis_id,snappy"`

	// RunID is the UUID stamped on the run
	RunID string `parquet:"run_id,snappy"`

	// Repository is the absolute repository root that was analyzed
	Repository string `parquet:"repository,snappy"`

	// StartTime is when the analysis began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the analysis completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the analysis run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalHotspots is the number of files that received a score
	TotalHotspots int32 `parquet:"total_hotspots,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// HotspotRecord is one scored file of a tracked run.
// This struct maps to the hotmap_hotspot_records database table.
type HotspotRecord struct {
	AnalysisID    int64     `parquet:"analysis_id,snappy"`
	FilePath      string    `parquet:"file_path,snappy"`
	AnalysisTime  time.Time `parquet:"analysis_time,snappy"`
	Revisions     int32     `parquet:"revisions,snappy"`
	Lines         int32     `parquet:"lines,snappy"`
	ChurnAdded    int32     `parquet:"churn_added,snappy"`
	ChurnDeleted  int32     `parquet:"churn_deleted,snappy"`
	Authors       int32     `parquet:"authors,snappy"`
	HotspotScore  float64   `parquet:"hotspot_score,snappy"`
	NormRevisions float64   `parquet:"norm_revisions,snappy"`
	ScoreLabel    string    `parquet:"score_label,snappy"`
}

// Hotspot is one row of a ranked hotspot export.
type Hotspot struct {
	Rank          int32   `parquet:"rank,snappy"`
	FilePath      string  `parquet:"file_path,snappy"`
	Revisions     int32   `parquet:"revisions,snappy"`
	Lines         int32   `parquet:"lines,snappy"`
	ChurnAdded    int32   `parquet:"churn_added,snappy"`
	ChurnDeleted  int32   `parquet:"churn_deleted,snappy"`
	Authors       int32   `parquet:"authors,snappy"`
	HotspotScore  float64 `parquet:"hotspot_score,snappy"`
	NormRevisions float64 `parquet:"norm_revisions,snappy"`
	Label         string  `parquet:"label,snappy"`
}

// writeRows writes data to outputPath with a schema inferred from T's struct tags.
func writeRows[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// WriteAnalysisRunsParquet writes a slice of AnalysisRun structs to a Parquet file.
func WriteAnalysisRunsParquet(data []AnalysisRun, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHotspotRecordsParquet writes a slice of HotspotRecord structs to a Parquet file.
func WriteHotspotRecordsParquet(data []HotspotRecord, outputPath string) error {
	return writeRows(data, outputPath)
}

// WriteHotspotsParquet writes a ranked hotspot list to a Parquet file.
func WriteHotspotsParquet(data []Hotspot, outputPath string) error {
	return writeRows(data, outputPath)
}

// ConvertAnalysisRunRecords converts schema.AnalysisRunRecord to AnalysisRun for Parquet export.
func ConvertAnalysisRunRecords(records []schema.AnalysisRunRecord) []AnalysisRun {
	result := make([]AnalysisRun, len(records))
	for i, record := range records {
		result[i] = AnalysisRun{
			AnalysisID:    record.AnalysisID,
			RunID:         record.RunID,
			Repository:    record.Repository,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalHotspots: record.TotalHotspots,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertHotspotRecords converts schema.HotspotRecord to HotspotRecord for Parquet export.
func ConvertHotspotRecords(records []schema.HotspotRecord) []HotspotRecord {
	result := make([]HotspotRecord, len(records))
	for i, record := range records {
		result[i] = HotspotRecord(record)
	}
	return result
}

// ConvertHotspotEntries ranks entries in their given order.
func ConvertHotspotEntries(entries []schema.HotspotEntry) []Hotspot {
	result := make([]Hotspot, len(entries))
	for i, e := range entries {
		result[i] = Hotspot{
			Rank:          int32(i + 1),
			FilePath:      e.Path,
			Revisions:     int32(e.Revisions),
			Lines:         int32(e.Lines),
			ChurnAdded:    int32(e.ChurnAdded),
			ChurnDeleted:  int32(e.ChurnDeleted),
			Authors:       int32(e.Authors),
			HotspotScore:  e.HotspotScore,
			NormRevisions: e.NormRevisions,
			Label:         contract.GetPlainLabel(e.HotspotScore),
		}
	}
	return result
}
