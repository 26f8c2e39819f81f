package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
)

// Table names for analysis tracking.
const (
	analysisRunsTable   = "hotmap_analysis_runs"
	hotspotRecordsTable = "hotmap_hotspot_records"
)

// analysisTables lists the tracking tables in creation order.
var analysisTables = []string{analysisRunsTable, hotspotRecordsTable}

// AnalysisStoreImpl implements the AnalysisStore interface.
type AnalysisStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.AnalysisStore = &AnalysisStoreImpl{} // Compile-time check

// NewAnalysisStore creates a new AnalysisStore with the specified backend.
// For SQLite, connStr is the database file path.
func NewAnalysisStore(backend schema.DatabaseBackend, connStr string) (contract.AnalysisStore, error) {
	if backend == schema.NoneBackend {
		return &AnalysisStoreImpl{backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, defaultSQLitePath("", true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize analysis store: %w", err)
	}

	if err := createAnalysisTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create analysis tables: %w", err)
	}

	return &AnalysisStoreImpl{db: db, backend: backend}, nil
}

// createAnalysisTables creates the analysis tracking tables.
func createAnalysisTables(db *sql.DB, backend schema.DatabaseBackend) error {
	queries := map[string]string{
		analysisRunsTable:   getCreateAnalysisRunsQuery(backend),
		hotspotRecordsTable: getCreateHotspotRecordsQuery(backend),
	}
	for _, table := range analysisTables {
		if _, err := db.Exec(queries[table]); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// getCreateAnalysisRunsQuery returns the CREATE TABLE query for hotmap_analysis_runs.
func getCreateAnalysisRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(analysisRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				run_id VARCHAR(64) NOT NULL,
				repository TEXT NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				total_hotspots INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGSERIAL PRIMARY KEY,
				run_id TEXT NOT NULL,
				repository TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				total_hotspots INT NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER PRIMARY KEY AUTOINCREMENT,
				run_id TEXT NOT NULL,
				repository TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_hotspots INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateHotspotRecordsQuery returns the CREATE TABLE query for hotmap_hotspot_records.
func getCreateHotspotRecordsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(hotspotRecordsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				analysis_time DATETIME(6) NOT NULL,
				revisions INT NOT NULL,
				line_count INT NOT NULL,
				churn_added INT NOT NULL,
				churn_deleted INT NOT NULL,
				authors INT NOT NULL,
				hotspot_score DOUBLE NOT NULL,
				norm_revisions DOUBLE NOT NULL,
				score_label VARCHAR(50) NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id BIGINT NOT NULL,
				file_path TEXT NOT NULL,
				analysis_time TIMESTAMPTZ NOT NULL,
				revisions INT NOT NULL,
				line_count INT NOT NULL,
				churn_added INT NOT NULL,
				churn_deleted INT NOT NULL,
				authors INT NOT NULL,
				hotspot_score DOUBLE PRECISION NOT NULL,
				norm_revisions DOUBLE PRECISION NOT NULL,
				score_label TEXT NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				analysis_id INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				analysis_time TEXT NOT NULL,
				revisions INTEGER NOT NULL,
				line_count INTEGER NOT NULL,
				churn_added INTEGER NOT NULL,
				churn_deleted INTEGER NOT NULL,
				authors INTEGER NOT NULL,
				hotspot_score REAL NOT NULL,
				norm_revisions REAL NOT NULL,
				score_label TEXT NOT NULL,
				PRIMARY KEY (analysis_id, file_path)
			);
		`, quotedTableName)
	}
}

func (as *AnalysisStoreImpl) disabled() bool {
	return as.backend == schema.NoneBackend || as.db == nil
}

// BeginAnalysis creates a new analysis run and returns its unique ID.
func (as *AnalysisStoreImpl) BeginAnalysis(runID, repository string, startTime time.Time, configParams map[string]any) (int64, error) {
	if as.disabled() {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)
	args := []any{runID, repository, formatTime(startTime, as.backend), string(configJSON)}

	var analysisID int64
	switch as.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (run_id, repository, start_time, config_params) VALUES ($1, $2, $3, $4) RETURNING analysis_id`, quotedTableName)
		err = as.db.QueryRow(query, args...).Scan(&analysisID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (run_id, repository, start_time, config_params) VALUES (?, ?, ?, ?)`, quotedTableName)
		var result sql.Result
		result, err = as.db.Exec(query, args...)
		if err == nil {
			analysisID, err = result.LastInsertId()
		}
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert analysis run: %w", err)
	}
	return analysisID, nil
}

// EndAnalysis updates the analysis run with completion data.
func (as *AnalysisStoreImpl) EndAnalysis(analysisID int64, endTime time.Time, totalHotspots int) error {
	if as.disabled() {
		return nil
	}

	quotedTableName := quoteTableName(analysisRunsTable, as.backend)

	selectQuery := fmt.Sprintf(`SELECT start_time FROM %s WHERE analysis_id = %s`, quotedTableName, bindVar(as.backend, 1))
	start := timeScanner{backend: as.backend}
	if err := as.db.QueryRow(selectQuery, analysisID).Scan(start.Dest()); err != nil {
		return fmt.Errorf("failed to get start_time for analysis %d: %w", analysisID, err)
	}
	startTime, err := start.Value()
	if err != nil {
		return err
	}

	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	updateQuery := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_hotspots = %s WHERE analysis_id = %s`,
		quotedTableName,
		bindVar(as.backend, 1), bindVar(as.backend, 2), bindVar(as.backend, 3), bindVar(as.backend, 4))
	if _, err := as.db.Exec(updateQuery, formatTime(endTime, as.backend), durationMs, totalHotspots, analysisID); err != nil {
		return fmt.Errorf("failed to update analysis run: %w", err)
	}
	return nil
}

// RecordHotspots stores one row per scored file inside a single transaction.
func (as *AnalysisStoreImpl) RecordHotspots(analysisID int64, analysisTime time.Time, entries []schema.HotspotEntry) error {
	if as.disabled() || len(entries) == 0 {
		return nil
	}

	tx, err := as.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := fmt.Sprintf(`INSERT INTO %s (analysis_id, file_path, analysis_time, revisions, line_count,
		churn_added, churn_deleted, authors, hotspot_score, norm_revisions, score_label)
		VALUES (%s)`, quoteTableName(hotspotRecordsTable, as.backend), bindVars(as.backend, 11))
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare hotspot insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	ts := formatTime(analysisTime, as.backend)
	for _, e := range entries {
		if _, err := stmt.Exec(analysisID, e.Path, ts, e.Revisions, e.Lines,
			e.ChurnAdded, e.ChurnDeleted, e.Authors, e.HotspotScore, e.NormRevisions,
			contract.GetPlainLabel(e.HotspotScore)); err != nil {
			return fmt.Errorf("failed to insert hotspot %s: %w", e.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hotspots: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (as *AnalysisStoreImpl) Close() error {
	if as.db != nil {
		return as.db.Close()
	}
	return nil
}

// GetStatus returns status information about the analysis store.
func (as *AnalysisStoreImpl) GetStatus() (schema.AnalysisStatus, error) {
	status := schema.AnalysisStatus{
		Backend:    string(as.backend),
		Connected:  as.db != nil,
		TableSizes: make(map[string]int64),
	}

	if as.disabled() {
		return status, nil
	}

	runsTable := quoteTableName(analysisRunsTable, as.backend)

	if err := as.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", runsTable)).Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := timeScanner{backend: as.backend}
		lastRunQuery := fmt.Sprintf("SELECT analysis_id, start_time FROM %s ORDER BY analysis_id DESC LIMIT 1", runsTable)
		if err := as.db.QueryRow(lastRunQuery).Scan(&status.LastRunID, last.Dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		lastTime, err := last.Value()
		if err != nil {
			return status, err
		}
		if lastTime != nil {
			status.LastRunTime = *lastTime
		}

		oldest := timeScanner{backend: as.backend}
		oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY analysis_id ASC LIMIT 1", runsTable)
		if err := as.db.QueryRow(oldestRunQuery).Scan(oldest.Dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestTime, err := oldest.Value()
		if err != nil {
			return status, err
		}
		if oldestTime != nil {
			status.OldestRunTime = *oldestTime
		}

		totalQuery := fmt.Sprintf("SELECT COALESCE(SUM(total_hotspots), 0) FROM %s", runsTable)
		if err := as.db.QueryRow(totalQuery).Scan(&status.TotalHotspots); err != nil {
			return status, fmt.Errorf("failed to get total hotspots: %w", err)
		}
	}

	for _, table := range analysisTables {
		var count int64
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, as.backend))
		if err := as.db.QueryRow(countQuery).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}

	return status, nil
}

// GetAllAnalysisRuns retrieves all analysis runs from the store.
func (as *AnalysisStoreImpl) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, run_id, repository, start_time, end_time, run_duration_ms, total_hotspots, config_params
		FROM %s ORDER BY analysis_id`, quoteTableName(analysisRunsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query analysis runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.AnalysisRunRecord
	for rows.Next() {
		var record schema.AnalysisRunRecord
		start := timeScanner{backend: as.backend}
		end := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.AnalysisID, &record.RunID, &record.Repository, start.Dest(), end.Dest(),
			&record.RunDurationMs, &record.TotalHotspots, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan analysis run: %w", err)
		}
		startTime, err := start.Value()
		if err != nil {
			return nil, err
		}
		if startTime != nil {
			record.StartTime = *startTime
		}
		if record.EndTime, err = end.Value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating analysis runs: %w", err)
	}
	return results, nil
}

// GetAllHotspotRecords retrieves all recorded hotspots from the store.
func (as *AnalysisStoreImpl) GetAllHotspotRecords() ([]schema.HotspotRecord, error) {
	if as.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT analysis_id, file_path, analysis_time, revisions, line_count,
		churn_added, churn_deleted, authors, hotspot_score, norm_revisions, score_label
		FROM %s ORDER BY analysis_id, hotspot_score DESC, file_path`, quoteTableName(hotspotRecordsTable, as.backend))
	rows, err := as.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query hotspot records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.HotspotRecord
	for rows.Next() {
		var record schema.HotspotRecord
		at := timeScanner{backend: as.backend}
		if err := rows.Scan(&record.AnalysisID, &record.FilePath, at.Dest(), &record.Revisions, &record.Lines,
			&record.ChurnAdded, &record.ChurnDeleted, &record.Authors, &record.HotspotScore,
			&record.NormRevisions, &record.ScoreLabel); err != nil {
			return nil, fmt.Errorf("failed to scan hotspot record: %w", err)
		}
		analysisTime, err := at.Value()
		if err != nil {
			return nil, err
		}
		if analysisTime != nil {
			record.AnalysisTime = *analysisTime
		}
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hotspot records: %w", err)
	}
	return results, nil
}
