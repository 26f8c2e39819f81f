// Package iocache persists analysis results and run history in SQL databases.
package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// cacheColumns is the column list shared by inserts and full reads.
const cacheColumns = "cache_key, repository, since_date, git_head, commit_count, cache_value, cache_version, cache_timestamp, size_bytes"

// CacheStoreImpl handles durable storage of cached analysis results.
type CacheStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.CacheStore = &CacheStoreImpl{} // Compile-time check

// NewCacheStore initializes and returns a new CacheStore based on the backend type.
// For SQLite, connStr is the database file path.
func NewCacheStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.CacheStore, error) {
	// Validate table name to prevent SQL injection
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}

	if backend == schema.NoneBackend {
		return &CacheStoreImpl{tableName: tableName, backend: backend}, nil
	}

	db, err := openDatabase(backend, connStr, defaultSQLitePath("", false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}

	if _, err := db.Exec(getCreateTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	return &CacheStoreImpl{
		db:        db,
		tableName: tableName,
		backend:   backend,
		connStr:   connStr,
	}, nil
}

// getCreateTableQuery returns the CREATE TABLE query for the given backend.
func getCreateTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key VARCHAR(255) PRIMARY KEY,
				repository TEXT NOT NULL,
				since_date VARCHAR(32) NOT NULL,
				git_head VARCHAR(64) NOT NULL,
				commit_count INT NOT NULL,
				cache_value LONGBLOB NOT NULL,
				cache_version INT NOT NULL,
				cache_timestamp BIGINT NOT NULL,
				size_bytes BIGINT NOT NULL
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				repository TEXT NOT NULL,
				since_date TEXT NOT NULL,
				git_head TEXT NOT NULL,
				commit_count INTEGER NOT NULL,
				cache_value BYTEA NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp BIGINT NOT NULL,
				size_bytes BIGINT NOT NULL
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				cache_key TEXT PRIMARY KEY,
				repository TEXT NOT NULL,
				since_date TEXT NOT NULL,
				git_head TEXT NOT NULL,
				commit_count INTEGER NOT NULL,
				cache_value BLOB NOT NULL,
				cache_version INTEGER NOT NULL,
				cache_timestamp INTEGER NOT NULL,
				size_bytes INTEGER NOT NULL
			);
		`, quotedTableName)
	}
}

func (ps *CacheStoreImpl) disabled() bool {
	return ps.backend == schema.NoneBackend || ps.db == nil
}

// Get retrieves an entry by key. A missing key yields a nil entry and nil error.
func (ps *CacheStoreImpl) Get(key string) (*schema.CacheEntry, error) {
	if ps.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE cache_key = %s`,
		cacheColumns, quoteTableName(ps.tableName, ps.backend), bindVar(ps.backend, 1))

	var entry schema.CacheEntry
	var ts int64
	err := ps.db.QueryRow(query, key).Scan(
		&entry.Key, &entry.Repository, &entry.SinceDate, &entry.GitHead, &entry.CommitCount,
		&entry.Value, &entry.Version, &ts, &entry.SizeBytes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	entry.CachedAt = time.Unix(ts, 0)
	return &entry, nil
}

// Set inserts or replaces an entry in the store.
func (ps *CacheStoreImpl) Set(entry schema.CacheEntry) error {
	if ps.disabled() {
		return nil
	}

	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now()
	}
	sizeBytes := entry.SizeBytes
	if sizeBytes == 0 {
		sizeBytes = int64(len(entry.Value))
	}

	_, err := ps.db.Exec(ps.getUpsertQuery(),
		entry.Key, entry.Repository, entry.SinceDate, entry.GitHead, entry.CommitCount,
		entry.Value, entry.Version, cachedAt.Unix(), sizeBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes an entry and reports whether one existed.
func (ps *CacheStoreImpl) Delete(key string) (bool, error) {
	if ps.disabled() {
		return false, nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE cache_key = %s`,
		quoteTableName(ps.tableName, ps.backend), bindVar(ps.backend, 1))
	result, err := ps.db.Exec(query, key)
	if err != nil {
		return false, fmt.Errorf("failed to delete cache entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// Entries lists every cached entry, newest first, without payloads.
func (ps *CacheStoreImpl) Entries() ([]schema.CacheEntryInfo, error) {
	if ps.disabled() {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT cache_key, repository, since_date, git_head, commit_count, cache_timestamp, size_bytes
		FROM %s ORDER BY cache_timestamp DESC, cache_key`, quoteTableName(ps.tableName, ps.backend))
	rows, err := ps.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cache entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.CacheEntryInfo
	for rows.Next() {
		var info schema.CacheEntryInfo
		var ts int64
		if err := rows.Scan(&info.Key, &info.Repository, &info.SinceDate, &info.GitHead,
			&info.CommitCount, &ts, &info.SizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan cache entry: %w", err)
		}
		info.CachedAt = time.Unix(ts, 0)
		results = append(results, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cache entries: %w", err)
	}
	return results, nil
}

// getUpsertQuery returns the UPSERT query for the backend.
func (ps *CacheStoreImpl) getUpsertQuery() string {
	quotedTableName := quoteTableName(ps.tableName, ps.backend)
	values := bindVars(ps.backend, 9)
	switch ps.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) AS new
			ON DUPLICATE KEY UPDATE repository = new.repository, since_date = new.since_date, git_head = new.git_head,
			commit_count = new.commit_count, cache_value = new.cache_value, cache_version = new.cache_version,
			cache_timestamp = new.cache_timestamp, size_bytes = new.size_bytes`, quotedTableName, cacheColumns, values)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)
			ON CONFLICT (cache_key) DO UPDATE SET repository = EXCLUDED.repository, since_date = EXCLUDED.since_date,
			git_head = EXCLUDED.git_head, commit_count = EXCLUDED.commit_count, cache_value = EXCLUDED.cache_value,
			cache_version = EXCLUDED.cache_version, cache_timestamp = EXCLUDED.cache_timestamp,
			size_bytes = EXCLUDED.size_bytes`, quotedTableName, cacheColumns, values)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (%s) VALUES (%s)`, quotedTableName, cacheColumns, values)
	}
}

// Close closes the underlying DB connection.
func (ps *CacheStoreImpl) Close() error {
	if ps.db != nil {
		return ps.db.Close()
	}
	return nil
}

// GetStatus returns status information about the cache store.
func (ps *CacheStoreImpl) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{
		Backend:   string(ps.backend),
		Connected: ps.db != nil,
	}

	if ps.disabled() {
		return status, nil
	}

	quotedTableName := quoteTableName(ps.tableName, ps.backend)

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(countQuery).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}

	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	rangeQuery := fmt.Sprintf("SELECT MAX(cache_timestamp), MIN(cache_timestamp) FROM %s", quotedTableName)
	if err := ps.db.QueryRow(rangeQuery).Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry time range: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)

	status.TableSizeBytes = ps.tableSize(status.TotalEntries)
	return status, nil
}

// tableSize asks the backend for the table's on-disk size, falling back to a rough estimate.
func (ps *CacheStoreImpl) tableSize(totalEntries int) int64 {
	fallback := int64(totalEntries) * 1000
	var size int64

	switch ps.backend {
	case schema.SQLiteBackend:
		if err := ps.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()").Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ps.connStr)
		if err != nil || cfg.DBName == "" {
			return fallback
		}
		sizeQuery := "SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?"
		if err := ps.db.QueryRow(sizeQuery, cfg.DBName, ps.tableName).Scan(&size); err != nil {
			return fallback
		}
	case schema.PostgreSQLBackend:
		if err := ps.db.QueryRow("SELECT pg_total_relation_size($1)", ps.tableName).Scan(&size); err != nil {
			return fallback
		}
	default:
		return fallback
	}
	return size
}
