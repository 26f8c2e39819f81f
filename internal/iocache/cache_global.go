package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
)

// cacheTable is the name of the table for cached analysis results.
const cacheTable = "hotmap_cache"

// Global Manager instance for main logic.
var (
	Manager   = &CacheStoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// CacheConnString returns the connection string for the result cache.
// SQLite resolves to a file under the configured cache directory.
func CacheConnString(cfg *contract.Config) string {
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.CacheDBConnect == "" {
		return defaultSQLitePath(cfg.CacheDir, false)
	}
	return cfg.CacheDBConnect
}

// AnalysisConnString returns the connection string for analysis tracking.
func AnalysisConnString(cfg *contract.Config) string {
	if cfg.AnalysisBackend == schema.SQLiteBackend && cfg.AnalysisDBConnect == "" {
		return defaultSQLitePath(cfg.CacheDir, true)
	}
	return cfg.AnalysisDBConnect
}

// InitStores initializes the global manager with the cache and analysis stores.
// An empty analysis backend leaves run tracking disabled.
func InitStores(cfg *contract.Config) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var cacheStore contract.CacheStore
		if cfg.CacheBackend != "" {
			cacheStore, err = NewCacheStore(cacheTable, cfg.CacheBackend, CacheConnString(cfg))
			if err != nil {
				initErr = fmt.Errorf("failed to initialize result caching: %w", err)
				return
			}
		}

		var analysisStore contract.AnalysisStore
		if cfg.AnalysisBackend != "" {
			analysisStore, err = NewAnalysisStore(cfg.AnalysisBackend, AnalysisConnString(cfg))
			if err != nil {
				if cacheStore != nil {
					_ = cacheStore.Close()
				}
				initErr = fmt.Errorf("failed to initialize analysis store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.cache = cacheStore
		Manager.analysis = analysisStore
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() {
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.cache != nil {
			_ = Manager.cache.Close()
		}
		if Manager.analysis != nil {
			_ = Manager.analysis.Close()
		}
	})
}

// ClearCache removes every cached result for the backend.
// For SQLite, it deletes the database file.
// For SQL backends (MySQL/PostgreSQL), it drops the table.
func ClearCache(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(connStr)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropTables(backend, connStr, cacheTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported cache backend for clearing: %s", backend)
	}
}

// ClearAnalysis removes all tracked runs for the backend.
func ClearAnalysis(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(connStr)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropTables(backend, connStr, hotspotRecordsTable, analysisRunsTable, migrationsTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported analysis backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// dropTables connects to the SQL database and drops each table if it exists.
func dropTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}

	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
