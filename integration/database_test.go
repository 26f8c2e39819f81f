//go:build database

package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// runBackendScenario exercises cache and analysis commands against one database backend.
func runBackendScenario(t *testing.T, backend, connStr string) {
	repo := seedHistory(t)
	env := []string{
		"HOTMAP_CACHE_DIR=" + t.TempDir(),
		"HOTMAP_CACHE_BACKEND=" + backend,
		"HOTMAP_CACHE_DB_CONNECT=" + connStr,
		"HOTMAP_ANALYSIS_BACKEND=" + backend,
		"HOTMAP_ANALYSIS_DB_CONNECT=" + connStr,
	}

	_, err := runHotmap(t, repo.dir, env, "cache", "clear")
	require.NoError(t, err)
	_, err = runHotmap(t, repo.dir, env, "analysis", "clear")
	require.NoError(t, err)
	_, err = runHotmap(t, repo.dir, env, "analysis", "migrate")
	require.NoError(t, err)

	outDir := t.TempDir()
	_, err = runHotmap(t, repo.dir, env, "--no-serve", "--cache", "--limit", "5", "-o", outDir)
	require.NoError(t, err)
	second, err := runHotmap(t, repo.dir, env, "--no-serve", "--cache", "--limit", "5", "-o", outDir)
	require.NoError(t, err)
	assert.Contains(t, second, "Cache hit")

	status, err := runHotmap(t, repo.dir, env, "cache", "status")
	require.NoError(t, err)
	assert.Contains(t, status, "Total Entries: 1")

	analysis, err := runHotmap(t, repo.dir, env, "analysis", "status")
	require.NoError(t, err)
	assert.Contains(t, analysis, "Total Runs: 2")

	_, err = runHotmap(t, repo.dir, env, "analysis", "migrate", "--target-version", "0")
	require.NoError(t, err)
}

// TestHotmapWithMySQL tests the hotmap CLI with a MySQL backend.
func TestHotmapWithMySQL(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "hotmap",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(60 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/hotmap?parseTime=true&multiStatements=true", host, port.Port())
	runBackendScenario(t, "mysql", connStr)
}

// TestHotmapWithPostgres tests the hotmap CLI with a PostgreSQL backend.
func TestHotmapWithPostgres(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()

	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres sslmode=disable", host, port.Port())
	runBackendScenario(t, "postgresql", connStr)
}
