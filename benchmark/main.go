// Package main provides a performance benchmarking tool for the hotmap CLI.
// It measures execution times across repositories of different sizes,
// running each scenario multiple times, treating the first successful cached run as cold
// and averaging the rest as warm, and writes a CSV for documentation.
//
// Prerequisites:
// - hotmap binary installed and available in PATH
// - Test repositories cloned to the specified base directory
// - Git repositories: csv-parser, fd, git, kubernetes
//
// Usage: go run benchmark/main.go [repo-base-dir]
//
//	repo-base-dir: Directory containing test repositories
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Repository  string
	Scenario    string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	RepoBase    string
	CacheDir    string
	Timeout     time.Duration
	Workers     int
	NoCacheRuns int
	CacheRuns   int
	TestRepos   []string
	Scenarios   map[string][]string
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [repo-base-dir]\n", os.Args[0])
		os.Exit(1)
	}

	cacheDir, err := os.MkdirTemp("", "hotmap-benchmark-*")
	if err != nil {
		fmt.Printf("Failed to create cache dir: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(cacheDir) }()

	config := BenchmarkConfig{
		RepoBase:    os.Args[1],
		CacheDir:    cacheDir,
		Timeout:     5 * time.Minute,
		Workers:     14,
		NoCacheRuns: 3,
		CacheRuns:   4,
		TestRepos:   []string{"csv-parser", "fd", "git", "kubernetes"},
		Scenarios: map[string][]string{
			"full":     nil,
			"6-months": {"--since", "6 months ago"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that hotmap binary and test repositories exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("hotmap"); err != nil {
		return fmt.Errorf("hotmap binary not found in PATH")
	}
	for _, repo := range config.TestRepos {
		repoPath := filepath.Join(config.RepoBase, repo)
		if _, err := os.Stat(repoPath); os.IsNotExist(err) {
			return fmt.Errorf("repository %s not found at %s", repo, repoPath)
		}
	}
	return nil
}

// runBenchmarks executes every scenario across configured repositories
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d repos, %v timeout, %d workers, no-cache: %d runs, cache: %d runs\n",
		len(config.TestRepos), config.Timeout, config.Workers, config.NoCacheRuns, config.CacheRuns)

	for _, repo := range config.TestRepos {
		fmt.Printf("Benchmarking %s\n", repo)
		repoPath := filepath.Join(config.RepoBase, repo)
		for _, scenario := range []string{"full", "6-months"} {
			results = append(results, runBenchmarkSuite(config, repo, repoPath, scenario))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a scenario
func runBenchmarkSuite(config BenchmarkConfig, repo, repoPath, scenario string) BenchmarkResult {
	fmt.Printf("Running %s analysis on %s\n", scenario, repo)
	extraArgs := config.Scenarios[scenario]

	average := func(times []float64) string {
		if len(times) == 0 {
			return "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	fmt.Printf("  No-cache phase (%d runs)\n", config.NoCacheRuns)
	noCacheTimes := runBenchmark(config, repoPath, append([]string{"--no-cache"}, extraArgs...), config.NoCacheRuns)

	fmt.Printf("  Cache phase (%d runs)\n", config.CacheRuns)
	cacheArgs := append([]string{"--cache", "--clear-cache"}, extraArgs...)
	cold := runBenchmark(config, repoPath, cacheArgs, 1)
	warm := runBenchmark(config, repoPath, append([]string{"--cache"}, extraArgs...), config.CacheRuns-1)

	result := BenchmarkResult{
		Repository:  repo,
		Scenario:    scenario,
		NoCacheTime: average(noCacheTimes),
		ColdTime:    average(cold),
		WarmTime:    average(warm),
	}
	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", result.NoCacheTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes hotmap numRuns times and returns the durations of successful runs
func runBenchmark(config BenchmarkConfig, repoPath string, extraArgs []string, numRuns int) []float64 {
	args := []string{
		"--no-serve",
		"--workers", fmt.Sprint(config.Workers),
		"--cache-dir", config.CacheDir,
		"--output-dir", filepath.Join(config.CacheDir, "bundle"),
	}
	args = append(args, extraArgs...)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "hotmap", args...)
		cmd.Dir = repoPath
		output, err := cmd.CombinedOutput()
		cancel()
		if err == nil && isSuccess(output) {
			times = append(times, time.Since(start).Seconds())
		}
	}
	return times
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte) bool {
	outputStr := string(output)
	return strings.Contains(outputStr, "Analysis completed in") && strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("hotmap_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"repo", "scenario", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Repository, result.Scenario, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, scenario := range []string{"full", "6-months"} {
		fmt.Printf("%s:\n", scenario)
		for _, result := range results {
			if result.Scenario == scenario {
				fmt.Printf("  %-12s: No-cache: %s, Cold: %s, Warm: %s\n", result.Repository, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
