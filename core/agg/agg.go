// Package agg has aggregation logic for Git activity data.
package agg

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
)

// forEachLine calls fn with every trimmed, non-empty line of out.
func forEachLine(out []byte, fn func(line string)) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			fn(line)
		}
	}
}

// looksLikePath reports whether an --name-only line is a file path rather than
// an author or header line. Paths contain a '/' or a '.'.
func looksLikePath(line string) bool {
	return strings.ContainsAny(line, "/.")
}

// parseRevisionLog counts every listed file occurrence.
func parseRevisionLog(out []byte, m *match.Matcher) map[string]int {
	revisions := make(map[string]int)
	forEachLine(out, func(line string) {
		if !m.Match(line) {
			revisions[line]++
		}
	})
	return revisions
}

// parseNumstatLog accumulates added/deleted lines per path.
// Renamed paths are credited to their new name.
func parseNumstatLog(out []byte, m *match.Matcher) map[string]schema.ChurnStats {
	churn := make(map[string]schema.ChurnStats)
	forEachLine(out, func(line string) {
		parts := strings.Split(line, "\t")
		if len(parts) != 3 {
			return
		}
		added, ok := parseChurnValue(parts[0])
		if !ok {
			return
		}
		deleted, ok := parseChurnValue(parts[1])
		if !ok {
			return
		}
		path := parts[2]
		if strings.Contains(path, " => ") {
			if _, newPath := parseRenamePath(path); newPath != "" {
				path = newPath
			}
		}
		if m.Match(path) {
			return
		}
		stats := churn[path]
		stats.Added += added
		stats.Deleted += deleted
		churn[path] = stats
	})
	return churn
}

// parseChurnValue converts a numstat column to int. A "-" (binary) counts as 0.
func parseChurnValue(s string) (int, bool) {
	if s == "-" {
		return 0, true
	}
	val, err := strconv.Atoi(s)
	if err != nil || val < 0 {
		return 0, false
	}
	return val, true
}

// parseRenamePath extracts old and new paths from a rename string.
func parseRenamePath(path string) (string, string) {
	if !strings.Contains(path, "{") {
		// Simple format: "old => new"
		parts := strings.SplitN(path, " => ", 2)
		if len(parts) == 2 {
			return parts[0], parts[1]
		}
		return "", ""
	}

	// Braced format: prefix{old => new}suffix
	braceStart := strings.Index(path, "{")
	braceEnd := strings.Index(path, "}")
	if braceEnd == -1 || braceStart >= braceEnd {
		return "", ""
	}

	prefix := path[:braceStart]
	renamePart := path[braceStart+1 : braceEnd]
	suffix := path[braceEnd+1:]

	renameParts := strings.SplitN(renamePart, " => ", 2)
	if len(renameParts) != 2 {
		return "", ""
	}
	// An empty side collapses the doubled slash, e.g. "src/{ => lib}/a.go".
	oldPath := strings.ReplaceAll(prefix+renameParts[0]+suffix, "//", "/")
	newPath := strings.ReplaceAll(prefix+renameParts[1]+suffix, "//", "/")
	return oldPath, newPath
}

// parseAuthorLog associates each author line with the path lines that follow it
// and returns the number of distinct authors per path.
func parseAuthorLog(out []byte, m *match.Matcher) map[string]int {
	authorSets := make(map[string]map[string]struct{})
	var currentAuthor string
	forEachLine(out, func(line string) {
		if !looksLikePath(line) {
			currentAuthor = line
			return
		}
		if currentAuthor == "" || m.Match(line) {
			return
		}
		if authorSets[line] == nil {
			authorSets[line] = make(map[string]struct{})
		}
		authorSets[line][currentAuthor] = struct{}{}
	})

	authors := make(map[string]int, len(authorSets))
	for path, set := range authorSets {
		authors[path] = len(set)
	}
	return authors
}

// parseCommitLog attaches each COMMIT: header to the path lines that follow it.
// A header with fewer than four fields drops the lines up to the next header.
func parseCommitLog(out []byte, m *match.Matcher) map[string][]schema.CommitRecord {
	commits := make(map[string][]schema.CommitRecord)
	var current *schema.CommitRecord
	forEachLine(out, func(line string) {
		if payload, ok := strings.CutPrefix(line, contract.CommitMarker); ok {
			current = parseCommitHeader(payload)
			return
		}
		if current == nil || !looksLikePath(line) || m.Match(line) {
			return
		}
		commits[line] = append(commits[line], *current)
	})
	return commits
}

// parseCommitHeader parses "hash|author|date|subject". The subject may contain '|'.
func parseCommitHeader(payload string) *schema.CommitRecord {
	parts := strings.SplitN(payload, "|", 4)
	if len(parts) < 4 {
		return nil
	}
	return &schema.CommitRecord{
		Hash:    parts[0],
		Author:  parts[1],
		Date:    parts[2],
		Message: parts[3],
	}
}
