// Package match decides which repository paths are excluded from analysis.
package match

import (
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// defaultExclusions covers files that add noise to a hotspot ranking.
var defaultExclusions = []string{
	// Lock files
	"yarn.lock", "package-lock.json", "pnpm-lock.yaml", "poetry.lock", "Pipfile.lock",
	"uv.lock", "go.sum", "Gemfile.lock", "composer.lock", "Cargo.lock",

	// Dependency and virtualenv directories
	"node_modules/*", "vendor/*", "venv/*", ".venv/*", "env/*", ".env/*",
	"__pycache__/*", ".pytest_cache/*", ".mypy_cache/*", ".tox/*",
	"site-packages/*", "dist-packages/*",

	// Build output
	"dist/*", "build/*", "target/*", "out/*", ".next/*", ".nuxt/*",
	"coverage/*", ".coverage", "htmlcov/*", "*.egg-info/*",

	// Editor and OS artifacts
	".idea/*", ".vscode/*", "*.swp", "*.swo", ".DS_Store", "Thumbs.db",

	// Binary and media
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.svg", "*.webp", "*.bmp", "*.tiff", "*.pdf",
	"*.zip", "*.tar", "*.gz", "*.rar", "*.7z",
	"*.woff", "*.woff2", "*.ttf", "*.eot",
	"*.mp3", "*.mp4", "*.wav", "*.avi", "*.mov",

	// Compiled and minified
	"*.pyc", "*.pyo", "*.class", "*.o", "*.so", "*.dll", "*.exe", "*.jar", "*.war",
	"*.min.js", "*.min.css", "*.map", "*.bundle.js", "*.chunk.js",

	// Infrastructure state
	"*.tfstate", "*.tfstate.backup", ".terraform/*", ".terraform.lock.hcl",

	// Logs, fixtures and generated docs
	"*.log", "test/fixtures/*", "tests/fixtures/*", "__snapshots__/*",
	"docs/_build/*", "site/*", ".docusaurus/*",

	// Generated code markers
	"*.generated.*", "*.auto.*",
}

// DefaultExclusions returns a copy of the built-in exclusion patterns.
func DefaultExclusions() []string {
	return slices.Clone(defaultExclusions)
}

// BuildExclusions returns the effective pattern set: the defaults (unless noDefaults)
// followed by the non-blank extra patterns in the order given.
func BuildExclusions(extra []string, noDefaults bool) []string {
	var patterns []string
	if !noDefaults {
		patterns = DefaultExclusions()
	}
	for _, p := range extra {
		if p = strings.TrimSpace(p); p != "" {
			patterns = append(patterns, p)
		}
	}
	return patterns
}

// rule is one pattern compiled for each of the three ways it can match.
type rule struct {
	full    glob.Glob // the pattern against the full path or a path suffix
	nested  glob.Glob // "*/" + pattern, so bare names match at any depth
	segment glob.Glob // pattern without trailing "/" and "*", against a single segment
}

// Matcher is an immutable, precompiled set of exclusion patterns.
// Matching is case-insensitive and safe for concurrent use.
type Matcher struct {
	rules []rule
}

// NewMatcher compiles patterns. A pattern that is not a valid glob is matched literally.
func NewMatcher(patterns []string) *Matcher {
	m := &Matcher{rules: make([]rule, 0, len(patterns))}
	for _, p := range patterns {
		p = strings.ToLower(p)
		m.rules = append(m.rules, rule{
			full:    compile(p),
			nested:  compile("*/" + p),
			segment: compile(strings.TrimRight(p, "/*")),
		})
	}
	return m
}

// fnmatchQuoter escapes the glob syntax fnmatch does not have: braces and backslash.
var fnmatchQuoter = strings.NewReplacer(`\`, `\\`, `{`, `\{`, `}`, `\}`)

// compile builds a glob where '*' also crosses '/' boundaries.
func compile(pattern string) glob.Glob {
	g, err := glob.Compile(fnmatchQuoter.Replace(pattern))
	if err != nil {
		return glob.MustCompile(glob.QuoteMeta(pattern))
	}
	return g
}

// Match reports whether path is excluded by any pattern.
func (m *Matcher) Match(path string) bool {
	if m == nil || len(m.rules) == 0 {
		return false
	}
	lower := strings.ToLower(path)

	var segments, suffixes []string
	if strings.Contains(lower, "/") {
		segments = strings.Split(lower, "/")
		suffixes = make([]string, len(segments))
		offset := 0
		for i, seg := range segments {
			suffixes[i] = lower[offset:]
			offset += len(seg) + 1
		}
	}

	for _, r := range m.rules {
		if r.full.Match(lower) || r.nested.Match(lower) {
			return true
		}
		for i, seg := range segments {
			if r.segment.Match(seg) || r.full.Match(suffixes[i]) {
				return true
			}
		}
	}
	return false
}

// IsExcluded reports whether path is excluded by any of patterns.
// Callers matching many paths should build a Matcher once instead.
func IsExcluded(path string, patterns []string) bool {
	return NewMatcher(patterns).Match(path)
}
