package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsExcluded(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		patterns []string
		expected bool
	}{
		{"dir pattern at top level", "node_modules/foo.js", []string{"node_modules/*"}, true},
		{"dir pattern nested", "src/node_modules/foo.js", []string{"node_modules/*"}, true},
		{"dir pattern deep file", "a/b/node_modules/c/d.js", []string{"node_modules/*"}, true},
		{"dir pattern lookalike", "my_node_modules_backup/foo.js", []string{"node_modules/*"}, false},
		{"extension at root", "app.min.js", []string{"*.min.js"}, true},
		{"extension at depth", "static/js/app.min.js", []string{"*.min.js"}, true},
		{"extension mismatch", "static/js/app.js", []string{"*.min.js"}, false},
		{"bare name at depth", "web/yarn.lock", []string{"yarn.lock"}, true},
		{"bare name prefix only", "web/yarn.lock.bak", []string{"yarn.lock"}, false},
		{"case insensitive path", "Assets/Logo.PNG", []string{"*.png"}, true},
		{"case insensitive pattern", "README.md", []string{"readme.MD"}, true},
		{"segment match", "docs/_build/index.html", []string{"docs/_build/*"}, true},
		{"suffix match", "pkg/docs/_build/x.html", []string{"docs/_build/*"}, true},
		{"generated marker", "api/client.generated.ts", []string{"*.generated.*"}, true},
		{"question mark", "a/b1.txt", []string{"b?.txt"}, true},
		{"character class", "lib/x.o", []string{"*.[oa]"}, true},
		{"no patterns", "main.go", nil, false},
		{"invalid glob is literal", "weird/[abc", []string{"[abc"}, true},
		{"invalid glob no match", "weird/abc", []string{"[abc"}, false},
		{"braces are literal", "src/{a,b}.go", []string{"{a,b}.go"}, true},
		{"braces do not alternate", "src/a.go", []string{"{a,b}.go"}, false},
		{"backslash is literal", `win\notes.txt`, []string{`win\*`}, true},
		{"backslash does not escape", "win*x", []string{`win\*x`}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsExcluded(tt.path, tt.patterns))
		})
	}
}

func TestDefaultExclusions(t *testing.T) {
	m := NewMatcher(DefaultExclusions())

	excluded := []string{
		"package-lock.json",
		"frontend/yarn.lock",
		"vendor/github.com/x/y.go",
		"services/api/node_modules/lodash/index.js",
		"build/output.txt",
		"assets/img/logo.png",
		"static/app.min.js",
		"infra/terraform.tfstate",
		"src/schema.generated.go",
		"tests/fixtures/sample.json",
		".idea/workspace.xml",
	}
	for _, p := range excluded {
		assert.True(t, m.Match(p), "expected %q to be excluded", p)
	}

	kept := []string{
		"main.go",
		"src/app.py",
		"core/agg/agg.go",
		"README.md",
		"builder/main.go",
	}
	for _, p := range kept {
		assert.False(t, m.Match(p), "expected %q to be kept", p)
	}
}

func TestDefaultExclusionsIsACopy(t *testing.T) {
	a := DefaultExclusions()
	a[0] = "mutated"
	assert.NotEqual(t, "mutated", DefaultExclusions()[0])
}

func TestBuildExclusions(t *testing.T) {
	defaults := DefaultExclusions()

	got := BuildExclusions([]string{" *.csv ", "", "fixtures/*"}, false)
	assert.Len(t, got, len(defaults)+2)
	assert.Equal(t, "*.csv", got[len(got)-2])
	assert.Equal(t, "fixtures/*", got[len(got)-1])

	got = BuildExclusions([]string{"*.csv"}, true)
	assert.Equal(t, []string{"*.csv"}, got)

	assert.Empty(t, BuildExclusions(nil, true))
}

func TestNilMatcher(t *testing.T) {
	var m *Matcher
	assert.False(t, m.Match("anything"))
	assert.False(t, NewMatcher(nil).Match("anything"))
}
