package ignore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldIgnore(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"node_modules/lib/index.js", true},
		{"src/main.py", false},
		{"build/output.bin", true},
		{".git/config", true},
		{"packages/web/node_modules/react/index.js", true},
		{"docs/logo.png", true},
		{"cmd/server/main.go", false},
		{"vendor/github.com/lib/pq/conn.go", true},
		{"app.min.js", true},
		{"deep/nested/.DS_Store", true},
		{"yarn.lock", true},
		{"README.md", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path))
		})
	}
}

// Directory wildcards match whole path segments, so source files whose paths
// merely contain a build-directory name as part of a longer word are kept.
func TestShouldIgnore_SegmentNotSubstring(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"api/routes/chat.py", false},
		{"src/router.ts", false},
		{"internal/binary.go", false},
		{"pkg/object/model.go", false},
		{"docs/distributed.md", false},
		{"scripts/rebuild.sh", false},
		{"scripts/rebuild", false},
		{"targets/list.go", false},
		{"out/bundle.js", true},
		{"frontend/dist/app.js", true},
		{"tools/bin/release", true},
		{"services/api/target/notes.md", true},
		{"src/obj", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldIgnore(tt.path))
		})
	}
}

func TestShouldIgnore_NormalizesBackslashes(t *testing.T) {
	assert.True(t, ShouldIgnore(`node_modules\lib\index.js`))
	assert.False(t, ShouldIgnore(`src\main.go`))
}

func TestShouldIgnore_NoExtensionNoMatchingSegment(t *testing.T) {
	assert.False(t, ShouldIgnore("LICENSE"))
	assert.False(t, ShouldIgnore("scripts/deploy"))
}

func TestFilterPaths(t *testing.T) {
	in := []string{
		"src/main.go",
		"node_modules/a/b.js",
		".git/HEAD",
		"README.md",
		"img/banner.jpg",
	}
	got := FilterPaths(in)
	assert.Equal(t, []string{"src/main.go", "README.md"}, got)
}

func TestFilterPaths_Idempotent(t *testing.T) {
	in := []string{
		"src/main.go",
		"build/app.o",
		"lib/util.ts",
		"dist/bundle.js",
	}
	once := FilterPaths(in)
	twice := FilterPaths(once)
	assert.Equal(t, once, twice)
}

func TestFilterPaths_Empty(t *testing.T) {
	assert.Empty(t, FilterPaths(nil))
}
