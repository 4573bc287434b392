// Package ignore filters repository file lists against a static set of
// glob-style patterns covering build artifacts, dependency directories,
// binary/media files and VCS metadata.
package ignore

import (
	"path"
	"strings"
)

// Patterns is evaluated in order against forward-slash paths. Three forms are
// supported: exact names ("Thumbs.db"), extension wildcards ("*.png"), and
// directory wildcards ("node_modules/**"). A directory wildcard matches the
// directory as a whole path segment at any depth, so a nested node_modules
// is excluded but "src/router.ts" survives "out/**".
var Patterns = []string{
	// Version control
	".git/**", ".gitignore", ".gitattributes", ".gitmodules", ".svn", ".hg",

	// Python
	"*.pyc", "*.pyo", "*.pyd", "__pycache__/**", ".pytest_cache/**",
	".mypy_cache/**", ".ruff_cache/**", ".tox/**", "venv/**", ".venv/**",
	"site-packages/**", "*.egg-info", "*.egg", "*.whl",

	// Node / JavaScript
	"node_modules/**", "bower_components/**", "package-lock.json",
	"yarn.lock", "pnpm-lock.yaml", ".yarn/**", "*.min.js", "*.min.css", "*.map",

	// Java / JVM
	"*.class", "*.jar", "*.war", "*.ear", "target/**", ".gradle/**",

	// C / C++ / native
	"*.o", "*.obj", "*.so", "*.dll", "*.dylib", "*.exe", "*.lib", "*.a", "*.out",

	// Ruby
	"*.gem", "Gemfile.lock", "vendor/bundle/**",

	// Rust / Go
	"Cargo.lock", "vendor/**",

	// .NET
	"bin/**", "obj/**", "*.nupkg", "packages/**",

	// Media and binaries
	"*.svg", "*.png", "*.jpg", "*.jpeg", "*.gif", "*.ico", "*.pdf",
	"*.mov", "*.mp4", "*.mp3", "*.wav", "*.webp", "*.ttf", "*.woff", "*.woff2",

	// IDE / editor
	".idea/**", ".vscode/**", "*.swp", "*.swo",

	// Logs and temp
	"*.log", "*.bak", "*.tmp", "*.temp", ".cache/**", ".sass-cache/**",

	// OS
	".DS_Store", "Thumbs.db", "desktop.ini",

	// Build output
	"build/**", "dist/**", "out/**", ".next/**", ".nuxt/**", ".docusaurus/**",

	// Infrastructure
	".terraform/**", "*.tfstate",

	// Lockfiles
	"poetry.lock", "Pipfile.lock",
}

// ShouldIgnore reports whether a repository-relative path matches any ignore
// pattern. Matching is case-sensitive; backslashes are normalized to forward
// slashes first.
func ShouldIgnore(filePath string) bool {
	filePath = strings.ReplaceAll(filePath, "\\", "/")

	for _, pattern := range Patterns {
		if matches(pattern, filePath) {
			return true
		}
	}
	return false
}

// substringPrefixes are the directory-wildcard prefixes that exclude a path
// wherever they appear in it, even inside a longer segment. Everything else
// matches whole segments only.
var substringPrefixes = map[string]bool{
	".git":         true,
	"node_modules": true,
}

func matches(pattern, filePath string) bool {
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if prefix == "" {
			return false
		}
		if substringPrefixes[prefix] {
			return strings.Contains(filePath, prefix)
		}
		return hasDirSegment(filePath, prefix)
	}

	if strings.HasPrefix(pattern, "*.") {
		// Extension wildcards apply to the base name at any depth.
		ok, _ := path.Match(pattern, path.Base(filePath))
		return ok
	}

	// Exact name: the whole path or any single segment.
	if filePath == pattern {
		return true
	}
	for _, seg := range strings.Split(filePath, "/") {
		if seg == pattern {
			return true
		}
	}
	return false
}

// hasDirSegment reports whether dir (possibly multi-segment, like
// "vendor/bundle") appears as a whole segment run anywhere in the path.
func hasDirSegment(filePath, dir string) bool {
	return filePath == dir ||
		strings.HasPrefix(filePath, dir+"/") ||
		strings.HasSuffix(filePath, "/"+dir) ||
		strings.Contains(filePath, "/"+dir+"/")
}

// FilterPaths returns the subset of paths that are not ignored, preserving
// order. Filtering is idempotent.
func FilterPaths(paths []string) []string {
	kept := make([]string, 0, len(paths))
	for _, p := range paths {
		if !ShouldIgnore(p) {
			kept = append(kept, p)
		}
	}
	return kept
}
