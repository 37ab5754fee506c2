// Package filter decides which discovered paths take part in a flatten run.
package filter

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/temirov/flatten/internal/utils"
)

const patternListSeparator = ","

// ignoredFileNames lists generated files that never belong in a flattened document.
var ignoredFileNames = map[string]struct{}{
	utils.DefaultOutputFileName: {},
	"package-lock.json":         {},
	"pnpm-lock.yaml":            {},
	"yarn.lock":                 {},
	"Cargo.lock":                {},
	"Gemfile.lock":              {},
	"composer.lock":             {},
	"poetry.lock":               {},
	"go.sum":                    {},
	"bun.lockb":                 {},
}

var textExtensions = map[string]struct{}{
	"rs": {}, "go": {}, "js": {}, "ts": {}, "py": {}, "java": {}, "cpp": {}, "c": {}, "h": {}, "hpp": {},
	"cs": {}, "php": {}, "rb": {}, "swift": {}, "kt": {}, "scala": {}, "clj": {}, "hs": {}, "ml": {}, "fs": {},
	"dart": {}, "nim": {}, "zig": {}, "v": {}, "odin": {},
	"txt": {}, "md": {}, "rst": {},
	"toml": {}, "yaml": {}, "yml": {}, "json": {}, "xml": {},
	"html": {}, "css": {}, "scss": {}, "sass": {}, "less": {},
	"sql": {},
	"sh": {}, "bash": {}, "zsh": {}, "fish": {}, "ps1": {}, "psm1": {}, "bat": {}, "cmd": {},
	"dockerfile": {}, "gitignore": {}, "gitattributes": {}, "editorconfig": {},
}

// textFileNames lists conventional extensionless file names, lowercased.
var textFileNames = map[string]struct{}{
	"dockerfile": {},
	"makefile":   {},
	"rakefile":   {},
	"gemfile":    {},
	"procfile":   {},
	"justfile":   {},
	"taskfile":   {},
}

// compiledPattern pairs a glob source with its matcher. A nil matcher never matches.
type compiledPattern struct {
	source  string
	matcher glob.Glob
}

func (pattern compiledPattern) matches(path string) bool {
	if pattern.matcher == nil {
		return false
	}
	return pattern.matcher.Match(path)
}

// Filter holds the include and exclude glob lists of a run. It is immutable once built.
type Filter struct {
	includePatterns []compiledPattern
	excludePatterns []compiledPattern
}

// New compiles the include and exclude patterns. Patterns that fail to compile are
// retained but never match, so a malformed glob cannot abort a run.
func New(includePatterns []string, excludePatterns []string) *Filter {
	return &Filter{
		includePatterns: compilePatterns(includePatterns),
		excludePatterns: compilePatterns(excludePatterns),
	}
}

func compilePatterns(patterns []string) []compiledPattern {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		matcher, compileError := glob.Compile(pattern)
		if compileError != nil {
			compiled = append(compiled, compiledPattern{source: pattern})
			continue
		}
		compiled = append(compiled, compiledPattern{source: pattern, matcher: matcher})
	}
	return compiled
}

// IncludePatterns returns the include pattern sources in order.
func (filter *Filter) IncludePatterns() []string {
	return patternSources(filter.includePatterns)
}

// ExcludePatterns returns the exclude pattern sources in order.
func (filter *Filter) ExcludePatterns() []string {
	return patternSources(filter.excludePatterns)
}

func patternSources(patterns []compiledPattern) []string {
	sources := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		sources = append(sources, pattern.source)
	}
	return sources
}

// ShouldInclude reports whether path passes the ignored-name check and the glob lists.
// An empty include list matches everything; a matching exclude pattern always rejects.
func (filter *Filter) ShouldInclude(path string) bool {
	fileName, hasFileName := baseName(path)
	if !hasFileName {
		return false
	}
	if _, ignored := ignoredFileNames[fileName]; ignored {
		return false
	}

	normalizedPath := filepath.ToSlash(path)
	if len(filter.includePatterns) > 0 && !matchesAny(filter.includePatterns, normalizedPath) {
		return false
	}
	return !matchesAny(filter.excludePatterns, normalizedPath)
}

func matchesAny(patterns []compiledPattern, path string) bool {
	for _, pattern := range patterns {
		if pattern.matches(path) {
			return true
		}
	}
	return false
}

// IsText reports whether path looks like a text source file, judged by its lowercased
// extension, or by its lowercased name when it has no extension.
func IsText(path string) bool {
	fileName, hasFileName := baseName(path)
	if !hasFileName {
		return false
	}
	extension := fileExtension(fileName)
	if extension != "" {
		_, known := textExtensions[strings.ToLower(extension)]
		return known
	}
	_, known := textFileNames[strings.ToLower(fileName)]
	return known
}

// baseName returns the final path element, or false when the path has none.
func baseName(path string) (string, bool) {
	trimmedPath := strings.TrimRight(filepath.ToSlash(path), "/")
	if trimmedPath == "" {
		return "", false
	}
	name := trimmedPath[strings.LastIndex(trimmedPath, "/")+1:]
	if name == "" || name == "." || name == ".." {
		return "", false
	}
	return name, true
}

// fileExtension returns the extension without its dot. A leading dot alone does not
// start an extension, so ".gitignore" has none while "a.gitignore" has "gitignore".
func fileExtension(fileName string) string {
	dotIndex := strings.LastIndex(fileName, ".")
	if dotIndex <= 0 || dotIndex == len(fileName)-1 {
		return ""
	}
	return fileName[dotIndex+1:]
}

// FileExtension returns the extension of the final element of path without its dot.
func FileExtension(path string) string {
	fileName, hasFileName := baseName(path)
	if !hasFileName {
		return ""
	}
	return fileExtension(fileName)
}

// ParsePatternList splits a comma separated pattern list, trimming each entry and
// dropping empty ones.
func ParsePatternList(rawPatterns string) []string {
	var patterns []string
	for _, rawPattern := range strings.Split(rawPatterns, patternListSeparator) {
		trimmedPattern := strings.TrimSpace(rawPattern)
		if trimmedPattern == "" {
			continue
		}
		patterns = append(patterns, trimmedPattern)
	}
	return patterns
}
