// Package config loads flatten configuration files and ignore files.
package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

const (
	commentPrefix         = "#"
	negationPrefix        = "!"
	directorySuffix       = "/"
	anyDepthPrefix        = "**/"
	errorReadIgnoreFormat = "reading ignore file %s: %w"
)

// LoadIgnoreFileLines reads the pattern lines of an ignore file, skipping blank lines and
// comments. A missing file yields no lines and no error.
//
// #nosec G304
func LoadIgnoreFileLines(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf(errorReadIgnoreFormat, ignoreFilePath, openFileError)
	}
	defer fileHandle.Close()

	var patternLines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmedLine := strings.TrimSpace(line)
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentPrefix) {
			continue
		}
		patternLines = append(patternLines, normalizeIgnoreLine(trimmedLine))
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf(errorReadIgnoreFormat, ignoreFilePath, scanError)
	}
	return patternLines, nil
}

// IgnoreDecision is the verdict one ignore file gives for a path.
type IgnoreDecision int

const (
	// IgnoreDecisionNone means no pattern of the file matched.
	IgnoreDecisionNone IgnoreDecision = iota
	// IgnoreDecisionIgnore means the last matching pattern excludes the path.
	IgnoreDecisionIgnore
	// IgnoreDecisionWhitelist means the last matching pattern is a "!" pattern.
	IgnoreDecisionWhitelist
)

// ignoreRule is one pattern line compiled on its own, with its "!" prefix stripped.
type ignoreRule struct {
	source  string
	matcher *ignore.GitIgnore
	negated bool
}

// IgnoreRules holds the patterns of one ignore file in file order.
type IgnoreRules struct {
	rules []ignoreRule
}

// CompileIgnoreRules compiles pattern lines as returned by LoadIgnoreFileLines. It returns
// nil when no line holds a pattern.
func CompileIgnoreRules(patternLines []string) *IgnoreRules {
	var rules []ignoreRule
	for _, patternLine := range patternLines {
		body := strings.TrimPrefix(patternLine, negationPrefix)
		if body == "" {
			continue
		}
		rules = append(rules, ignoreRule{
			source:  patternLine,
			matcher: ignore.CompileIgnoreLines(body),
			negated: body != patternLine,
		})
	}
	if len(rules) == 0 {
		return nil
	}
	return &IgnoreRules{rules: rules}
}

// LoadIgnoreRules reads and compiles the ignore file at ignoreFilePath. It returns nil when
// the file does not exist or holds no patterns.
func LoadIgnoreRules(ignoreFilePath string) (*IgnoreRules, error) {
	patternLines, loadError := LoadIgnoreFileLines(ignoreFilePath)
	if loadError != nil {
		return nil, loadError
	}
	return CompileIgnoreRules(patternLines), nil
}

// Decide matches relativePath, slash separated and with a trailing slash for directories,
// against the rules. The last matching pattern wins and is returned with the verdict.
func (ignoreRules *IgnoreRules) Decide(relativePath string) (IgnoreDecision, string) {
	if ignoreRules == nil {
		return IgnoreDecisionNone, ""
	}
	for index := len(ignoreRules.rules) - 1; index >= 0; index-- {
		rule := ignoreRules.rules[index]
		if !rule.matcher.MatchesPath(relativePath) {
			continue
		}
		if rule.negated {
			return IgnoreDecisionWhitelist, rule.source
		}
		return IgnoreDecisionIgnore, rule.source
	}
	return IgnoreDecisionNone, ""
}

// normalizeIgnoreLine rewrites directory patterns such as "node_modules/" whose only slash
// is the trailing one to "**/node_modules/", so they match at any depth as git does.
func normalizeIgnoreLine(line string) string {
	negated := strings.HasPrefix(line, negationPrefix)
	body := strings.TrimPrefix(line, negationPrefix)
	trimmedBody := strings.TrimSuffix(body, directorySuffix)
	if trimmedBody == body || trimmedBody == "" || strings.Contains(trimmedBody, directorySuffix) {
		return line
	}
	normalized := anyDepthPrefix + body
	if negated {
		return negationPrefix + normalized
	}
	return normalized
}
