// Package utils contains general helper functions used across the flatten tool.
package utils

import (
	"path/filepath"
)

// File and directory names shared across the project.
const (
	// IgnoreFileName is the name of the generic ignore file.
	IgnoreFileName = ".ignore"
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
	// GitExcludeRelativePath locates the repository-local exclude file inside GitDirectoryName.
	GitExcludeRelativePath = "info/exclude"
	// ConfigFileName is the local configuration file looked up in the working directory.
	ConfigFileName = ".flatten.yaml"
	// GlobalConfigDirectoryName is the directory under the user's home holding global configuration.
	GlobalConfigDirectoryName = ".flatten"
	// GlobalConfigFileName is the configuration file inside GlobalConfigDirectoryName.
	GlobalConfigFileName = "config.yaml"
	// DefaultOutputFileName is written when --file is given without a value.
	DefaultOutputFileName = "flatten.md"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// RelativePathOrSelf calculates the forward-slash relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	cleanRoot := filepath.Clean(root)

	if cleanPath == cleanRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanRoot, cleanPath)
	if relErr != nil {
		return filepath.ToSlash(cleanPath)
	}
	return filepath.ToSlash(relativePath)
}

// FindGitWorkTree searches upward from startDirectory for a directory containing a
// .git folder and returns that directory.
func FindGitWorkTree(startDirectory string) (string, bool) {
	gitDirectoryPath, gitDirectoryError := findGitDirectory(startDirectory)
	if gitDirectoryError != nil || gitDirectoryPath == "" {
		return "", false
	}
	return gitDirectoryPath, true
}
