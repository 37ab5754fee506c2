package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/temirov/flatten/internal/utils"
)

// textFileName defines the name of the text file used in tests.
const textFileName = "sample.txt"

// nestedDirectoryName defines the directory used for nested path tests.
const nestedDirectoryName = "subdir"

// TestDeduplicatePatterns verifies that DeduplicatePatterns removes duplicate patterns.
func TestDeduplicatePatterns(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		patterns []string
		expected []string
	}{
		{
			testName: "removes duplicates",
			patterns: []string{"*.rs", "*.go", "*.rs"},
			expected: []string{"*.rs", "*.go"},
		},
		{
			testName: "keeps unique",
			patterns: []string{"a", "b"},
			expected: []string{"a", "b"},
		},
		{
			testName: "empty input",
			patterns: nil,
			expected: []string{},
		},
	}
	for index, testCase := range testCases {
		actual := utils.DeduplicatePatterns(testCase.patterns)
		if len(actual) != len(testCase.expected) {
			testingInstance.Errorf("case %d (%s): expected length %d, got %d", index, testCase.testName, len(testCase.expected), len(actual))
			continue
		}
		for position, value := range actual {
			if value != testCase.expected[position] {
				testingInstance.Errorf("case %d (%s): expected %s at position %d, got %s", index, testCase.testName, testCase.expected[position], position, value)
			}
		}
	}
}

// TestRelativePathOrSelf verifies relative path calculations.
func TestRelativePathOrSelf(testingInstance *testing.T) {
	temporaryRoot := testingInstance.TempDir()
	subPath := filepath.Join(temporaryRoot, textFileName)
	nestedPath := filepath.Join(temporaryRoot, nestedDirectoryName, textFileName)
	testCases := []struct {
		testName string
		fullPath string
		root     string
		expected string
	}{
		{testName: "root path returns dot", fullPath: temporaryRoot, root: temporaryRoot, expected: "."},
		{testName: "sub path returns relative", fullPath: subPath, root: temporaryRoot, expected: textFileName},
		{testName: "nested path uses forward slashes", fullPath: nestedPath, root: temporaryRoot, expected: nestedDirectoryName + "/" + textFileName},
	}
	for index, testCase := range testCases {
		actual := utils.RelativePathOrSelf(testCase.fullPath, testCase.root)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %s, got %s", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestIsBinary verifies detection of binary data in byte slices.
func TestIsBinary(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		data     []byte
		expected bool
	}{
		{testName: "utf8 text", data: []byte("hello"), expected: false},
		{testName: "multibyte text", data: []byte("héllo wörld"), expected: false},
		{testName: "null byte", data: []byte{0x00, 0x01}, expected: true},
		{testName: "invalid utf8", data: []byte{0xff}, expected: true},
		{testName: "empty slice", data: []byte{}, expected: false},
	}
	for index, testCase := range testCases {
		actual := utils.IsBinary(testCase.data)
		if actual != testCase.expected {
			testingInstance.Errorf("case %d (%s): expected %t, got %t", index, testCase.testName, testCase.expected, actual)
		}
	}
}

// TestFindGitWorkTree verifies upward discovery of the directory holding .git.
func TestFindGitWorkTree(testingInstance *testing.T) {
	workTreeRoot := testingInstance.TempDir()
	if makeError := os.MkdirAll(filepath.Join(workTreeRoot, utils.GitDirectoryName), 0o755); makeError != nil {
		testingInstance.Fatalf("creating git directory: %v", makeError)
	}
	nestedDirectory := filepath.Join(workTreeRoot, nestedDirectoryName, "deeper")
	if makeError := os.MkdirAll(nestedDirectory, 0o755); makeError != nil {
		testingInstance.Fatalf("creating nested directory: %v", makeError)
	}

	foundWorkTree, found := utils.FindGitWorkTree(nestedDirectory)
	if !found {
		testingInstance.Fatalf("expected work tree above %s", nestedDirectory)
	}
	if foundWorkTree != workTreeRoot {
		testingInstance.Fatalf("expected %s, got %s", workTreeRoot, foundWorkTree)
	}
}
