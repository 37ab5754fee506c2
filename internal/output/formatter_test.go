package output_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/flatten/internal/output"
)

// fakeReader serves file contents from memory and fails for unknown paths.
func fakeReader(contents map[string]string) output.FileReader {
	return func(path string) ([]byte, error) {
		content, found := contents[path]
		if !found {
			return nil, errors.New("no such file or directory")
		}
		return []byte(content), nil
	}
}

func TestParseFormat(testingInstance *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    output.Format
		expectError bool
	}{
		{name: "full", input: "full", expected: output.FormatFull},
		{name: "tree", input: "tree", expected: output.FormatTree},
		{name: "mixed case", input: "TrEe", expected: output.FormatTree},
		{name: "unknown", input: "json", expectError: true},
		{name: "empty", input: "", expectError: true},
	}
	for _, testCase := range testCases {
		testingInstance.Run(testCase.name, func(testingHandle *testing.T) {
			actual, parseError := output.ParseFormat(testCase.input)
			if testCase.expectError {
				if parseError == nil {
					testingHandle.Fatalf("expected error for %q", testCase.input)
				}
				return
			}
			if parseError != nil {
				testingHandle.Fatalf("unexpected error: %v", parseError)
			}
			if actual != testCase.expected {
				testingHandle.Fatalf("expected %v, got %v", testCase.expected, actual)
			}
		})
	}
}

func TestNewFormatterRejectsUnknownFormat(testingInstance *testing.T) {
	readCount := 0
	reader := func(string) ([]byte, error) {
		readCount++
		return nil, nil
	}
	_, constructionError := output.NewFormatter("xml", reader)
	if constructionError == nil {
		testingInstance.Fatal("expected unknown format error")
	}
	if constructionError.Error() != "unknown format: xml. Use 'full' or 'tree'" {
		testingInstance.Fatalf("unexpected message %q", constructionError.Error())
	}
	if readCount != 0 {
		testingInstance.Fatalf("expected no reads, got %d", readCount)
	}
}

func TestRenderTree(testingInstance *testing.T) {
	formatter, constructionError := output.NewFormatter("tree", nil)
	if constructionError != nil {
		testingInstance.Fatalf("unexpected error: %v", constructionError)
	}
	files := []string{"README.md", "src/lib.rs", "src/main.rs"}
	expected := "# File Tree\n\n" +
		"```\n" +
		".:\n" +
		"  README.md\n" +
		"\n" +
		"src:\n" +
		"  lib.rs\n" +
		"  main.rs\n" +
		"\n" +
		"```\n"
	if actual := formatter.Render(files); actual != expected {
		testingInstance.Fatalf("unexpected tree output:\n%s", actual)
	}
}

func TestRenderTreeSortsNamesWithinDirectory(testingInstance *testing.T) {
	formatter, _ := output.NewFormatter("tree", nil)
	actual := formatter.Render([]string{"pkg/zeta.go", "pkg/alpha.go", "cmd/main.go"})
	cmdIndex := strings.Index(actual, "cmd:\n")
	pkgIndex := strings.Index(actual, "pkg:\n")
	if cmdIndex < 0 || pkgIndex < 0 || cmdIndex > pkgIndex {
		testingInstance.Fatalf("expected directories in order, got:\n%s", actual)
	}
	if !strings.Contains(actual, "pkg:\n  alpha.go\n  zeta.go\n") {
		testingInstance.Fatalf("expected sorted names, got:\n%s", actual)
	}
}

func TestRenderFull(testingInstance *testing.T) {
	reader := fakeReader(map[string]string{
		"a.rs":     "fn main() {}\n",
		"b.txt":    "no trailing newline",
		"Makefile": "all:\n",
	})
	formatter, constructionError := output.NewFormatter("FULL", reader)
	if constructionError != nil {
		testingInstance.Fatalf("unexpected error: %v", constructionError)
	}
	expected := "# Flattened Codebase\n\n" +
		"Total files: 3\n\n" +
		"## Table of Contents\n\n" +
		"1. [Makefile](#file-1)\n" +
		"2. [a.rs](#file-2)\n" +
		"3. [b.txt](#file-3)\n" +
		"\n" +
		"## File 1: Makefile\n\n" +
		"```\nall:\n```\n\n" +
		"## File 2: a.rs\n\n" +
		"```rs\nfn main() {}\n```\n\n" +
		"## File 3: b.txt\n\n" +
		"```txt\nno trailing newline\n```\n\n"
	if actual := formatter.Render([]string{"Makefile", "a.rs", "b.txt"}); actual != expected {
		testingInstance.Fatalf("unexpected full output:\n%s", actual)
	}
}

func TestRenderFullSubstitutesReadErrors(testingInstance *testing.T) {
	reader := fakeReader(map[string]string{
		"good.go":   "package good\n",
		"binary.go": "package \xff\xfe",
	})
	formatter, _ := output.NewFormatter("full", reader)
	actual := formatter.Render([]string{"binary.go", "good.go", "missing.go"})

	if !strings.Contains(actual, "## File 1: binary.go\n\nError reading file: file content is not UTF-8 text\n\n") {
		testingInstance.Fatalf("expected binary substitution, got:\n%s", actual)
	}
	if !strings.Contains(actual, "## File 2: good.go\n\n```go\npackage good\n```\n\n") {
		testingInstance.Fatalf("expected readable file to render, got:\n%s", actual)
	}
	if !strings.Contains(actual, "## File 3: missing.go\n\nError reading file: no such file or directory\n\n") {
		testingInstance.Fatalf("expected read error substitution, got:\n%s", actual)
	}
}

func TestRenderFullEmptyFile(testingInstance *testing.T) {
	formatter, _ := output.NewFormatter("full", fakeReader(map[string]string{"empty.md": ""}))
	actual := formatter.Render([]string{"empty.md"})
	if !strings.HasSuffix(actual, "## File 1: empty.md\n\n```md\n\n```\n\n") {
		testingInstance.Fatalf("expected empty fenced block, got:\n%s", actual)
	}
}

func TestRenderFullReadsFromDisk(testingInstance *testing.T) {
	sourcePath := filepath.Join(testingInstance.TempDir(), "main.go")
	if writeError := os.WriteFile(sourcePath, []byte("package main\n"), 0o644); writeError != nil {
		testingInstance.Fatalf("write fixture: %v", writeError)
	}
	formatter, _ := output.NewFormatter("full", nil)
	actual := formatter.Render([]string{sourcePath})
	if !strings.Contains(actual, "```go\npackage main\n```\n\n") {
		testingInstance.Fatalf("expected disk content, got:\n%s", actual)
	}
}
