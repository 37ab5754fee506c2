package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/temirov/flatten/internal/filter"
	"github.com/temirov/flatten/internal/utils"
)

const (
	codeFence = "```"

	fullHeading          = "# Flattened Codebase\n\n"
	totalFilesPrefix     = "Total files: "
	tableOfContentsTitle = "## Table of Contents\n\n"
	fileHeadingPrefix    = "## File "
	fileAnchorPrefix     = "(#file-"
	readErrorPrefix      = "Error reading file: "

	treeHeading    = "# File Tree\n\n"
	treeFileIndent = "  "
)

var errNotText = errors.New("file content is not UTF-8 text")

// FileReader loads the content of a file for the full format.
type FileReader func(path string) ([]byte, error)

// Formatter renders a sorted file list in one format.
type Formatter struct {
	format   Format
	readFile FileReader
}

// NewFormatter constructs a Formatter for the named format. A nil reader reads from disk.
func NewFormatter(formatName string, reader FileReader) (*Formatter, error) {
	format, parseError := ParseFormat(formatName)
	if parseError != nil {
		return nil, parseError
	}
	if reader == nil {
		reader = os.ReadFile
	}
	return &Formatter{format: format, readFile: reader}, nil
}

// Format reports the layout this formatter renders.
func (formatter *Formatter) Format() Format {
	return formatter.format
}

// Render produces the document for files. Files are rendered in the order given.
func (formatter *Formatter) Render(files []string) string {
	if formatter.format == FormatTree {
		return renderTree(files)
	}
	return formatter.renderFull(files)
}

func (formatter *Formatter) renderFull(files []string) string {
	var buffer bytes.Buffer

	buffer.WriteString(fullHeading)
	buffer.WriteString(totalFilesPrefix + strconv.Itoa(len(files)) + "\n\n")
	buffer.WriteString(tableOfContentsTitle)
	for index, path := range files {
		number := strconv.Itoa(index + 1)
		buffer.WriteString(number + ". [" + path + "]" + fileAnchorPrefix + number + ")\n")
	}
	buffer.WriteString("\n")

	for index, path := range files {
		buffer.WriteString(fileHeadingPrefix + strconv.Itoa(index+1) + ": " + path + "\n\n")
		content, readError := formatter.readText(path)
		if readError != nil {
			buffer.WriteString(readErrorPrefix + readError.Error() + "\n\n")
			continue
		}
		buffer.WriteString(codeFence + filter.FileExtension(path) + "\n")
		buffer.Write(content)
		if len(content) == 0 || content[len(content)-1] != '\n' {
			buffer.WriteString("\n")
		}
		buffer.WriteString(codeFence + "\n\n")
	}

	return buffer.String()
}

func (formatter *Formatter) readText(path string) ([]byte, error) {
	content, readError := formatter.readFile(path)
	if readError != nil {
		return nil, readError
	}
	if utils.IsBinary(content) {
		return nil, errNotText
	}
	return content, nil
}

func renderTree(files []string) string {
	filesByDirectory := make(map[string][]string)
	for _, path := range files {
		directory := filepath.Dir(path)
		filesByDirectory[directory] = append(filesByDirectory[directory], filepath.Base(path))
	}
	directories := make([]string, 0, len(filesByDirectory))
	for directory := range filesByDirectory {
		directories = append(directories, directory)
	}
	sort.Strings(directories)

	var buffer bytes.Buffer
	buffer.WriteString(treeHeading)
	buffer.WriteString(codeFence + "\n")
	for _, directory := range directories {
		fileNames := filesByDirectory[directory]
		sort.Strings(fileNames)
		buffer.WriteString(directory + ":\n")
		for _, fileName := range fileNames {
			buffer.WriteString(treeFileIndent + fileName + "\n")
		}
		buffer.WriteString("\n")
	}
	buffer.WriteString(codeFence + "\n")
	return buffer.String()
}
