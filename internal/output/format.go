// Package output renders collected files as a Markdown document.
package output

import (
	"fmt"
	"strings"
)

// Format selects the document layout.
type Format int

const (
	// FormatFull renders a table of contents followed by every file's content.
	FormatFull Format = iota
	// FormatTree renders the file paths grouped by directory.
	FormatTree
)

const (
	formatNameFull = "full"
	formatNameTree = "tree"

	unknownFormatMessageFormat = "unknown format: %s. Use 'full' or 'tree'"
)

// ParseFormat resolves a format name case-insensitively.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case formatNameFull:
		return FormatFull, nil
	case formatNameTree:
		return FormatTree, nil
	default:
		return FormatFull, fmt.Errorf(unknownFormatMessageFormat, name)
	}
}

// String returns the canonical format name.
func (format Format) String() string {
	if format == FormatTree {
		return formatNameTree
	}
	return formatNameFull
}
