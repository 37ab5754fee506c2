// Package sink delivers a rendered document to a file, standard output, or the clipboard.
package sink

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/temirov/flatten/internal/services/clipboard"
)

const (
	outputFilePermissions os.FileMode = 0o644

	writtenMessageFormat        = "Output written to: %s\n"
	copiedMessage               = "Output copied to clipboard.\n"
	clipboardFailedFormat       = "Failed to copy to clipboard: %v"
	writeOutputFileErrorFormat  = "failed to write output file %s: %w"
	writeStandardOutErrorFormat = "failed to write output: %w"
)

// Destination selects where a document goes. A non-empty FilePath wins over Print;
// with neither set the document goes to the clipboard.
type Destination struct {
	FilePath string
	Print    bool
}

// FileWriter persists document bytes at a path.
type FileWriter func(path string, data []byte, permissions os.FileMode) error

// Sink writes documents to one destination per call.
type Sink struct {
	standardOutput io.Writer
	copier         clipboard.Copier
	logger         *zap.Logger
	writeFile      FileWriter
}

// New constructs a Sink. A nil logger discards warnings and a nil writer writes to disk.
func New(standardOutput io.Writer, copier clipboard.Copier, logger *zap.Logger, writer FileWriter) *Sink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if writer == nil {
		writer = os.WriteFile
	}
	return &Sink{standardOutput: standardOutput, copier: copier, logger: logger, writeFile: writer}
}

// Deliver sends document to destination. Only file and standard output write failures
// are returned; a clipboard failure falls back to printing the document.
func (sink *Sink) Deliver(document string, destination Destination) error {
	switch {
	case destination.FilePath != "":
		if writeError := sink.writeFile(destination.FilePath, []byte(document), outputFilePermissions); writeError != nil {
			return fmt.Errorf(writeOutputFileErrorFormat, destination.FilePath, writeError)
		}
		return sink.print(fmt.Sprintf(writtenMessageFormat, destination.FilePath))
	case destination.Print:
		return sink.print(document)
	}

	if sink.copier != nil {
		copyError := sink.copier.Copy(document)
		if copyError == nil {
			return sink.print(copiedMessage)
		}
		sink.logger.Warn(fmt.Sprintf(clipboardFailedFormat, copyError))
	} else {
		sink.logger.Warn(fmt.Sprintf(clipboardFailedFormat, clipboard.ErrUnsupported))
	}
	return sink.print(document)
}

func (sink *Sink) print(text string) error {
	if _, writeError := io.WriteString(sink.standardOutput, text); writeError != nil {
		return fmt.Errorf(writeStandardOutErrorFormat, writeError)
	}
	return nil
}
