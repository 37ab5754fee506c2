// Package collector resolves command line inputs into the sorted list of files to render.
package collector

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"

	"github.com/temirov/flatten/internal/filter"
	"github.com/temirov/flatten/internal/walker"
)

const (
	defaultInput = "."

	warningInvalidInputFormat = "Warning: '%s' is not a valid file or directory"
	warningSkipInputFormat    = "Warning: skipping %s: %v"
	debugCollectedFormat      = "collected %d files from %s"
)

// Collector applies the path filter to explicit file inputs and to the output of a
// directory walker.
type Collector struct {
	pathFilter *filter.Filter
	fileWalker walker.Walker
	logger     *zap.Logger
}

// New constructs a Collector. A nil logger discards warnings.
func New(pathFilter *filter.Filter, fileWalker walker.Walker, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{pathFilter: pathFilter, fileWalker: fileWalker, logger: logger}
}

// Collect resolves inputs, defaulting to the current directory, into included text files
// sorted by path. Explicit file inputs bypass ignore files but not the path filter.
// Inputs that are neither files nor directories are reported and skipped.
func (collector *Collector) Collect(inputs []string) []string {
	if len(inputs) == 0 {
		inputs = []string{defaultInput}
	}

	var collectedFiles []string
	for _, input := range inputs {
		inputInfo, statError := os.Stat(input)
		switch {
		case statError == nil && inputInfo.Mode().IsRegular():
			if collector.accepts(input) {
				collectedFiles = append(collectedFiles, input)
			}
		case statError == nil && inputInfo.IsDir():
			walkedFiles, walkError := collector.fileWalker.Walk(input)
			if walkError != nil {
				collector.logger.Warn(fmt.Sprintf(warningSkipInputFormat, input, walkError))
				continue
			}
			acceptedCount := 0
			for _, walkedFile := range walkedFiles {
				if collector.accepts(walkedFile) {
					collectedFiles = append(collectedFiles, walkedFile)
					acceptedCount++
				}
			}
			collector.logger.Debug(fmt.Sprintf(debugCollectedFormat, acceptedCount, input))
		default:
			collector.logger.Warn(fmt.Sprintf(warningInvalidInputFormat, input))
		}
	}

	sort.Strings(collectedFiles)
	return collectedFiles
}

func (collector *Collector) accepts(path string) bool {
	return collector.pathFilter.ShouldInclude(path) && filter.IsText(path)
}
