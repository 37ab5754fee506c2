package cli

import (
	"strings"

	"github.com/temirov/flatten/internal/utils"
)

const (
	fileFlagName             = "file"
	fileFlagShorthand        = "f"
	flagPrefix               = "-"
	endOfFlagsMarker         = "--"
	verboseFlagArgument      = "--" + verboseFlagName
	fileFlagAssignmentPrefix = "--" + fileFlagName + "="
	longFileFlagArgument     = "--" + fileFlagName
	shortFileFlagArgument    = "-" + fileFlagShorthand
)

// normalizeFileFlagArguments rewrites a bare -f/--file into an explicit assignment so the
// optional value is resolved before cobra parses the arguments. A following argument that
// is not a flag is taken as the file name; otherwise the default output file is used.
// Arguments after "--" are left untouched. The result is never nil, so cobra does not fall
// back to the process arguments.
func normalizeFileFlagArguments(arguments []string) []string {
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == endOfFlagsMarker {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if current != shortFileFlagArgument && current != longFileFlagArgument {
			normalized = append(normalized, current)
			continue
		}
		nextIndex := index + 1
		if nextIndex < len(arguments) && !strings.HasPrefix(arguments[nextIndex], flagPrefix) {
			normalized = append(normalized, fileFlagAssignmentPrefix+arguments[nextIndex])
			index = nextIndex
			continue
		}
		normalized = append(normalized, fileFlagAssignmentPrefix+utils.DefaultOutputFileName)
	}
	return normalized
}

// RequestsVerboseLogging reports whether arguments enable debug logging. It runs before
// the command line is parsed so the logger can be built first.
func RequestsVerboseLogging(arguments []string) bool {
	for _, argument := range arguments {
		if argument == endOfFlagsMarker {
			return false
		}
		if argument == verboseFlagArgument || argument == verboseFlagArgument+"=true" {
			return true
		}
	}
	return false
}
