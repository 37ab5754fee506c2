// Package tokenizer estimates how many model tokens a rendered document occupies.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content. Name reports the encoding in use.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

// Config captures tokenizer selection parameters provided by the CLI.
type Config struct {
	Model string
}

const (
	// DefaultModel is the model whose encoding is used when none is configured.
	DefaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	encodingErrorFormat = "initialize %s tokenizer: %w"
)

// NewCounter returns a tiktoken Counter for the encoding of the requested model. Models
// without a known encoding use cl100k_base.
func NewCounter(cfg Config) (Counter, error) {
	encodingName := EncodingNameForModel(cfg.Model)
	encoding, encodingError := tiktoken.GetEncoding(encodingName)
	if encodingError != nil {
		return nil, fmt.Errorf(encodingErrorFormat, encodingName, encodingError)
	}
	return openAICounter{encoding: encoding, name: encodingName}, nil
}

// EncodingNameForModel resolves the tiktoken encoding of model by exact name, then by the
// longest known prefix, falling back to cl100k_base.
func EncodingNameForModel(model string) string {
	normalizedModel := normalizeModel(model)
	if encodingName, known := tiktoken.MODEL_TO_ENCODING[normalizedModel]; known {
		return encodingName
	}
	matchedPrefix := ""
	encodingName := defaultEncodingName
	for prefix, prefixEncoding := range tiktoken.MODEL_PREFIX_TO_ENCODING {
		if strings.HasPrefix(normalizedModel, prefix) && len(prefix) > len(matchedPrefix) {
			matchedPrefix = prefix
			encodingName = prefixEncoding
		}
	}
	return encodingName
}

func normalizeModel(model string) string {
	trimmedModel := strings.ToLower(strings.TrimSpace(model))
	if trimmedModel == "" {
		return DefaultModel
	}
	return trimmedModel
}
