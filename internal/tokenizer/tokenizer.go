// Package tokenizer estimates token counts for packed file content.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"
)

// NewCounter returns a Counter for the requested model name. Unknown models fall back
// to the cl100k_base encoding so counting always succeeds once a counter exists. The
// second return value is the resolved encoder name reported in summaries.
func NewCounter(model string) (Counter, string, error) {
	resolvedModel := strings.ToLower(strings.TrimSpace(model))
	if resolvedModel == "" {
		resolvedModel = defaultModel
	}

	encoding, encodingError := tiktoken.EncodingForModel(resolvedModel)
	if encodingError == nil && encoding != nil {
		return openAICounter{encoding: encoding, name: resolvedModel}, resolvedModel, nil
	}

	fallback, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf("initialize fallback tokenizer: %w", fallbackError)
	}
	return openAICounter{encoding: fallback, name: defaultEncodingName}, defaultEncodingName, nil
}

type openAICounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

func (counter openAICounter) Name() string {
	return counter.name
}

func (counter openAICounter) CountString(input string) (int, error) {
	tokenIdentifiers := counter.encoding.Encode(input, nil, nil)
	return len(tokenIdentifiers), nil
}
