// Package output renders translation reports and execution outcomes for the
// CLI. It is extendable and for now provides two formats: human and JSON.
package output

import (
	"fmt"
	"strings"

	"sqlshift/internal/exec"
	"sqlshift/internal/translate"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
)

// Formatter is an interface for rendering translation reports and batch
// execution outcomes.
type Formatter interface {
	FormatReport(*translate.Report) (string, error)
	FormatOutcomes([]exec.Outcome) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to human-readable output.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'human' or 'json'", name)
	}
}
