package lint

import (
	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Validate runs the default rule set over doc and, when pattern is non-nil,
// the pattern rules over pattern. An empty result means the document is
// valid. Only a StructuralError is returned as an error.
//
// Validate holds no state between calls and may be invoked concurrently on
// different documents.
func Validate(doc *calm.Document, pattern *calm.Pattern) ([]calm.Diagnostic, error) {
	return DefaultEngine().Validate(doc, pattern)
}

// ValidatePattern runs the default pattern rules over pattern alone.
func ValidatePattern(pattern *calm.Pattern) ([]calm.Diagnostic, error) {
	return DefaultEngine().ValidatePattern(pattern)
}
