package cmd

import (
	"testing"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

func TestHasSeverityError(t *testing.T) {
	if !hasSeverityError(calm.SeverityError) {
		t.Error("hasSeverityError(error) = false")
	}
	if hasSeverityError(calm.SeverityWarning) {
		t.Error("hasSeverityError(warning) = true")
	}
}

func TestCountFailed(t *testing.T) {
	reports := []FileReport{
		{File: "a", Valid: true},
		{File: "b"},
		{File: "c", Error: "malformed"},
	}
	if got := countFailed(reports); got != 2 {
		t.Errorf("countFailed() = %d, want 2", got)
	}
	if got := countFailed(nil); got != 0 {
		t.Errorf("countFailed(nil) = %d, want 0", got)
	}
}
