package lint

import (
	"sort"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Aggregator merges the findings of one validation pass into a single report.
// It is not safe for concurrent use; use one per pass.
type Aggregator struct {
	seen  map[string]struct{}
	diags []calm.Diagnostic
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{seen: make(map[string]struct{})}
}

// Add appends diags in order, dropping exact repeats of an earlier finding
// (same rule, message and path).
func (a *Aggregator) Add(diags ...calm.Diagnostic) {
	for _, d := range diags {
		key := d.Rule + "\x00" + d.Message + "\x00" + d.Path.Pointer()
		if _, dup := a.seen[key]; dup {
			continue
		}
		a.seen[key] = struct{}{}
		a.diags = append(a.diags, d)
	}
}

// Diagnostics returns the merged report: errors before warnings, insertion
// order preserved within each tier. The result is never nil.
func (a *Aggregator) Diagnostics() []calm.Diagnostic {
	out := make([]calm.Diagnostic, len(a.diags))
	copy(out, a.diags)
	sort.SliceStable(out, func(i, j int) bool {
		return severityRank(out[i].Severity) < severityRank(out[j].Severity)
	})
	return out
}

// severityRank returns a numeric rank for sorting: errors (0) sort before warnings (1).
func severityRank(s calm.Severity) int {
	if s == calm.SeverityError {
		return 0
	}
	return 1
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []calm.Diagnostic) bool {
	for _, d := range diags {
		if d.Severity == calm.SeverityError {
			return true
		}
	}
	return false
}
