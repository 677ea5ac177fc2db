package cmd

import "github.com/finos/architecture-as-code-sub007/internal/calm"

// hasSeverityError is the canonical check: true when sev matches the error severity constant.
func hasSeverityError(sev calm.Severity) bool {
	return sev == calm.SeverityError
}

// countFailed returns how many reports are not valid.
func countFailed(reports []FileReport) int {
	n := 0
	for _, r := range reports {
		if !r.Valid {
			n++
		}
	}
	return n
}
