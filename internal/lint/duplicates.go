package lint

import (
	"fmt"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// DuplicateIDs walks every declaration in index order (nodes, relationships,
// interfaces) and reports each repeat of an id already seen in any category.
// The first occurrence is never reported.
func DuplicateIDs(idx *Index) []calm.Diagnostic {
	var diags []calm.Diagnostic
	seen := make(map[string]struct{})
	for _, o := range idx.Occurrences() {
		if _, dup := seen[o.ID]; dup {
			diags = append(diags, calm.Diagnostic{
				Message: fmt.Sprintf("Duplicate unique-id detected. ID: %s, path: %s", o.ID, o.Path.Pointer()),
				Path:    o.Path,
			})
			continue
		}
		seen[o.ID] = struct{}{}
	}
	return diags
}
