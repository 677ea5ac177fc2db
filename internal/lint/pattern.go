package lint

import (
	"fmt"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// PatternSlotConformance reports name when the calmType slot list declares it
// as a bare unique-id const but no oneOf or anyOf branch of that list offers
// it. Names the list does not declare at all are not reported.
func PatternSlotConformance(p *calm.Pattern, calmType, name string, path calm.Path) []calm.Diagnostic {
	if p == nil || name == "" {
		return nil
	}
	names := p.SlotList(calmType).Names()
	if _, bare := names.Bare[name]; !bare {
		return nil
	}
	_, inOneOf := names.OneOf[name]
	_, inAnyOf := names.AnyOf[name]
	if inOneOf || inAnyOf {
		return nil
	}
	return []calm.Diagnostic{{
		Message: fmt.Sprintf("'%s' is part of a pattern option and must be defined in a oneOf or anyOf block.", name),
		Path:    path,
	}}
}
