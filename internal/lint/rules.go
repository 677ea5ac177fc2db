package lint

import (
	"fmt"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Rule names. They are stable and used by configuration.
const (
	RuleRelationshipNodesExist     = "relationship-references-existing-nodes"
	RuleInterfacesExist            = "referenced-interfaces-defined-in-architecture"
	RuleNodesReferenced            = "architecture-nodes-must-be-referenced"
	RuleUniqueIDs                  = "unique-ids-must-be-unique-in-architecture"
	RuleTransitionRelationsExist   = "flow-transitions-reference-existing-relationships"
	RulePatternOptionsInOneOfAnyOf = "pattern-options-defined-in-oneof-or-anyof"
)

// DefaultRules returns a fresh copy of the built-in rule set in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        RuleRelationshipNodesExist,
			Code:        calm.CodeUnknownNode,
			Severity:    calm.SeverityError,
			Description: "every node reference in a relationship names a declared node",
			Given:       refsOf((*calm.Document).NodeRefs),
			Then: func(t Target, rc *Context) []calm.Diagnostic {
				return NodeReferenceExists(t.Value, t.Path, rc.Index)
			},
		},
		{
			Name:        RuleInterfacesExist,
			Code:        calm.CodeUnknownInterface,
			Severity:    calm.SeverityError,
			Description: "every interface reference in a connects endpoint names a declared interface",
			Given:       refsOf((*calm.Document).InterfaceRefs),
			Then: func(t Target, rc *Context) []calm.Diagnostic {
				return InterfaceReferenceExists(t.Value, t.Path, rc.Index)
			},
		},
		{
			Name:        RuleNodesReferenced,
			Code:        calm.CodeUnreferencedNode,
			Severity:    calm.SeverityWarning,
			Description: "every node takes part in at least one relationship",
			Given: func(rc *Context) []Target {
				// Once per id: a repeated node id is CALM004's finding.
				var ts []Target
				seen := make(map[string]struct{})
				for _, o := range rc.Index.Nodes() {
					if _, dup := seen[o.ID]; dup {
						continue
					}
					seen[o.ID] = struct{}{}
					ts = append(ts, Target{Value: o.ID, Path: o.Path})
				}
				return ts
			},
			Then: func(t Target, rc *Context) []calm.Diagnostic {
				return NodeHasRelationship(t.Value, t.Path, rc.Index)
			},
		},
		{
			Name:        RuleUniqueIDs,
			Code:        calm.CodeDuplicateID,
			Severity:    calm.SeverityError,
			Description: "node, relationship and interface unique-ids share one namespace",
			Given:       wholeDocument,
			Then: func(_ Target, rc *Context) []calm.Diagnostic {
				return DuplicateIDs(rc.Index)
			},
		},
		{
			Name:        RuleTransitionRelationsExist,
			Code:        calm.CodeUnknownRelationship,
			Severity:    calm.SeverityError,
			Description: "every flow transition names a declared relationship",
			Given:       refsOf((*calm.Document).TransitionRefs),
			Then: func(t Target, rc *Context) []calm.Diagnostic {
				return RelationshipReferenceExists(t.Value, t.Path, rc.Index)
			},
		},
		{
			Name:        RulePatternOptionsInOneOfAnyOf,
			Code:        calm.CodePatternOptionUnscoped,
			Severity:    calm.SeverityError,
			Description: "names chosen by a pattern decision are declared inside oneOf or anyOf",
			Scope:       ScopePattern,
			Given: func(rc *Context) []Target {
				var ts []Target
				for _, o := range rc.Pattern.OptionRefs() {
					ts = append(ts, Target{Value: o.Name, Path: o.Path, CalmType: o.CalmType})
				}
				return ts
			},
			Then: func(t Target, rc *Context) []calm.Diagnostic {
				return PatternSlotConformance(rc.Pattern, t.CalmType, t.Value, t.Path)
			},
		},
	}
}

func refsOf(query func(*calm.Document) []calm.Ref) Selector {
	return func(rc *Context) []Target {
		refs := query(rc.Document)
		ts := make([]Target, 0, len(refs))
		for _, r := range refs {
			ts = append(ts, Target{Value: r.Value, Path: r.Path})
		}
		return ts
	}
}

// wholeDocument selects the document root once.
func wholeDocument(*Context) []Target {
	return []Target{{Path: calm.Path{}}}
}

// NodeReferenceExists reports value when it does not name a declared node.
// An empty value is not this rule's concern.
func NodeReferenceExists(value string, path calm.Path, idx *Index) []calm.Diagnostic {
	if value == "" || idx.HasNode(value) {
		return nil
	}
	return []calm.Diagnostic{{
		Message: fmt.Sprintf("'%s' does not refer to the unique-id of an existing node.", value),
		Path:    path,
	}}
}

// InterfaceReferenceExists reports value when no node declares it as an interface.
func InterfaceReferenceExists(value string, path calm.Path, idx *Index) []calm.Diagnostic {
	if value == "" || idx.HasInterface(value) {
		return nil
	}
	return []calm.Diagnostic{{
		Message: fmt.Sprintf("'%s' does not refer to the unique-id of an existing interface.", value),
		Path:    path,
	}}
}

// RelationshipReferenceExists reports value when it does not name a declared relationship.
func RelationshipReferenceExists(value string, path calm.Path, idx *Index) []calm.Diagnostic {
	if value == "" || idx.HasRelationship(value) {
		return nil
	}
	return []calm.Diagnostic{{
		Message: fmt.Sprintf("'%s' does not refer to the unique-id of an existing relationship.", value),
		Path:    path,
	}}
}

// NodeHasRelationship reports node id when no relationship slot names it.
// With zero relationships every node is reported.
func NodeHasRelationship(id string, path calm.Path, idx *Index) []calm.Diagnostic {
	if idx.IsReferenced(id) {
		return nil
	}
	return []calm.Diagnostic{{
		Message: fmt.Sprintf("Node with ID '%s' is not referenced by any relationships.", id),
		Path:    path,
	}}
}
