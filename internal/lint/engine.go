package lint

import (
	"fmt"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Target is one candidate value selected for a rule.
type Target struct {
	Value    string
	Path     calm.Path
	CalmType string // set for pattern targets: calm.TypeNodes or calm.TypeRelationships
}

// Context is the read-only input shared by every rule of one pass.
// Document and Index are nil when only a pattern is being validated.
type Context struct {
	Document *calm.Document
	Index    *Index
	Pattern  *calm.Pattern
}

// Selector picks the candidates a rule is applied to.
type Selector func(rc *Context) []Target

// Func evaluates one candidate. It returns findings carrying only Message and
// Path; the engine stamps code, rule name and severity.
type Func func(t Target, rc *Context) []calm.Diagnostic

// Rule is a registered validation rule.
type Rule struct {
	Name        string
	Code        calm.Code
	Severity    calm.Severity
	Description string
	// Scope says which input the rule needs.
	Scope Scope
	Given Selector
	Then  Func
}

// Scope is the input a rule operates on.
type Scope int

const (
	ScopeDocument Scope = iota
	ScopePattern
)

// Engine is a flat, immutable rule registry.
type Engine struct {
	rules []Rule
}

// NewEngine returns an engine running rules in the given order.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

// DefaultEngine returns an engine with DefaultRules.
func DefaultEngine() *Engine {
	return NewEngine(DefaultRules()...)
}

// Rules returns a copy of the registered rules.
func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Configure returns a new engine without the disabled rules and with the
// given severity overrides. Unknown rule names are an error.
func (e *Engine) Configure(disabled []string, severity map[string]calm.Severity) (*Engine, error) {
	known := make(map[string]bool, len(e.rules))
	for _, r := range e.rules {
		known[r.Name] = true
	}
	off := make(map[string]bool, len(disabled))
	for _, name := range disabled {
		if !known[name] {
			return nil, fmt.Errorf("cannot disable unknown rule %q", name)
		}
		off[name] = true
	}
	for name := range severity {
		if !known[name] {
			return nil, fmt.Errorf("cannot set severity of unknown rule %q", name)
		}
	}

	var rules []Rule
	for _, r := range e.rules {
		if off[r.Name] {
			continue
		}
		if sev, ok := severity[r.Name]; ok {
			r.Severity = sev
		}
		rules = append(rules, r)
	}
	return &Engine{rules: rules}, nil
}

// Validate builds the index for doc and runs every document rule, plus the
// pattern rules when pattern is non-nil. A StructuralError is returned as the
// error and no diagnostics are produced.
func (e *Engine) Validate(doc *calm.Document, pattern *calm.Pattern) ([]calm.Diagnostic, error) {
	idx, err := BuildIndex(doc)
	if err != nil {
		return nil, err
	}
	return e.run(&Context{Document: doc, Index: idx, Pattern: pattern}), nil
}

// ValidatePattern runs only the pattern rules against pattern.
func (e *Engine) ValidatePattern(pattern *calm.Pattern) ([]calm.Diagnostic, error) {
	if pattern == nil {
		return nil, &calm.StructuralError{Reason: "pattern is nil"}
	}
	return e.run(&Context{Pattern: pattern}), nil
}

func (e *Engine) run(rc *Context) []calm.Diagnostic {
	agg := NewAggregator()
	for _, r := range e.rules {
		if !r.applies(rc) {
			continue
		}
		agg.Add(r.Run(rc)...)
	}
	return agg.Diagnostics()
}

func (r Rule) applies(rc *Context) bool {
	switch r.Scope {
	case ScopePattern:
		return rc.Pattern != nil
	default:
		return rc.Document != nil && rc.Index != nil
	}
}

// Run applies the rule to every selected target and stamps the findings.
func (r Rule) Run(rc *Context) []calm.Diagnostic {
	var out []calm.Diagnostic
	for _, t := range r.Given(rc) {
		for _, d := range r.Then(t, rc) {
			d.Code = r.Code
			d.Rule = r.Name
			d.Severity = r.Severity
			out = append(out, d)
		}
	}
	return out
}
