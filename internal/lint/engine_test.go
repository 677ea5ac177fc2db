package lint_test

import (
	"testing"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
	"github.com/finos/architecture-as-code-sub007/internal/lint"
)

func TestDefaultRules_NamesAndCodesUnique(t *testing.T) {
	names := map[string]bool{}
	codes := map[calm.Code]bool{}
	for _, r := range lint.DefaultRules() {
		if names[r.Name] || codes[r.Code] {
			t.Errorf("rule %s/%s registered twice", r.Name, r.Code)
		}
		names[r.Name] = true
		codes[r.Code] = true
		if r.Given == nil || r.Then == nil {
			t.Errorf("rule %s has no selector or function", r.Name)
		}
	}
}

func TestEngine_Configure(t *testing.T) {
	doc := decodeDoc(t, `{"nodes": [{"unique-id": "a"}, {"unique-id": "a"}], "relationships": []}`)

	tests := []struct {
		name      string
		disabled  []string
		severity  map[string]calm.Severity
		wantErr   bool
		wantCodes map[calm.Code]calm.Severity
	}{
		{
			name: "defaults",
			wantCodes: map[calm.Code]calm.Severity{
				calm.CodeDuplicateID:      calm.SeverityError,
				calm.CodeUnreferencedNode: calm.SeverityWarning,
			},
		},
		{
			name:      "disable unreferenced-node rule",
			disabled:  []string{lint.RuleNodesReferenced},
			wantCodes: map[calm.Code]calm.Severity{calm.CodeDuplicateID: calm.SeverityError},
		},
		{
			name:     "escalate unreferenced nodes",
			severity: map[string]calm.Severity{lint.RuleNodesReferenced: calm.SeverityError},
			wantCodes: map[calm.Code]calm.Severity{
				calm.CodeDuplicateID:      calm.SeverityError,
				calm.CodeUnreferencedNode: calm.SeverityError,
			},
		},
		{name: "unknown disabled rule", disabled: []string{"no-such-rule"}, wantErr: true},
		{name: "unknown severity rule", severity: map[string]calm.Severity{"no-such-rule": calm.SeverityError}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := lint.DefaultEngine().Configure(tt.disabled, tt.severity)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Configure() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			diags, err := e.Validate(doc, nil)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			got := map[calm.Code]calm.Severity{}
			for _, d := range diags {
				got[d.Code] = d.Severity
			}
			if len(got) != len(tt.wantCodes) {
				t.Errorf("codes = %v, want %v", got, tt.wantCodes)
			}
			for code, sev := range tt.wantCodes {
				if got[code] != sev {
					t.Errorf("code %s severity = %q, want %q", code, got[code], sev)
				}
			}
		})
	}
}

func TestEngine_ConfigureLeavesReceiverUntouched(t *testing.T) {
	base := lint.DefaultEngine()
	n := len(base.Rules())
	if _, err := base.Configure([]string{lint.RuleUniqueIDs}, nil); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
	if len(base.Rules()) != n {
		t.Errorf("Configure() mutated the receiver")
	}
}

func TestEngine_CustomRule(t *testing.T) {
	rule := lint.Rule{
		Name:     "nodes-have-type",
		Code:     "X001",
		Severity: calm.SeverityWarning,
		Given: func(rc *lint.Context) []lint.Target {
			var ts []lint.Target
			for i, n := range rc.Document.Nodes {
				ts = append(ts, lint.Target{Value: n.NodeType, Path: calm.NewPath("nodes", i, "node-type")})
			}
			return ts
		},
		Then: func(t lint.Target, _ *lint.Context) []calm.Diagnostic {
			if t.Value != "" {
				return nil
			}
			return []calm.Diagnostic{{Message: "node-type is empty", Path: t.Path}}
		},
	}
	doc := decodeDoc(t, `{"nodes": [{"unique-id": "a", "node-type": "service"}, {"unique-id": "b"}], "relationships": []}`)
	diags, err := lint.NewEngine(rule).Validate(doc, nil)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(diags) != 1 {
		t.Fatalf("diags = %v, want one", diags)
	}
	d := diags[0]
	if d.Rule != "nodes-have-type" || d.Code != "X001" || d.Severity != calm.SeverityWarning || d.Path.Pointer() != "/nodes/1/node-type" {
		t.Errorf("diag = %+v", d)
	}
}

func TestAggregator(t *testing.T) {
	warn := calm.Diagnostic{Rule: "w", Severity: calm.SeverityWarning, Message: "w1", Path: calm.NewPath("a")}
	err1 := calm.Diagnostic{Rule: "e", Severity: calm.SeverityError, Message: "e1", Path: calm.NewPath("b")}
	err2 := calm.Diagnostic{Rule: "e", Severity: calm.SeverityError, Message: "e2", Path: calm.NewPath("c")}

	agg := lint.NewAggregator()
	if got := agg.Diagnostics(); got == nil || len(got) != 0 {
		t.Errorf("empty Diagnostics() = %v, want empty non-nil", got)
	}
	agg.Add(warn, err1)
	agg.Add(err1, err2)

	got := agg.Diagnostics()
	want := []string{"e1", "e2", "w1"}
	if len(got) != len(want) {
		t.Fatalf("Diagnostics() = %v, want messages %v", got, want)
	}
	for i, m := range want {
		if got[i].Message != m {
			t.Errorf("Diagnostics()[%d].Message = %q, want %q", i, got[i].Message, m)
		}
	}
	if !lint.HasErrors(got) || lint.HasErrors([]calm.Diagnostic{warn}) || lint.HasErrors(nil) {
		t.Error("HasErrors() misclassified a report")
	}
}
