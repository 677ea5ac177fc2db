package calm_test

import (
	"testing"

	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

func mustDecode(t *testing.T, src string) *calm.Document {
	t.Helper()
	doc, diags, err := calm.Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(diags) != 0 {
		t.Fatalf("Decode() diags = %v", diags)
	}
	return doc
}

func refPointers(refs []calm.Ref) map[string]string {
	m := make(map[string]string, len(refs))
	for _, r := range refs {
		m[r.Path.Pointer()] = r.Value
	}
	return m
}

func TestDocument_NodeRefs(t *testing.T) {
	doc := mustDecode(t, `{
		"nodes": [],
		"relationships": [
			{"unique-id": "r0", "relationship-type": {"connects": {"source": "a", "destination": {"node": "b"}}}},
			{"unique-id": "r1", "relationship-type": {"interacts": {"actor": "u", "nodes": ["a"]}}},
			{"unique-id": "r2", "relationship-type": {"composed-of": {"container": "sys", "nodes": ["a", "b"]}}},
			{"unique-id": "r3", "relationship-type": {"deployed-in": {"container": "k8s", "nodes": ["b"]}}}
		]
	}`)

	want := map[string]string{
		"/relationships/0/relationship-type/connects/source":           "a",
		"/relationships/0/relationship-type/connects/destination/node": "b",
		"/relationships/1/relationship-type/interacts/actor":           "u",
		"/relationships/1/relationship-type/interacts/nodes/0":         "a",
		"/relationships/2/relationship-type/composed-of/container":     "sys",
		"/relationships/2/relationship-type/composed-of/nodes/0":       "a",
		"/relationships/2/relationship-type/composed-of/nodes/1":       "b",
		"/relationships/3/relationship-type/deployed-in/container":     "k8s",
		"/relationships/3/relationship-type/deployed-in/nodes/0":       "b",
	}
	refs := doc.NodeRefs()
	if len(refs) != len(want) {
		t.Fatalf("got %d refs, want %d: %v", len(refs), len(want), refs)
	}
	got := refPointers(refs)
	for ptr, v := range want {
		if got[ptr] != v {
			t.Errorf("ref at %s = %q, want %q", ptr, got[ptr], v)
		}
	}
	if refs[0].Value != "a" || refs[len(refs)-1].Value != "b" {
		t.Errorf("refs not in document order: %v", refs)
	}
}

func TestDocument_InterfaceAndTransitionRefs(t *testing.T) {
	doc := mustDecode(t, `{
		"nodes": [],
		"relationships": [
			{"unique-id": "r0", "relationship-type": {"connects": {
				"source": {"node": "a", "interfaces": ["a-1", "a-2"]},
				"destination": {"node": "b", "interfaces": ["b-1"]}}}}
		],
		"flows": [{"unique-id": "f", "transitions": [{"relationship-unique-id": "r0", "sequence-number": 1}]}]
	}`)

	itfs := refPointers(doc.InterfaceRefs())
	wantItfs := map[string]string{
		"/relationships/0/relationship-type/connects/source/interfaces/0":      "a-1",
		"/relationships/0/relationship-type/connects/source/interfaces/1":      "a-2",
		"/relationships/0/relationship-type/connects/destination/interfaces/0": "b-1",
	}
	if len(itfs) != len(wantItfs) {
		t.Fatalf("InterfaceRefs() = %v, want %v", itfs, wantItfs)
	}
	for ptr, v := range wantItfs {
		if itfs[ptr] != v {
			t.Errorf("interface ref at %s = %q, want %q", ptr, itfs[ptr], v)
		}
	}

	trs := doc.TransitionRefs()
	if len(trs) != 1 || trs[0].Value != "r0" || trs[0].Path.Pointer() != "/flows/0/transitions/0/relationship-unique-id" {
		t.Errorf("TransitionRefs() = %v", trs)
	}
}

const decisionPattern = `{
	"$id": "https://calm.finos.org/patterns/decision.json",
	"properties": {
		"nodes": {
			"prefixItems": [
				{"properties": {"unique-id": {"const": "node-1"}}},
				{"oneOf": [
					{"properties": {"unique-id": {"const": "node-1"}}},
					{"properties": {"unique-id": {"const": "node-2"}}}
				]},
				{"anyOf": [
					{"properties": {"unique-id": {"const": "node-3"}}},
					{"oneOf": [{"properties": {"unique-id": {"const": "node-4"}}}]}
				]}
			]
		},
		"relationships": {
			"prefixItems": [
				{"properties": {
					"unique-id": {"const": "decision"},
					"relationship-type": {"const": {"options": [
						{"description": "first", "nodes": ["node-1"], "relationships": ["rel-1"]},
						{"description": "second", "nodes": ["node-2", "node-3"]}
					]}}
				}},
				{"properties": {"unique-id": {"const": "rel-1"}, "relationship-type": {"const": {"connects": {}}}}},
				{"properties": {"unique-id": true}}
			]
		}
	}
}`

func TestSlotList_Names(t *testing.T) {
	p, err := calm.DecodePattern([]byte(decisionPattern))
	if err != nil {
		t.Fatalf("DecodePattern() error = %v", err)
	}
	names := p.SlotList(calm.TypeNodes).Names()

	check := func(set map[string]struct{}, label string, want ...string) {
		t.Helper()
		if len(set) != len(want) {
			t.Errorf("%s = %v, want %v", label, set, want)
		}
		for _, w := range want {
			if _, ok := set[w]; !ok {
				t.Errorf("%s missing %q", label, w)
			}
		}
	}
	check(names.Bare, "Bare", "node-1")
	check(names.OneOf, "OneOf", "node-1", "node-2", "node-4")
	check(names.AnyOf, "AnyOf", "node-3", "node-4")

	empty := (*calm.SlotList)(nil).Names()
	if len(empty.Bare)+len(empty.OneOf)+len(empty.AnyOf) != 0 {
		t.Errorf("nil list Names() = %+v, want empty", empty)
	}
}

func TestPattern_OptionRefs(t *testing.T) {
	p, err := calm.DecodePattern([]byte(decisionPattern))
	if err != nil {
		t.Fatalf("DecodePattern() error = %v", err)
	}
	refs := p.OptionRefs()
	want := []calm.OptionRef{
		{CalmType: calm.TypeNodes, Name: "node-1"},
		{CalmType: calm.TypeRelationships, Name: "rel-1"},
		{CalmType: calm.TypeNodes, Name: "node-2"},
		{CalmType: calm.TypeNodes, Name: "node-3"},
	}
	if len(refs) != len(want) {
		t.Fatalf("OptionRefs() = %v, want %d refs", refs, len(want))
	}
	for i, w := range want {
		if refs[i].CalmType != w.CalmType || refs[i].Name != w.Name {
			t.Errorf("refs[%d] = %+v, want %+v", i, refs[i], w)
		}
	}
	wantPtr := "/properties/relationships/prefixItems/0/properties/relationship-type/const/options/1/nodes/1"
	if got := refs[3].Path.Pointer(); got != wantPtr {
		t.Errorf("refs[3].Path = %q, want %q", got, wantPtr)
	}
}

func TestDecodePattern_StructuralErrors(t *testing.T) {
	for _, src := range []string{`[]`, `{}`, `{"properties": null}`} {
		if _, err := calm.DecodePattern([]byte(src)); err == nil {
			t.Errorf("DecodePattern(%s) error = nil, want structural error", src)
		}
	}
}
