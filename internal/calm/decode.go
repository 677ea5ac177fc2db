package calm

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrMalformedDocument is matched (via errors.Is) by every StructuralError.
var ErrMalformedDocument = errors.New("malformed document")

// StructuralError reports that a top-level container is missing or has the
// wrong shape. It is fatal to a validation pass and is never reported as a
// Diagnostic.
type StructuralError struct {
	Container string // "nodes", "relationships", "properties", or "" for the root
	Reason    string
}

func (e *StructuralError) Error() string {
	if e.Container == "" {
		return fmt.Sprintf("malformed document: %s", e.Reason)
	}
	return fmt.Sprintf("malformed document: %q %s", e.Container, e.Reason)
}

// Is makes errors.Is(err, ErrMalformedDocument) true for any StructuralError.
func (e *StructuralError) Is(target error) bool {
	return target == ErrMalformedDocument
}

// rawDocument holds the top-level containers before element decoding.
type rawDocument struct {
	Schema        string          `json:"$schema"`
	Nodes         json.RawMessage `json:"nodes"`
	Relationships json.RawMessage `json:"relationships"`
	Flows         json.RawMessage `json:"flows"`
	Controls      json.RawMessage `json:"controls"`
	Metadata      json.RawMessage `json:"metadata"`
}

// Decode decodes a CALM architecture document from JSON.
//
// A missing or non-array nodes/relationships container is a StructuralError.
// Within an element only the members that carry identity or references are
// decoded strictly. When one of those is malformed the element yields a
// CALM000 diagnostic at its path and keeps whatever identity could still be
// read, so later elements keep their document indexes and declared ids stay
// declared. Descriptive members of the wrong type are left at their zero value.
func Decode(src []byte) (*Document, []Diagnostic, error) {
	var raw rawDocument
	if err := json.Unmarshal(src, &raw); err != nil {
		return nil, nil, &StructuralError{Reason: "root must be a JSON object: " + err.Error()}
	}

	nodeElems, err := splitArray("nodes", raw.Nodes)
	if err != nil {
		return nil, nil, err
	}
	relElems, err := splitArray("relationships", raw.Relationships)
	if err != nil {
		return nil, nil, err
	}

	var diags []Diagnostic
	doc := &Document{
		Schema:        raw.Schema,
		Nodes:         make([]Node, len(nodeElems)),
		Relationships: make([]Relationship, len(relElems)),
		Metadata:      raw.Metadata,
	}

	for i, elem := range nodeElems {
		var nd []Diagnostic
		doc.Nodes[i], nd = decodeNode(elem, NewPath("nodes", i))
		diags = append(diags, nd...)
	}
	for i, elem := range relElems {
		var err error
		if doc.Relationships[i], err = decodeRelationship(elem); err != nil {
			diags = append(diags, malformed(NewPath("relationships", i), "relationship", err))
		}
	}

	if isPresent(raw.Flows) {
		flows, flowDiags := decodeFlows(raw.Flows)
		doc.Flows = flows
		diags = append(diags, flowDiags...)
	}

	if isPresent(raw.Controls) {
		if err := json.Unmarshal(raw.Controls, &doc.Controls); err != nil {
			doc.Controls = nil
			diags = append(diags, malformed(NewPath("controls"), "controls", err))
		}
	}

	return doc, diags, nil
}

// decodeFlows decodes flows element by element. String elements are external
// flow references.
func decodeFlows(raw json.RawMessage) ([]Flow, []Diagnostic) {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, []Diagnostic{malformed(NewPath("flows"), "flows", err)}
	}
	var diags []Diagnostic
	flows := make([]Flow, len(elems))
	for i, elem := range elems {
		var ref string
		if err := json.Unmarshal(elem, &ref); err == nil {
			flows[i] = Flow{Ref: ref}
			continue
		}
		var err error
		if flows[i], err = decodeFlow(elem); err != nil {
			diags = append(diags, malformed(NewPath("flows", i), "flow", err))
		}
	}
	return flows, diags
}

// splitArray splits a required top-level container into its raw elements.
func splitArray(container string, raw json.RawMessage) ([]json.RawMessage, error) {
	if !isPresent(raw) {
		return nil, &StructuralError{Container: container, Reason: "is missing"}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, &StructuralError{Container: container, Reason: "must be an array"}
	}
	if elems == nil {
		elems = []json.RawMessage{}
	}
	return elems, nil
}

// isPresent reports whether a raw member was present and not JSON null.
func isPresent(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func malformed(path Path, what string, err error) Diagnostic {
	return Diagnostic{
		Code:     CodeMalformedElement,
		Rule:     "document-elements-well-formed",
		Severity: SeverityError,
		Message:  fmt.Sprintf("malformed %s: %v", what, err),
		Path:     path,
	}
}
