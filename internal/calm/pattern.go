package calm

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Calm types addressable in a pattern's properties.
const (
	TypeNodes         = "nodes"
	TypeRelationships = "relationships"
)

// Pattern is a JSON-Schema-shaped template constraining CALM documents.
// Only the parts needed for slot conformance are modeled.
type Pattern struct {
	ID         string            `json:"$id,omitempty"`
	Schema     string            `json:"$schema,omitempty"`
	Title      string            `json:"title,omitempty"`
	Properties PatternProperties `json:"properties"`
}

// PatternProperties holds the node and relationship slot lists.
type PatternProperties struct {
	Nodes         *SlotList `json:"nodes,omitempty"`
	Relationships *SlotList `json:"relationships,omitempty"`
}

// SlotList is an array schema whose prefixItems are positional slots.
type SlotList struct {
	MinItems    *int   `json:"minItems,omitempty"`
	MaxItems    *int   `json:"maxItems,omitempty"`
	PrefixItems []Slot `json:"prefixItems,omitempty"`
}

// Slot is one prefixItems entry. It either fixes its element through
// Properties or offers alternatives through OneOf/AnyOf branches.
type Slot struct {
	Ref        string                    `json:"$ref,omitempty"`
	Properties map[string]SchemaProperty `json:"properties,omitempty"`
	OneOf      []Slot                    `json:"oneOf,omitempty"`
	AnyOf      []Slot                    `json:"anyOf,omitempty"`
}

// SchemaProperty is a property schema. Only const is interpreted.
type SchemaProperty struct {
	Const json.RawMessage `json:"const,omitempty"`
}

// UnmarshalJSON tolerates boolean schemas and other non-object forms, which
// carry no const.
func (p *SchemaProperty) UnmarshalJSON(b []byte) error {
	if !bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
		*p = SchemaProperty{}
		return nil
	}
	type plain SchemaProperty
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = SchemaProperty(v)
	return nil
}

// Decision is the const value of a relationship-type that offers options.
type Decision struct {
	Options []Option `json:"options"`
}

// Option is one choice of a decision: the node and relationship slots it selects.
type Option struct {
	Description   string   `json:"description,omitempty"`
	Nodes         []string `json:"nodes,omitempty"`
	Relationships []string `json:"relationships,omitempty"`
}

// UniqueID returns the slot's fixed unique-id, if it declares one as a string const.
func (s Slot) UniqueID() (string, bool) {
	prop, ok := s.Properties["unique-id"]
	if !ok || len(prop.Const) == 0 {
		return "", false
	}
	var id string
	if err := json.Unmarshal(prop.Const, &id); err != nil {
		return "", false
	}
	return id, true
}

// Decision returns the slot's relationship-type decision, if its const has options.
func (s Slot) Decision() (Decision, bool) {
	prop, ok := s.Properties["relationship-type"]
	if !ok || len(prop.Const) == 0 {
		return Decision{}, false
	}
	var d Decision
	if err := json.Unmarshal(prop.Const, &d); err != nil || d.Options == nil {
		return Decision{}, false
	}
	return d, true
}

// SlotList returns the slot list for calmType, or nil when the pattern does not constrain it.
func (p *Pattern) SlotList(calmType string) *SlotList {
	switch calmType {
	case TypeNodes:
		return p.Properties.Nodes
	case TypeRelationships:
		return p.Properties.Relationships
	}
	return nil
}

// DecodePattern decodes a pattern document. The root must be an object with
// a properties member; node and relationship lists are optional.
func DecodePattern(src []byte) (*Pattern, error) {
	var head struct {
		Properties json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(src, &head); err != nil {
		return nil, &StructuralError{Reason: "pattern root must be a JSON object: " + err.Error()}
	}
	if !isPresent(head.Properties) {
		return nil, &StructuralError{Container: "properties", Reason: "is missing"}
	}
	var p Pattern
	if err := json.Unmarshal(src, &p); err != nil {
		return nil, &StructuralError{Container: "properties", Reason: "has the wrong shape: " + err.Error()}
	}
	return &p, nil
}
