// Package calm provides domain types for CALM architecture and pattern documents.
package calm

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Document is a CALM architecture instantiation.
// Nodes and Relationships are nil only when the corresponding container was
// absent; a present but empty container decodes to an empty, non-nil slice.
type Document struct {
	Schema        string          `json:"$schema,omitempty"`
	Nodes         []Node          `json:"nodes"`
	Relationships []Relationship  `json:"relationships"`
	Flows         []Flow          `json:"flows,omitempty"`
	Controls      Controls        `json:"controls,omitempty"`
	Metadata      json.RawMessage `json:"metadata,omitempty"`
}

// Node is an architecture element: a service, database, actor, network, etc.
type Node struct {
	UniqueID    string      `json:"unique-id"`
	NodeType    string      `json:"node-type"`
	Name        string      `json:"name,omitempty"`
	Description string      `json:"description,omitempty"`
	Interfaces  []Interface `json:"interfaces,omitempty"` // owned exclusively by this node
	Controls    Controls    `json:"controls,omitempty"`
}

// Interface is a connection point declared under a node.
type Interface struct {
	UniqueID string `json:"unique-id"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	URL      string `json:"url,omitempty"`
}

// Relationship links nodes. Exactly one RelationshipType variant is expected.
type Relationship struct {
	UniqueID         string           `json:"unique-id"`
	Description      string           `json:"description,omitempty"`
	RelationshipType RelationshipType `json:"relationship-type"`
	Protocol         string           `json:"protocol,omitempty"`
	Controls         Controls         `json:"controls,omitempty"`
}

// RelationshipKind names a relationship-type variant.
type RelationshipKind string

const (
	KindConnects   RelationshipKind = "connects"
	KindInteracts  RelationshipKind = "interacts"
	KindComposedOf RelationshipKind = "composed-of"
	KindDeployedIn RelationshipKind = "deployed-in"
)

// RelationshipType is the tagged variant carried by a relationship.
type RelationshipType struct {
	Connects   *Connects    `json:"connects,omitempty"`
	Interacts  *Interacts   `json:"interacts,omitempty"`
	ComposedOf *Composition `json:"composed-of,omitempty"`
	DeployedIn *Composition `json:"deployed-in,omitempty"`
}

// Kind returns the populated variant, or "" when none is set.
func (t RelationshipType) Kind() RelationshipKind {
	switch {
	case t.Connects != nil:
		return KindConnects
	case t.Interacts != nil:
		return KindInteracts
	case t.ComposedOf != nil:
		return KindComposedOf
	case t.DeployedIn != nil:
		return KindDeployedIn
	}
	return ""
}

// Connects is a directed link between two node endpoints.
type Connects struct {
	Source      Endpoint `json:"source"`
	Destination Endpoint `json:"destination"`
}

// Interacts links an actor to the nodes it uses.
type Interacts struct {
	Actor string   `json:"actor"`
	Nodes []string `json:"nodes"`
}

// Composition is shared by composed-of and deployed-in.
type Composition struct {
	Container string   `json:"container"`
	Nodes     []string `json:"nodes"`
}

// Endpoint is one side of a connects relationship. It decodes from either a
// bare node reference ("n1") or an object {"node": "n1", "interfaces": [...]}.
type Endpoint struct {
	Node       string   `json:"node"`
	Interfaces []string `json:"interfaces,omitempty"`
	Bare       bool     `json:"-"` // decoded from a bare string
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Endpoint) UnmarshalJSON(b []byte) error {
	var ref string
	if err := json.Unmarshal(b, &ref); err == nil {
		*e = Endpoint{Node: ref, Bare: true}
		return nil
	}
	type plain Endpoint
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return fmt.Errorf("endpoint must be a node reference or {node, interfaces}: %w", err)
	}
	*e = Endpoint(p)
	return nil
}

// MarshalJSON implements json.Marshaler, preserving the bare form.
func (e Endpoint) MarshalJSON() ([]byte, error) {
	if e.Bare {
		return json.Marshal(e.Node)
	}
	type plain Endpoint
	return json.Marshal(plain(e))
}

// Flow is a business flow expressed as an ordered series of relationship transitions.
// A flow given as a bare string is an external reference and carries only Ref.
type Flow struct {
	UniqueID    string       `json:"unique-id,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Transitions []Transition `json:"transitions,omitempty"`
	Controls    Controls     `json:"controls,omitempty"`
	Ref         string       `json:"-"`
}

// Transition is one step of a flow.
type Transition struct {
	RelationshipUniqueID string `json:"relationship-unique-id"`
	SequenceNumber       int    `json:"sequence-number"`
	Description          string `json:"description,omitempty"`
	Direction            string `json:"direction,omitempty"` // "source-to-destination" | "destination-to-source"
}

// Controls maps a control id to its requirements.
type Controls map[string]Control

// Control is a set of requirements attached to a document, node, relationship, or flow.
type Control struct {
	Description  string               `json:"description"`
	Requirements []ControlRequirement `json:"requirements"`
}

// ControlRequirement points at a requirement definition and optionally its configuration.
type ControlRequirement struct {
	RequirementURL string `json:"requirement-url"`
	ConfigURL      string `json:"config-url,omitempty"`
}

// Severity classifies the impact of a diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ParseSeverity maps "error"/"warning" (and the short forms "err"/"warn") to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error", "err":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Code identifies the rule family that produced a diagnostic.
type Code string

const (
	CodeMalformedElement      Code = "CALM000"
	CodeUnknownNode           Code = "CALM001"
	CodeUnknownInterface      Code = "CALM002"
	CodeUnreferencedNode      Code = "CALM003"
	CodeDuplicateID           Code = "CALM004"
	CodeUnknownRelationship   Code = "CALM005"
	CodePatternOptionUnscoped Code = "CALM006"
)

// Diagnostic is a single finding. Path mirrors the document's own container
// structure so callers can map it back to source text.
type Diagnostic struct {
	Code     Code     `json:"code"`
	Rule     string   `json:"rule,omitempty"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Path     Path     `json:"path"`
}
