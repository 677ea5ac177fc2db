package calm

import (
	"fmt"

	"github.com/goccy/go-json"
)

// members holds the raw members of one JSON object.
type members map[string]json.RawMessage

func objectMembers(elem json.RawMessage) (members, error) {
	var m members
	if err := json.Unmarshal(elem, &m); err != nil {
		return nil, fmt.Errorf("must be an object: %w", err)
	}
	return m, nil
}

// strict decodes a member the validation pass depends on. An absent or null
// member leaves dst untouched.
func strict[T any](m members, key string, dst *T) error {
	raw, ok := m[key]
	if !ok || !isPresent(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = v
	return nil
}

// lenient decodes a descriptive member, ignoring values of the wrong type.
func lenient[T any](m members, key string, dst *T) {
	raw, ok := m[key]
	if !ok || !isPresent(raw) {
		return
	}
	var v T
	if json.Unmarshal(raw, &v) == nil {
		*dst = v
	}
}

// decodeNode decodes one node. Interfaces are decoded one by one, so a
// malformed interface does not hide the node or its siblings.
func decodeNode(elem json.RawMessage, path Path) (Node, []Diagnostic) {
	m, err := objectMembers(elem)
	if err != nil {
		return Node{}, []Diagnostic{malformed(path, "node", err)}
	}
	var n Node
	var diags []Diagnostic
	if err := strict(m, "unique-id", &n.UniqueID); err != nil {
		diags = append(diags, malformed(path, "node", err))
	}
	lenient(m, "node-type", &n.NodeType)
	lenient(m, "name", &n.Name)
	lenient(m, "description", &n.Description)
	lenient(m, "controls", &n.Controls)

	var ifaces []json.RawMessage
	if err := strict(m, "interfaces", &ifaces); err != nil {
		return n, append(diags, malformed(path, "node", err))
	}
	if ifaces != nil {
		n.Interfaces = make([]Interface, len(ifaces))
	}
	for j, raw := range ifaces {
		var err error
		if n.Interfaces[j], err = decodeInterface(raw); err != nil {
			diags = append(diags, malformed(path.Key("interfaces").Index(j), "interface", err))
		}
	}
	return n, diags
}

func decodeInterface(elem json.RawMessage) (Interface, error) {
	m, err := objectMembers(elem)
	if err != nil {
		return Interface{}, err
	}
	var itf Interface
	err = strict(m, "unique-id", &itf.UniqueID)
	lenient(m, "host", &itf.Host)
	lenient(m, "port", &itf.Port)
	lenient(m, "url", &itf.URL)
	return itf, err
}

// decodeRelationship keeps the unique-id even when the relationship-type
// cannot be read.
func decodeRelationship(elem json.RawMessage) (Relationship, error) {
	m, err := objectMembers(elem)
	if err != nil {
		return Relationship{}, err
	}
	var r Relationship
	idErr := strict(m, "unique-id", &r.UniqueID)
	typeErr := strict(m, "relationship-type", &r.RelationshipType)
	lenient(m, "description", &r.Description)
	lenient(m, "protocol", &r.Protocol)
	lenient(m, "controls", &r.Controls)
	if idErr != nil {
		return r, idErr
	}
	return r, typeErr
}

func decodeFlow(elem json.RawMessage) (Flow, error) {
	m, err := objectMembers(elem)
	if err != nil {
		return Flow{}, err
	}
	var f Flow
	idErr := strict(m, "unique-id", &f.UniqueID)
	lenient(m, "name", &f.Name)
	lenient(m, "description", &f.Description)
	lenient(m, "controls", &f.Controls)

	var transitions []json.RawMessage
	if err := strict(m, "transitions", &transitions); err != nil {
		return f, err
	}
	if transitions != nil {
		f.Transitions = make([]Transition, len(transitions))
	}
	for k, raw := range transitions {
		tm, err := objectMembers(raw)
		if err != nil {
			return f, fmt.Errorf("transitions[%d]: %w", k, err)
		}
		t := &f.Transitions[k]
		if err := strict(tm, "relationship-unique-id", &t.RelationshipUniqueID); err != nil {
			return f, fmt.Errorf("transitions[%d]: %w", k, err)
		}
		lenient(tm, "sequence-number", &t.SequenceNumber)
		lenient(tm, "description", &t.Description)
		lenient(tm, "direction", &t.Direction)
	}
	return f, idErr
}
