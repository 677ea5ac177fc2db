// Package lint resolves references inside CALM documents and runs the
// semantic validation rules over them. It performs no I/O.
package lint

import (
	"github.com/finos/architecture-as-code-sub007/internal/calm"
)

// Kind is the category of an identifier declaration.
type Kind string

const (
	KindNode         Kind = "node"
	KindRelationship Kind = "relationship"
	KindInterface    Kind = "interface"
)

// Occurrence is one declaration of a unique-id.
type Occurrence struct {
	ID   string
	Kind Kind
	Path calm.Path // path of the unique-id member itself
}

// Index is the symbol table of one document snapshot. It is read-only after
// BuildIndex returns and must be rebuilt when the document changes.
type Index struct {
	nodes         map[string]struct{}
	relationships map[string]struct{}
	interfaces    map[string]struct{}
	referenced    map[string]struct{} // node ids used by any relationship slot

	// positions holds the first occurrence per id; occurrences keeps all of
	// them in traversal order: nodes, relationships, then interfaces.
	positions   map[string]Occurrence
	occurrences []Occurrence
	nodeOrder   []Occurrence
}

// BuildIndex scans doc once and records every declared unique-id.
// Empty unique-ids are not declarations and are skipped.
func BuildIndex(doc *calm.Document) (*Index, error) {
	if doc == nil {
		return nil, &calm.StructuralError{Reason: "document is nil"}
	}
	if doc.Nodes == nil {
		return nil, &calm.StructuralError{Container: "nodes", Reason: "is missing"}
	}
	if doc.Relationships == nil {
		return nil, &calm.StructuralError{Container: "relationships", Reason: "is missing"}
	}

	idx := &Index{
		nodes:         make(map[string]struct{}, len(doc.Nodes)),
		relationships: make(map[string]struct{}, len(doc.Relationships)),
		interfaces:    map[string]struct{}{},
		referenced:    map[string]struct{}{},
		positions:     map[string]Occurrence{},
	}

	for i, n := range doc.Nodes {
		if o, ok := idx.declare(n.UniqueID, KindNode, calm.NewPath("nodes", i, "unique-id"), idx.nodes); ok {
			idx.nodeOrder = append(idx.nodeOrder, o)
		}
	}
	for i, r := range doc.Relationships {
		idx.declare(r.UniqueID, KindRelationship, calm.NewPath("relationships", i, "unique-id"), idx.relationships)
	}
	for i, n := range doc.Nodes {
		for j, itf := range n.Interfaces {
			idx.declare(itf.UniqueID, KindInterface, calm.NewPath("nodes", i, "interfaces", j, "unique-id"), idx.interfaces)
		}
	}

	for _, ref := range doc.NodeRefs() {
		if ref.Value != "" {
			idx.referenced[ref.Value] = struct{}{}
		}
	}

	return idx, nil
}

func (idx *Index) declare(id string, kind Kind, path calm.Path, set map[string]struct{}) (Occurrence, bool) {
	if id == "" {
		return Occurrence{}, false
	}
	o := Occurrence{ID: id, Kind: kind, Path: path}
	set[id] = struct{}{}
	idx.occurrences = append(idx.occurrences, o)
	if _, seen := idx.positions[id]; !seen {
		idx.positions[id] = o
	}
	return o, true
}

// HasNode reports whether id is declared by a node.
func (idx *Index) HasNode(id string) bool {
	_, ok := idx.nodes[id]
	return ok
}

// HasRelationship reports whether id is declared by a relationship.
func (idx *Index) HasRelationship(id string) bool {
	_, ok := idx.relationships[id]
	return ok
}

// HasInterface reports whether id is declared by an interface of any node.
func (idx *Index) HasInterface(id string) bool {
	_, ok := idx.interfaces[id]
	return ok
}

// IsReferenced reports whether any relationship slot names node id.
func (idx *Index) IsReferenced(id string) bool {
	_, ok := idx.referenced[id]
	return ok
}

// Lookup returns the first declaration of id in any category.
func (idx *Index) Lookup(id string) (Occurrence, bool) {
	o, ok := idx.positions[id]
	return o, ok
}

// Occurrences returns every declaration in traversal order. The slice is a copy.
func (idx *Index) Occurrences() []Occurrence {
	return append([]Occurrence(nil), idx.occurrences...)
}

// Nodes returns every node declaration in document order, duplicates included.
func (idx *Index) Nodes() []Occurrence {
	return append([]Occurrence(nil), idx.nodeOrder...)
}
