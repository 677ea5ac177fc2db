package calm

// Ref is a reference value found in a document together with its location.
type Ref struct {
	Value string
	Path  Path
}

// NodeRefs returns every node reference held by the document's relationships,
// in document order. Each variant contributes its documented slots only:
// connects.source/destination, interacts.actor/nodes[],
// composed-of.container/nodes[], deployed-in.container/nodes[].
func (d *Document) NodeRefs() []Ref {
	var refs []Ref
	for i, r := range d.Relationships {
		refs = append(refs, r.NodeRefs(NewPath("relationships", i))...)
	}
	return refs
}

// NodeRefs returns the node references of a single relationship located at base.
func (r Relationship) NodeRefs(base Path) []Ref {
	typ := base.Key("relationship-type")
	t := r.RelationshipType
	var refs []Ref
	if c := t.Connects; c != nil {
		p := typ.Key(string(KindConnects))
		refs = append(refs,
			Ref{Value: c.Source.Node, Path: c.Source.nodePath(p.Key("source"))},
			Ref{Value: c.Destination.Node, Path: c.Destination.nodePath(p.Key("destination"))},
		)
	}
	if in := t.Interacts; in != nil {
		p := typ.Key(string(KindInteracts))
		refs = append(refs, Ref{Value: in.Actor, Path: p.Key("actor")})
		refs = appendList(refs, in.Nodes, p.Key("nodes"))
	}
	if co := t.ComposedOf; co != nil {
		refs = co.refs(refs, typ.Key(string(KindComposedOf)))
	}
	if de := t.DeployedIn; de != nil {
		refs = de.refs(refs, typ.Key(string(KindDeployedIn)))
	}
	return refs
}

// InterfaceRefs returns every interface reference held by connects endpoints.
func (d *Document) InterfaceRefs() []Ref {
	var refs []Ref
	for i, r := range d.Relationships {
		c := r.RelationshipType.Connects
		if c == nil {
			continue
		}
		p := NewPath("relationships", i, "relationship-type", string(KindConnects))
		refs = appendList(refs, c.Source.Interfaces, p.Key("source").Key("interfaces"))
		refs = appendList(refs, c.Destination.Interfaces, p.Key("destination").Key("interfaces"))
	}
	return refs
}

// TransitionRefs returns the relationship references made by flow transitions.
func (d *Document) TransitionRefs() []Ref {
	var refs []Ref
	for i, f := range d.Flows {
		for j, t := range f.Transitions {
			refs = append(refs, Ref{
				Value: t.RelationshipUniqueID,
				Path:  NewPath("flows", i, "transitions", j, "relationship-unique-id"),
			})
		}
	}
	return refs
}

func (e Endpoint) nodePath(p Path) Path {
	if e.Bare {
		return p
	}
	return p.Key("node")
}

func (c *Composition) refs(refs []Ref, p Path) []Ref {
	refs = append(refs, Ref{Value: c.Container, Path: p.Key("container")})
	return appendList(refs, c.Nodes, p.Key("nodes"))
}

func appendList(refs []Ref, values []string, p Path) []Ref {
	for i, v := range values {
		refs = append(refs, Ref{Value: v, Path: p.Index(i)})
	}
	return refs
}

// SlotNames partitions the unique-id constants of one slot list.
type SlotNames struct {
	Bare  map[string]struct{} // prefixItems[*].properties.unique-id.const
	OneOf map[string]struct{} // any unique-id const beneath a oneOf branch
	AnyOf map[string]struct{} // any unique-id const beneath an anyOf branch
}

// Names computes the SlotNames of l. A nil list yields empty sets.
func (l *SlotList) Names() SlotNames {
	names := SlotNames{
		Bare:  map[string]struct{}{},
		OneOf: map[string]struct{}{},
		AnyOf: map[string]struct{}{},
	}
	if l == nil {
		return names
	}
	for _, s := range l.PrefixItems {
		if id, ok := s.UniqueID(); ok {
			names.Bare[id] = struct{}{}
		}
		s.branchNames(names)
	}
	return names
}

// branchNames records the constants under s's branches. A name nested under
// both a oneOf and an anyOf lands in both sets.
func (s Slot) branchNames(names SlotNames) {
	for _, b := range s.OneOf {
		b.collectIDs(names.OneOf)
		b.branchNames(names)
	}
	for _, b := range s.AnyOf {
		b.collectIDs(names.AnyOf)
		b.branchNames(names)
	}
}

func (s Slot) collectIDs(into map[string]struct{}) {
	if id, ok := s.UniqueID(); ok {
		into[id] = struct{}{}
	}
	for _, b := range s.OneOf {
		b.collectIDs(into)
	}
	for _, b := range s.AnyOf {
		b.collectIDs(into)
	}
}

// OptionRef is a name listed by a decision option, with the slot list it refers to.
type OptionRef struct {
	CalmType string // TypeNodes or TypeRelationships
	Name     string
	Path     Path
}

// OptionRefs returns every name listed in the decision options of the
// pattern's relationship slots, including decisions nested in branches.
func (p *Pattern) OptionRefs() []OptionRef {
	l := p.Properties.Relationships
	if l == nil {
		return nil
	}
	var refs []OptionRef
	base := NewPath("properties", TypeRelationships, "prefixItems")
	for i, s := range l.PrefixItems {
		refs = s.optionRefs(refs, base.Index(i))
	}
	return refs
}

func (s Slot) optionRefs(refs []OptionRef, p Path) []OptionRef {
	if d, ok := s.Decision(); ok {
		op := p.Key("properties").Key("relationship-type").Key("const").Key("options")
		for j, o := range d.Options {
			for k, n := range o.Nodes {
				refs = append(refs, OptionRef{CalmType: TypeNodes, Name: n, Path: op.Index(j).Key("nodes").Index(k)})
			}
			for k, r := range o.Relationships {
				refs = append(refs, OptionRef{CalmType: TypeRelationships, Name: r, Path: op.Index(j).Key("relationships").Index(k)})
			}
		}
	}
	for j, b := range s.OneOf {
		refs = b.optionRefs(refs, p.Key("oneOf").Index(j))
	}
	for j, b := range s.AnyOf {
		refs = b.optionRefs(refs, p.Key("anyOf").Index(j))
	}
	return refs
}
