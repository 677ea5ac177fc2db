package calm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/goccy/go-json"
)

// Segment is one step of a Path: an object key or an array index.
type Segment struct {
	Key     string
	Index   int
	isIndex bool
}

// Key returns an object-key segment.
func Key(k string) Segment { return Segment{Key: k} }

// Index returns an array-index segment.
func Index(i int) Segment { return Segment{Index: i, isIndex: true} }

// IsIndex reports whether s addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// String returns the raw (unescaped) token for s.
func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

// MarshalJSON encodes index segments as numbers and key segments as strings.
func (s Segment) MarshalJSON() ([]byte, error) {
	if s.isIndex {
		return []byte(strconv.Itoa(s.Index)), nil
	}
	return json.Marshal(s.Key)
}

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (s *Segment) UnmarshalJSON(b []byte) error {
	var i int
	if err := json.Unmarshal(b, &i); err == nil {
		*s = Index(i)
		return nil
	}
	var k string
	if err := json.Unmarshal(b, &k); err != nil {
		return fmt.Errorf("path segment must be a string or integer: %s", b)
	}
	*s = Key(k)
	return nil
}

// Path locates a value inside a document, root to leaf. The zero value is
// the document root.
type Path []Segment

// NewPath builds a Path from string keys and int indexes. Any other value is
// formatted with fmt.Sprint and used as a key.
func NewPath(segments ...any) Path {
	p := make(Path, 0, len(segments))
	for _, s := range segments {
		switch v := s.(type) {
		case int:
			p = append(p, Index(v))
		case string:
			p = append(p, Key(v))
		case Segment:
			p = append(p, v)
		default:
			p = append(p, Key(fmt.Sprint(v)))
		}
	}
	return p
}

// Key returns a copy of p extended by an object key.
func (p Path) Key(k string) Path { return p.with(Key(k)) }

// Index returns a copy of p extended by an array index.
func (p Path) Index(i int) Path { return p.with(Index(i)) }

// with always copies so that sibling paths never share a backing array.
func (p Path) with(s Segment) Path {
	np := make(Path, len(p), len(p)+1)
	copy(np, p)
	return append(np, s)
}

// Pointer renders p as an RFC 6901 JSON pointer, e.g. "/nodes/1/unique-id".
// The root path renders as "".
func (p Path) Pointer() string {
	var b strings.Builder
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(jsonpointer.Escape(s.String()))
	}
	return b.String()
}

func (p Path) String() string { return p.Pointer() }

// Equal reports whether p and o address the same location.
func (p Path) Equal(o Path) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the root path as [] rather than null.
func (p Path) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Segment(p))
}
