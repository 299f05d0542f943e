// Package defn holds the wire-format-agnostic packet and name types shared
// by the tables, the forwarder, and the face layer. Name/Component are
// trimmed down from the teacher's std/encoding TLV types (Component{Typ
// TLNum, Val []byte}, xxhash-based Hash()) to just what the spec's
// NameTree/PIT/FIB/CS/OP need: component-wise ordering, prefix tests, and
// a URI round-trip. Full TLV encode/decode is the out-of-scope
// wire-format codec (spec.md §1) and is not reimplemented here.
package defn

import (
	"net/url"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Component is a single opaque name component. Unlike the teacher's
// Component, it carries no TLV type tag: the quality-ladder grammar
// (spec.md §6) operates purely on the component's string form.
type Component []byte

// String returns the component's URI-escaped text form.
func (c Component) String() string {
	return url.PathEscape(string(c))
}

// ComponentFromStr parses a single unescaped URI component.
func ComponentFromStr(s string) (Component, error) {
	v, err := url.PathUnescape(s)
	if err != nil {
		return nil, err
	}
	return Component(v), nil
}

// Equal reports whether two components hold the same bytes.
func (c Component) Equal(o Component) bool {
	return string(c) == string(o)
}

// Compare returns -1, 0, or 1 comparing c to o byte-wise, matching the
// teacher's Component.Compare ordering (length first, then bytes).
func (c Component) Compare(o Component) int {
	if len(c) != len(o) {
		if len(c) < len(o) {
			return -1
		}
		return 1
	}
	return strings.Compare(string(c), string(o))
}

// Hash returns the xxhash64 of the component's bytes, used as the
// NameTree trie key the same way the teacher's Component.Hash() feeds its
// own NameTree.
func (c Component) Hash() uint64 {
	return xxhash.Sum64(c)
}

// Name is an ordered sequence of components.
type Name []Component

// NameFromStr parses a "/"-delimited URI into a Name. A leading "/" (or
// "ndn:/") is optional and ignored, matching common NDN URI conventions.
func NameFromStr(s string) (Name, error) {
	s = strings.TrimPrefix(s, "ndn:")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return Name{}, nil
	}
	parts := strings.Split(s, "/")
	name := make(Name, 0, len(parts))
	for _, p := range parts {
		c, err := ComponentFromStr(p)
		if err != nil {
			return nil, err
		}
		name = append(name, c)
	}
	return name, nil
}

// String renders the Name back to its URI form.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	sb := strings.Builder{}
	for _, c := range n {
		sb.WriteByte('/')
		sb.WriteString(c.String())
	}
	return sb.String()
}

// Equal reports whether two Names have the same components in the same
// order.
func (n Name) Equal(o Name) bool {
	if len(n) != len(o) {
		return false
	}
	for i := range n {
		if !n[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Compare orders Names component-wise, shorter-is-smaller on a common
// prefix (so a Name is always greater than any of its own prefixes).
func (n Name) Compare(o Name) int {
	for i := 0; i < len(n) && i < len(o); i++ {
		if c := n[i].Compare(o[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(n) < len(o):
		return -1
	case len(n) > len(o):
		return 1
	default:
		return 0
	}
}

// IsPrefixOf reports whether n is a prefix of o (n.IsPrefixOf(n) is true).
func (n Name) IsPrefixOf(o Name) bool {
	if len(n) > len(o) {
		return false
	}
	for i := range n {
		if !n[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Prefix returns the first k components of n. A negative k, as in the
// original's Name::getPrefix(-1), strips that many components off the
// end instead.
func (n Name) Prefix(k int) Name {
	if k < 0 {
		k = len(n) + k
	}
	if k < 0 {
		k = 0
	}
	if k > len(n) {
		k = len(n)
	}
	out := make(Name, k)
	copy(out, n[:k])
	return out
}

// Append returns a new Name with the given components appended.
func (n Name) Append(comps ...Component) Name {
	out := make(Name, len(n), len(n)+len(comps))
	copy(out, n)
	return append(out, comps...)
}

// Hash returns a combined hash over all components, used as a NameTree
// node lookup key.
func (n Name) Hash() uint64 {
	h := xxhash.New()
	for _, c := range n {
		_, _ = h.Write(c)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Clone returns a deep copy of n.
func (n Name) Clone() Name {
	out := make(Name, len(n))
	for i, c := range n {
		cc := make(Component, len(c))
		copy(cc, c)
		out[i] = cc
	}
	return out
}
