// Package table holds the forwarding tables of spec.md §2/§3/§4: the
// NameTree, FIB, PIT, Content Store, Object Processor cache, Dead Nonce
// List, and StrategyChoice.
package table

import "github.com/oonfwd/oonfwd/defn"

// nameTreeNode is a single node of the NameTree trie (spec.md §4.1). Each
// node may anchor a FIB entry and/or a PIT entry. A "Measurements" anchor
// point is named in spec.md §4.1 but none of the six forwarding pipelines
// (spec.md §4.3) read or write it, so it is not modeled here.
type nameTreeNode struct {
	parent   *nameTreeNode
	name     defn.Name
	children map[uint64]*nameTreeNode

	fib *FibEntry
	pit *PitEntry
}

// NameTree is the shared name-prefix index underlying the FIB and PIT
// (spec.md §4.1). Node lookup is keyed by Component.Hash() (xxhash64),
// the same strategy the teacher's own encoding layer uses for Component
// hashing; a 64-bit hash collision between two distinct sibling
// components is treated as out of scope, same as upstream.
type NameTree struct {
	root *nameTreeNode
}

// NewNameTree constructs an empty NameTree with just a root node.
func NewNameTree() *NameTree {
	return &NameTree{root: &nameTreeNode{name: defn.Name{}}}
}

// Lookup returns the node for name, creating intermediate and leaf nodes
// as needed. O(k) in the number of components.
func (t *NameTree) Lookup(name defn.Name) *nameTreeNode {
	cur := t.root
	for i, comp := range name {
		if cur.children == nil {
			cur.children = make(map[uint64]*nameTreeNode)
		}
		h := comp.Hash()
		child, ok := cur.children[h]
		if !ok {
			child = &nameTreeNode{parent: cur, name: name.Prefix(i + 1)}
			cur.children[h] = child
		}
		cur = child
	}
	return cur
}

// FindExactMatch returns the node for name if it already exists, or nil.
func (t *NameTree) FindExactMatch(name defn.Name) *nameTreeNode {
	cur := t.root
	for _, comp := range name {
		if cur.children == nil {
			return nil
		}
		child, ok := cur.children[comp.Hash()]
		if !ok {
			return nil
		}
		cur = child
	}
	return cur
}

// deepestExisting walks down from the root following name's components as
// far as nodes already exist, returning the chain from deepest to root
// (chain[0] is the deepest node reached, possibly the root itself).
func (t *NameTree) deepestExisting(name defn.Name) []*nameTreeNode {
	chain := make([]*nameTreeNode, 0, len(name)+1)
	cur := t.root
	chain = append(chain, cur)
	for _, comp := range name {
		if cur.children == nil {
			break
		}
		child, ok := cur.children[comp.Hash()]
		if !ok {
			break
		}
		cur = child
		chain = append(chain, cur)
	}
	// reverse in place so chain[0] is the deepest
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// FindLongestPrefixMatch ascends from the deepest node matching name
// toward the root until predicate(node) returns true, returning that
// node, or nil if even the root fails predicate. O(k).
func (t *NameTree) FindLongestPrefixMatch(name defn.Name, predicate func(*nameTreeNode) bool) *nameTreeNode {
	for _, node := range t.deepestExisting(name) {
		if predicate(node) {
			return node
		}
	}
	return nil
}

// prune removes node and any now-empty ancestors once it anchors nothing
// (no FIB entry, no PIT entry, no children), mirroring the teacher's
// NameTree garbage collection of leaf nodes.
func (t *NameTree) prune(node *nameTreeNode) {
	for node != nil && node != t.root {
		if node.fib != nil || node.pit != nil || len(node.children) > 0 {
			return
		}
		parent := node.parent
		for h, c := range parent.children {
			if c == node {
				delete(parent.children, h)
				break
			}
		}
		node = parent
	}
}
