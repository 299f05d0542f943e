package table

import "github.com/oonfwd/oonfwd/defn"

// FibNextHopEntry is a single next hop of a FIB entry (spec.md §3),
// field names matching the teacher's fw/table/fib-strategy_test.go
// (FibNextHopEntry{Nexthop, Cost}).
type FibNextHopEntry struct {
	Nexthop defn.FaceId
	Cost    uint32
}

// FibEntry is a FIB entry anchored at a NameTree node: Name -> set<NextHop>
// (spec.md §3/§4).
type FibEntry struct {
	name     defn.Name
	nexthops []*FibNextHopEntry
}

// Name returns the registered prefix of the entry.
func (e *FibEntry) Name() defn.Name { return e.name }

// NextHops returns the entry's next hops.
func (e *FibEntry) NextHops() []*FibNextHopEntry { return e.nexthops }

// Fib is the Forwarding Information Base: longest-prefix-match lookup of
// Name to next-hop set (spec.md §2/§4.1). No routing protocol populates
// it (spec.md §1 Non-goals) — entries are only ever added/removed
// externally (management, tests).
type Fib struct {
	tree *NameTree
}

// NewFib constructs a Fib sharing the given NameTree, per spec.md §4.1
// ("FIB/PIT/Measurements hold indices into NameTree nodes").
func NewFib(tree *NameTree) *Fib {
	return &Fib{tree: tree}
}

// AddNextHop registers a next hop for prefix name, creating the FIB entry
// if it does not already exist, or updating the cost of an existing
// next hop on the same face.
func (f *Fib) AddNextHop(name defn.Name, faceId defn.FaceId, cost uint32) *FibEntry {
	node := f.tree.Lookup(name)
	if node.fib == nil {
		node.fib = &FibEntry{name: name.Clone()}
	}
	for _, nh := range node.fib.nexthops {
		if nh.Nexthop == faceId {
			nh.Cost = cost
			return node.fib
		}
	}
	node.fib.nexthops = append(node.fib.nexthops, &FibNextHopEntry{Nexthop: faceId, Cost: cost})
	return node.fib
}

// RemoveNextHop removes faceId from the FIB entry at name, deleting the
// entry entirely (and pruning the NameTree node) if no next hops remain.
func (f *Fib) RemoveNextHop(name defn.Name, faceId defn.FaceId) {
	node := f.tree.FindExactMatch(name)
	if node == nil || node.fib == nil {
		return
	}
	out := node.fib.nexthops[:0]
	for _, nh := range node.fib.nexthops {
		if nh.Nexthop != faceId {
			out = append(out, nh)
		}
	}
	node.fib.nexthops = out
	if len(node.fib.nexthops) == 0 {
		node.fib = nil
		f.tree.prune(node)
	}
}

// RemoveFace drops faceId from every FIB entry, used when a face is torn
// down (spec.md §3 ownership: "face removal must cascade").
func (f *Fib) RemoveFace(faceId defn.FaceId) {
	var walk func(n *nameTreeNode)
	walk = func(n *nameTreeNode) {
		if n.fib != nil {
			out := n.fib.nexthops[:0]
			for _, nh := range n.fib.nexthops {
				if nh.Nexthop != faceId {
					out = append(out, nh)
				}
			}
			n.fib.nexthops = out
			if len(n.fib.nexthops) == 0 {
				n.fib = nil
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(f.tree.root)
}

// FindLongestPrefixMatch returns the FIB entry at the longest prefix of
// name that has one, or nil if none does (spec.md §4.3.5's FIB lookup).
func (f *Fib) FindLongestPrefixMatch(name defn.Name) *FibEntry {
	node := f.tree.FindLongestPrefixMatch(name, func(n *nameTreeNode) bool {
		return n.fib != nil
	})
	if node == nil {
		return nil
	}
	return node.fib
}

// AllEntries returns every FIB entry currently registered, used by
// management/status reporting.
func (f *Fib) AllEntries() []*FibEntry {
	var out []*FibEntry
	var walk func(n *nameTreeNode)
	walk = func(n *nameTreeNode) {
		if n.fib != nil {
			out = append(out, n.fib)
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(f.tree.root)
	return out
}
