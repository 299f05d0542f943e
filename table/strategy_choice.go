package table

import "github.com/oonfwd/oonfwd/defn"

// strategyNode anchors a strategy name at a prefix, matching the
// teacher's fw/table/fib-strategy_test.go baseFibStrategyEntry.strategy
// field shape (a Name naming the strategy's registered identity).
type strategyNode struct {
	children map[uint64]*strategyNode
	strategy string
}

// StrategyChoice maps a name prefix to a forwarding strategy (spec.md
// §4.4): a trie keyed by name prefix, longest match wins, root holds the
// default. Kept as its own small trie (rather than reusing the shared
// NameTree) because strategy registrations are sparse and rarely change,
// unlike FIB/PIT churn.
type StrategyChoice struct {
	root *strategyNode
}

// NewStrategyChoice constructs a StrategyChoice with defaultStrategy at
// the root (the "/" prefix matches everything).
func NewStrategyChoice(defaultStrategy string) *StrategyChoice {
	return &StrategyChoice{root: &strategyNode{strategy: defaultStrategy}}
}

// Set registers strategy for name, creating trie nodes as needed.
func (sc *StrategyChoice) Set(name defn.Name, strategy string) {
	cur := sc.root
	for _, comp := range name {
		if cur.children == nil {
			cur.children = make(map[uint64]*strategyNode)
		}
		h := comp.Hash()
		child, ok := cur.children[h]
		if !ok {
			child = &strategyNode{}
			cur.children[h] = child
		}
		cur = child
	}
	cur.strategy = strategy
}

// Lookup returns the strategy registered at the longest matching prefix
// of name, falling back toward the root.
func (sc *StrategyChoice) Lookup(name defn.Name) string {
	cur := sc.root
	best := cur.strategy
	for _, comp := range name {
		if cur.children == nil {
			break
		}
		child, ok := cur.children[comp.Hash()]
		if !ok {
			break
		}
		cur = child
		if cur.strategy != "" {
			best = cur.strategy
		}
	}
	return best
}
