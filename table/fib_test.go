package table_test

import (
	"testing"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
)

func TestFibLongestPrefixMatch(t *testing.T) {
	tree := table.NewNameTree()
	fib := table.NewFib(tree)
	fib.AddNextHop(mustName(t, "/a"), 256, 1)
	fib.AddNextHop(mustName(t, "/a/b"), 257, 1)

	entry := fib.FindLongestPrefixMatch(mustName(t, "/a/b/c"))
	assert.Equal(t, mustName(t, "/a/b").String(), entry.Name().String())

	entry = fib.FindLongestPrefixMatch(mustName(t, "/a/x"))
	assert.Equal(t, mustName(t, "/a").String(), entry.Name().String())

	assert.Nil(t, fib.FindLongestPrefixMatch(mustName(t, "/z")))
}

func TestFibRemoveFaceCascades(t *testing.T) {
	tree := table.NewNameTree()
	fib := table.NewFib(tree)
	fib.AddNextHop(mustName(t, "/a"), 256, 1)
	fib.AddNextHop(mustName(t, "/a"), 257, 2)

	fib.RemoveFace(defn.FaceId(256))
	entry := fib.FindLongestPrefixMatch(mustName(t, "/a"))
	assert.Len(t, entry.NextHops(), 1)
	assert.Equal(t, defn.FaceId(257), entry.NextHops()[0].Nexthop)
}
