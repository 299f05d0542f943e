package defn_test

import (
	"testing"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameFromStrRoundTrip(t *testing.T) {
	n, err := defn.NameFromStr("/a/b/c")
	require.NoError(t, err)
	assert.Equal(t, "/a/b/c", n.String())
}

func TestNameIsPrefixOf(t *testing.T) {
	a, _ := defn.NameFromStr("/a/b")
	ab, _ := defn.NameFromStr("/a/b/c")
	assert.True(t, a.IsPrefixOf(ab))
	assert.True(t, a.IsPrefixOf(a))
	assert.False(t, ab.IsPrefixOf(a))
}

func TestNamePrefixNegative(t *testing.T) {
	n, _ := defn.NameFromStr("/a/b/c/d")
	assert.Equal(t, "/a/b/c", n.Prefix(-1).String())
	assert.Equal(t, "/a/b", n.Prefix(2).String())
}

func TestNameEqualAndCompare(t *testing.T) {
	a, _ := defn.NameFromStr("/a/b")
	b, _ := defn.NameFromStr("/a/b")
	c, _ := defn.NameFromStr("/a/c")
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.Negative(t, a.Compare(c))
}

func TestNameHashConsistent(t *testing.T) {
	a, _ := defn.NameFromStr("/a/b")
	b, _ := defn.NameFromStr("/a/b")
	assert.Equal(t, a.Hash(), b.Hash())
}
