package table_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
)

func TestDeadNonceListHasAfterAdd(t *testing.T) {
	dnl := table.NewDeadNonceList(50*time.Millisecond, 0)
	name := mustName(t, "/a/1")

	assert.False(t, dnl.Has(name, 7))
	dnl.Add(name, 7)
	assert.True(t, dnl.Has(name, 7))
}

func TestDeadNonceListExpires(t *testing.T) {
	dnl := table.NewDeadNonceList(10*time.Millisecond, 0)
	name := mustName(t, "/a/1")
	dnl.Add(name, 7)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, dnl.Has(name, 7))
}

func TestDeadNonceListBoundedSize(t *testing.T) {
	dnl := table.NewDeadNonceList(time.Hour, 2)
	dnl.Add(mustName(t, "/a/1"), 1)
	dnl.Add(mustName(t, "/a/2"), 2)
	dnl.Add(mustName(t, "/a/3"), 3)
	assert.LessOrEqual(t, dnl.Len(), 2, "bound is restored within the same insertion per spec.md §8")
	assert.True(t, dnl.Has(mustName(t, "/a/3"), 3), "most recent insertion must never be evicted")
}
