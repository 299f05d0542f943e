package table_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
)

func TestContentStoreHitMiss(t *testing.T) {
	cs := table.NewContentStore(2)
	d := &defn.Data{Name: mustName(t, "/a/1"), Content: []byte("x")}
	cs.Insert(d, false)

	var hit *defn.Data
	cs.Find(&defn.Interest{Name: mustName(t, "/a/1")}, func(data *defn.Data) { hit = data }, func() {})
	assert.NotNil(t, hit)

	var missed bool
	cs.Find(&defn.Interest{Name: mustName(t, "/b/1")}, func(data *defn.Data) {}, func() { missed = true })
	assert.True(t, missed)
}

func TestContentStoreEvictsLRU(t *testing.T) {
	cs := table.NewContentStore(1)
	cs.Insert(&defn.Data{Name: mustName(t, "/a/1")}, false)
	cs.Insert(&defn.Data{Name: mustName(t, "/a/2")}, false)

	var missed bool
	cs.Find(&defn.Interest{Name: mustName(t, "/a/1")}, func(data *defn.Data) {}, func() { missed = true })
	assert.True(t, missed, "oldest entry should have been evicted once maxSize was exceeded")
	assert.Equal(t, 1, cs.Len())
}

func TestContentStoreStalenessIsElapsedTimeNotJustPresence(t *testing.T) {
	cs := table.NewContentStore(2)
	d := &defn.Data{Name: mustName(t, "/a/1")}
	d.FreshnessPeriod.Set(10 * time.Millisecond)
	cs.Insert(d, false)

	var hit bool
	cs.Find(&defn.Interest{Name: mustName(t, "/a/1"), MustBeFresh: true}, func(data *defn.Data) { hit = true }, func() {})
	assert.True(t, hit, "a mustBeFresh interest arriving well within the freshness period must hit")

	time.Sleep(20 * time.Millisecond)

	var staleHit bool
	cs.Find(&defn.Interest{Name: mustName(t, "/a/1"), MustBeFresh: true}, func(data *defn.Data) { staleHit = true }, func() {})
	assert.False(t, staleHit, "a mustBeFresh interest arriving after the freshness period has elapsed must miss, even though FreshnessPeriod is still statically > 0")
}
