package table_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/sched"
	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustName(t *testing.T, s string) defn.Name {
	n, err := defn.NameFromStr(s)
	require.NoError(t, err)
	return n
}

func TestPitInsertIdempotent(t *testing.T) {
	tree := table.NewNameTree()
	pit := table.NewPit(tree)
	i := &defn.Interest{Name: mustName(t, "/a/1"), Nonce: 7, Lifetime: time.Second}

	e1, isNew1 := pit.Insert(i)
	e2, isNew2 := pit.Insert(i)

	assert.True(t, isNew1)
	assert.False(t, isNew2)
	assert.Same(t, e1, e2)
}

func TestPitFindNonceDuplicate(t *testing.T) {
	tree := table.NewNameTree()
	pit := table.NewPit(tree)
	i := &defn.Interest{Name: mustName(t, "/a/1"), Nonce: 7, Lifetime: time.Second}
	entry, _ := pit.Insert(i)
	entry.InsertOrUpdateInRecord(i, defn.FaceId(256))

	assert.Equal(t, table.DuplicateNonceInSameFace, entry.FindNonce(7, defn.FaceId(256)))
	assert.Equal(t, table.DuplicateNonceInOtherFace, entry.FindNonce(7, defn.FaceId(257)))
	assert.Equal(t, table.DuplicateNonceNone, entry.FindNonce(8, defn.FaceId(256)))
}

func TestPitFindAllDataMatchesRespectsFreshness(t *testing.T) {
	tree := table.NewNameTree()
	pit := table.NewPit(tree)
	i := &defn.Interest{Name: mustName(t, "/a/1"), Nonce: 1, Lifetime: time.Second, MustBeFresh: true}
	entry, _ := pit.Insert(i)
	entry.InsertOrUpdateInRecord(i, defn.FaceId(256))

	stale := &defn.Data{Name: mustName(t, "/a/1")}
	stale.FreshnessPeriod.Set(0)
	assert.Empty(t, pit.FindAllDataMatches(stale), "zero freshness does not satisfy a mustBeFresh Interest")

	fresh := &defn.Data{Name: mustName(t, "/a/1")}
	fresh.FreshnessPeriod.Set(time.Second)
	assert.Len(t, pit.FindAllDataMatches(fresh), 1)
}

func TestPitRemoveFaceCascadesRecords(t *testing.T) {
	tree := table.NewNameTree()
	pit := table.NewPit(tree)
	i := &defn.Interest{Name: mustName(t, "/a/1"), Nonce: 1, Lifetime: time.Second}
	entry, _ := pit.Insert(i)
	entry.InsertOrUpdateInRecord(i, defn.FaceId(256))
	entry.InsertOrUpdateInRecord(i, defn.FaceId(257))
	entry.InsertOrUpdateOutRecord(defn.FaceId(300), i)

	pit.RemoveFace(defn.FaceId(256))
	_, stillThere := entry.InRecords()[defn.FaceId(256)]
	assert.False(t, stillThere, "in-record on the removed face must be dropped")
	_, otherStillThere := entry.InRecords()[defn.FaceId(257)]
	assert.True(t, otherStillThere, "in-records on other faces must survive")

	pit.RemoveFace(defn.FaceId(300))
	_, outStillThere := entry.OutRecords()[defn.FaceId(300)]
	assert.False(t, outStillThere, "out-record on the removed face must be dropped")
}

func TestPitEraseCancelsTimers(t *testing.T) {
	tree := table.NewNameTree()
	pit := table.NewPit(tree)
	i := &defn.Interest{Name: mustName(t, "/a/1"), Nonce: 1, Lifetime: time.Second}
	entry, _ := pit.Insert(i)
	sc := sched.NewScheduler()
	entry.SetUnsatisfyTimer(sc.Schedule(time.Hour, func() {}))
	entry.SetStragglerTimer(sc.Schedule(time.Hour, func() {}))

	pit.Erase(entry)
	assert.Nil(t, pit.FindExact(mustName(t, "/a/1")))
	assert.False(t, entry.UnsatisfyTimer().IsLive(), "erase must cancel the unsatisfy timer")
	assert.False(t, entry.StragglerTimer().IsLive(), "erase must cancel the straggler timer")
}
