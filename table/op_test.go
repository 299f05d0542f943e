package table_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectProcessorCacheHitMiss(t *testing.T) {
	op, err := table.NewObjectProcessorCache()
	require.NoError(t, err)
	defer op.Close()

	d := &defn.Data{Name: mustName(t, "/vid/bunny_2s_500kbit/seg3"), Content: []byte("0123456789")}
	d.FreshnessPeriod.Set(time.Minute)
	op.Insert(d, false)

	var hit *defn.Data
	op.Find(&defn.Interest{Name: mustName(t, "/vid/bunny_2s_500kbit/seg3")},
		func(data *defn.Data) { hit = data }, func() {})
	require.NotNil(t, hit)
	assert.Equal(t, d.Content, hit.Content)

	var missed bool
	op.Find(&defn.Interest{Name: mustName(t, "/vid/bunny_2s_999kbit/seg3")},
		func(data *defn.Data) {}, func() { missed = true })
	assert.True(t, missed)
}
