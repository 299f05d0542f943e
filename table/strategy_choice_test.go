package table_test

import (
	"testing"

	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
)

func TestStrategyChoiceLongestPrefixMatch(t *testing.T) {
	sc := table.NewStrategyChoice("best-route")
	sc.Set(mustName(t, "/multicast-zone"), "multicast")

	assert.Equal(t, "best-route", sc.Lookup(mustName(t, "/other")))
	assert.Equal(t, "multicast", sc.Lookup(mustName(t, "/multicast-zone")))
	assert.Equal(t, "multicast", sc.Lookup(mustName(t, "/multicast-zone/inner")))
}
