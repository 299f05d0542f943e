package fw_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/fw"
	"github.com/oonfwd/oonfwd/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLadder = []string{
	"_50", "_100", "_150", "_200", "_250", "_300", "_400", "_500",
	"_600", "_700", "_900", "_1200", "_1500", "_2000", "_2500",
	"_3000", "_4000", "_5000", "_6000", "_8000",
}

func mustName(t *testing.T, s string) defn.Name {
	n, err := defn.NameFromStr(s)
	require.NoError(t, err)
	return n
}

// S4 — OP derivation. OP cache contains Data /vid/bunny_2s_500kbit/seg3
// with content length 1024. Interest /vid/bunny_2s_250kbit/seg3 arrives.
// Expect: iterates _300, _400, _500, finds _500 in OP, synthesizes Data
// with content length 1020.
func TestVariantDeriverPicksClosestHigherParent(t *testing.T) {
	op, err := table.NewObjectProcessorCache()
	require.NoError(t, err)
	defer op.Close()

	parent := &defn.Data{
		Name:    mustName(t, "/vid/bunny_2s_500kbit/seg3"),
		Content: make([]byte, 1024),
	}
	op.Insert(parent, false)

	deriver := fw.NewVariantDeriver(testLadder, "bunny_2s", 1_000_000, nil)
	childInterest := &defn.Interest{
		Name:     mustName(t, "/vid/bunny_2s_250kbit/seg3"),
		Nonce:    1,
		Lifetime: time.Second,
	}

	pit := table.NewPit(table.NewNameTree())
	result := deriver.Derive(childInterest, op, pit)
	require.True(t, result.OK())
	assert.Equal(t, 1020, len(result.Data().Content))
	assert.Equal(t, childInterest.Name.String(), result.Data().Name.String())

	placeholder := pit.FindExact(mustName(t, "/vid/bunny_2s_500kbit/seg3"))
	require.NotNil(t, placeholder, "the matching parent variant must have a placeholder PIT entry so a concurrent request coalesces")
	miss := pit.FindExact(mustName(t, "/vid/bunny_2s_300kbit/seg3"))
	require.NotNil(t, miss, "probed-but-missed parent variants must also get a placeholder entry")
}

// Boundary case: OP cache holds only variants below the request's index
// -> fallback (ok=false).
func TestVariantDeriverFallsBackWhenNoHigherParent(t *testing.T) {
	op, err := table.NewObjectProcessorCache()
	require.NoError(t, err)
	defer op.Close()

	lower := &defn.Data{Name: mustName(t, "/vid/bunny_2s_100kbit/seg3"), Content: make([]byte, 100)}
	op.Insert(lower, false)

	deriver := fw.NewVariantDeriver(testLadder, "bunny_2s", 1_000_000, nil)
	childInterest := &defn.Interest{Name: mustName(t, "/vid/bunny_2s_250kbit/seg3"), Nonce: 1, Lifetime: time.Second}

	result := deriver.Derive(childInterest, op, table.NewPit(table.NewNameTree()))
	assert.False(t, result.OK())
}
