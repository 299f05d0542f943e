package fw

import (
	"sort"
	"time"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
)

// bestRouteRetryInterval bounds how soon the same nexthop may be retried
// for a retransmitted Interest, mirroring the retransmission-suppression
// window the teacher's multicast strategy applies (fw/fw/multicast.go
// MulticastSuppressionTime), generalized here to gate a single nexthop
// instead of all of them.
const bestRouteRetryInterval = 500 * time.Millisecond

// BestRouteStrategy forwards each Interest to exactly one nexthop: the
// lowest-cost FIB nexthop that does not already have a live, recently
// issued out-record. This is spec.md §1's "best-route" strategy named as
// the engine's default (spec.md §6 lists it as an out-of-scope-but-named
// example strategy); no line of the teacher's own source implements it
// since the teacher pack only ships Multicast, so its shape is grounded
// directly on NFD's well-known best-route semantics and written in the
// teacher's StrategyBase idiom.
type BestRouteStrategy struct {
	StrategyBase
}

// NewBestRouteStrategy constructs the best-route strategy bound to fwd.
func NewBestRouteStrategy(fwd *Forwarder) *BestRouteStrategy {
	return &BestRouteStrategy{StrategyBase: NewStrategyBase(fwd, "best-route")}
}

// AfterContentStoreHit sends the cached Data back to inFace immediately.
func (s *BestRouteStrategy) AfterContentStoreHit(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId) {
	core.Log.Trace(s, "content store hit", "name", data.Name.String(), "faceid", inFace)
	s.SendData(data, pitEntry, inFace, inFace)
}

// BeforeSatisfyInterest is a pure notification hook: the forwarder's own
// pendingDownstreams loop (onIncomingData) is the sole place Data is
// actually sent, matching forwarder.cpp's beforeSatisfyInterest, which by
// default does nothing but let a strategy observe the event.
func (s *BestRouteStrategy) BeforeSatisfyInterest(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId) {
	core.Log.Trace(s, "satisfying interest", "name", data.Name.String(), "inrecords", len(pitEntry.InRecords()))
}

// AfterReceiveInterest forwards to the single lowest-cost nexthop that
// does not already have a recent out-record, retrying the next-cheapest
// nexthop on repeated failures to get Data back (a retransmission
// implies the previous nexthop did not answer in time).
func (s *BestRouteStrategy) AfterReceiveInterest(interest *defn.Interest, pitEntry *table.PitEntry, inFace defn.FaceId, nexthops []*table.FibNextHopEntry) {
	if len(nexthops) == 0 {
		core.Log.Debug(s, "no nexthop for interest", "name", interest.Name.String())
		return
	}

	sorted := append([]*table.FibNextHopEntry(nil), nexthops...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Cost < sorted[j].Cost })

	now := time.Now()
	for _, nexthop := range sorted {
		_, hadOutRecord := pitEntry.OutRecords()[nexthop.Nexthop]
		if hadOutRecord {
			if pitEntry.OutRecords()[nexthop.Nexthop].LastRenewed.Add(bestRouteRetryInterval).After(now) {
				continue
			}
		}
		core.Log.Trace(s, "forwarding interest", "name", interest.Name.String(), "faceid", nexthop.Nexthop)
		// A fresh nonce is only warranted when retransmitting to a
		// nexthop that already has a live out-record; a first forward
		// keeps the consumer's original nonce, per spec.md §4.3.6/§8 S1.
		s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace, hadOutRecord)
		return
	}

	core.Log.Debug(s, "all nexthops recently tried", "name", interest.Name.String())
}

// BeforeExpirePendingInterest is a no-op: best-route does not retract a
// forwarded Interest when its downstream lifetime expires.
func (s *BestRouteStrategy) BeforeExpirePendingInterest(pitEntry *table.PitEntry) {
}
