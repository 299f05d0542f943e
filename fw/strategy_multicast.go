package fw

import (
	"time"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
)

// multicastSuppressionTime bounds how often a retransmitted Interest
// (same name, differing nonce) is re-forwarded to a nexthop that already
// has a live out-record, grounded on the teacher's
// fw/fw/multicast.go MulticastSuppressionTime constant.
const multicastSuppressionTime = 500 * time.Millisecond

// MulticastStrategy forwards every Interest to all FIB nexthops (Data is
// sent to pending downstream faces by the forwarder, not by this
// strategy), adapted from the teacher's
// fw/fw/multicast.go Multicast strategy onto this module's own
// defn/table types.
type MulticastStrategy struct {
	StrategyBase
}

// NewMulticastStrategy constructs the multicast strategy bound to fwd.
func NewMulticastStrategy(fwd *Forwarder) *MulticastStrategy {
	return &MulticastStrategy{StrategyBase: NewStrategyBase(fwd, "multicast")}
}

// AfterContentStoreHit sends the cached Data back to inFace immediately.
func (s *MulticastStrategy) AfterContentStoreHit(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId) {
	core.Log.Trace(s, "content store hit", "name", data.Name.String(), "faceid", inFace)
	s.SendData(data, pitEntry, inFace, inFace)
}

// BeforeSatisfyInterest is a pure notification hook: the forwarder's own
// pendingDownstreams loop (onIncomingData) is the sole place Data is
// actually sent, matching forwarder.cpp's beforeSatisfyInterest, which by
// default does nothing but let a strategy observe the event.
func (s *MulticastStrategy) BeforeSatisfyInterest(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId) {
	core.Log.Trace(s, "satisfying interest", "name", data.Name.String(), "inrecords", len(pitEntry.InRecords()))
}

// AfterReceiveInterest forwards to every nexthop, suppressing
// retransmissions that differ only in nonce within the suppression
// window — the teacher's retransmission-suppression guard.
func (s *MulticastStrategy) AfterReceiveInterest(interest *defn.Interest, pitEntry *table.PitEntry, inFace defn.FaceId, nexthops []*table.FibNextHopEntry) {
	if len(nexthops) == 0 {
		core.Log.Debug(s, "no nexthop for interest", "name", interest.Name.String())
		return
	}

	now := time.Now()
	for _, outRecord := range pitEntry.OutRecords() {
		if outRecord.LatestNonce != interest.Nonce && outRecord.LastRenewed.Add(multicastSuppressionTime).After(now) {
			core.Log.Debug(s, "suppressed interest", "name", interest.Name.String())
			return
		}
	}

	for _, nexthop := range nexthops {
		_, hadOutRecord := pitEntry.OutRecords()[nexthop.Nexthop]
		core.Log.Trace(s, "forwarding interest", "name", interest.Name.String(), "faceid", nexthop.Nexthop)
		// A fresh nonce is only warranted when retransmitting to a
		// nexthop that already has a live out-record; a first forward
		// keeps the consumer's original nonce, per spec.md §4.3.6/§8 S1.
		s.SendInterest(interest, pitEntry, nexthop.Nexthop, inFace, hadOutRecord)
	}
}

// BeforeExpirePendingInterest is a no-op in the multicast strategy, per
// the teacher's BeforeSatisfyInterest no-op (this module's equivalent
// hook for the unsatisfied-expiry decision point).
func (s *MulticastStrategy) BeforeExpirePendingInterest(pitEntry *table.PitEntry) {
}
