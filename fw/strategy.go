package fw

import (
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/table"
)

// Strategy is a forwarding strategy, dispatched to by the Forwarder at the
// three strategy decision points spec.md §6 names: after a new Interest
// arrives and needs nexthops chosen, before a PIT entry is satisfied by
// Data, and before a PIT entry's last out-record expires unsatisfied.
// Method names and signatures follow the teacher's fw/fw/multicast.go
// (Multicast.AfterReceiveInterest/AfterContentStoreHit/BeforeSatisfyInterest),
// adapted to this module's own table/defn types and PitEntry pointer type,
// and with the NFD-standard BeforeExpirePendingInterest hook from
// forwarder.cpp's dispatchToStrategy(..., beforeExpirePendingInterest) call
// site added back in since spec.md §4.3 keeps onInterestFinalize's
// strategy notification.
type Strategy interface {
	// Name returns the strategy's registered identity (e.g. "best-route",
	// "multicast"), used as the String() value for log "source" fields.
	Name() string

	// AfterReceiveInterest is invoked once a new or refreshed Interest has
	// an up-to-date PIT entry and the FIB has been consulted; nexthops is
	// the FIB's current longest-prefix-match nexthop list (spec.md §4.3.1
	// step 5's dispatchToStrategy(pitEntry, afterReceiveInterest, ...)).
	AfterReceiveInterest(interest *defn.Interest, pitEntry *table.PitEntry, inFace defn.FaceId, nexthops []*table.FibNextHopEntry)

	// AfterContentStoreHit handles an Interest the Content Store can
	// satisfy directly without forwarding. The Forwarder does not call
	// it: onContentStoreHit and onProcessingData notify the strategy via
	// BeforeSatisfyInterest and send the Data themselves.
	AfterContentStoreHit(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId)

	// BeforeSatisfyInterest is invoked just before a PIT entry's
	// in-records are sent Data, letting the strategy observe which
	// out-record is being satisfied (spec.md §4.3.5 step 3).
	BeforeSatisfyInterest(data *defn.Data, pitEntry *table.PitEntry, inFace defn.FaceId)

	// BeforeExpirePendingInterest is invoked when a PIT entry's unsatisfy
	// timer fires with no Data received, before the entry is finalized
	// (spec.md §4.3.11).
	BeforeExpirePendingInterest(pitEntry *table.PitEntry)
}

// StrategyBase provides the Name() accessor and a send-back reference to
// the owning Forwarder, mirroring the teacher's StrategyBase pattern
// (embedded in Multicast) that gives every concrete strategy access to the
// shared SendInterest/SendData helpers without each reimplementing them.
type StrategyBase struct {
	name string
	fwd  *Forwarder
}

// NewStrategyBase wires a StrategyBase to its owning Forwarder under the
// given registered name, following the teacher's NewStrategyBase(fwThread,
// name, version) constructor shape (the version axis is dropped: spec.md
// does not model strategy version negotiation).
func NewStrategyBase(fwd *Forwarder, name string) StrategyBase {
	return StrategyBase{name: name, fwd: fwd}
}

// Name returns the strategy's registered identity.
func (s *StrategyBase) Name() string { return s.name }

// String satisfies fmt.Stringer so a strategy can be passed directly as
// the "source" argument to core.Log.* calls, matching the teacher's
// core.Log.Trace(s, ...) convention in fw/fw/multicast.go.
func (s *StrategyBase) String() string { return s.name }

// SendInterest forwards interest out face, recording an out-record on
// pitEntry, per spec.md §4.3.6 (onOutgoingInterest). wantNewNonce is
// passed straight through to onOutgoingInterest: true only replaces the
// nonce when the strategy is retransmitting to a nexthop that already
// carries a live out-record, false preserves the original nonce on a
// first forward.
func (s *StrategyBase) SendInterest(interest *defn.Interest, pitEntry *table.PitEntry, face defn.FaceId, inFace defn.FaceId, wantNewNonce bool) {
	s.fwd.onOutgoingInterest(interest, pitEntry, face, wantNewNonce)
}

// SendData forwards data out face to satisfy pitEntry, per spec.md §4.3.10
// (onOutgoingData).
func (s *StrategyBase) SendData(data *defn.Data, pitEntry *table.PitEntry, face defn.FaceId, inFace defn.FaceId) {
	s.fwd.onOutgoingData(data, face)
}
