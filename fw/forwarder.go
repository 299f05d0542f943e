// Package fw holds the forwarding pipelines (spec.md §4.3), the
// strategies dispatched to from them (spec.md §4.4/§6), and the bitrate
// variant deriver (spec.md §4.3.3/§4.3.4) that distinguishes this engine
// from a plain NDN forwarder. Grounded directly on
// original_source/NFD/daemon/fw/forwarder.cpp, in the teacher's
// package-per-concern layout (fw/fw in the teacher pack).
package fw

import (
	"sync"
	"time"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/face"
	"github.com/oonfwd/oonfwd/sched"
	"github.com/oonfwd/oonfwd/table"
	"github.com/oonfwd/oonfwd/types/optional"
)

// stragglerTime is T_straggler, fixed at spec.md §6's default. The
// forwarder does not read cfg.Tables.StragglerTime.
const stragglerTime = 100 * time.Millisecond

// Forwarder is the single-threaded-cooperative state machine of spec.md
// §4.3/§5: all six pipelines (plus their named sub-steps) are methods on
// this struct, serialized by mu so the reactor model spec.md §5
// describes holds even though the Go Scheduler fires timer callbacks on
// their own goroutines (spec.md §5's single-reactor guarantee is
// reproduced here with one mutex instead of a single OS thread, since a
// real single-goroutine actor loop would make the S1-S6 scenario tests
// much harder to drive synchronously).
type Forwarder struct {
	mu sync.Mutex

	fib   *table.Fib
	pit   *table.Pit
	cs    *table.ContentStore
	op    *table.ObjectProcessorCache
	dnl   *table.DeadNonceList
	sc    *table.StrategyChoice
	sched *sched.Scheduler

	deriver *VariantDeriver

	faces     *face.Table
	csFace    face.Face
	opFace    face.Face
	invalidFace face.Face

	strategies map[string]Strategy

	dnlLifetime time.Duration

	nInInterests  uint64
	nOutInterests uint64
	nInData       uint64
	nOutData      uint64
}

// String satisfies fmt.Stringer for log "source" arguments.
func (f *Forwarder) String() string { return "forwarder" }

// New constructs a Forwarder wired against cfg, with csFace/opFace/
// invalidFace pre-registered at their reserved FaceIds (spec.md §3/§6),
// the best-route and multicast strategies registered under their own
// names, and cfg.Fw.DefaultStrategy as the StrategyChoice root default.
func New(cfg *core.Config) *Forwarder {
	tree := table.NewNameTree()
	sc := sched.NewScheduler()

	f := &Forwarder{
		fib:         table.NewFib(tree),
		pit:         table.NewPit(tree),
		cs:          table.NewContentStore(cfg.Tables.CsMaxSize),
		dnl:         table.NewDeadNonceList(cfg.Tables.DnlLifetime, 0),
		sc:          table.NewStrategyChoice(cfg.Fw.DefaultStrategy),
		sched:       sc,
		csFace:      face.NewNullFace(defn.FaceIdContentStore),
		opFace:      face.NewNullFace(defn.FaceIdObjectProcessor),
		invalidFace: &face.InvalidFace{},
		strategies:  make(map[string]Strategy),
		dnlLifetime: cfg.Tables.DnlLifetime,
	}
	f.faces = face.NewTable(f.onFaceRemoved)

	op, err := table.NewObjectProcessorCache()
	if err != nil {
		core.Log.Fatal(f, "failed to open object processor cache", "err", err)
	}
	f.op = op

	f.deriver = NewVariantDeriver(cfg.Tables.BitrateLadder, cfg.Tables.MovieToken, cfg.Tables.OpMIPS, sc)

	f.RegisterStrategy(NewMulticastStrategy(f))
	f.RegisterStrategy(NewBestRouteStrategy(f))

	return f
}

// RegisterStrategy adds strategy to the registry under its Name().
func (f *Forwarder) RegisterStrategy(s Strategy) {
	f.strategies[s.Name()] = s
}

// Fib, Pit, ContentStore, ObjectProcessorCache, DeadNonceList, Faces,
// StrategyChoice expose the forwarder's tables for management/tests.
func (f *Forwarder) Fib() *table.Fib                          { return f.fib }
func (f *Forwarder) Pit() *table.Pit                           { return f.pit }
func (f *Forwarder) ContentStore() *table.ContentStore         { return f.cs }
func (f *Forwarder) ObjectProcessorCache() *table.ObjectProcessorCache { return f.op }
func (f *Forwarder) DeadNonceList() *table.DeadNonceList       { return f.dnl }
func (f *Forwarder) Faces() *face.Table                        { return f.faces }
func (f *Forwarder) StrategyChoice() *table.StrategyChoice     { return f.sc }

func (f *Forwarder) onFaceRemoved(id defn.FaceId) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fib.RemoveFace(id)
	f.pit.RemoveFace(id)
}

func (f *Forwarder) resolveFace(id defn.FaceId) face.Face {
	switch id {
	case defn.FaceIdContentStore:
		return f.csFace
	case defn.FaceIdObjectProcessor:
		return f.opFace
	case defn.FaceIdInvalid:
		return f.invalidFace
	}
	if ff := f.faces.Get(id); ff != nil {
		return ff
	}
	return f.invalidFace
}

func (f *Forwarder) strategyFor(entry *table.PitEntry) Strategy {
	name := f.sc.Lookup(entry.Name())
	if s, ok := f.strategies[name]; ok {
		return s
	}
	// Fall back to whatever strategy happens to be registered, matching
	// spec.md §4.4's "root holds the default" when no default was ever
	// registered under that name.
	for _, s := range f.strategies {
		return s
	}
	return nil
}

// OnIncomingInterest is the Face-facing entry point, serializing into
// onIncomingInterest under the forwarder's mutex.
func (f *Forwarder) OnIncomingInterest(inFace defn.FaceId, interest *defn.Interest) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onIncomingInterest(inFace, interest)
}

// OnIncomingData is the Face-facing entry point for Data packets.
func (f *Forwarder) OnIncomingData(inFace defn.FaceId, data *defn.Data) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.onIncomingData(inFace, data)
}

// isLocalhostScoped reports whether name falls under the reserved
// "/localhost" namespace, per spec.md §4.3.1 step 2 / §4.3.9's scope
// control.
func isLocalhostScoped(name defn.Name) bool {
	if len(name) == 0 {
		return false
	}
	return name[0].String() == "localhost"
}

// 4.3.1 onIncomingInterest(inFace, I)
func (f *Forwarder) onIncomingInterest(inFaceId defn.FaceId, interest *defn.Interest) {
	f.nInInterests++
	interest.IncomingFaceId = optional.Some(inFaceId)

	inFace := f.resolveFace(inFaceId)
	if !inFace.IsLocal() && isLocalhostScoped(interest.Name) {
		core.Log.Debug(f, "scope violation, dropping interest", "name", interest.Name.String())
		return
	}

	entry, isNew := f.pit.Insert(interest)

	dup := entry.FindNonce(interest.Nonce, inFaceId) != table.DuplicateNonceNone
	dup = dup || f.dnl.Has(interest.Name, interest.Nonce)
	if dup {
		f.onInterestLoop(inFaceId, interest, entry)
		return
	}

	entry.UnsatisfyTimer().Cancel()
	entry.StragglerTimer().Cancel()

	if !isNew && len(entry.InRecords()) > 0 {
		f.onObjectProcessorMiss(inFaceId, entry, interest)
		return
	}

	f.cs.Find(interest,
		func(data *defn.Data) { f.onContentStoreHit(inFaceId, entry, interest, data) },
		func() { f.onObjectProcessorHit(inFaceId, entry, interest) },
	)
}

// onInterestLoop logs the duplicate and takes no further action, per
// spec.md §4.3.1 step 4 / §7's DuplicateNonce error kind.
func (f *Forwarder) onInterestLoop(inFaceId defn.FaceId, interest *defn.Interest, entry *table.PitEntry) {
	core.Log.Debug(f, "interest loop detected", "name", interest.Name.String(), "nonce", interest.Nonce, "faceid", inFaceId)
}

// 4.3.2 onContentStoreHit(inFace, entry, I, D)
func (f *Forwarder) onContentStoreHit(inFaceId defn.FaceId, entry *table.PitEntry, interest *defn.Interest, data *defn.Data) {
	strategy := f.strategyFor(entry)
	d := data.Clone()
	d.IncomingFaceId = optional.Some(defn.FaceIdContentStore)

	if strategy != nil {
		strategy.BeforeSatisfyInterest(d, entry, inFaceId)
	}
	f.armStraggler(entry, true, f.freshnessOf(d))
	f.onOutgoingData(d, inFaceId)
}

// 4.3.3 onObjectProcessorHit(inFace, entry, I_child) — variant derivation
func (f *Forwarder) onObjectProcessorHit(inFaceId defn.FaceId, entry *table.PitEntry, childInterest *defn.Interest) {
	result := f.deriver.Derive(childInterest, f.op, f.pit)
	if !result.ok {
		f.onObjectProcessorMiss(inFaceId, entry, childInterest)
		return
	}
	f.onProcessingData(inFaceId, entry, childInterest, result.childData)
}

// 4.3.4 onProcessingData(inFace, I_parent, derivedFlag*, I_child, D_parent)
// Here the parent-Interest placeholder PIT entry and derivedFlag are
// folded into the single derivationResult f.onObjectProcessorHit already
// computed; this method performs the "synthesize and send" half of
// spec.md's onProcessingData.
func (f *Forwarder) onProcessingData(inFaceId defn.FaceId, entry *table.PitEntry, childInterest *defn.Interest, child *defn.Data) {
	child.IncomingFaceId = optional.Some(defn.FaceIdObjectProcessor)

	strategy := f.strategyFor(entry)
	if strategy != nil {
		strategy.BeforeSatisfyInterest(child, entry, inFaceId)
	}
	f.armStraggler(entry, true, f.freshnessOf(child))
	f.onOutgoingData(child, inFaceId)

	f.cs.Insert(child.Clone(), false)
}

// 4.3.5 onObjectProcessorMiss(inFace, entry, I)
func (f *Forwarder) onObjectProcessorMiss(inFaceId defn.FaceId, entry *table.PitEntry, interest *defn.Interest) {
	entry.InsertOrUpdateInRecord(interest, inFaceId)

	maxExpiry := entry.MaxInRecordExpiry()
	d := time.Until(maxExpiry)
	if d < 0 {
		d = 0
	}
	entry.SetUnsatisfyTimer(f.sched.Schedule(d, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.onInterestUnsatisfied(entry)
	}))

	fibEntry := f.fib.FindLongestPrefixMatch(interest.Name)
	var nexthops []*table.FibNextHopEntry
	if fibEntry != nil {
		nexthops = fibEntry.NextHops()
	}

	strategy := f.strategyFor(entry)
	if strategy != nil {
		strategy.AfterReceiveInterest(interest, entry, inFaceId, nexthops)
	}
}

// 4.3.6 onOutgoingInterest(entry, outFace, wantNewNonce)
func (f *Forwarder) onOutgoingInterest(interest *defn.Interest, entry *table.PitEntry, outFaceId defn.FaceId, wantNewNonce bool) {
	outFace := f.resolveFace(outFaceId)
	if outFaceId == defn.FaceIdInvalid {
		core.Log.Warn(f, "invalid outgoing face for interest", "name", interest.Name.String())
		return
	}
	if !outFace.IsLocal() && isLocalhostScoped(interest.Name) {
		core.Log.Debug(f, "scope violation on outgoing interest", "name", interest.Name.String())
		return
	}

	// Select the in-record to forward: most-recently-renewed in-record
	// whose face is not outFace; if all share outFace, use one of them
	// anyway (spec.md §4.3.6's ad-hoc/vehicular accommodation).
	var best *table.PitInRecord
	var bestOnOutFace *table.PitInRecord
	for faceId, rec := range entry.InRecords() {
		if faceId != outFaceId {
			if best == nil || rec.LastRenewed.After(best.LastRenewed) {
				best = rec
			}
		} else {
			if bestOnOutFace == nil || rec.LastRenewed.After(bestOnOutFace.LastRenewed) {
				bestOnOutFace = rec
			}
		}
	}
	chosen := best
	if chosen == nil {
		chosen = bestOnOutFace
	}

	toSend := interest
	if chosen != nil {
		toSend = chosen.Interest
	}
	out := toSend.Clone()
	if wantNewNonce {
		out.Nonce = core.RandomNonce()
	}

	entry.InsertOrUpdateOutRecord(outFaceId, out)

	if err := outFace.SendInterest(out); err != nil {
		core.Log.Warn(f, "failed to send interest", "name", out.Name.String(), "faceid", outFaceId, "err", err)
		return
	}
	f.nOutInterests++
}

// 4.3.7 onIncomingData(inFace, D)
func (f *Forwarder) onIncomingData(inFaceId defn.FaceId, data *defn.Data) {
	f.nInData++
	data.IncomingFaceId = optional.Some(inFaceId)

	inFace := f.resolveFace(inFaceId)
	if !inFace.IsLocal() && isLocalhostScoped(data.Name) {
		core.Log.Debug(f, "scope violation, dropping data", "name", data.Name.String())
		return
	}

	matches := f.pit.FindAllDataMatches(data)
	if len(matches) == 0 {
		f.onDataUnsolicited(inFaceId, data)
		return
	}

	stripped := data.Clone()
	f.cs.Insert(stripped.Clone(), false)
	f.op.Insert(stripped.Clone(), false)

	now := time.Now()
	pendingDownstreams := make(map[defn.FaceId]struct{})
	for _, entry := range matches {
		for faceId, rec := range entry.InRecords() {
			if rec.Expiry.After(now) {
				pendingDownstreams[faceId] = struct{}{}
			}
		}
	}

	for _, entry := range matches {
		entry.UnsatisfyTimer().Cancel()
		entry.StragglerTimer().Cancel()

		strategy := f.strategyFor(entry)
		if strategy != nil {
			strategy.BeforeSatisfyInterest(stripped, entry, inFaceId)
		}

		if entry.MustBeFresh() {
			fp, ok := stripped.FreshnessPeriod.Get()
			if ok && fp < f.dnlLifetime {
				for _, or := range entry.OutRecords() {
					f.dnl.Add(entry.Name(), or.LatestNonce)
				}
			}
		}

		entry.DeleteInRecords()
		entry.DeleteOutRecord(inFaceId)
		f.armStraggler(entry, true, f.freshnessOf(stripped))
	}

	for faceId := range pendingDownstreams {
		if faceId == inFaceId {
			continue
		}
		f.onOutgoingData(stripped, faceId)
	}
}

// 4.3.8 onDataUnsolicited(inFace, D)
func (f *Forwarder) onDataUnsolicited(inFaceId defn.FaceId, data *defn.Data) {
	inFace := f.resolveFace(inFaceId)
	if !inFace.IsLocal() {
		core.Log.Debug(f, "dropping unsolicited data from non-local face", "name", data.Name.String(), "faceid", inFaceId)
		return
	}
	d := data.Clone()
	f.cs.Insert(d, true)
	f.op.Insert(d.Clone(), true)
}

// 4.3.9 onOutgoingData(D, outFace)
func (f *Forwarder) onOutgoingData(data *defn.Data, outFaceId defn.FaceId) {
	outFace := f.resolveFace(outFaceId)
	if outFaceId == defn.FaceIdInvalid {
		core.Log.Warn(f, "invalid outgoing face for data", "name", data.Name.String())
		return
	}
	if !outFace.IsLocal() && isLocalhostScoped(data.Name) {
		core.Log.Debug(f, "scope violation on outgoing data", "name", data.Name.String())
		return
	}
	if err := outFace.SendData(data); err != nil {
		core.Log.Warn(f, "failed to send data", "name", data.Name.String(), "faceid", outFaceId, "err", err)
		return
	}
	f.nOutData++
}

// 4.3.10 onInterestFinalize(entry, isSatisfied, freshnessPeriod)
func (f *Forwarder) onInterestFinalize(entry *table.PitEntry, isSatisfied bool, freshnessPeriod time.Duration, mustBeFresh bool) {
	insertDnl := !isSatisfied || (isSatisfied && mustBeFresh && freshnessPeriod < f.dnlLifetime)
	if insertDnl {
		for _, or := range entry.OutRecords() {
			f.dnl.Add(entry.Name(), or.LatestNonce)
		}
	}
	entry.UnsatisfyTimer().Cancel()
	entry.StragglerTimer().Cancel()
	f.pit.Erase(entry)
}

// 4.3.11 onInterestUnsatisfied(entry)
func (f *Forwarder) onInterestUnsatisfied(entry *table.PitEntry) {
	strategy := f.strategyFor(entry)
	if strategy != nil {
		strategy.BeforeExpirePendingInterest(entry)
	}
	f.onInterestFinalize(entry, false, 0, entry.MustBeFresh())
}

// 4.3.12 onInterestReject(entry)
func (f *Forwarder) onInterestReject(entry *table.PitEntry) {
	if entry.HasUnexpiredOutRecords() {
		core.Log.Error(f, "strategy rejected an already-forwarded interest", "name", entry.Name().String())
		return
	}
	entry.UnsatisfyTimer().Cancel()
	f.armStraggler(entry, false, 0)
}

// freshnessOf returns data's actual FreshnessPeriod, or f.dnlLifetime (a
// value that can never satisfy the strict "< dnlLifetime" test in
// onInterestFinalize) when data carries none, so a Data with no stated
// freshness is treated as never stale rather than as maximally stale.
func (f *Forwarder) freshnessOf(data *defn.Data) time.Duration {
	if fp, ok := data.FreshnessPeriod.Get(); ok {
		return fp
	}
	return f.dnlLifetime
}

// armStraggler starts the straggler timer that finalizes (and erases)
// entry after T_straggler, the brief grace period spec.md §4.3.2/§4.3.7
// holds a just-satisfied PIT entry alive for (e.g. to absorb a
// retransmission that crosses with the Data in flight). isSatisfied and
// freshnessPeriod are passed straight through to onInterestFinalize so the
// distinct call sites in spec.md §4.3.2/§4.3.4/§4.3.7's satisfied path and
// §4.3.12's reject path each finalize with their own true outcome, instead
// of a single hardcoded (true, dnlLifetime) pair.
func (f *Forwarder) armStraggler(entry *table.PitEntry, isSatisfied bool, freshnessPeriod time.Duration) {
	entry.SetStragglerTimer(f.sched.Schedule(stragglerTime, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.onInterestFinalize(entry, isSatisfied, freshnessPeriod, entry.MustBeFresh())
	}))
}
