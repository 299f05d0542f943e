package table

import (
	"time"

	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/sched"
)

// PitInRecord is spec.md §3's InRecord: {face, interest, lastRenewed,
// expiry, nonce}. Field names follow the teacher's fw/table/pit-cs_test.go
// PitInRecord.
type PitInRecord struct {
	Face         defn.FaceId
	Interest     *defn.Interest
	LatestNonce  uint32
	LastRenewed  time.Time
	Expiry       time.Time
}

// PitOutRecord is spec.md §3's OutRecord: {face, lastNonce, lastRenewed,
// expiry}.
type PitOutRecord struct {
	Face        defn.FaceId
	LatestNonce uint32
	LastRenewed time.Time
	Expiry      time.Time
}

// Duplicate-nonce classification returned by PitEntry.FindNonce, per
// spec.md §4.2.
type DuplicateNonceWhere int

const (
	DuplicateNonceNone        DuplicateNonceWhere = 0
	DuplicateNonceInSameFace  DuplicateNonceWhere = 1 << 0
	DuplicateNonceInOtherFace DuplicateNonceWhere = 1 << 1
	DuplicateNonceOutSameFace DuplicateNonceWhere = 1 << 2
	DuplicateNonceOutOtherFace DuplicateNonceWhere = 1 << 3
)

// PitEntry is spec.md §3's PIT entry, keyed by Name.
type PitEntry struct {
	name        defn.Name
	mustBeFresh bool // aggregate across in-records: true if any downstream requires freshness

	inRecords  map[defn.FaceId]*PitInRecord
	outRecords map[defn.FaceId]*PitOutRecord

	unsatisfyTimer sched.EventId
	stragglerTimer sched.EventId
}

// Name returns the entry's name.
func (e *PitEntry) Name() defn.Name { return e.name }

// MustBeFresh returns the aggregate freshness constraint across in-records.
func (e *PitEntry) MustBeFresh() bool { return e.mustBeFresh }

// InRecords returns the entry's in-records, keyed by face.
func (e *PitEntry) InRecords() map[defn.FaceId]*PitInRecord { return e.inRecords }

// OutRecords returns the entry's out-records, keyed by face.
func (e *PitEntry) OutRecords() map[defn.FaceId]*PitOutRecord { return e.outRecords }

// HasUnexpiredOutRecords reports whether any out-record has not yet
// expired, per spec.md §4.3.12's onInterestReject guard.
func (e *PitEntry) HasUnexpiredOutRecords() bool {
	now := time.Now()
	for _, or := range e.outRecords {
		if or.Expiry.After(now) {
			return true
		}
	}
	return false
}

// InsertOrUpdateInRecord inserts a new in-record, or refreshes an
// existing one on the same face, returning the record, whether it
// already existed, and (if it did) the nonce it previously carried.
func (e *PitEntry) InsertOrUpdateInRecord(interest *defn.Interest, face defn.FaceId) (rec *PitInRecord, existed bool, prevNonce uint32) {
	now := time.Now()
	if r, ok := e.inRecords[face]; ok {
		prevNonce = r.LatestNonce
		r.Interest = interest
		r.LatestNonce = interest.Nonce
		r.LastRenewed = now
		r.Expiry = now.Add(interest.Lifetime)
		if interest.MustBeFresh {
			e.mustBeFresh = true
		}
		return r, true, prevNonce
	}
	r := &PitInRecord{
		Face:        face,
		Interest:    interest,
		LatestNonce: interest.Nonce,
		LastRenewed: now,
		Expiry:      now.Add(interest.Lifetime),
	}
	if e.inRecords == nil {
		e.inRecords = make(map[defn.FaceId]*PitInRecord)
	}
	e.inRecords[face] = r
	if interest.MustBeFresh {
		e.mustBeFresh = true
	}
	return r, false, 0
}

// InsertOrUpdateOutRecord inserts or refreshes the out-record for face,
// per spec.md §4.3.6.
func (e *PitEntry) InsertOrUpdateOutRecord(face defn.FaceId, interest *defn.Interest) *PitOutRecord {
	now := time.Now()
	if e.outRecords == nil {
		e.outRecords = make(map[defn.FaceId]*PitOutRecord)
	}
	r, ok := e.outRecords[face]
	if !ok {
		r = &PitOutRecord{Face: face}
		e.outRecords[face] = r
	}
	r.LatestNonce = interest.Nonce
	r.LastRenewed = now
	r.Expiry = now.Add(interest.Lifetime)
	return r
}

// DeleteInRecords clears all in-records, per spec.md §4.3.7 step 6.
func (e *PitEntry) DeleteInRecords() {
	e.inRecords = make(map[defn.FaceId]*PitInRecord)
}

// DeleteOutRecord removes the out-record for face, if any.
func (e *PitEntry) DeleteOutRecord(face defn.FaceId) {
	delete(e.outRecords, face)
}

// FindNonce classifies whether nonce has already been seen on this
// entry, per spec.md §4.2.
func (e *PitEntry) FindNonce(nonce uint32, inFace defn.FaceId) DuplicateNonceWhere {
	where := DuplicateNonceNone
	for face, r := range e.inRecords {
		if r.LatestNonce == nonce {
			if face == inFace {
				where |= DuplicateNonceInSameFace
			} else {
				where |= DuplicateNonceInOtherFace
			}
		}
	}
	for face, r := range e.outRecords {
		if r.LatestNonce == nonce {
			if face == inFace {
				where |= DuplicateNonceOutSameFace
			} else {
				where |= DuplicateNonceOutOtherFace
			}
		}
	}
	return where
}

// MaxInRecordExpiry returns the latest expiry across all in-records, used
// to arm the unsatisfy timer (spec.md §4.3.5).
func (e *PitEntry) MaxInRecordExpiry() time.Time {
	var max time.Time
	for _, r := range e.inRecords {
		if r.Expiry.After(max) {
			max = r.Expiry
		}
	}
	return max
}

// Pit is the Pending Interest Table (spec.md §4.2): in-flight Interests
// keyed by name, sharing a NameTree with the FIB.
type Pit struct {
	tree *NameTree
}

// NewPit constructs a Pit sharing the given NameTree.
func NewPit(tree *NameTree) *Pit {
	return &Pit{tree: tree}
}

// Insert locates or creates the PIT entry for interest.Name, returning
// the entry and whether it was newly created, per spec.md §4.2.
func (p *Pit) Insert(interest *defn.Interest) (*PitEntry, bool) {
	node := p.tree.Lookup(interest.Name)
	if node.pit != nil {
		return node.pit, false
	}
	node.pit = &PitEntry{name: interest.Name.Clone()}
	return node.pit, true
}

// FindExact returns the PIT entry at exactly name, or nil.
func (p *Pit) FindExact(name defn.Name) *PitEntry {
	node := p.tree.FindExactMatch(name)
	if node == nil {
		return nil
	}
	return node.pit
}

// FindAllDataMatches returns every PIT entry whose name is a prefix of
// data.Name and which data satisfies, per spec.md §4.2. Because this
// design keys PIT entries by exact name (spec.md §3), and Data can only
// satisfy an Interest whose name it exactly matches or of which it is a
// longer, more specific name (spec.md's "prefix" wording covers both
// plain Interests and those using prefix forms at a higher layer that
// this engine doesn't itself implement — see SPEC_FULL.md), we walk the
// PIT entries anchored at every NameTree ancestor of data.Name.
func (p *Pit) FindAllDataMatches(data *defn.Data) []*PitEntry {
	// Start from the deepest existing NameTree node on data.Name's path
	// (the exact-match node if it exists) and walk up to the root,
	// collecting every PIT entry found along the way: each such entry's
	// name is, by construction, a prefix of (or equal to) data.Name.
	chain := p.tree.deepestExisting(data.Name)
	var out []*PitEntry
	for _, node := range chain {
		if node.pit != nil && entrySatisfied(node.pit, data) {
			out = append(out, node.pit)
		}
	}
	return out
}

func entrySatisfied(e *PitEntry, data *defn.Data) bool {
	if !e.mustBeFresh {
		return true
	}
	fp, ok := data.FreshnessPeriod.Get()
	return !ok || fp > 0
}

// RemoveFace drops faceId from every PIT entry's in-records and
// out-records, used when a face is torn down (spec.md §3 ownership:
// "a record's face pointer is a weak reference in the sense that face
// removal must cascade to in/out record removal"), mirroring Fib.RemoveFace.
// An entry left with no in-records at all has nothing left to satisfy, so
// its unsatisfy timer is cancelled along with the record removal; the
// entry itself is not erased here (Erase is the Forwarder's call, via
// onInterestFinalize, once it has also handled DNL bookkeeping).
func (p *Pit) RemoveFace(faceId defn.FaceId) {
	var walk func(n *nameTreeNode)
	walk = func(n *nameTreeNode) {
		if n.pit != nil {
			e := n.pit
			delete(e.inRecords, faceId)
			delete(e.outRecords, faceId)
			if len(e.inRecords) == 0 {
				e.unsatisfyTimer.Cancel()
			}
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(p.tree.root)
}

// Erase removes all records and the entry itself, per spec.md §4.2.
func (p *Pit) Erase(e *PitEntry) {
	e.unsatisfyTimer.Cancel()
	e.stragglerTimer.Cancel()
	node := p.tree.FindExactMatch(e.name)
	if node == nil {
		return
	}
	node.pit = nil
	p.tree.prune(node)
}

// UnsatisfyTimer / StragglerTimer accessors + setters, used by the
// Forwarder to arm/cancel the two PIT timers (spec.md §3/§4.3).
func (e *PitEntry) UnsatisfyTimer() sched.EventId        { return e.unsatisfyTimer }
func (e *PitEntry) SetUnsatisfyTimer(ev sched.EventId)    { e.unsatisfyTimer = ev }
func (e *PitEntry) StragglerTimer() sched.EventId         { return e.stragglerTimer }
func (e *PitEntry) SetStragglerTimer(ev sched.EventId)    { e.stragglerTimer = ev }
