package defn

import (
	"time"

	"github.com/oonfwd/oonfwd/types/optional"
)

// FaceId identifies a Face. Reserved values below are stable, per
// spec.md §6, matching forwarder.cpp's FACEID_CONTENT_STORE /
// FACEID_OBJECT_PROCESSOR / INVALID_FACEID.
type FaceId uint64

const (
	// FaceIdInvalid marks an unset or torn-down face.
	FaceIdInvalid FaceId = 0
	// FaceIdContentStore is the synthetic source face for Content Store hits.
	FaceIdContentStore FaceId = 1
	// FaceIdObjectProcessor is the synthetic source face for OP-derived Data.
	FaceIdObjectProcessor FaceId = 2
	// FaceIdFirst is the first FaceId a FaceTable will hand out to a real face.
	FaceIdFirst FaceId = 256
)

// SignatureInfo is an opaque, pass-through signature envelope. Per
// spec.md §1 this engine performs no signature verification; the value
// is only ever copied or, for OP-derived Data, replaced with the
// placeholder onProcessingData uses (type 255, value 0), mirroring
// forwarder.cpp's onProcessingData.
type SignatureInfo struct {
	Type  uint8
	Value []byte
}

// Interest is spec.md §3's Interest: immutable on the wire, with
// IncomingFaceId as an inbound annotation stamped by onIncomingInterest.
type Interest struct {
	Name            Name
	Nonce           uint32
	Lifetime        time.Duration
	MustBeFresh     bool
	IncomingFaceId  optional.Optional[FaceId]
}

// Clone returns a copy of the Interest, used when onOutgoingInterest must
// rewrite the Nonce without mutating the shared in-record Interest.
func (i *Interest) Clone() *Interest {
	cp := *i
	cp.Name = i.Name.Clone()
	return &cp
}

// Data is spec.md §3's Data. FreshnessPeriod absent (IsSet()==false)
// means "never stale", per spec.md §3.
type Data struct {
	Name            Name
	Content         []byte
	FreshnessPeriod optional.Optional[time.Duration]
	Signature       SignatureInfo
	IncomingFaceId  optional.Optional[FaceId]
}

// Clone returns a deep copy of Data, used before inserting into a cache
// so the cached entry can't be mutated through an alias (forwarder.cpp's
// "copy of Data is relatively cheap" comment in onIncomingData motivates
// the same copy-before-cache step here).
func (d *Data) Clone() *Data {
	cp := *d
	cp.Name = d.Name.Clone()
	cp.Content = append([]byte(nil), d.Content...)
	cp.Signature.Value = append([]byte(nil), d.Signature.Value...)
	return &cp
}

// Satisfies reports whether d meets interest I's freshness constraint per
// spec.md §4.2's findAllDataMatches contract: if I.MustBeFresh, d must
// not be stale (FreshnessPeriod absent means never stale). Names are not
// compared here.
func (i *Interest) Satisfies(d *Data) bool {
	if !i.MustBeFresh {
		return true
	}
	fp, ok := d.FreshnessPeriod.Get()
	return !ok || fp > 0
}

// SatisfiesCached is Satisfies for a Data held in a cache since
// insertionTime (spec.md §3/§4's CS entry contract), where staleness is
// a function of elapsed wall-clock time rather than the static presence
// of a freshness period: d is fresh only while time.Since(insertionTime)
// is still within its FreshnessPeriod.
func (i *Interest) SatisfiesCached(d *Data, insertionTime time.Time) bool {
	if !i.MustBeFresh {
		return true
	}
	fp, ok := d.FreshnessPeriod.Get()
	if !ok {
		return true
	}
	return time.Since(insertionTime) < fp
}
