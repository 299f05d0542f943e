// Package face holds the Face contract (spec.md §3/§6) and its
// FaceTable, along with a handful of concrete transports. The teacher's
// own fw/face package layers a much larger transport/link-service stack
// on top of this same shape (transport interface + transportBase +
// concrete *Transport types registered under a FaceTable); this package
// keeps that layering idiom but trims the interface down to exactly what
// spec.md §6 names as the Face API, since wire encoding, MTU/link-type
// negotiation, and persistency management are out of scope here.
package face

import (
	"fmt"
	"sync"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
)

// Forwarder is the subset of *fw.Forwarder a Face needs to hand inbound
// packets upward, kept as a small local interface to avoid an import
// cycle between face and fw (fw already imports face to send packets
// downward).
type Forwarder interface {
	OnIncomingInterest(inFace defn.FaceId, interest *defn.Interest)
	OnIncomingData(inFace defn.FaceId, data *defn.Data)
}

// Face is spec.md §3/§6's Face: a bidirectional packet endpoint. Real
// transports (WebSocket, in-memory channel) implement this directly;
// onOutgoingInterest/onOutgoingData in the fw package call SendInterest/
// SendData, never touching a transport's internals.
type Face interface {
	Id() defn.FaceId
	IsLocal() bool
	SendInterest(i *defn.Interest) error
	SendData(d *defn.Data) error
	String() string
}

// Table owns every live Face by FaceId, the "arena + indices" ownership
// model spec.md §9 calls for: PIT/FIB records hold a FaceId, not a Face
// pointer, and resolve through the Table, so a face's removal can cascade
// cleanly (spec.md §3's "face removal must cascade to in/out record
// removal").
type Table struct {
	mu      sync.Mutex
	faces   map[defn.FaceId]Face
	nextId  defn.FaceId
	onRemove func(defn.FaceId)
}

// NewTable constructs an empty FaceTable. onRemove, if non-nil, is
// invoked after a face is removed so the Forwarder can cascade FIB/PIT
// cleanup (spec.md §3 ownership).
func NewTable(onRemove func(defn.FaceId)) *Table {
	return &Table{
		faces:    make(map[defn.FaceId]Face),
		nextId:   defn.FaceIdFirst,
		onRemove: onRemove,
	}
}

// Add registers f under a freshly allocated FaceId and returns it.
func (t *Table) Add(makeFace func(id defn.FaceId) Face) defn.FaceId {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextId
	t.nextId++
	t.faces[id] = makeFace(id)
	return id
}

// Get returns the face registered under id, or nil.
func (t *Table) Get(id defn.FaceId) Face {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.faces[id]
}

// Remove tears down the face registered under id, invoking onRemove so
// the caller can cascade table cleanup.
func (t *Table) Remove(id defn.FaceId) {
	t.mu.Lock()
	f, ok := t.faces[id]
	delete(t.faces, id)
	t.mu.Unlock()
	if !ok {
		return
	}
	core.Log.Debug(nil, "face removed", "faceid", id, "face", f.String())
	if t.onRemove != nil {
		t.onRemove(id)
	}
}

// errInvalidFace is returned by SendInterest/SendData on a face that has
// already been torn down, corresponding to spec.md §7's InvalidFace error
// kind.
var errInvalidFace = fmt.Errorf("face: invalid or closed face")
