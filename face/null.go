package face

import (
	"fmt"

	"github.com/oonfwd/oonfwd/defn"
)

// NullFace is a face that drops everything sent to it, used to back the
// two reserved FaceIds spec.md §3/§6 names (CONTENT_STORE,
// OBJECT_PROCESSOR): neither is a real transport, but onOutgoingData
// still needs somewhere to stamp IncomingFaceId and log against.
// Grounded on the teacher's fw/face/null-transport.go NullTransport,
// trimmed to this module's much smaller Face interface.
type NullFace struct {
	id      defn.FaceId
	isLocal bool
}

// NewNullFace constructs a NullFace for the given reserved id.
func NewNullFace(id defn.FaceId) *NullFace {
	return &NullFace{id: id, isLocal: true}
}

func (f *NullFace) Id() defn.FaceId   { return f.id }
func (f *NullFace) IsLocal() bool     { return f.isLocal }
func (f *NullFace) String() string    { return fmt.Sprintf("null-face(id=%d)", f.id) }

// SendInterest is a no-op: the reserved faces never originate Interests.
func (f *NullFace) SendInterest(i *defn.Interest) error { return nil }

// SendData is a no-op: the reserved faces are sources, not sinks, for
// onOutgoingData (a Content Store or Object Processor hit sends on the
// *requesting* face, never back to itself).
func (f *NullFace) SendData(d *defn.Data) error { return nil }

// InvalidFace backs defn.FaceIdInvalid: every send fails, matching
// spec.md §4.3.6/§4.3.9's "invalid face -> warn, drop" rule.
type InvalidFace struct{}

func (f *InvalidFace) Id() defn.FaceId                  { return defn.FaceIdInvalid }
func (f *InvalidFace) IsLocal() bool                    { return false }
func (f *InvalidFace) String() string                   { return "invalid-face" }
func (f *InvalidFace) SendInterest(i *defn.Interest) error { return errInvalidFace }
func (f *InvalidFace) SendData(d *defn.Data) error         { return errInvalidFace }
