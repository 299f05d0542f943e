package face

import (
	"fmt"

	"github.com/oonfwd/oonfwd/defn"
)

// ChannelFace is an in-process face backed by Go channels, used by the
// forwarder's own tests to stand in for a real transport the way the
// teacher's NullTransport stands in for "no transport" — except
// ChannelFace actually delivers packets, letting a test assert on what a
// simulated downstream or upstream peer received.
type ChannelFace struct {
	id      defn.FaceId
	isLocal bool

	OutInterests chan *defn.Interest
	OutData      chan *defn.Data

	fwd    Forwarder
	closed bool
}

// NewChannelFace constructs a ChannelFace that hands its own sent packets
// to buffered channels for test inspection, and (if fwd is non-nil) can
// simulate inbound packets by calling fwd.OnIncomingInterest/OnIncomingData
// directly.
func NewChannelFace(id defn.FaceId, isLocal bool, fwd Forwarder) *ChannelFace {
	return &ChannelFace{
		id:           id,
		isLocal:      isLocal,
		OutInterests: make(chan *defn.Interest, 64),
		OutData:      make(chan *defn.Data, 64),
		fwd:          fwd,
	}
}

func (f *ChannelFace) Id() defn.FaceId { return f.id }
func (f *ChannelFace) IsLocal() bool   { return f.isLocal }
func (f *ChannelFace) String() string  { return fmt.Sprintf("channel-face(id=%d)", f.id) }

// SendInterest delivers i to OutInterests for test inspection.
func (f *ChannelFace) SendInterest(i *defn.Interest) error {
	if f.closed {
		return errInvalidFace
	}
	f.OutInterests <- i
	return nil
}

// SendData delivers d to OutData for test inspection.
func (f *ChannelFace) SendData(d *defn.Data) error {
	if f.closed {
		return errInvalidFace
	}
	f.OutData <- d
	return nil
}

// Receive simulates an inbound Interest arriving on this face, handing it
// straight to the wired Forwarder.
func (f *ChannelFace) Receive(i *defn.Interest) {
	if f.fwd != nil {
		f.fwd.OnIncomingInterest(f.id, i)
	}
}

// ReceiveData simulates an inbound Data arriving on this face.
func (f *ChannelFace) ReceiveData(d *defn.Data) {
	if f.fwd != nil {
		f.fwd.OnIncomingData(f.id, d)
	}
}

// Close marks the face closed; further sends fail.
func (f *ChannelFace) Close() { f.closed = true }
