package fw_test

import (
	"testing"
	"time"

	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
	"github.com/oonfwd/oonfwd/face"
	"github.com/oonfwd/oonfwd/fw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestForwarder(t *testing.T) *fw.Forwarder {
	cfg := core.DefaultConfig()
	cfg.Tables.DnlLifetime = 50 * time.Millisecond
	return fw.New(cfg)
}

// S1 — simple forward and satisfy: a consumer face sends an Interest, the
// forwarder has a FIB route to a producer face, the producer answers, and
// the Data flows back to the consumer.
func TestForwarderSimpleForwardAndSatisfy(t *testing.T) {
	f := newTestForwarder(t)

	var consumer, producer *face.ChannelFace
	cid := f.Faces().Add(func(id defn.FaceId) face.Face {
		consumer = face.NewChannelFace(id, true, f)
		return consumer
	})
	pid := f.Faces().Add(func(id defn.FaceId) face.Face {
		producer = face.NewChannelFace(id, false, f)
		return producer
	})

	f.Fib().AddNextHop(mustName(t, "/vid"), pid, 1)

	interest := &defn.Interest{Name: mustName(t, "/vid/a/seg0"), Nonce: 1, Lifetime: time.Second}
	consumer.Receive(interest)

	select {
	case out := <-producer.OutInterests:
		assert.Equal(t, "/vid/a/seg0", out.Name.String())
	case <-time.After(time.Second):
		t.Fatal("producer never received the interest")
	}

	data := &defn.Data{Name: mustName(t, "/vid/a/seg0"), Content: []byte("hello")}
	producer.ReceiveData(data)

	select {
	case out := <-consumer.OutData:
		assert.Equal(t, []byte("hello"), out.Content)
	case <-time.After(time.Second):
		t.Fatal("consumer never received the data")
	}

	select {
	case <-consumer.OutData:
		t.Fatal("consumer must receive the data exactly once, not a duplicate")
	case <-time.After(50 * time.Millisecond):
	}

	select {
	case <-producer.OutData:
		t.Fatal("the arrival face must not receive an echo of the data it just sent")
	case <-time.After(50 * time.Millisecond):
	}

	_ = cid
}

// S2 — duplicate nonce on a still-pending entry is rejected as a loop:
// the producer face must only see the interest once.
func TestForwarderDuplicateNonceLoop(t *testing.T) {
	f := newTestForwarder(t)

	var consumer, producer *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		consumer = face.NewChannelFace(id, true, f)
		return consumer
	})
	pid := f.Faces().Add(func(id defn.FaceId) face.Face {
		producer = face.NewChannelFace(id, false, f)
		return producer
	})
	f.Fib().AddNextHop(mustName(t, "/vid"), pid, 1)

	interest := &defn.Interest{Name: mustName(t, "/vid/a/seg0"), Nonce: 42, Lifetime: time.Second}
	consumer.Receive(interest)
	<-producer.OutInterests

	// Same name+nonce arrives again from a different face while still pending.
	var other *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		other = face.NewChannelFace(id, true, f)
		return other
	})
	other.Receive(&defn.Interest{Name: mustName(t, "/vid/a/seg0"), Nonce: 42, Lifetime: time.Second})

	select {
	case <-producer.OutInterests:
		t.Fatal("duplicate nonce must not be forwarded again")
	case <-time.After(100 * time.Millisecond):
	}
}

// S3 — Content Store hit: a second Interest for already-cached Data is
// satisfied immediately without touching the FIB/producer at all.
func TestForwarderContentStoreHit(t *testing.T) {
	f := newTestForwarder(t)

	var consumer, producer *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		consumer = face.NewChannelFace(id, true, f)
		return consumer
	})
	pid := f.Faces().Add(func(id defn.FaceId) face.Face {
		producer = face.NewChannelFace(id, false, f)
		return producer
	})
	f.Fib().AddNextHop(mustName(t, "/vid"), pid, 1)

	consumer.Receive(&defn.Interest{Name: mustName(t, "/vid/a/seg0"), Nonce: 1, Lifetime: time.Second})
	<-producer.OutInterests
	producer.ReceiveData(&defn.Data{Name: mustName(t, "/vid/a/seg0"), Content: []byte("cached")})
	<-consumer.OutData

	var second *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		second = face.NewChannelFace(id, true, f)
		return second
	})
	second.Receive(&defn.Interest{Name: mustName(t, "/vid/a/seg0"), Nonce: 2, Lifetime: time.Second})

	select {
	case out := <-second.OutData:
		assert.Equal(t, []byte("cached"), out.Content)
	case <-time.After(time.Second):
		t.Fatal("content store hit should satisfy immediately")
	}

	select {
	case <-producer.OutInterests:
		t.Fatal("content store hit must not reach the producer")
	case <-time.After(50 * time.Millisecond):
	}
}

// S4 — Object Processor derivation: the OP cache holds a higher-bitrate
// variant of the requested segment; the forwarder must derive and answer
// without ever reaching the FIB/producer.
func TestForwarderObjectProcessorDerivation(t *testing.T) {
	f := newTestForwarder(t)

	parent := &defn.Data{Name: mustName(t, "/vid/bunny_2s_500kbit/seg3"), Content: make([]byte, 200)}
	f.ObjectProcessorCache().Insert(parent, false)

	var consumer *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		consumer = face.NewChannelFace(id, true, f)
		return consumer
	})

	consumer.Receive(&defn.Interest{Name: mustName(t, "/vid/bunny_2s_250kbit/seg3"), Nonce: 1, Lifetime: time.Second})

	select {
	case out := <-consumer.OutData:
		assert.Equal(t, "/vid/bunny_2s_250kbit/seg3", out.Name.String())
		assert.Equal(t, 196, len(out.Content))
	case <-time.After(time.Second):
		t.Fatal("object processor hit should derive and answer without a FIB route")
	}
}

// S5 — unsatisfied Interest expires: no FIB route and no cache hit means
// the PIT entry must be finalized (and eventually a late Data arrival no
// longer matches anything).
func TestForwarderUnsatisfiedInterestExpires(t *testing.T) {
	f := newTestForwarder(t)

	var consumer *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		consumer = face.NewChannelFace(id, true, f)
		return consumer
	})

	consumer.Receive(&defn.Interest{Name: mustName(t, "/nowhere/seg0"), Nonce: 1, Lifetime: 20 * time.Millisecond})

	require.Eventually(t, func() bool {
		return f.Pit().FindExact(mustName(t, "/nowhere/seg0")) == nil
	}, time.Second, 10*time.Millisecond, "pit entry must be erased once its lifetime elapses")
}

// S6 — unsolicited Data arriving on a non-local face is dropped and never
// reaches either cache.
func TestForwarderUnsolicitedDataFromRemoteFaceDropped(t *testing.T) {
	f := newTestForwarder(t)

	var remote *face.ChannelFace
	f.Faces().Add(func(id defn.FaceId) face.Face {
		remote = face.NewChannelFace(id, false, f)
		return remote
	})

	remote.ReceiveData(&defn.Data{Name: mustName(t, "/vid/a/seg9"), Content: []byte("unsolicited")})

	var hit bool
	f.ContentStore().Find(&defn.Interest{Name: mustName(t, "/vid/a/seg9")},
		func(d *defn.Data) { hit = true }, func() {})
	assert.False(t, hit, "unsolicited data from a non-local face must not be cached")

	f.ObjectProcessorCache().Find(&defn.Interest{Name: mustName(t, "/vid/a/seg9")},
		func(d *defn.Data) { hit = true }, func() {})
	assert.False(t, hit, "unsolicited data from a non-local face must not reach the object processor cache either")
}
