package face

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/oonfwd/oonfwd/core"
	"github.com/oonfwd/oonfwd/defn"
)

// wireMessage is the local-app framing used over a WebSocket connection.
// The TLV wire codec proper is out of scope (spec.md §1); this is the
// minimal JSON envelope that stands in for it, the same way the
// teacher's WebSocketTransport only concerns itself with framing and
// hands decoded packets to its link service — here the "decode" step is
// json.Unmarshal instead of TLV parsing.
type wireMessage struct {
	Kind     string        `json:"kind"` // "interest" or "data"
	Interest *defn.Interest `json:"interest,omitempty"`
	Data     *defn.Data     `json:"data,omitempty"`
}

// WebSocketFace communicates with a local web application over a
// gorilla/websocket connection, adapted from the teacher's
// fw/face/web-socket-transport.go WebSocketTransport onto this module's
// much smaller Face interface (no link-service layering, no MTU/
// persistency negotiation).
type WebSocketFace struct {
	id      defn.FaceId
	isLocal bool
	conn    *websocket.Conn
	fwd     Forwarder
	closed  bool
}

// NewWebSocketFace wraps an accepted *websocket.Conn as a Face, treating
// loopback remote addresses as local per the teacher's own scope
// determination in NewWebSocketTransport.
func NewWebSocketFace(id defn.FaceId, conn *websocket.Conn, fwd Forwarder) *WebSocketFace {
	isLocal := false
	if host, _, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
			isLocal = true
		}
	}
	return &WebSocketFace{id: id, isLocal: isLocal, conn: conn, fwd: fwd}
}

func (f *WebSocketFace) Id() defn.FaceId { return f.id }
func (f *WebSocketFace) IsLocal() bool   { return f.isLocal }
func (f *WebSocketFace) String() string {
	return fmt.Sprintf("web-socket-face(id=%d remote=%s)", f.id, f.conn.RemoteAddr())
}

// SendInterest frames i as JSON and writes it as a binary WebSocket
// message, closing the face on write failure — the teacher's own
// "unable to send on socket - face down" rule.
func (f *WebSocketFace) SendInterest(i *defn.Interest) error {
	return f.send(wireMessage{Kind: "interest", Interest: i})
}

// SendData frames d as JSON and writes it as a binary WebSocket message.
func (f *WebSocketFace) SendData(d *defn.Data) error {
	return f.send(wireMessage{Kind: "data", Data: d})
}

func (f *WebSocketFace) send(msg wireMessage) error {
	if f.closed {
		return errInvalidFace
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := f.conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		core.Log.Warn(f, "unable to send on socket, closing face")
		f.Close()
		return err
	}
	return nil
}

// RunReceive reads frames in a loop, decoding and handing them to the
// wired Forwarder, until the connection closes — the teacher's
// runReceive loop, generalized to this module's JSON framing.
func (f *WebSocketFace) RunReceive() {
	defer f.Close()
	for {
		mt, message, err := f.conn.ReadMessage()
		if err != nil {
			core.Log.Debug(f, "web socket closed", "err", err)
			return
		}
		if mt != websocket.BinaryMessage && mt != websocket.TextMessage {
			continue
		}
		var msg wireMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			core.Log.Warn(f, "malformed frame", "err", err)
			continue
		}
		switch msg.Kind {
		case "interest":
			if msg.Interest != nil && f.fwd != nil {
				f.fwd.OnIncomingInterest(f.id, msg.Interest)
			}
		case "data":
			if msg.Data != nil && f.fwd != nil {
				f.fwd.OnIncomingData(f.id, msg.Data)
			}
		}
	}
}

// Close shuts down the underlying connection.
func (f *WebSocketFace) Close() {
	if f.closed {
		return
	}
	f.closed = true
	_ = f.conn.Close()
}

// upgrader is the gorilla/websocket upgrader used by the listening side
// of the local-app transport (spec.md §6's face layer, wired in
// cmd/oonfwd/main.go).
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Upgrader exposes the shared websocket.Upgrader for use by the listener
// set up in cmd/oonfwd.
func Upgrader() *websocket.Upgrader { return &upgrader }
