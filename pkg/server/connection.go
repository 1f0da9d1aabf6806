package server

import (
	"encoding/json"
	"time"

	"github.com/georgbuechner/dissonance/pkg/wire"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// inboundRateLimit and inboundBurst bound how many commands per second a
// single connection may push into its game's inbound queue, per spec §5's
// "a slow/abusive client is dropped, never blocks the tick" — grounding a
// concrete limiter instead of an ad hoc counter.
const (
	inboundRateLimit = 20
	inboundBurst     = 40
)

// Connection wraps one client's websocket, per spec §4.8's bidirectional
// text/binary frame channel: text frames carry JSON Envelopes, the
// binary frame carries an audio upload.
//
// Grounded on the teacher's playerClient (pkg/network/gameserver.go),
// re-expressed over gorilla/websocket instead of raw net.Conn to carry
// the text/binary opcode split spec §4.8 and §6 require.
type Connection struct {
	ID       string
	Username string
	conn     *websocket.Conn
	limiter  *rate.Limiter

	GameID string
	Side   *PlayerSide
}

// NewConnection wraps ws for username, with a fresh ID and inbound
// command rate limiter.
func NewConnection(ws *websocket.Conn, username string) *Connection {
	return &Connection{
		ID:       uuid.NewString(),
		Username: username,
		conn:     ws,
		limiter:  rate.NewLimiter(inboundRateLimit, inboundBurst),
	}
}

// ReadLoop decodes frames from the client until the socket closes,
// routing JSON text frames to Side.Inbound and binary frames to
// onAudioUpload. A connection that exceeds its rate limit has the
// offending frame dropped rather than queued, never blocking the game's
// tick worker.
func (c *Connection) ReadLoop(onAudioUpload func(filename string, payload []byte)) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		if !c.limiter.Allow() {
			logrus.WithFields(logrus.Fields{
				"system_name": "connection",
				"conn_id":     c.ID,
			}).Warn("inbound rate limit exceeded, dropping frame")
			continue
		}

		switch msgType {
		case websocket.BinaryMessage:
			if onAudioUpload == nil {
				continue
			}
			if name, payload, ok := wire.SplitAudioUpload(data); ok {
				onAudioUpload(name, payload)
			}
		case websocket.TextMessage:
			var env wire.Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				logrus.WithError(err).Warn("malformed envelope, dropping frame")
				continue
			}
			if c.Side == nil {
				continue
			}
			select {
			case c.Side.Inbound <- env:
			default:
				logrus.WithFields(logrus.Fields{
					"system_name": "connection",
					"conn_id":     c.ID,
				}).Warn("inbound queue full, dropping command")
			}
		}
	}
}

// WriteLoop drains Side.Outbound and writes each envelope as a text
// frame until stop fires or the connection errors.
func (c *Connection) WriteLoop(stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case env, ok := <-c.Side.Outbound:
			if !ok {
				return
			}
			raw, err := json.Marshal(env)
			if err != nil {
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		}
	}
}

// Close closes the underlying socket with a normal-closure handshake,
// best-effort within a short deadline.
func (c *Connection) Close() {
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.conn.Close()
}
