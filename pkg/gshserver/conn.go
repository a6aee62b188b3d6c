package gshserver

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// Conn is the per-connection handle passed to Service hooks: outbound
// message helpers plus the connection's logger, ID, remote address and
// tick rate ceiling.
type Conn struct {
	svc    Service
	codec  *wire.Codec
	maxFPS int
	log    zerolog.Logger

	id         string
	remoteAddr string
}

// MaxFPS returns the configured tick rate ceiling for this connection.
func (c *Conn) MaxFPS() int { return c.maxFPS }

// Log returns the connection-scoped logger (fields for remote address
// and connection ID already attached).
func (c *Conn) Log() *zerolog.Logger { return &c.log }

// ID returns the server-assigned correlation ID for this connection,
// stable for its lifetime and unique across the listener's lifetime.
func (c *Conn) ID() string { return c.id }

// RemoteAddr returns the peer's network address, for logging.
func (c *Conn) RemoteAddr() string { return c.remoteAddr }

// SendFrame enqueues a Frame message for immediate write.
func (c *Conn) SendFrame(f wire.Frame) error {
	return c.codec.WriteServerMessage(wire.NewServerFrame(f))
}

// SendStatus enqueues a StatusUpdate message for immediate write.
func (c *Conn) SendStatus(s wire.StatusUpdate) error {
	return c.codec.WriteServerMessage(wire.NewServerStatusUpdate(s))
}

// frameTime returns the minimum interval between ticks for the
// configured MaxFPS.
func (c *Conn) frameTime() time.Duration {
	if c.maxFPS <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.maxFPS)
}
