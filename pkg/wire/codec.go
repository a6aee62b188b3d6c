// Package wire implements the gsh envelope codec and message schema:
// a 4-byte big-endian length prefix followed by a serialized
// ClientMessage or ServerMessage payload.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"
)

// MaxPayloadSize bounds a single message payload. Large enough to carry
// an uncompressed full-frame segment at common desktop resolutions.
const MaxPayloadSize = 32 << 20 // 32 MiB

var (
	// ErrIncomplete names the incomplete-input error kind. Codec never
	// returns it: ReadMessage blocks until the full frame arrives, a
	// stream that ends mid-frame yields ErrClosed, and an expired read
	// deadline yields ErrTimedOut.
	ErrIncomplete = errors.New("wire: incomplete message")
	// ErrClosed signals a clean end-of-stream.
	ErrClosed = errors.New("wire: stream closed")
	// ErrOversize signals a length prefix beyond MaxPayloadSize.
	ErrOversize = errors.New("wire: payload exceeds maximum size")
	// ErrTimedOut signals the bounded idle read deadline elapsed with no
	// complete message available. Not a fatal error during Running.
	ErrTimedOut = errors.New("wire: read timed out")
)

// Codec wraps a duplex byte stream and frames messages on it. The zero
// value is not usable; construct with NewCodec.
type Codec struct {
	rw io.ReadWriter

	readMu  sync.Mutex
	writeMu sync.Mutex

	lenBuf [4]byte
}

// NewCodec wraps rw (typically a *tls.Conn) for framed message I/O.
func NewCodec(rw io.ReadWriter) *Codec {
	return &Codec{rw: rw}
}

// SetReadDeadline forwards a deadline to the underlying connection if it
// supports one. The connection engine uses this to bound inbound reads
// to a short idle window (see gshserver).
func (c *Codec) SetReadDeadline(d time.Time) error {
	conn, ok := c.rw.(net.Conn)
	if !ok {
		return nil
	}
	return conn.SetReadDeadline(d)
}

// ReadMessage blocks until the next complete payload is read, or fails
// with ErrClosed, ErrOversize, ErrTimedOut or another transport error.
func (c *Codec) ReadMessage() ([]byte, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	if _, err := io.ReadFull(c.rw, c.lenBuf[:]); err != nil {
		return nil, classifyReadErr(err)
	}

	length := binary.BigEndian.Uint32(c.lenBuf[:])
	if length > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrOversize, length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(c.rw, payload); err != nil {
		return nil, classifyReadErr(err)
	}
	return payload, nil
}

// WriteMessage writes the length prefix and payload as a single buffer
// to minimize syscalls, serialized against concurrent writers.
func (c *Codec) WriteMessage(payload []byte) error {
	if len(payload) > MaxPayloadSize {
		return fmt.Errorf("%w: %d bytes", ErrOversize, len(payload))
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(payload)))
	copy(buf[4:], payload)

	_, err := c.rw.Write(buf)
	return err
}

// ReadClientMessage reads and decodes one ClientMessage.
func (c *Codec) ReadClientMessage() (ClientMessage, error) {
	payload, err := c.ReadMessage()
	if err != nil {
		return ClientMessage{}, err
	}
	return UnmarshalClientMessage(payload)
}

// WriteClientMessage encodes and writes one ClientMessage.
func (c *Codec) WriteClientMessage(m ClientMessage) error {
	payload, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return c.WriteMessage(payload)
}

// ReadServerMessage reads and decodes one ServerMessage.
func (c *Codec) ReadServerMessage() (ServerMessage, error) {
	payload, err := c.ReadMessage()
	if err != nil {
		return ServerMessage{}, err
	}
	return UnmarshalServerMessage(payload)
}

// WriteServerMessage encodes and writes one ServerMessage.
func (c *Codec) WriteServerMessage(m ServerMessage) error {
	payload, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	return c.WriteMessage(payload)
}

func classifyReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrClosed
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		return ErrTimedOut
	}
	return err
}
