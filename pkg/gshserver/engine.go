package gshserver

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// inboundIdleDeadline bounds a single inbound read attempt per tick, so
// a silent peer never starves outbound tick work.
const inboundIdleDeadline = 10 * time.Millisecond

// Serve drives conn.svc from Running to termination: one cooperative
// task, interleaving a bounded inbound read with a MAX_FPS-paced
// on_tick. It is the default Main implementation; services needing
// different scheduling call it explicitly or replace it entirely.
func Serve(ctx context.Context, conn *Conn) error {
	conn.svc.OnStartup(conn)

	lastTick := time.Now()
	frameTime := conn.frameTime()

	for {
		select {
		case <-ctx.Done():
			conn.svc.OnExit(conn)
			return ctx.Err()
		default:
		}

		msg, err := readWithDeadline(conn.codec, inboundIdleDeadline)
		switch {
		case err == nil:
			if terminate := dispatch(conn, msg); terminate {
				conn.svc.OnExit(conn)
				return nil
			}
		case errors.Is(err, wire.ErrTimedOut):
			// No message this tick; proceed straight to on_tick.
		case isTransportClose(err):
			conn.svc.OnExit(conn)
			return nil
		default:
			conn.Log().Warn().Err(err).Msg("gshserver: decode error, dropping message")
		}

		conn.svc.OnTick(conn)

		elapsed := time.Since(lastTick)
		if elapsed < frameTime {
			time.Sleep(frameTime - elapsed)
		}
		lastTick = time.Now()
	}
}

// dispatch routes one inbound ClientMessage during Running. It reports
// whether the connection should terminate.
func dispatch(conn *Conn, msg wire.ClientMessage) bool {
	switch msg.Kind {
	case wire.ClientMsgStatusUpdate:
		if msg.StatusUpdate.Kind == wire.StatusExit {
			return true
		}
		conn.svc.OnEvent(conn, msg)
	case wire.ClientMsgUserInput:
		conn.svc.OnEvent(conn, msg)
	default:
		conn.Log().Debug().Uint8("kind", uint8(msg.Kind)).Msg("gshserver: unexpected message in Running, ignoring")
	}
	return false
}

func readWithDeadline(codec *wire.Codec, d time.Duration) (wire.ClientMessage, error) {
	_ = codec.SetReadDeadline(time.Now().Add(d))
	return codec.ReadClientMessage()
}

// isTransportClose reports whether err means the transport is gone and
// the connection should terminate: a clean EOF (wire.ErrClosed) or any
// non-timeout network error, which covers ECONNRESET/ECONNABORTED/
// ECONNREFUSED/ENOTCONN surfacing as a *net.OpError from the underlying
// conn. A timeout (wire.ErrTimedOut) is deliberately not a close.
func isTransportClose(err error) bool {
	if errors.Is(err, wire.ErrClosed) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return true
	}
	return false
}
