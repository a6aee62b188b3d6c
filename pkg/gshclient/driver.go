// Package gshclient implements the client-side connection driver: the
// loop that wires inbound Frame/StatusUpdate messages to a
// PresentationDriver and outbound UserInput from its event channel. The
// presentation driver's actual window-system integration is an external
// collaborator; this package ships only the contract and a null
// implementation for tests.
package gshclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/handshake"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// PresentationDriver owns the window system. ApplyFrame uploads a
// frame's segments to the matching local window; Run has already
// decompressed the segment data when compression was negotiated, so
// ApplyFrame receives raw pixel bytes. Events yields outbound UserInput
// produced by local input and window events; Close tears down the
// local window bound to a server window_id.
type PresentationDriver interface {
	ApplyFrame(wire.Frame) error
	Events() <-chan wire.UserInput
	Close(windowID uint32) error
}

// ErrRemoteExit is returned by Run when the server sent
// StatusUpdate{Exit} during steady state.
var ErrRemoteExit = errors.New("gshclient: server closed the connection")

// Run executes the handshake, then drives steady state: inbound Frame
// and StatusUpdate messages are applied to driver, outbound UserInput
// from driver.Events() is written to the server. Run returns when the
// connection ends, ctx is canceled, or the driver's event channel
// closes.
func Run(ctx context.Context, codec *wire.Codec, driver PresentationDriver, host string, hello wire.ClientHello, provider auth.Provider) error {
	outcome, err := handshake.RunClient(ctx, codec, host, hello, provider)
	if err != nil {
		return fmt.Errorf("gshclient: handshake: %w", err)
	}
	if !outcome.AuthSuccess {
		return fmt.Errorf("gshclient: handshake did not succeed")
	}

	compression := outcome.HelloAck.Compression

	inbound := make(chan wire.ServerMessage)
	inboundErr := make(chan error, 1)
	go func() {
		for {
			msg, err := codec.ReadServerMessage()
			if err != nil {
				inboundErr <- err
				return
			}
			inbound <- msg
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case err := <-inboundErr:
			return fmt.Errorf("gshclient: connection lost: %w", err)

		case msg := <-inbound:
			if done, err := handleServerMessage(msg, driver, compression); done {
				return err
			}

		case event, ok := <-driver.Events():
			if !ok {
				return nil
			}
			if err := codec.WriteClientMessage(wire.NewClientUserInput(event)); err != nil {
				return fmt.Errorf("gshclient: write input: %w", err)
			}
		}
	}
}

func handleServerMessage(msg wire.ServerMessage, driver PresentationDriver, compression wire.Compression) (bool, error) {
	switch msg.Kind {
	case wire.ServerMsgFrame:
		frame := msg.Frame
		if compression.Kind != wire.CompressionNone {
			if err := decompressFrame(&frame); err != nil {
				return false, nil // decode error on one frame is not fatal; drop and continue
			}
		}
		_ = driver.ApplyFrame(frame)
		return false, nil

	case wire.ServerMsgStatusUpdate:
		if msg.StatusUpdate.Kind == wire.StatusExit {
			return true, ErrRemoteExit
		}
		return false, nil

	default:
		return false, nil
	}
}
