package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipe is an in-memory io.ReadWriter standing in for a net.Conn.
type pipe struct {
	bytes.Buffer
}

func TestCodecRoundTripsClientMessages(t *testing.T) {
	cases := []ClientMessage{
		NewClientHello(ClientHello{
			ProtocolVersion: ProtocolVersion,
			OS:              OSLinux,
			OSVersion:       "6.9.0",
			Monitors: []MonitorInfo{
				{MonitorID: 0, X: 0, Y: 0, Width: 1920, Height: 1080, RefreshHz: 60},
			},
		}),
		NewClientAuth(ClientAuth{AuthData: AuthData{Kind: AuthDataPassword, Password: "hunter2"}}),
		NewClientAuth(ClientAuth{AuthData: AuthData{
			Kind:           AuthDataSignature,
			SignatureBytes: []byte{1, 2, 3, 4},
			PublicKeyPEM:   "-----BEGIN RSA PUBLIC KEY-----\n...\n-----END RSA PUBLIC KEY-----\n",
		}}),
		NewClientStatusUpdate(StatusUpdate{Kind: StatusExit, Message: "bye", ExitReason: ExitReasonGeneric}),
		NewClientUserInput(UserInput{WindowID: 7, Kind: InputKey, Key: KeyEvent{KeyCode: 65, Pressed: true}}),
		NewClientUserInput(UserInput{WindowID: 7, Kind: InputMouse, Mouse: MouseEvent{Action: MouseMove, X: 10, Y: -5}}),
		NewClientUserInput(UserInput{WindowID: 7, Kind: InputWindow, Window: WindowEvent{Action: WindowResize, Width: 800, Height: 600}}),
	}

	for _, msg := range cases {
		p := new(pipe)
		codec := NewCodec(p)

		err := codec.WriteClientMessage(msg)
		require.NoError(t, err)

		got, err := codec.ReadClientMessage()
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

func TestCodecRoundTripsServerMessages(t *testing.T) {
	cases := []ServerMessage{
		NewServerHelloAck(ServerHelloAck{
			Format:      PixelFormatRGBA,
			Compression: Compression{Kind: CompressionZstd, Level: 3},
			Windows: []WindowSettings{
				{WindowID: 1, Title: "desktop", InitialMode: WindowModeWindowed, Width: 1280, Height: 720},
			},
			AuthMethod: AuthMethod{Kind: AuthMethodSignature, SignMessage: bytes.Repeat([]byte{0xAB}, 32)},
		}),
		NewServerAuthAck(ServerAuthAck{Status: AuthStatusSuccess, Message: "welcome"}),
		NewServerStatusUpdate(StatusUpdate{Kind: StatusWarning, Message: "slow client"}),
		NewServerFrame(Frame{
			WindowID: 1,
			Width:    1280,
			Height:   720,
			Segments: []Segment{
				{X: 0, Y: 0, Width: 1280, Height: 4, Data: bytes.Repeat([]byte{0x10}, 1280 * 4 * 4)},
			},
		}),
	}

	for _, msg := range cases {
		p := new(pipe)
		codec := NewCodec(p)

		err := codec.WriteServerMessage(msg)
		require.NoError(t, err)

		got, err := codec.ReadServerMessage()
		require.NoError(t, err)
		assert.Equal(t, msg, got)
	}
}

// TestFramingComposesAcrossMessages verifies that writing several
// messages back to back into the same stream and reading them in order
// recovers exactly the original sequence — the stream is not delimited
// by anything other than the length prefixes.
func TestFramingComposesAcrossMessages(t *testing.T) {
	p := new(pipe)
	codec := NewCodec(p)

	msgs := []ServerMessage{
		NewServerStatusUpdate(StatusUpdate{Kind: StatusInfo, Message: "one"}),
		NewServerStatusUpdate(StatusUpdate{Kind: StatusInfo, Message: "two"}),
		NewServerStatusUpdate(StatusUpdate{Kind: StatusInfo, Message: "three"}),
	}
	for _, m := range msgs {
		require.NoError(t, codec.WriteServerMessage(m))
	}
	for _, want := range msgs {
		got, err := codec.ReadServerMessage()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestReadMessageRejectsOversizePayload(t *testing.T) {
	p := new(pipe)
	var lenBuf [4]byte
	lenBuf[0] = 0xFF // absurd length, far beyond MaxPayloadSize
	p.Write(lenBuf[:])

	codec := NewCodec(p)
	_, err := codec.ReadMessage()
	assert.ErrorIs(t, err, ErrOversize)
}

func TestReadMessageReportsClosedStreamOnEOF(t *testing.T) {
	p := new(pipe)
	codec := NewCodec(p)
	_, err := codec.ReadMessage()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestUnmarshalClientMessageRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalClientMessage([]byte{0xEE})
	assert.ErrorIs(t, err, ErrUnknownVariant)
}
