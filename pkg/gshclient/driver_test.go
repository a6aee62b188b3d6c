package gshclient

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamRagstad/gsh/pkg/wire"
)

type fakeServerProvider struct{}

func (fakeServerProvider) Password(string) (string, error)      { return "", nil }
func (fakeServerProvider) PasswordSuccess(string, string) error { return nil }
func (fakeServerProvider) Signature(string, []byte) ([]byte, string, string, error) {
	return nil, "", "", nil
}
func (fakeServerProvider) SignatureSuccess(string, string) error { return nil }

func TestRunAppliesFramesAndForwardsInput(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	serverCodec := wire.NewCodec(a)
	clientCodec := wire.NewCodec(b)

	driver := NewNullDriver()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runDone := make(chan error, 1)
	go func() {
		runDone <- Run(ctx, clientCodec, driver, "host", wire.ClientHello{ProtocolVersion: wire.ProtocolVersion}, fakeServerProvider{})
	}()

	// Minimal server side: hello ack with no auth, one frame, then read
	// the input the driver forwards.
	helloMsg, err := serverCodec.ReadClientMessage()
	require.NoError(t, err)
	assert.Equal(t, wire.ClientMsgHello, helloMsg.Kind)

	require.NoError(t, serverCodec.WriteServerMessage(wire.NewServerHelloAck(wire.ServerHelloAck{})))

	frame := wire.Frame{WindowID: 1, Width: 2, Height: 2, Segments: []wire.Segment{
		{Width: 2, Height: 2, Data: []byte{1, 2, 3, 4}},
	}}
	require.NoError(t, serverCodec.WriteServerMessage(wire.NewServerFrame(frame)))

	driver.Emit(wire.UserInput{WindowID: 1, Kind: wire.InputKey, Key: wire.KeyEvent{KeyCode: 65, Pressed: true}})

	got, err := serverCodec.ReadClientMessage()
	require.NoError(t, err)
	assert.Equal(t, wire.ClientMsgUserInput, got.Kind)
	assert.Equal(t, uint32(65), got.UserInput.Key.KeyCode)

	require.NoError(t, serverCodec.WriteServerMessage(wire.NewServerStatusUpdate(wire.StatusUpdate{Kind: wire.StatusExit})))

	select {
	case err := <-runDone:
		assert.ErrorIs(t, err, ErrRemoteExit)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after server exit")
	}

	require.Len(t, driver.Frames, 1)
	assert.Equal(t, frame, driver.Frames[0])
}
