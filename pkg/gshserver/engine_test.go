package gshserver

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

type noopService struct {
	BaseService
	ticks []time.Time
}

func (s *noopService) Clone() Service                    { return s }
func (s *noopService) ServerHello() wire.ServerHelloAck   { return wire.ServerHelloAck{} }
func (s *noopService) AuthVerifier() auth.Verifier        { return nil }
func (s *noopService) OnStartup(*Conn)                    {}
func (s *noopService) OnTick(*Conn)                       { s.ticks = append(s.ticks, time.Now()) }
func (s *noopService) OnEvent(*Conn, wire.ClientMessage)  {}
func (s *noopService) OnExit(*Conn)                       {}

// TestTickPacing covers Property 6: under no inbound load, consecutive
// on_tick calls are spaced at least FRAME_TIME apart.
func TestTickPacing(t *testing.T) {
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	const maxFPS = 20
	svc := &noopService{}
	conn := &Conn{
		codec:  wire.NewCodec(a),
		maxFPS: maxFPS,
		log:    zerolog.Nop(),
		svc:    svc,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 220*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		_ = Serve(ctx, conn)
		close(done)
	}()
	<-done

	require.GreaterOrEqual(t, len(svc.ticks), 2)
	minInterval := time.Second / time.Duration(maxFPS)
	tolerance := 5 * time.Millisecond
	for i := 1; i < len(svc.ticks); i++ {
		gap := svc.ticks[i].Sub(svc.ticks[i-1])
		assert.GreaterOrEqual(t, gap, minInterval-tolerance)
	}
}

func TestDispatchExitTerminates(t *testing.T) {
	conn := &Conn{log: zerolog.Nop()}
	terminate := dispatch(conn, wire.NewClientStatusUpdate(wire.StatusUpdate{Kind: wire.StatusExit}))
	assert.True(t, terminate)
}

func TestDispatchUserInputInvokesOnEvent(t *testing.T) {
	var got wire.ClientMessage
	svc := &recordingService{onEvent: func(m wire.ClientMessage) { got = m }}
	conn := &Conn{log: zerolog.Nop(), svc: svc}

	input := wire.NewClientUserInput(wire.UserInput{WindowID: 1, Kind: wire.InputKey})
	terminate := dispatch(conn, input)

	assert.False(t, terminate)
	assert.Equal(t, input, got)
}

type recordingService struct {
	BaseService
	onEvent func(wire.ClientMessage)
}

func (s *recordingService) Clone() Service                  { return s }
func (s *recordingService) ServerHello() wire.ServerHelloAck { return wire.ServerHelloAck{} }
func (s *recordingService) AuthVerifier() auth.Verifier      { return nil }
func (s *recordingService) OnStartup(*Conn)                  {}
func (s *recordingService) OnTick(*Conn)                     {}
func (s *recordingService) OnEvent(_ *Conn, m wire.ClientMessage) {
	if s.onEvent != nil {
		s.onEvent(m)
	}
}
func (s *recordingService) OnExit(*Conn) {}
