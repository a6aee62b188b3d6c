package gshserver

import (
	"context"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// Service is the application logic for one connection. A single
// template instance is cloned per accepted connection (see Listen), so
// Service implementations must not share mutable state across clones
// except through explicitly shared, read-only configuration.
type Service interface {
	// Clone returns a fresh instance holding its own per-connection
	// state (e.g. frame buffers); called once per accepted connection.
	Clone() Service

	// ServerHello is the initial advertisement. It must be stable
	// across the connection: consulted once before the handshake, and
	// never re-queried afterward.
	ServerHello() wire.ServerHelloAck

	// AuthVerifier returns the verifier consistent with the auth
	// method declared in ServerHello, or nil when that method is
	// wire.AuthMethodNone.
	AuthVerifier() auth.Verifier

	// OnStartup runs once before the first tick; the conventional place
	// to produce the initial frame.
	OnStartup(conn *Conn)

	// OnTick runs once per engine iteration; the service may call
	// conn.SendFrame/conn.SendStatus to enqueue outbound messages.
	OnTick(conn *Conn)

	// OnEvent runs for each inbound UserInput or non-Exit StatusUpdate,
	// serialized with OnTick so the two are never observed
	// concurrently.
	OnEvent(conn *Conn, event wire.ClientMessage)

	// OnExit runs once, on graceful shutdown or transport loss, and is
	// where the service should release any owned resources.
	OnExit(conn *Conn)

	// Main drives the connection from Running to termination. The
	// blessed default (BaseService.Main) delegates to Serve; a service
	// may override Main to implement a different scheduling strategy.
	Main(ctx context.Context, conn *Conn) error
}

// BaseService provides the default Main implementation. Concrete
// services embed it to inherit Serve-based scheduling.
type BaseService struct{}

// Main delegates to Serve, the connection engine's standard main loop.
func (BaseService) Main(ctx context.Context, conn *Conn) error {
	return Serve(ctx, conn)
}
