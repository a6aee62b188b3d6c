package gshserver

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/WilliamRagstad/gsh/pkg/handshake"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// Config carries the per-listener settings the connection engine needs
// but that do not belong on Service itself (they are shared across
// every connection, unlike Service's per-connection state).
type Config struct {
	ProtocolVersions []uint32
	MaxFPS           int
	Logger           zerolog.Logger
}

// Listen accepts TLS connections on addr and spawns one goroutine per
// accepted connection running template.Clone()'s Main: one goroutine
// per connection, no shared mutable state beyond read-only
// configuration. It blocks until ctx is canceled or the listener fails.
func Listen(ctx context.Context, addr string, tlsConfig *tls.Config, cfg Config, template Service) error {
	ln, err := tls.Listen("tcp", addr, tlsConfig)
	if err != nil {
		return fmt.Errorf("gshserver: listen on %s: %w", addr, err)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	logger := cfg.Logger

	for {
		rawConn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("gshserver: accept: %w", err)
			}
		}

		tlsConn, ok := rawConn.(*tls.Conn)
		if !ok {
			rawConn.Close()
			continue
		}

		go handleConnection(ctx, tlsConn, cfg, logger, template)
	}
}

func handleConnection(ctx context.Context, tlsConn *tls.Conn, cfg Config, logger zerolog.Logger, template Service) {
	remote := tlsConn.RemoteAddr().String()
	connID := uuid.NewString()
	connLog := logger.With().Str("remote", remote).Str("conn_id", connID).Logger()
	defer tlsConn.Close()

	svc := template.Clone()
	conn := &Conn{
		codec:      wire.NewCodec(tlsConn),
		maxFPS:     cfg.MaxFPS,
		log:        connLog,
		id:         connID,
		remoteAddr: remote,
		svc:        svc,
	}

	outcome, err := handshake.RunServer(ctx, conn.codec, cfg.ProtocolVersions, svc)
	if err != nil || !outcome.AuthSuccess {
		connLog.Warn().Err(err).Msg("- handshake failed")
		return
	}
	connLog.Info().Msg("+ Client connected")

	if err := svc.Main(ctx, conn); err != nil {
		connLog.Warn().Err(err).Msg("- Client disconnected")
		return
	}
	connLog.Info().Msg("- Client disconnected")
}
