// Command gsh-server is an example remote-desktop service, analogous to
// the reference implementation's examples/remote_desktop: it advertises
// one window, captures frames from a FrameSource, and streams
// diff-segmented updates to whatever connects.
package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/WilliamRagstad/gsh/pkg/config"
	"github.com/WilliamRagstad/gsh/pkg/gshlog"
	"github.com/WilliamRagstad/gsh/pkg/gshserver"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("gsh-server: load config")
	}

	logger := gshlog.New(gshlog.ParseLevel(cfg.LogLevel), os.Stderr)

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("gsh-server: load TLS certificate")
	}
	tlsConfig := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier := verifierFromEnv()
	template := newRemoteDesktopService(newSyntheticFrameSource(), verifier)

	listenCfg := gshserver.Config{
		ProtocolVersions: cfg.ProtocolVersions,
		MaxFPS:           cfg.MaxFPS,
		Logger:           logger,
	}

	logger.Info().Str("addr", cfg.ListenAddr).Msg("gsh-server: listening")
	if err := gshserver.Listen(ctx, cfg.ListenAddr, tlsConfig, listenCfg, template); err != nil {
		logger.Fatal().Err(err).Msg("gsh-server: listener stopped")
	}
}
