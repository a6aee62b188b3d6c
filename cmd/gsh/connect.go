package main

import (
	"context"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/gshclient"
	"github.com/WilliamRagstad/gsh/pkg/gshlog"
	"github.com/WilliamRagstad/gsh/pkg/hostkeys"
	"github.com/WilliamRagstad/gsh/pkg/identity"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

func newConnectCmd() *cobra.Command {
	var port int
	var insecure bool
	var idName string

	cmd := &cobra.Command{
		Use:   "gsh <host>",
		Short: "Connect to a gsh-server host",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConnect(args[0], port, insecure, idName)
		},
	}
	cmd.Flags().IntVar(&port, "port", 1122, "server port")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip certificate fingerprint verification (unsafe)")
	cmd.Flags().StringVar(&idName, "id", "", "identity name to use for signature auth")
	return cmd
}

func runConnect(host string, port int, insecure bool, idName string) error {
	logger := gshlog.New(gshlog.ParseLevel("info"), os.Stderr)
	dir := gshDir()

	hostsStore, err := hostkeys.Load(dir)
	if err != nil {
		return fmt.Errorf("load known hosts: %w", err)
	}
	idStore, err := identity.Load(dir)
	if err != nil {
		return fmt.Errorf("load identities: %w", err)
	}

	hostLabel := net.JoinHostPort(host, strconv.Itoa(port))

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true, // we do our own fingerprint-based verification below
		MinVersion:         tls.VersionTLS13,
	}
	if !insecure {
		tlsConfig.VerifyConnection = func(cs tls.ConnectionState) error {
			return verifyOrAcceptChain(hostsStore, hostLabel, cs.PeerCertificates)
		}
	} else {
		logger.Warn().Msg("gsh: --insecure set, skipping certificate fingerprint verification")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var dialer net.Dialer
	rawConn, err := dialer.DialContext(ctx, "tcp", hostLabel)
	if err != nil {
		return fmt.Errorf("dial %s: %w", hostLabel, err)
	}
	tlsConn := tls.Client(rawConn, tlsConfig)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		tlsConn.Close()
		return fmt.Errorf("tls handshake: %w", err)
	}
	defer tlsConn.Close()

	provider := &auth.InteractiveProvider{
		Hosts:            hostsStore,
		Identities:       idStore,
		IdentityOverride: idName,
		Prompt:           promptLine,
		Confirm:          promptConfirm,
	}

	hello := wire.ClientHello{
		ProtocolVersion: wire.ProtocolVersion,
		OS:              wire.OSLinux,
		OSVersion:       "unknown",
	}

	codec := wire.NewCodec(tlsConn)
	driver := gshclient.NewNullDriver()

	err = gshclient.Run(ctx, codec, driver, hostLabel, hello, provider)
	if err != nil && !errors.Is(err, gshclient.ErrRemoteExit) && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func verifyOrAcceptChain(store *hostkeys.Store, host string, chain []*x509.Certificate) error {
	err := store.Verify(host, chain)
	if err == nil {
		return nil
	}
	if !errors.Is(err, hostkeys.ErrUnknownHost) {
		return err
	}

	fmt.Fprintf(os.Stderr, "The authenticity of host %q can't be established.\n", host)
	for _, cert := range chain {
		sum := sha256.Sum256(cert.Raw)
		fmt.Fprintf(os.Stderr, "  fingerprint: %s\n", base64.StdEncoding.EncodeToString(sum[:]))
	}
	ok, promptErr := promptConfirm("Are you sure you want to continue connecting?")
	if promptErr != nil {
		return promptErr
	}
	if !ok {
		return fmt.Errorf("host key verification refused for %s", host)
	}
	return store.Accept(host, chain)
}
