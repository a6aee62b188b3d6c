// Package handshake drives the fixed Init -> PostHello -> Running /
// Terminated state machine both peers execute immediately after the TLS
// handshake completes.
package handshake

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// SignMessageSize is the length in bytes of the random challenge the
// server picks for signature authentication.
const SignMessageSize = 32

// ErrHandshakeFailed wraps every non-retryable handshake termination:
// unsupported version, missing/invalid password, invalid or rejected
// signature.
var ErrHandshakeFailed = errors.New("handshake: failed")

// ServerHelloSource supplies the initial advertisement and the verifier
// consistent with its declared auth method. gshserver.Service satisfies
// this by having the same two methods.
type ServerHelloSource interface {
	ServerHello() wire.ServerHelloAck
	AuthVerifier() auth.Verifier // nil when ServerHello().AuthMethod.Kind == wire.AuthMethodNone
}

// Outcome is the result of a completed handshake, from either side.
type Outcome struct {
	HelloAck    wire.ServerHelloAck
	AuthSuccess bool
	Terminated  bool
}

// RunServer executes the server side of the handshake over codec. It is
// a plain, synchronous function: the caller (the connection engine, or
// a test) drives it to completion before entering steady state.
func RunServer(ctx context.Context, codec *wire.Codec, supportedVersions []uint32, hello ServerHelloSource) (Outcome, error) {
	msg, err := readClient(ctx, codec)
	if err != nil {
		return Outcome{Terminated: true}, err
	}
	if msg.Kind != wire.ClientMsgHello {
		sendServerExit(codec, "expected ClientHello", wire.ExitReasonProtocolError)
		return Outcome{Terminated: true}, fmt.Errorf("%w: expected ClientHello, got kind %d", ErrHandshakeFailed, msg.Kind)
	}

	if !versionSupported(msg.Hello.ProtocolVersion, supportedVersions) {
		sendServerExit(codec, "unsupported protocol version", wire.ExitReasonUnsupportedVersion)
		return Outcome{Terminated: true}, fmt.Errorf("%w: unsupported protocol version %d", ErrHandshakeFailed, msg.Hello.ProtocolVersion)
	}

	ack := hello.ServerHello()
	if err := codec.WriteServerMessage(wire.NewServerHelloAck(ack)); err != nil {
		return Outcome{Terminated: true}, err
	}

	switch ack.AuthMethod.Kind {
	case wire.AuthMethodNone:
		return Outcome{HelloAck: ack, AuthSuccess: true}, nil
	case wire.AuthMethodPassword:
		return runServerPasswordAuth(ctx, codec, ack, hello.AuthVerifier())
	case wire.AuthMethodSignature:
		return runServerSignatureAuth(ctx, codec, ack, hello.AuthVerifier())
	default:
		sendServerExit(codec, "unknown auth method", wire.ExitReasonProtocolError)
		return Outcome{Terminated: true}, fmt.Errorf("%w: unknown auth method %d", ErrHandshakeFailed, ack.AuthMethod.Kind)
	}
}

func runServerPasswordAuth(ctx context.Context, codec *wire.Codec, ack wire.ServerHelloAck, verifier auth.Verifier) (Outcome, error) {
	pv, ok := verifier.(auth.PasswordVerifier)
	if !ok {
		return failAuth(codec, ack, "server misconfigured: no password verifier")
	}

	msg, err := readClient(ctx, codec)
	if err != nil {
		return Outcome{Terminated: true}, err
	}
	if msg.Kind != wire.ClientMsgAuth || msg.Auth.AuthData.Kind != wire.AuthDataPassword {
		return failAuth(codec, ack, "invalid password")
	}

	if !pv.VerifyPassword(msg.Auth.AuthData.Password) {
		return failAuth(codec, ack, "invalid password")
	}

	if err := codec.WriteServerMessage(wire.NewServerAuthAck(wire.ServerAuthAck{
		Status: wire.AuthStatusSuccess, Message: "Password verified",
	})); err != nil {
		return Outcome{Terminated: true}, err
	}
	return Outcome{HelloAck: ack, AuthSuccess: true}, nil
}

func runServerSignatureAuth(ctx context.Context, codec *wire.Codec, ack wire.ServerHelloAck, verifier auth.Verifier) (Outcome, error) {
	sv, ok := verifier.(auth.SignatureVerifier)
	if !ok {
		return failAuth(codec, ack, "server misconfigured: no signature verifier")
	}

	msg, err := readClient(ctx, codec)
	if err != nil {
		return Outcome{Terminated: true}, err
	}
	if msg.Kind != wire.ClientMsgAuth || msg.Auth.AuthData.Kind != wire.AuthDataSignature {
		return failAuth(codec, ack, "invalid signature")
	}

	pub, err := auth.ParsePKCS1PublicKeyPEM(msg.Auth.AuthData.PublicKeyPEM)
	if err != nil {
		return failAuth(codec, ack, "Invalid public key")
	}

	// Verification proceeds in the fixed order the protocol specifies:
	// decode signature, consult policy verifier, then check the
	// cryptographic signature — each step fails independently so the
	// caller can tell which stage rejected a connection attempt.
	digest := sha256.Sum256(ack.AuthMethod.SignMessage)
	if len(msg.Auth.AuthData.SignatureBytes) == 0 {
		return failAuth(codec, ack, "Invalid signature")
	}

	if !sv.VerifyPublicKey(pub) {
		return failAuth(codec, ack, "Verification failed")
	}

	if err := rsa.VerifyPKCS1v15(pub, crypto.SHA256, digest[:], msg.Auth.AuthData.SignatureBytes); err != nil {
		return failAuth(codec, ack, "Verification failed")
	}

	if err := codec.WriteServerMessage(wire.NewServerAuthAck(wire.ServerAuthAck{
		Status: wire.AuthStatusSuccess, Message: "Signature verified!",
	})); err != nil {
		return Outcome{Terminated: true}, err
	}
	return Outcome{HelloAck: ack, AuthSuccess: true}, nil
}

func failAuth(codec *wire.Codec, ack wire.ServerHelloAck, message string) (Outcome, error) {
	_ = codec.WriteServerMessage(wire.NewServerAuthAck(wire.ServerAuthAck{
		Status: wire.AuthStatusFailure, Message: message,
	}))
	return Outcome{HelloAck: ack, Terminated: true}, fmt.Errorf("%w: %s", ErrHandshakeFailed, message)
}

func readClient(ctx context.Context, codec *wire.Codec) (wire.ClientMessage, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = codec.SetReadDeadline(deadline)
	}
	return codec.ReadClientMessage()
}

func sendServerExit(codec *wire.Codec, message string, reason wire.ExitReason) {
	_ = codec.WriteServerMessage(wire.NewServerStatusUpdate(wire.StatusUpdate{
		Kind: wire.StatusExit, Message: message, ExitReason: reason,
	}))
}

func versionSupported(v uint32, supported []uint32) bool {
	for _, s := range supported {
		if s == v {
			return true
		}
	}
	return false
}

// NewSignMessage produces a fresh SignMessageSize-byte cryptographically
// random challenge for signature auth, picked once per connection at
// hello time.
func NewSignMessage() ([]byte, error) {
	buf := make([]byte, SignMessageSize)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("handshake: generate sign message: %w", err)
	}
	return buf, nil
}
