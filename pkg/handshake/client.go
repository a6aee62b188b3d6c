package handshake

import (
	"context"
	"fmt"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

// RunClient executes the client side of the handshake over codec:
// sends ClientHello, receives ServerHelloAck, and if an auth method was
// advertised obtains credentials from provider, exchanges ClientAuth
// for ServerAuthAck. Only on Success does the caller proceed to steady
// state.
func RunClient(ctx context.Context, codec *wire.Codec, host string, clientHello wire.ClientHello, provider auth.Provider) (Outcome, error) {
	if err := codec.WriteClientMessage(wire.NewClientHello(clientHello)); err != nil {
		return Outcome{Terminated: true}, err
	}

	msg, err := readServer(ctx, codec)
	if err != nil {
		return Outcome{Terminated: true}, err
	}
	if msg.Kind == wire.ServerMsgStatusUpdate && msg.StatusUpdate.Kind == wire.StatusExit {
		return Outcome{Terminated: true}, fmt.Errorf("%w: %s", ErrHandshakeFailed, msg.StatusUpdate.Message)
	}
	if msg.Kind != wire.ServerMsgHelloAck {
		return Outcome{Terminated: true}, fmt.Errorf("%w: expected ServerHelloAck, got kind %d", ErrHandshakeFailed, msg.Kind)
	}
	ack := msg.HelloAck

	switch ack.AuthMethod.Kind {
	case wire.AuthMethodNone:
		return Outcome{HelloAck: ack, AuthSuccess: true}, nil
	case wire.AuthMethodPassword:
		return runClientPasswordAuth(ctx, codec, host, ack, provider)
	case wire.AuthMethodSignature:
		return runClientSignatureAuth(ctx, codec, host, ack, provider)
	default:
		return Outcome{Terminated: true}, fmt.Errorf("%w: unknown auth method %d", ErrHandshakeFailed, ack.AuthMethod.Kind)
	}
}

func runClientPasswordAuth(ctx context.Context, codec *wire.Codec, host string, ack wire.ServerHelloAck, provider auth.Provider) (Outcome, error) {
	password, err := provider.Password(host)
	if err != nil {
		return Outcome{Terminated: true}, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if err := codec.WriteClientMessage(wire.NewClientAuth(wire.ClientAuth{
		AuthData: wire.AuthData{Kind: wire.AuthDataPassword, Password: password},
	})); err != nil {
		return Outcome{Terminated: true}, err
	}

	authAck, terminated, err := readServerAuthAck(ctx, codec)
	if err != nil || terminated {
		return Outcome{HelloAck: ack, Terminated: true}, err
	}
	if authAck.Status != wire.AuthStatusSuccess {
		return Outcome{HelloAck: ack, Terminated: true}, fmt.Errorf("%w: %s", ErrHandshakeFailed, authAck.Message)
	}

	if err := provider.PasswordSuccess(host, password); err != nil {
		return Outcome{HelloAck: ack, AuthSuccess: true}, err
	}
	return Outcome{HelloAck: ack, AuthSuccess: true}, nil
}

func runClientSignatureAuth(ctx context.Context, codec *wire.Codec, host string, ack wire.ServerHelloAck, provider auth.Provider) (Outcome, error) {
	sig, pubPEM, idName, err := provider.Signature(host, ack.AuthMethod.SignMessage)
	if err != nil {
		return Outcome{Terminated: true}, fmt.Errorf("%w: %v", ErrHandshakeFailed, err)
	}
	if err := codec.WriteClientMessage(wire.NewClientAuth(wire.ClientAuth{
		AuthData: wire.AuthData{Kind: wire.AuthDataSignature, SignatureBytes: sig, PublicKeyPEM: pubPEM},
	})); err != nil {
		return Outcome{Terminated: true}, err
	}

	authAck, terminated, err := readServerAuthAck(ctx, codec)
	if err != nil || terminated {
		return Outcome{HelloAck: ack, Terminated: true}, err
	}
	if authAck.Status != wire.AuthStatusSuccess {
		return Outcome{HelloAck: ack, Terminated: true}, fmt.Errorf("%w: %s", ErrHandshakeFailed, authAck.Message)
	}

	if err := provider.SignatureSuccess(host, idName); err != nil {
		return Outcome{HelloAck: ack, AuthSuccess: true}, err
	}
	return Outcome{HelloAck: ack, AuthSuccess: true}, nil
}

func readServerAuthAck(ctx context.Context, codec *wire.Codec) (wire.ServerAuthAck, bool, error) {
	msg, err := readServer(ctx, codec)
	if err != nil {
		return wire.ServerAuthAck{}, true, err
	}
	if msg.Kind == wire.ServerMsgStatusUpdate && msg.StatusUpdate.Kind == wire.StatusExit {
		return wire.ServerAuthAck{}, true, fmt.Errorf("%w: %s", ErrHandshakeFailed, msg.StatusUpdate.Message)
	}
	if msg.Kind != wire.ServerMsgAuthAck {
		return wire.ServerAuthAck{}, true, fmt.Errorf("%w: expected ServerAuthAck, got kind %d", ErrHandshakeFailed, msg.Kind)
	}
	return msg.AuthAck, false, nil
}

func readServer(ctx context.Context, codec *wire.Codec) (wire.ServerMessage, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = codec.SetReadDeadline(deadline)
	}
	return codec.ReadServerMessage()
}
