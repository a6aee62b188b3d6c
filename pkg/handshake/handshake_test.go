package handshake

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WilliamRagstad/gsh/pkg/auth"
	"github.com/WilliamRagstad/gsh/pkg/wire"
)

type staticHello struct {
	ack      wire.ServerHelloAck
	verifier auth.Verifier
}

func (s staticHello) ServerHello() wire.ServerHelloAck { return s.ack }
func (s staticHello) AuthVerifier() auth.Verifier      { return s.verifier }

// fakeProvider is a hand-written auth.Provider test double — no gomock
// dependency is carried by this module, so fakes are written directly.
type fakeProvider struct {
	password     string
	signKeyPEM   *rsa.PrivateKey
	pubPEM       string
	idName       string
	successCalls int
}

func (f *fakeProvider) Password(string) (string, error) { return f.password, nil }
func (f *fakeProvider) PasswordSuccess(string, string) error {
	f.successCalls++
	return nil
}
func (f *fakeProvider) Signature(_ string, signMessage []byte) ([]byte, string, string, error) {
	digest := sha256.Sum256(signMessage)
	sig, err := rsa.SignPKCS1v15(rand.Reader, f.signKeyPEM, crypto.SHA256, digest[:])
	return sig, f.pubPEM, f.idName, err
}
func (f *fakeProvider) SignatureSuccess(string, string) error {
	f.successCalls++
	return nil
}

func genKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pubPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	}))
	return key, pubPEM
}

func runPair(t *testing.T, serverFn func(codec *wire.Codec), clientFn func(codec *wire.Codec)) {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() { a.Close(); b.Close() })

	done := make(chan struct{})
	go func() {
		defer close(done)
		serverFn(wire.NewCodec(a))
	}()
	clientFn(wire.NewCodec(b))
	<-done
}

// TestVersionReject covers Scenario S1.
func TestVersionReject(t *testing.T) {
	var clientOutcome Outcome
	var clientErr error

	runPair(t, func(codec *wire.Codec) {
		hello := staticHello{ack: wire.ServerHelloAck{AuthMethod: wire.AuthMethod{Kind: wire.AuthMethodNone}}}
		_, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
	}, func(codec *wire.Codec) {
		clientOutcome, clientErr = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 2}, &fakeProvider{})
	})

	assert.True(t, clientOutcome.Terminated)
	assert.ErrorIs(t, clientErr, ErrHandshakeFailed)
}

// TestPasswordSuccess covers Scenario S2.
func TestPasswordSuccess(t *testing.T) {
	verifier := auth.StaticPasswordVerifier{Password: "hunter2"}
	var clientOutcome Outcome
	var clientErr error
	provider := &fakeProvider{password: "hunter2"}

	runPair(t, func(codec *wire.Codec) {
		hello := staticHello{
			ack:      wire.ServerHelloAck{AuthMethod: wire.AuthMethod{Kind: wire.AuthMethodPassword}},
			verifier: verifier,
		}
		_, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
	}, func(codec *wire.Codec) {
		clientOutcome, clientErr = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 1}, provider)
	})

	require.NoError(t, clientErr)
	assert.True(t, clientOutcome.AuthSuccess)
	assert.Equal(t, 1, provider.successCalls)
}

// TestPasswordFailure exercises the mismatch branch of PostHello.
func TestPasswordFailure(t *testing.T) {
	verifier := auth.StaticPasswordVerifier{Password: "hunter2"}
	var clientOutcome Outcome
	var clientErr error
	provider := &fakeProvider{password: "wrong"}

	runPair(t, func(codec *wire.Codec) {
		hello := staticHello{
			ack:      wire.ServerHelloAck{AuthMethod: wire.AuthMethod{Kind: wire.AuthMethodPassword}},
			verifier: verifier,
		}
		_, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
	}, func(codec *wire.Codec) {
		clientOutcome, clientErr = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 1}, provider)
	})

	assert.Error(t, clientErr)
	assert.True(t, clientOutcome.Terminated)
}

// TestSignatureSuccess covers Scenario S3.
func TestSignatureSuccess(t *testing.T) {
	key, pubPEM := genKeyPEM(t)
	verifier, err := auth.NewAllowListSignatureVerifier([]string{pubPEM})
	require.NoError(t, err)
	provider := &fakeProvider{signKeyPEM: key, pubPEM: pubPEM}

	signMessage, err := NewSignMessage()
	require.NoError(t, err)

	var clientOutcome Outcome
	var clientErr error

	runPair(t, func(codec *wire.Codec) {
		hello := staticHello{
			ack: wire.ServerHelloAck{AuthMethod: wire.AuthMethod{
				Kind: wire.AuthMethodSignature, SignMessage: signMessage,
			}},
			verifier: verifier,
		}
		_, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
	}, func(codec *wire.Codec) {
		clientOutcome, clientErr = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 1}, provider)
	})

	require.NoError(t, clientErr)
	assert.True(t, clientOutcome.AuthSuccess)
}

// TestSignatureWrongKey covers Scenario S4.
func TestSignatureWrongKey(t *testing.T) {
	signerKey, _ := genKeyPEM(t)
	_, allowedPubPEM := genKeyPEM(t) // different key than the one that will sign
	verifier, err := auth.NewAllowListSignatureVerifier([]string{allowedPubPEM})
	require.NoError(t, err)

	signerPubPEM := string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&signerKey.PublicKey),
	}))
	provider := &fakeProvider{signKeyPEM: signerKey, pubPEM: signerPubPEM}

	signMessage, err := NewSignMessage()
	require.NoError(t, err)

	var clientOutcome Outcome
	var clientErr error

	runPair(t, func(codec *wire.Codec) {
		hello := staticHello{
			ack: wire.ServerHelloAck{AuthMethod: wire.AuthMethod{
				Kind: wire.AuthMethodSignature, SignMessage: signMessage,
			}},
			verifier: verifier,
		}
		_, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
	}, func(codec *wire.Codec) {
		clientOutcome, clientErr = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 1}, provider)
	})

	assert.Error(t, clientErr)
	assert.True(t, clientOutcome.Terminated)
}

// TestHandshakeDeterminism covers Property 3: given a fixed supported
// version set, ServerHelloAck, and verifier, the outcome is a pure
// function of the inbound message sequence.
func TestHandshakeDeterminism(t *testing.T) {
	verifier := auth.StaticPasswordVerifier{Password: "hunter2"}
	hello := staticHello{
		ack:      wire.ServerHelloAck{AuthMethod: wire.AuthMethod{Kind: wire.AuthMethodPassword}},
		verifier: verifier,
	}

	run := func(password string) Outcome {
		var outcome Outcome
		runPair(t, func(codec *wire.Codec) {
			outcome, _ = RunServer(context.Background(), codec, []uint32{1}, hello)
		}, func(codec *wire.Codec) {
			_, _ = RunClient(context.Background(), codec, "host", wire.ClientHello{ProtocolVersion: 1}, &fakeProvider{password: password})
		})
		return outcome
	}

	first := run("hunter2")
	second := run("hunter2")
	assert.Equal(t, first, second)

	third := run("wrong")
	assert.NotEqual(t, first, third)
}
