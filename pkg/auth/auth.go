// Package auth implements the client-side credential providers and
// server-side credential verifiers consulted by pkg/handshake during the
// PostHello auth exchange.
package auth

import "crypto/rsa"

// Provider is the client-side capability set consulted while answering
// a server's advertised auth method.
type Provider interface {
	// Password yields a password for host, from the known-hosts store
	// or by interactive prompt.
	Password(host string) (string, error)
	// PasswordSuccess is called after ServerAuthAck{Success} for a
	// password exchange; implementations may persist the credential.
	PasswordSuccess(host, password string) error

	// Signature selects an identity and signs signMessage with its
	// private key using PKCS#1v1.5 over SHA-256, returning the
	// signature bytes, the PKCS#1 PEM-encoded public key, and the name
	// of the identity selected (passed back to SignatureSuccess, not
	// the PEM, since the PEM is not a valid identity.Store key).
	Signature(host string, signMessage []byte) (signature []byte, publicKeyPEM string, idName string, err error)
	// SignatureSuccess is called after ServerAuthAck{Success} for a
	// signature exchange; implementations may persist the binding.
	SignatureSuccess(host, idName string) error
}

// Verifier is the server-side credential check consulted by the
// handshake engine during PostHello.
type Verifier interface {
	// Kind reports which auth method this verifier answers for.
	Kind() Kind
}

// Kind discriminates the two Verifier shapes.
type Kind uint8

const (
	KindPassword Kind = iota
	KindSignature
)

// PasswordVerifier checks a submitted password.
type PasswordVerifier interface {
	Verifier
	VerifyPassword(password string) bool
}

// SignatureVerifier applies a policy check over a decoded public key
// (e.g. allow-list membership). The handshake engine performs the
// cryptographic signature check separately; this is purely a policy
// gate.
type SignatureVerifier interface {
	Verifier
	VerifyPublicKey(pub *rsa.PublicKey) bool
}
