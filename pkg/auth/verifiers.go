package auth

import (
	"crypto/rsa"
	"crypto/subtle"
	"crypto/x509"
	"encoding/pem"
	"errors"
)

// StaticPasswordVerifier accepts exactly one configured password. Use
// for example servers and tests; production verifiers should consult a
// credential store instead of a single in-memory secret.
type StaticPasswordVerifier struct {
	Password string
}

func (StaticPasswordVerifier) Kind() Kind { return KindPassword }

// VerifyPassword compares in constant time to avoid leaking the
// password length-prefix timing of a naive string comparison.
func (v StaticPasswordVerifier) VerifyPassword(password string) bool {
	return subtle.ConstantTimeCompare([]byte(v.Password), []byte(password)) == 1
}

// AllowListSignatureVerifier accepts any public key matching one of a
// fixed set of PKCS#1 PEM-encoded public keys, compared by DER bytes.
type AllowListSignatureVerifier struct {
	allowed [][]byte
}

// NewAllowListSignatureVerifier parses each PEM block in pemKeys and
// builds a verifier over the decoded public keys.
func NewAllowListSignatureVerifier(pemKeys []string) (*AllowListSignatureVerifier, error) {
	v := &AllowListSignatureVerifier{}
	for _, keyPEM := range pemKeys {
		pub, err := ParsePKCS1PublicKeyPEM(keyPEM)
		if err != nil {
			return nil, err
		}
		v.allowed = append(v.allowed, x509.MarshalPKCS1PublicKey(pub))
	}
	return v, nil
}

func (*AllowListSignatureVerifier) Kind() Kind { return KindSignature }

func (v *AllowListSignatureVerifier) VerifyPublicKey(pub *rsa.PublicKey) bool {
	der := x509.MarshalPKCS1PublicKey(pub)
	for _, allowed := range v.allowed {
		if subtle.ConstantTimeCompare(allowed, der) == 1 {
			return true
		}
	}
	return false
}

// ParsePKCS1PublicKeyPEM decodes a single PKCS#1 RSA public key PEM
// block, the shape ClientAuth.Signature and the identity store's key
// files both carry.
func ParsePKCS1PublicKeyPEM(keyPEM string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(keyPEM))
	if block == nil {
		return nil, errors.New("auth: no PEM block found")
	}
	return x509.ParsePKCS1PublicKey(block.Bytes)
}
