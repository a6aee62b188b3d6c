package auth

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/WilliamRagstad/gsh/pkg/hostkeys"
	"github.com/WilliamRagstad/gsh/pkg/identity"
)

// Prompt asks the user a question and returns their answer, or an
// error if the prompt could not be completed (e.g. non-interactive
// stdin). cmd/gsh supplies a terminal-reading implementation; tests
// supply a canned function.
type Prompt func(question string) (string, error)

// InteractiveProvider is the client's default Provider: it resolves
// credentials from the known-hosts and identity stores, falling back to
// an interactive Prompt, and persists successful bindings on user
// confirmation.
type InteractiveProvider struct {
	Hosts      *hostkeys.Store
	Identities *identity.Store

	// IdentityOverride, if set, names the identity to use for signature
	// auth regardless of any known-hosts binding (the CLI's --id flag).
	IdentityOverride string

	Prompt  Prompt
	Confirm func(question string) (bool, error)
}

// Password implements Provider. It prefers a password already bound to
// host in the known-hosts store; otherwise it prompts interactively.
func (p *InteractiveProvider) Password(host string) (string, error) {
	if rec, err := p.Hosts.Lookup(host); err == nil && rec.Password != nil {
		return *rec.Password, nil
	}
	if p.Prompt == nil {
		return "", fmt.Errorf("auth: no password bound for %s and no prompt available", host)
	}
	return p.Prompt(fmt.Sprintf("Password for %s: ", host))
}

// PasswordSuccess implements Provider. On user confirmation it binds
// the password just used into the known-hosts record.
func (p *InteractiveProvider) PasswordSuccess(host, password string) error {
	if p.Confirm == nil {
		return nil
	}
	ok, err := p.Confirm(fmt.Sprintf("Remember password for %s?", host))
	if err != nil || !ok {
		return err
	}
	return p.Hosts.BindPassword(host, password)
}

// Signature implements Provider. It selects an identity — by explicit
// override, by an existing known-hosts binding, or by interactive
// choice among the identity store's entries — and signs signMessage
// with PKCS#1v1.5 over SHA-256.
func (p *InteractiveProvider) Signature(host string, signMessage []byte) ([]byte, string, string, error) {
	name, err := p.resolveIdentityName(host)
	if err != nil {
		return nil, "", "", err
	}
	rec, err := p.Identities.Get(name)
	if err != nil {
		return nil, "", "", err
	}
	priv, err := identity.LoadPrivateKey(rec)
	if err != nil {
		return nil, "", "", err
	}
	pubPEM, err := identity.LoadPublicKeyPEM(rec)
	if err != nil {
		return nil, "", "", err
	}

	digest := sha256.Sum256(signMessage)
	sig, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, digest[:])
	if err != nil {
		return nil, "", "", fmt.Errorf("auth: sign challenge: %w", err)
	}

	return sig, pubPEM, name, nil
}

// SignatureSuccess implements Provider. On user confirmation it binds
// the identity just used into the known-hosts record.
func (p *InteractiveProvider) SignatureSuccess(host, idName string) error {
	if p.Confirm == nil {
		return nil
	}
	ok, err := p.Confirm(fmt.Sprintf("Remember identity %q for %s?", idName, host))
	if err != nil || !ok {
		return err
	}
	return p.Hosts.BindIdentity(host, idName)
}

func (p *InteractiveProvider) resolveIdentityName(host string) (string, error) {
	if p.IdentityOverride != "" {
		return p.IdentityOverride, nil
	}
	if rec, err := p.Hosts.Lookup(host); err == nil && rec.IDFileRef != nil {
		return *rec.IDFileRef, nil
	}
	ids := p.Identities.List()
	if len(ids) == 0 {
		return "", fmt.Errorf("auth: no identities available for %s", host)
	}
	if len(ids) == 1 {
		return ids[0].Name, nil
	}
	if p.Prompt == nil {
		return "", fmt.Errorf("auth: multiple identities available for %s and no prompt available", host)
	}
	return p.Prompt(fmt.Sprintf("Identity to use for %s: ", host))
}
