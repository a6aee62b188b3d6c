package hostkeys

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T, serial int64) *x509.Certificate {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "gsh-test"},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return cert
}

// TestTrustOnFirstUse covers Scenario S8: first connection has no
// record, acceptance records the chain's fingerprints, a second
// connection with the same chain verifies without prompting, and a
// third connection with a wholly different chain is rejected.
func TestTrustOnFirstUse(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	host := "example.gsh:1122"
	chainA := []*x509.Certificate{selfSignedCert(t, 1)}

	_, err = store.Lookup(host)
	assert.ErrorIs(t, err, ErrUnknownHost)

	require.NoError(t, store.Accept(host, chainA))

	require.NoError(t, store.Verify(host, chainA))

	chainB := []*x509.Certificate{selfSignedCert(t, 2)}
	err = store.Verify(host, chainB)
	assert.ErrorIs(t, err, ErrFingerprintMismatch)
}

// TestFingerprintAcceptanceMonotonicity covers Property 7: adding a new
// (host, fingerprint) never causes a previously-accepted chain to be
// rejected.
func TestFingerprintAcceptanceMonotonicity(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	host := "rotating.gsh:1122"
	chainOld := []*x509.Certificate{selfSignedCert(t, 10)}
	require.NoError(t, store.Accept(host, chainOld))
	require.NoError(t, store.Verify(host, chainOld))

	chainNew := []*x509.Certificate{selfSignedCert(t, 11)}
	require.NoError(t, store.Accept(host, chainNew))

	assert.NoError(t, store.Verify(host, chainOld))
	assert.NoError(t, store.Verify(host, chainNew))
}

func TestSaveAndLoadPersistAcrossInstances(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	host := "persist.gsh:1122"
	chain := []*x509.Certificate{selfSignedCert(t, 99)}
	require.NoError(t, store.Accept(host, chain))
	require.NoError(t, store.BindPassword(host, "hunter2"))

	reloaded, err := Load(dir)
	require.NoError(t, err)
	rec, err := reloaded.Lookup(host)
	require.NoError(t, err)
	assert.Len(t, rec.Fingerprints, 1)
	require.NotNil(t, rec.Password)
	assert.Equal(t, "hunter2", *rec.Password)
}
