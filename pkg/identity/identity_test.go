package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	rec, err := store.Generate("laptop")
	require.NoError(t, err)
	assert.Equal(t, "laptop", rec.Name)

	reloaded, err := Load(dir)
	require.NoError(t, err)
	got, err := reloaded.Get("laptop")
	require.NoError(t, err)
	assert.Equal(t, rec.Path, got.Path)

	priv, err := LoadPrivateKey(got)
	require.NoError(t, err)
	assert.Equal(t, KeyBits, priv.N.BitLen())

	pubPEM, err := LoadPublicKeyPEM(got)
	require.NoError(t, err)
	assert.Contains(t, pubPEM, "RSA PUBLIC KEY")
}

func TestGenerateRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	_, err = store.Generate("dup")
	require.NoError(t, err)

	_, err = store.Generate("dup")
	assert.Error(t, err)
}

func TestGetUnknownNameFails(t *testing.T) {
	dir := t.TempDir()
	store, err := Load(dir)
	require.NoError(t, err)

	_, err = store.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}
