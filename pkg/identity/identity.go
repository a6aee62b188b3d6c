// Package identity manages the client's named RSA keypairs used to
// answer signature auth challenges. The index file and key files are
// persisted under a per-user directory (default $HOME/.gsh).
package identity

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/WilliamRagstad/gsh/internal/atomicfile"
)

// KeyBits is the RSA modulus size used for newly generated identities.
const KeyBits = 2048

// ErrNotFound is returned when a named identity does not exist in the
// index.
var ErrNotFound = errors.New("identity: not found")

// Record is one named identity: a keypair file reference.
type Record struct {
	Name string
	Path string
}

// index is the on-disk shape of identities.json: {"idFiles": {name: path}}.
type index struct {
	IDFiles map[string]string `json:"idFiles"`
}

// Store is the loaded, in-memory identity index for one directory. The
// zero value is not usable; construct with Load.
type Store struct {
	dir     string
	idFiles map[string]string
}

// Load reads the identity index from dir, creating an empty in-memory
// store if the file does not yet exist.
func Load(dir string) (*Store, error) {
	path := indexPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{dir: dir, idFiles: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("identity: read index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("identity: parse index: %w", err)
	}
	if idx.IDFiles == nil {
		idx.IDFiles = map[string]string{}
	}
	return &Store{dir: dir, idFiles: idx.IDFiles}, nil
}

// Save atomically persists the index: serialize to JSON, write to a
// temp file in the same directory, fsync, then rename over the final
// path.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("identity: mkdir: %w", err)
	}
	data, err := json.MarshalIndent(index{IDFiles: s.idFiles}, "", "  ")
	if err != nil {
		return fmt.Errorf("identity: marshal index: %w", err)
	}
	return atomicfile.Write(indexPath(s.dir), data, 0o600)
}

// List returns every identity in the store, in no particular order.
func (s *Store) List() []Record {
	out := make([]Record, 0, len(s.idFiles))
	for name, path := range s.idFiles {
		out = append(out, Record{Name: name, Path: path})
	}
	return out
}

// Get returns the named identity's key-file path.
func (s *Store) Get(name string) (Record, error) {
	path, ok := s.idFiles[name]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return Record{Name: name, Path: path}, nil
}

// Generate creates a new RSA keypair, writes it as concatenated PKCS#1
// PEM blocks (private then public) to a file in dir, and registers it
// in the index under name.
func (s *Store) Generate(name string) (Record, error) {
	if _, exists := s.idFiles[name]; exists {
		return Record{}, fmt.Errorf("identity: %q already exists", name)
	}
	key, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return Record{}, fmt.Errorf("identity: generate key: %w", err)
	}

	privPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	pubPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PUBLIC KEY",
		Bytes: x509.MarshalPKCS1PublicKey(&key.PublicKey),
	})

	path := filepath.Join(s.dir, name+".pem")
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return Record{}, fmt.Errorf("identity: mkdir: %w", err)
	}
	if err := atomicfile.Write(path, append(privPEM, pubPEM...), 0o600); err != nil {
		return Record{}, fmt.Errorf("identity: write key file: %w", err)
	}

	s.idFiles[name] = path
	if err := s.Save(); err != nil {
		return Record{}, err
	}
	return Record{Name: name, Path: path}, nil
}

// LoadPrivateKey reads and parses the private key half of a Record's
// key file.
func LoadPrivateKey(rec Record) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return nil, fmt.Errorf("identity: read key file: %w", err)
	}
	block, _ := pem.Decode(data)
	if block == nil || block.Type != "RSA PRIVATE KEY" {
		return nil, errors.New("identity: no RSA PRIVATE KEY block found")
	}
	return x509.ParsePKCS1PrivateKey(block.Bytes)
}

// LoadPublicKeyPEM reads the key file and returns just the public PEM
// block, re-encoded, ready to place on the wire.
func LoadPublicKeyPEM(rec Record) (string, error) {
	data, err := os.ReadFile(rec.Path)
	if err != nil {
		return "", fmt.Errorf("identity: read key file: %w", err)
	}
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		if block.Type == "RSA PUBLIC KEY" {
			return string(pem.EncodeToMemory(block)), nil
		}
	}
	return "", errors.New("identity: no RSA PUBLIC KEY block found")
}

func indexPath(dir string) string {
	return filepath.Join(dir, "identities.json")
}
