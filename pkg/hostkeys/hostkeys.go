// Package hostkeys implements the client's trust-on-first-use
// known-hosts store: a persistent mapping from host label to accepted
// certificate fingerprints and any bound credential.
package hostkeys

import (
	"crypto/sha256"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/WilliamRagstad/gsh/internal/atomicfile"
)

// ErrUnknownHost is returned by Lookup when a host has no record yet.
var ErrUnknownHost = errors.New("hostkeys: unknown host")

// ErrFingerprintMismatch is returned by Verify when the presented chain
// shares no fingerprint with the stored set for a known host.
var ErrFingerprintMismatch = errors.New("hostkeys: certificate fingerprint mismatch")

// Record is one known-host entry.
type Record struct {
	Host         string   `json:"host"`
	Fingerprints [][]byte `json:"fingerprints"`
	IDFileRef    *string  `json:"idFileRef,omitempty"`
	Password     *string  `json:"password,omitempty"`
}

type document struct {
	Hosts []Record `json:"hosts"`
}

// Store is the loaded, in-memory known-hosts file for one directory.
// The zero value is not usable; construct with Load.
type Store struct {
	dir     string
	records map[string]*Record
}

// Load reads the known-hosts file from dir, creating an empty in-memory
// store if the file does not yet exist.
func Load(dir string) (*Store, error) {
	path := hostsPath(dir)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Store{dir: dir, records: map[string]*Record{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("hostkeys: read known_hosts: %w", err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("hostkeys: parse known_hosts: %w", err)
	}
	records := make(map[string]*Record, len(doc.Hosts))
	for i := range doc.Hosts {
		r := doc.Hosts[i]
		records[r.Host] = &r
	}
	return &Store{dir: dir, records: records}, nil
}

// Save atomically persists the store: write-temp-fsync-rename.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("hostkeys: mkdir: %w", err)
	}
	doc := document{Hosts: make([]Record, 0, len(s.records))}
	for _, r := range s.records {
		doc.Hosts = append(doc.Hosts, *r)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("hostkeys: marshal known_hosts: %w", err)
	}
	return atomicfile.Write(hostsPath(s.dir), data, 0o600)
}

// All returns every known-host record, in no particular order.
func (s *Store) All() []Record {
	out := make([]Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, *r)
	}
	return out
}

// Lookup returns the record for host, or ErrUnknownHost.
func (s *Store) Lookup(host string) (Record, error) {
	r, ok := s.records[host]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
	return *r, nil
}

// Fingerprint computes the SHA-256 digest over a certificate's DER bytes.
func Fingerprint(cert *x509.Certificate) []byte {
	sum := sha256.Sum256(cert.Raw)
	return sum[:]
}

// FingerprintsOf computes the fingerprint of every certificate in chain.
func FingerprintsOf(chain []*x509.Certificate) [][]byte {
	out := make([][]byte, len(chain))
	for i, cert := range chain {
		out[i] = Fingerprint(cert)
	}
	return out
}

// Verify checks a presented certificate chain against the stored record
// for host. A host with no record is reported via ErrUnknownHost so the
// caller can prompt for first-use acceptance. A host with a stored,
// non-empty fingerprint set is accepted iff the intersection with the
// presented chain's fingerprints is non-empty.
func (s *Store) Verify(host string, chain []*x509.Certificate) error {
	rec, err := s.Lookup(host)
	if err != nil {
		return err
	}
	presented := FingerprintsOf(chain)
	stored := make(map[string]struct{}, len(rec.Fingerprints))
	for _, fp := range rec.Fingerprints {
		stored[string(fp)] = struct{}{}
	}
	for _, fp := range presented {
		if _, ok := stored[string(fp)]; ok {
			return nil
		}
	}
	return fmt.Errorf("%w: host %s", ErrFingerprintMismatch, host)
}

// Accept records host's presented chain fingerprints as trusted,
// creating the record if it does not exist yet. Fingerprints are
// appended (not replaced), so existing trust established in a prior
// connection survives certificate rotation — this is what keeps
// Property 7 (fingerprint acceptance monotonicity) true.
func (s *Store) Accept(host string, chain []*x509.Certificate) error {
	fps := FingerprintsOf(chain)
	rec, ok := s.records[host]
	if !ok {
		rec = &Record{Host: host}
		s.records[host] = rec
	}
	existing := make(map[string]struct{}, len(rec.Fingerprints))
	for _, fp := range rec.Fingerprints {
		existing[string(fp)] = struct{}{}
	}
	for _, fp := range fps {
		if _, dup := existing[string(fp)]; !dup {
			rec.Fingerprints = append(rec.Fingerprints, fp)
			existing[string(fp)] = struct{}{}
		}
	}
	return s.Save()
}

// BindPassword attaches a password credential to host's record on user
// confirmation after a successful password authentication.
func (s *Store) BindPassword(host, password string) error {
	rec, ok := s.records[host]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
	rec.Password = &password
	return s.Save()
}

// BindIdentity attaches a named identity reference to host's record on
// user confirmation after a successful signature authentication.
func (s *Store) BindIdentity(host, idName string) error {
	rec, ok := s.records[host]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHost, host)
	}
	rec.IDFileRef = &idName
	return s.Save()
}

func hostsPath(dir string) string {
	return filepath.Join(dir, "known_hosts.json")
}
