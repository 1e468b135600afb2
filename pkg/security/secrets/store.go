package secrets

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"golang.org/x/crypto/nacl/secretbox"
)

// Entry names.
const (
	BasicAuth  = "basic_auth"
	APIKey     = "api_key"
	BearerAuth = "bearer_auth"
	Password   = "password"
)

const nonceSize = 24

// ErrCorrupt is returned when an entry fails authentication on open.
var ErrCorrupt = errors.New("secret entry failed to decrypt")

// Store is an encrypted in-memory secret map.
type Store struct {
	key     [32]byte
	entries map[string][]byte
	rand    io.Reader
}

// NewStore creates a Store with a freshly generated key.
func NewStore() (*Store, error) {
	return newStore(rand.Reader)
}

func newStore(r io.Reader) (*Store, error) {
	s := &Store{entries: make(map[string][]byte), rand: r}
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("failed to generate secret store key: %w", err)
	}
	return s, nil
}

// Store serializes and encrypts value under name, replacing any previous
// entry.
func (s *Store) Store(name string, value any) error {
	plain, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to serialize secret %q: %w", name, err)
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(s.rand, nonce[:]); err != nil {
		return fmt.Errorf("failed to generate nonce for secret %q: %w", name, err)
	}

	s.entries[name] = secretbox.Seal(nonce[:], plain, &nonce, &s.key)
	clear(plain)
	return nil
}

// Retrieve decrypts the entry under name into dst, which must be a pointer.
// It reports whether the entry exists. An entry holding an explicit null
// leaves dst untouched and still reports true.
func (s *Store) Retrieve(name string, dst any) (bool, error) {
	sealed, ok := s.entries[name]
	if !ok {
		return false, nil
	}
	if len(sealed) < nonceSize {
		return true, fmt.Errorf("%w: %s", ErrCorrupt, name)
	}

	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	plain, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return true, fmt.Errorf("%w: %s", ErrCorrupt, name)
	}
	defer clear(plain)

	if err := json.Unmarshal(plain, dst); err != nil {
		return true, fmt.Errorf("failed to deserialize secret %q: %w", name, err)
	}
	return true, nil
}

// Text returns the string stored under name, or nil when it is absent or
// null.
func (s *Store) Text(name string) (*string, error) {
	var v *string
	if _, err := s.Retrieve(name, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// Pair returns the two-element credential stored under name, or nil when it
// is absent or null.
func (s *Store) Pair(name string) ([]string, error) {
	var v []string
	if _, err := s.Retrieve(name, &v); err != nil {
		return nil, err
	}
	if v != nil && len(v) != 2 {
		return nil, fmt.Errorf("secret %q holds %d values, want 2", name, len(v))
	}
	return v, nil
}

// Has reports whether name has an entry, null or not.
func (s *Store) Has(name string) bool {
	_, ok := s.entries[name]
	return ok
}

// Delete removes the entry under name.
func (s *Store) Delete(name string) {
	delete(s.entries, name)
}

// Names returns the entry names in sorted order.
func (s *Store) Names() []string {
	return slices.Sorted(maps.Keys(s.entries))
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.entries) }

// Format implements fmt.Formatter so that no verb, %#v included, can print
// the key or the ciphertext.
func (s *Store) Format(f fmt.State, verb rune) {
	fmt.Fprintf(f, "secrets.Store{%d entries}", len(s.entries))
}
