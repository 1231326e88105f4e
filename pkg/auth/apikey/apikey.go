// Package apikey provides a static, config-driven agent key store that
// validates project-scoped API keys using SHA-256 hashing and
// constant-time comparison.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"

	"github.com/mcpgate/mcpgate/pkg/auth"
)

// Entry is the configuration format for a single agent key.
type Entry struct {
	// ProjectID is the canonical UUID string of the project the key
	// grants access to.
	ProjectID string

	// Key is the plaintext key material. It is hashed at construction
	// and never retained.
	Key string
}

// Store validates agent keys against a static set loaded at startup.
// It implements auth.KeyValidator.
type Store struct {
	// hashes maps project ID to the key hashes provisioned for it.
	hashes map[string][][32]byte
}

var _ auth.KeyValidator = (*Store)(nil)

// New creates a store from the given entries. Plaintext keys are hashed
// immediately and not stored.
func New(entries []Entry) *Store {
	s := &Store{hashes: make(map[string][][32]byte, len(entries))}
	for _, e := range entries {
		s.hashes[e.ProjectID] = append(s.hashes[e.ProjectID], sha256.Sum256([]byte(e.Key)))
	}
	return s
}

// ValidateKey reports whether key is provisioned for projectID. The
// provided key is hashed and compared in constant time against every
// hash registered for the project. A miss is not an error.
func (s *Store) ValidateKey(_ context.Context, projectID, key string) (bool, error) {
	keyHash := sha256.Sum256([]byte(key))

	for _, h := range s.hashes[projectID] {
		if subtle.ConstantTimeCompare(keyHash[:], h[:]) == 1 {
			return true, nil
		}
	}

	return false, nil
}
