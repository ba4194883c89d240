package cryptox

import (
	"crypto/rand"
	"encoding/base64"
	"strings"
	"sync"
)

// Configuration for Argon2id hashing.
const (
	memory      = 19 * 1024 // Memory usage in KiB (19 MiB)
	iterations  = 2         // Iteration count
	parallelism = 1         // Number of threads
	keyLength   = 32        // Length of the generated hash
	saltLength  = 16        // Length of the salt
)

var (
	pepperMu sync.RWMutex
	pepper   string
)

// LoadPepper loads the password pepper from file, generating and persisting
// a new one if the file doesn't exist yet. Losing the pepper file makes every
// stored password hash unverifiable, so back it up with the database.
func LoadPepper(file string) error {
	data, err := LoadOrCreateFile(file, func() ([]byte, error) {
		buf := make([]byte, keyLength)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		return []byte(base64.RawURLEncoding.EncodeToString(buf)), nil
	})
	if err != nil {
		return err
	}

	SetPepper(strings.TrimSpace(string(data)))
	return nil
}

// SetPepper replaces the pepper in use. Mostly useful for tests.
func SetPepper(p string) {
	pepperMu.Lock()
	defer pepperMu.Unlock()
	pepper = p
}

func currentPepper() string {
	pepperMu.RLock()
	defer pepperMu.RUnlock()
	return pepper
}
