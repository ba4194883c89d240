package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrInvalidHash      = errors.New("invalid hash format")
)

// argonParams are the cost parameters carried in a PHC string.
type argonParams struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

var currentParams = argonParams{memory: memory, iterations: iterations, parallelism: parallelism}

// Stored hashes asking for more than this are rejected rather than
// computed, so a tampered row cannot pin the CPU.
const (
	maxMemory     = 256 * 1024
	maxIterations = 16
)

type argonHash struct {
	params argonParams
	salt   []byte
	key    []byte
}

// HashPassword returns a PHC-format Argon2id hash of the peppered password.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	p := currentParams
	key := argon2.IDKey([]byte(password+currentPepper()), salt, p.iterations, p.memory, p.parallelism, keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.memory, p.iterations, p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword checks password against a hash from HashPassword. A wrong
// password is ErrPasswordMismatch; an unparsable hash wraps ErrInvalidHash.
func VerifyPassword(password, encodedHash string) error {
	h, err := parseHash(encodedHash)
	if err != nil {
		return err
	}

	p := h.params
	computed := argon2.IDKey([]byte(password+currentPepper()), h.salt, p.iterations, p.memory, p.parallelism,
		uint32(len(h.key))) // #nosec G115 -- bounded by parseHash
	if subtle.ConstantTimeCompare(computed, h.key) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether encodedHash was made with parameters other
// than the current ones. Call it after a successful VerifyPassword.
func NeedsRehash(encodedHash string) bool {
	h, err := parseHash(encodedHash)
	return err != nil || h.params != currentParams || len(h.key) != keyLength
}

func parseHash(encoded string) (argonHash, error) {
	// "", "argon2id", "v=19", "m=X,t=Y,p=Z", salt, key
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return argonHash{}, fmt.Errorf("%w: expected 6 parts", ErrInvalidHash)
	}
	if parts[1] != "argon2id" {
		return argonHash{}, fmt.Errorf("%w: not argon2id", ErrInvalidHash)
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return argonHash{}, fmt.Errorf("%w: wrong version", ErrInvalidHash)
	}

	var h argonHash
	p := &h.params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return argonHash{}, fmt.Errorf("%w: parameters: %v", ErrInvalidHash, err)
	}
	if p.memory == 0 || p.memory > maxMemory || p.iterations == 0 || p.iterations > maxIterations || p.parallelism == 0 {
		return argonHash{}, fmt.Errorf("%w: parameters out of range", ErrInvalidHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return argonHash{}, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return argonHash{}, fmt.Errorf("%w: hash: %v", ErrInvalidHash, err)
	}
	if len(h.key) < 16 || len(h.key) > 64 {
		return argonHash{}, fmt.Errorf("%w: key length %d", ErrInvalidHash, len(h.key))
	}
	return h, nil
}
