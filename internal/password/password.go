// Package password hashes and verifies user passwords with argon2id.
//
// Parameters are fixed constants tuned for an interactive web server, not
// configurable per call. Each hash embeds its own salt and parameters in the
// standard encoded form, so verification is self-describing.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	"go-api-template/internal/model"
)

const (
	memoryKiB   = 19456 // 19 MiB
	iterations  = 2
	parallelism = 1
	saltLength  = 16
	keyLength   = 32
)

// Bounds for parameters decoded from stored hashes. A corrupt row must fail
// verification, not drive argon2 into a panic or an absurd allocation.
const (
	maxMemoryKiB  = 1 << 21 // 2 GiB
	maxIterations = 64
	minSaltLength = 8
	minKeyLength  = 4
)

// Hash derives an argon2id hash of the plaintext with a fresh random salt
// and returns it in encoded form. The plaintext never appears in errors.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("%w: %v", model.ErrHashing, err)
	}

	key := argon2.IDKey([]byte(plaintext), salt, iterations, memoryKiB, parallelism, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		memoryKiB,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)

	return encoded, nil
}

// Verify recomputes the hash using the salt and parameters embedded in the
// encoded string and compares in constant time. A password that does not
// match returns (false, nil); any internal failure fails closed with
// model.ErrHashing.
func Verify(plaintext string, encoded string) (bool, error) {
	params, salt, key, err := decode(encoded)
	if err != nil {
		return false, fmt.Errorf("%w: %v", model.ErrHashing, err)
	}

	derived := argon2.IDKey([]byte(plaintext), salt, params.iterations, params.memory, params.parallelism, uint32(len(key)))

	return subtle.ConstantTimeCompare(key, derived) == 1, nil
}

type params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
}

func decode(encoded string) (params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return params{}, nil, nil, fmt.Errorf("malformed hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params{}, nil, nil, fmt.Errorf("malformed hash version")
	}
	if version != argon2.Version {
		return params{}, nil, nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var p params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return params{}, nil, nil, fmt.Errorf("malformed hash parameters")
	}
	if p.iterations == 0 || p.iterations > maxIterations {
		return params{}, nil, nil, fmt.Errorf("iteration count %d out of range", p.iterations)
	}
	if p.parallelism == 0 {
		return params{}, nil, nil, fmt.Errorf("parallelism cannot be zero")
	}
	// argon2 requires at least 8 KiB per lane.
	if p.memory < 8*uint32(p.parallelism) || p.memory > maxMemoryKiB {
		return params{}, nil, nil, fmt.Errorf("memory %d KiB out of range", p.memory)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) < minSaltLength {
		return params{}, nil, nil, fmt.Errorf("malformed hash salt")
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) < minKeyLength {
		return params{}, nil, nil, fmt.Errorf("malformed hash key")
	}

	return p, salt, key, nil
}
