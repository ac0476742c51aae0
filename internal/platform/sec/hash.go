// Copyright (c) 2026 Authgate. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// # Algorithms

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

const (
	argon2SaltLength = 16
	argon2KeyLength  = 32
	argon2Prefix     = "$argon2id$"

	// bcryptMaxPasswordBytes is the input length past which bcrypt stops reading.
	bcryptMaxPasswordBytes = 72
)

// ErrHashFormat is returned by [Hasher.Verify] when the stored value is
// structurally corrupt. A wrong password is never reported this way.
var ErrHashFormat = errors.New("sec: stored credential hash is malformed")

// HashParams selects the algorithm and its work factors.
type HashParams struct {
	Algorithm string

	// BcryptCost is clamped to [bcrypt.MinCost, bcrypt.MaxCost].
	BcryptCost int

	Argon2MemoryKiB   uint32
	Argon2Iterations  uint32
	Argon2Parallelism uint8
}

// Hasher produces and verifies self-describing, salted password hashes.
//
// # Concurrency
//
// A Hasher is immutable after construction and safe for concurrent use.
type Hasher struct {
	params HashParams
}

// NewHasher validates params and returns a [Hasher].
func NewHasher(params HashParams) (*Hasher, error) {
	switch params.Algorithm {
	case AlgorithmBcrypt:
		params.BcryptCost = max(bcrypt.MinCost, min(params.BcryptCost, bcrypt.MaxCost))
	case AlgorithmArgon2id:
		if params.Argon2MemoryKiB == 0 || params.Argon2Iterations == 0 || params.Argon2Parallelism == 0 {
			return nil, errors.New("sec: argon2id parameters must be positive")
		}
	default:
		return nil, fmt.Errorf("sec: unsupported hash algorithm %q", params.Algorithm)
	}
	return &Hasher{params: params}, nil
}

// Algorithm returns the algorithm used by [Hasher.Hash].
func (h *Hasher) Algorithm() string {
	return h.params.Algorithm
}

/*
Hash derives a new hash for password using a fresh random salt.

Two calls with the same password never return the same string.

Returns:
  - string: Self-describing hash (algorithm, parameters, salt, digest)
  - error: Entropy or parameter failures
*/
func (h *Hasher) Hash(password string) (string, error) {
	if h.params.Algorithm == AlgorithmArgon2id {
		return h.hashArgon2id(password)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.params.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("sec_hash_bcrypt_failed: %w", err)
	}
	return string(hashed), nil
}

/*
Verify reports whether password matches stored.

The algorithm is taken from the stored prefix, so either kind of hash verifies
regardless of how this Hasher is configured. Digests are compared in constant time.

Returns:
  - bool: true on match
  - error: [ErrHashFormat] when stored cannot be parsed
*/
func (h *Hasher) Verify(password, stored string) (bool, error) {
	switch {
	case isBcrypt(stored):
		if len(password) > bcryptMaxPasswordBytes {
			return false, nil
		}
		err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
		if err == nil {
			return true, nil
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrHashFormat, err)

	case strings.HasPrefix(stored, argon2Prefix):
		decoded, err := decodeArgon2id(stored)
		if err != nil {
			return false, err
		}
		derived := argon2.IDKey([]byte(password), decoded.salt, decoded.iterations, decoded.memory, decoded.parallelism, uint32(len(decoded.key)))
		return subtle.ConstantTimeCompare(derived, decoded.key) == 1, nil

	default:
		return false, fmt.Errorf("%w: unknown hash prefix", ErrHashFormat)
	}
}

// NeedsRehash reports whether stored was produced by another algorithm or
// with weaker parameters than this Hasher is configured for.
func (h *Hasher) NeedsRehash(stored string) bool {
	switch h.params.Algorithm {
	case AlgorithmBcrypt:
		if !isBcrypt(stored) {
			return true
		}
		cost, err := bcrypt.Cost([]byte(stored))
		return err != nil || cost < h.params.BcryptCost

	case AlgorithmArgon2id:
		decoded, err := decodeArgon2id(stored)
		if err != nil {
			return true
		}
		return decoded.memory < h.params.Argon2MemoryKiB ||
			decoded.iterations < h.params.Argon2Iterations ||
			decoded.parallelism < h.params.Argon2Parallelism
	}
	return true
}

// # Argon2id

// argon2Hash is the decoded form of a PHC argon2id string.
type argon2Hash struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	salt        []byte
	key         []byte
}

// hashArgon2id encodes as $argon2id$v=19$m=<KiB>,t=<iter>,p=<par>$<salt>$<key>.
func (h *Hasher) hashArgon2id(password string) (string, error) {
	salt := make([]byte, argon2SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("sec_hash_salt_failed: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Argon2Iterations, h.params.Argon2MemoryKiB, h.params.Argon2Parallelism, argon2KeyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Argon2MemoryKiB,
		h.params.Argon2Iterations,
		h.params.Argon2Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func decodeArgon2id(stored string) (*argon2Hash, error) {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != AlgorithmArgon2id {
		return nil, fmt.Errorf("%w: argon2id segment count", ErrHashFormat)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: argon2id version", ErrHashFormat)
	}

	decoded := &argon2Hash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &decoded.memory, &decoded.iterations, &decoded.parallelism); err != nil {
		return nil, fmt.Errorf("%w: argon2id parameters: %v", ErrHashFormat, err)
	}
	if decoded.memory == 0 || decoded.iterations == 0 || decoded.parallelism == 0 {
		return nil, fmt.Errorf("%w: argon2id parameters out of range", ErrHashFormat)
	}

	var err error
	if decoded.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(decoded.salt) == 0 {
		return nil, fmt.Errorf("%w: argon2id salt", ErrHashFormat)
	}
	if decoded.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(decoded.key) == 0 {
		return nil, fmt.Errorf("%w: argon2id key", ErrHashFormat)
	}

	return decoded, nil
}

func isBcrypt(stored string) bool {
	return strings.HasPrefix(stored, "$2a$") ||
		strings.HasPrefix(stored, "$2b$") ||
		strings.HasPrefix(stored, "$2y$")
}
