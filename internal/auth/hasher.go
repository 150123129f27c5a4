// Package auth holds the credential and token primitives: password hashing,
// JWT issuance/validation, and the request-scoped claims binder.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

// Argon2id parameters (OWASP-recommended).
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2SaltLen = 16
	argon2KeyLen  = 32
)

// VerifyResult is the outcome of a password verification.
type VerifyResult int

const (
	// VerifyNoMatch covers wrong passwords and malformed or unknown hash
	// records alike; verification fails closed, it never errors out.
	VerifyNoMatch VerifyResult = iota
	VerifyMatch
	// VerifyMatchNeedsRehash means the password matched but the stored record
	// uses a legacy scheme or outdated parameters and should be re-hashed.
	VerifyMatchNeedsRehash
)

// decoyHash is verified when a login attempt names an unknown user, so that
// "no such user" and "wrong password" take indistinguishable time. It is not
// a credential and matches no password.
const decoyHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// PasswordHasher produces and verifies self-describing argon2id hash records
// in PHC string format. Legacy bcrypt records still verify but are reported
// as needing a rehash.
type PasswordHasher struct{}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{}
}

// Hash derives an argon2id digest of password under a fresh random salt and
// encodes it as $argon2id$v=19$m=65536,t=1,p=4$<salt>$<digest>.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	digest := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// Verify recomputes the digest for password against the stored record and
// compares in constant time.
func (h *PasswordHasher) Verify(password, encoded string) VerifyResult {
	if strings.HasPrefix(encoded, "$2a$") || strings.HasPrefix(encoded, "$2b$") || strings.HasPrefix(encoded, "$2y$") {
		if bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password)) != nil {
			return VerifyNoMatch
		}
		return VerifyMatchNeedsRehash
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return VerifyNoMatch
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return VerifyNoMatch
	}

	var memory, time uint32
	var threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return VerifyNoMatch
	}
	if threads == 0 || threads > 255 {
		return VerifyNoMatch
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return VerifyNoMatch
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 || len(expected) > 1<<10 {
		return VerifyNoMatch
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(len(expected)))
	if subtle.ConstantTimeCompare(computed, expected) != 1 {
		return VerifyNoMatch
	}

	if memory != argon2Memory || time != argon2Time || threads != argon2Threads || len(expected) != argon2KeyLen {
		return VerifyMatchNeedsRehash
	}
	return VerifyMatch
}

// DecoyVerify burns a full verification against a fixed fake record. Login
// calls this when no user row exists; do not optimize it away.
func (h *PasswordHasher) DecoyVerify(password string) {
	h.Verify(password, decoyHash)
}
