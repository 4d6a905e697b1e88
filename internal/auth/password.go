package auth

import (
	"crypto/sha256"   // Digest for legacy PBKDF2 hashes and long passwords
	"crypto/subtle"   // Constant-time comparison
	"encoding/base64" // Encoding of pre-hashed long passwords
	"encoding/hex"    // Legacy hashes are hex encoded
	"errors"          // Error values
	"strconv"         // Iteration count parsing
	"strings"         // Hash format parsing
	"sync"            // Lazy dummy hash

	"golang.org/x/crypto/bcrypt" // Password hashing
	"golang.org/x/crypto/pbkdf2" // Legacy password verification
)

// legacyDefaultIterations applies to pbkdf2 hashes that omit the iteration count
const legacyDefaultIterations = 600000

// bcryptMaxInput is the most bcrypt accepts; longer passwords are pre-hashed
const bcryptMaxInput = 72

var errUnknownHash = errors.New("unknown password hash format")

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// HashPassword computes a salted bcrypt hash of the plaintext password
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(bcryptInput(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash.
// Besides bcrypt it accepts "pbkdf2:sha256[:iterations]$salt$hex" hashes
// written by the previous version of the blog.
func VerifyPassword(hash, password string) bool {
	if strings.HasPrefix(hash, "pbkdf2:") {
		ok, err := verifyPBKDF2(hash, password)
		return err == nil && ok
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), bcryptInput(password)) == nil
}

// burnPasswordCheck spends the same time as a bcrypt verification so that
// unknown usernames cannot be told apart by latency
func burnPasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, bcryptInput(password))
}

// bcryptInput returns the bytes handed to bcrypt. Passwords over 72 bytes
// (short in characters but multi-byte) are reduced to a base64 SHA-256 digest.
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:])) // 44 bytes, no NULs
}

func verifyPBKDF2(hash, password string) (bool, error) {
	parts := strings.SplitN(hash, "$", 3)
	if len(parts) != 3 {
		return false, errUnknownHash
	}
	method := strings.Split(parts[0], ":")
	if len(method) < 2 || method[1] != "sha256" {
		return false, errUnknownHash
	}
	iterations := legacyDefaultIterations
	if len(method) == 3 {
		n, err := strconv.Atoi(method[2])
		if err != nil || n <= 0 {
			return false, errUnknownHash
		}
		iterations = n
	}
	want, err := hex.DecodeString(parts[2])
	if err != nil {
		return false, errUnknownHash
	}
	got := pbkdf2.Key([]byte(password), []byte(parts[1]), iterations, sha256.Size, sha256.New)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
