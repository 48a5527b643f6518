// Package passwordhashing produces password hashes in the format RabbitMQ
// stores and accepts in the password_hash field of users: a 32-bit salt
// followed by SHA-256(salt + password), Base64-encoded.
package passwordhashing

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
)

const (
	SaltLength = 4

	// HashingAlgorithm is the value of the hashing_algorithm field that
	// goes along with hashes produced by this package.
	HashingAlgorithm = "rabbit_password_hashing_sha256"
)

var ErrMalformedHash = errors.New("malformed password hash")

func Salt() ([]byte, error) {
	salt := make([]byte, SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return salt, nil
}

// SaltedPasswordHashSHA256 returns salt followed by SHA-256(salt + password).
func SaltedPasswordHashSHA256(salt []byte, password string) []byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(password))
	return h.Sum(append([]byte(nil), salt...))
}

func Base64EncodedSaltedPasswordHashSHA256(salt []byte, password string) string {
	return base64.StdEncoding.EncodeToString(SaltedPasswordHashSHA256(salt, password))
}

// HashPassword hashes password with a fresh random salt.
func HashPassword(password string) (string, error) {
	salt, err := Salt()
	if err != nil {
		return "", err
	}
	return Base64EncodedSaltedPasswordHashSHA256(salt, password), nil
}

// Verify reports whether encoded is a hash of password.
func Verify(encoded, password string) (bool, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(raw) != SaltLength+sha256.Size {
		return false, ErrMalformedHash
	}
	expected := SaltedPasswordHashSHA256(raw[:SaltLength], password)
	return subtle.ConstantTimeCompare(raw, expected) == 1, nil
}
