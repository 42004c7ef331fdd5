// Package auth provides password hashing, cookie-backed sessions and the
// login flow.
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	"student-connect/backend/internal/models"
)

// Hash scheme names, stored in AuthData.Method
const (
	MethodBcrypt = "bcrypt"
	MethodPBKDF2 = "pbkdf2-sha256"
)

const (
	pbkdf2Iterations = 210000
	pbkdf2KeyLen     = 32
	pbkdf2SaltLen    = 16
)

// Hasher creates password hashes for new credentials
type Hasher interface {
	Hash(password string) (models.AuthData, error)
}

// NewHasher returns the hasher for a configured scheme: "bcrypt" or "pbkdf2"
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case "", "bcrypt":
		return BcryptHasher{Cost: bcrypt.DefaultCost}, nil
	case "pbkdf2":
		return PBKDF2Hasher{Iterations: pbkdf2Iterations}, nil
	default:
		return nil, fmt.Errorf("unknown password scheme %q", scheme)
	}
}

// BcryptHasher hashes with bcrypt
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (models.AuthData, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.Cost)
	if err != nil {
		return models.AuthData{}, fmt.Errorf("hashing password: %w", err)
	}
	return models.AuthData{Method: MethodBcrypt, Hash: string(hash)}, nil
}

// PBKDF2Hasher hashes with salted PBKDF2-HMAC-SHA256
type PBKDF2Hasher struct {
	Iterations int
}

func (h PBKDF2Hasher) Hash(password string) (models.AuthData, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return models.AuthData{}, fmt.Errorf("generating salt: %w", err)
	}
	key := pbkdf2.Key([]byte(password), salt, h.Iterations, pbkdf2KeyLen, sha256.New)
	return models.AuthData{
		Method: MethodPBKDF2,
		Salt:   fmt.Sprintf("%d$%s", h.Iterations, base64.RawStdEncoding.EncodeToString(salt)),
		Hash:   base64.RawStdEncoding.EncodeToString(key),
	}, nil
}

// Verify checks password against stored hash data of any supported method
func Verify(data models.AuthData, password string) bool {
	switch data.Method {
	case MethodBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(data.Hash), []byte(password)) == nil
	case MethodPBKDF2:
		rounds, encodedSalt, ok := strings.Cut(data.Salt, "$")
		if !ok {
			return false
		}
		iterations, err := strconv.Atoi(rounds)
		if err != nil || iterations <= 0 {
			return false
		}
		salt, err := base64.RawStdEncoding.DecodeString(encodedSalt)
		if err != nil {
			return false
		}
		want, err := base64.RawStdEncoding.DecodeString(data.Hash)
		if err != nil {
			return false
		}
		got := pbkdf2.Key([]byte(password), salt, iterations, len(want), sha256.New)
		return subtle.ConstantTimeCompare(got, want) == 1
	default:
		return false
	}
}
