package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var ErrHashingFailed = errors.New("token hashing failed")

const tokenBytes = 32

// TokenHasher issues opaque invitation tokens and verifies them later.
// Only the bcrypt hash is persisted; the plain token travels in the invite
// email.
type TokenHasher interface {
	Generate() (plain string, hash string, err error)
	Compare(hash, plain string) error
}

type bcryptTokenHasher struct {
	cost int
}

// NewBcryptTokenHasher creates a token hasher using bcrypt
func NewBcryptTokenHasher(cost int) TokenHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &bcryptTokenHasher{cost: cost}
}

func (b *bcryptTokenHasher) Generate() (string, string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	plain := hex.EncodeToString(buf)

	// bcrypt input is capped at 72 bytes, so only the first 60 hex chars
	// (30 random bytes) go into the hash.
	hash, err := bcrypt.GenerateFromPassword([]byte(plain[:60]), b.cost)
	if err != nil {
		return "", "", ErrHashingFailed
	}
	return plain, string(hash), nil
}

func (b *bcryptTokenHasher) Compare(hash, plain string) error {
	if len(plain) > 60 {
		plain = plain[:60]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
