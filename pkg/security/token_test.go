package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/crypto/bcrypt"
)

func TestGenerateAndCompare(t *testing.T) {
	h := NewBcryptTokenHasher(bcrypt.MinCost)

	plain, hash, err := h.Generate()
	require.NoError(t, err)
	assert.Len(t, plain, 64)
	assert.NotEqual(t, plain, hash)

	assert.NoError(t, h.Compare(hash, plain))
}

func TestCompareRejectsWrongToken(t *testing.T) {
	h := NewBcryptTokenHasher(bcrypt.MinCost)

	_, hash, err := h.Generate()
	require.NoError(t, err)

	other, _, err := h.Generate()
	require.NoError(t, err)

	assert.Error(t, h.Compare(hash, other))
	assert.Error(t, h.Compare(hash, ""))
}

func TestGenerateTokensAreUnique(t *testing.T) {
	h := NewBcryptTokenHasher(bcrypt.MinCost)

	a, _, err := h.Generate()
	require.NoError(t, err)
	b, _, err := h.Generate()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestInvalidCostFallsBackToDefault(t *testing.T) {
	h := NewBcryptTokenHasher(-1)

	plain, hash, err := h.Generate()
	require.NoError(t, err)
	assert.NoError(t, h.Compare(hash, plain))
}
