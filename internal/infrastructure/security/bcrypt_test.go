package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nextedu/portal/internal/domain/directory"
)

var _ directory.PasswordHasher = (*BcryptHasher)(nil)

func TestBcryptHasher_HashAndCompare(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("password")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))
	assert.NotEqual(t, "password", hash)

	assert.True(t, h.Compare(hash, "password"))
	assert.False(t, h.Compare(hash, "Password"))
	assert.False(t, h.Compare("not-a-hash", "password"))
}

func TestNewBcryptHasher_CostFallback(t *testing.T) {
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).Cost())
	assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(99).Cost())
	assert.Equal(t, 12, NewBcryptHasher(12).Cost())
}
