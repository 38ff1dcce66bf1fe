package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, ComparePassword(hash, "correct horse battery staple"))
	assert.False(t, ComparePassword(hash, "wrong password"))
	assert.False(t, ComparePassword(hash, ""))
}

func TestGenerateRandomPassword(t *testing.T) {
	a, err := GenerateRandomPassword()
	require.NoError(t, err)
	b, err := GenerateRandomPassword()
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestGenerateNumericID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := GenerateNumericID()
		require.NoError(t, err)
		require.Len(t, id, 10)
		assert.GreaterOrEqual(t, id[0], byte('1'), "id must not have a leading zero: %s", id)
		for _, ch := range id {
			assert.True(t, ch >= '0' && ch <= '9', "id must be numeric: %s", id)
		}
		seen[id] = true
	}
	// 100 draws from a 9e9 space should not all collapse.
	assert.Greater(t, len(seen), 90)
}
