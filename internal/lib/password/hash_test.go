package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCompare(t *testing.T) {
	hash, err := Hash("secret-password")
	require.NoError(t, err)
	assert.NotEqual(t, "secret-password", hash)

	assert.NoError(t, Compare(hash, "secret-password"))
	assert.Error(t, Compare(hash, "wrong-password"))
}

func TestHashIsSalted(t *testing.T) {
	first, err := Hash("secret-password")
	require.NoError(t, err)
	second, err := Hash("secret-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
