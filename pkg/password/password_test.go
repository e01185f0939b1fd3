package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pepper = ")(*&(*^%*&^$*^#$"

func TestHashRoundTrip(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)

	hash, err := Hash("123abc", salt, pepper)
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	assert.True(t, Verify("123abc", hash, salt, pepper))
	assert.False(t, Verify("wrong", hash, salt, pepper))
}

func TestGenerateSaltIsUnique(t *testing.T) {
	a, err := GenerateSalt()
	require.NoError(t, err)
	b, err := GenerateSalt()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Len(t, a, saltBytes*2)
}

func TestVerifyRejectsMalformedInput(t *testing.T) {
	salt, err := GenerateSalt()
	require.NoError(t, err)
	hash, err := Hash("secret", salt, pepper)
	require.NoError(t, err)

	assert.False(t, Verify("", hash, salt, pepper))
	assert.False(t, Verify("secret", "", salt, pepper))
	assert.False(t, Verify("secret", hash, "other-salt", pepper))
	assert.False(t, Verify("secret", hash, salt, "other-pepper"))
}

func TestHashDependsOnSaltAndPepper(t *testing.T) {
	h1, err := Hash("secret", "salt-a", pepper)
	require.NoError(t, err)
	h2, err := Hash("secret", "salt-b", pepper)
	require.NoError(t, err)
	h3, err := Hash("secret", "salt-a", "different")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}
