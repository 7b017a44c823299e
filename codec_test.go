package accounts_test

import (
	"testing"

	"github.com/campuskit/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcryptCodecEncodeAndCompare(t *testing.T) {
	codec := accounts.BcryptCodec{Cost: 4}

	stored, err := codec.Encode("super-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret", stored)

	assert.NoError(t, codec.Compare("super-secret", stored))
}

func TestBcryptCodecCompareMismatch(t *testing.T) {
	codec := accounts.BcryptCodec{Cost: 4}

	stored, err := codec.Encode("super-secret")
	require.NoError(t, err)

	err = codec.Compare("not-the-secret", stored)
	assert.ErrorIs(t, err, accounts.ErrSecretMismatch)
}

func TestBcryptCodecEncodeEmpty(t *testing.T) {
	codec := accounts.BcryptCodec{}

	_, err := codec.Encode("")
	assert.ErrorIs(t, err, accounts.ErrNoEmptyString)
}

func TestBcryptCodecEncodeNotDeterministic(t *testing.T) {
	codec := accounts.BcryptCodec{Cost: 4}

	first, err := codec.Encode("super-secret")
	require.NoError(t, err)
	second, err := codec.Encode("super-secret")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, codec.Compare("super-secret", first))
	assert.NoError(t, codec.Compare("super-secret", second))
}
