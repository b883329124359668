package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cryptoKey = []byte("0123456789abcdef0123456789abcdef")

func TestEncryptDecryptRoundTrip(t *testing.T) {
	encrypted, err := Encrypt([]byte("long-lived-access-token"), cryptoKey)
	require.NoError(t, err)
	assert.NotEqual(t, "long-lived-access-token", encrypted)

	decrypted, err := Decrypt(encrypted, cryptoKey)
	require.NoError(t, err)
	assert.Equal(t, "long-lived-access-token", decrypted)
}

func TestEncryptIsNonDeterministic(t *testing.T) {
	first, err := Encrypt([]byte("payload"), cryptoKey)
	require.NoError(t, err)

	second, err := Encrypt([]byte("payload"), cryptoKey)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDecryptWrongKey(t *testing.T) {
	encrypted, err := Encrypt([]byte("payload"), cryptoKey)
	require.NoError(t, err)

	otherKey := []byte("fedcba9876543210fedcba9876543210")
	_, err = Decrypt(encrypted, otherKey)
	assert.Error(t, err)
}

func TestDecryptRejectsGarbage(t *testing.T) {
	_, err := Decrypt("not base64!!", cryptoKey)
	assert.Error(t, err)

	_, err = Decrypt("YWJj", cryptoKey) // too short for a nonce
	assert.Error(t, err)
}

func TestEncryptRejectsBadKeyLength(t *testing.T) {
	_, err := Encrypt([]byte("payload"), []byte("short"))
	assert.Error(t, err)
}
