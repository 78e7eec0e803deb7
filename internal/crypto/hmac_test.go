package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestL2HeadersAt_Deterministic(t *testing.T) {
	secret := base64.StdEncoding.EncodeToString([]byte("test-secret"))
	auth := &HMACAuth{Key: "key-1", Secret: secret, Passphrase: "pass-1"}

	headers := auth.L2HeadersAt("0xabc", "POST", "/order", `{"x":1}`, 1700000000)

	assert.Equal(t, "0xabc", headers["POLY_ADDRESS"])
	assert.Equal(t, "key-1", headers["POLY_API_KEY"])
	assert.Equal(t, "1700000000", headers["POLY_TIMESTAMP"])
	assert.Equal(t, "pass-1", headers["POLY_PASSPHRASE"])

	mac := hmac.New(sha256.New, []byte("test-secret"))
	mac.Write([]byte(`1700000000POST/order{"x":1}`))
	want := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	assert.Equal(t, want, headers["POLY_SIGNATURE"])
}

func TestHMACAuth_StringRedacts(t *testing.T) {
	auth := &HMACAuth{Key: "abcdef123456", Secret: "supersecretvalue"}
	s := auth.String()
	assert.NotContains(t, s, "123456")
	assert.NotContains(t, s, "secretvalue")
	assert.Contains(t, s, "abcd****")
}

func TestEncryptDecryptKey_RoundTrip(t *testing.T) {
	const key = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"

	blob, err := EncryptKey(key, "hunter2")
	require.NoError(t, err)

	got, err := DecryptKey(blob, "hunter2")
	require.NoError(t, err)
	assert.Equal(t, key[2:], got)

	_, err = DecryptKey(blob, "wrong")
	assert.Error(t, err)
}
