package instauto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/pem"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newPasswordKey(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	der, err := x509.MarshalPKIXPublicKey(&private.PublicKey)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
	return private, base64.StdEncoding.EncodeToString(pemBytes)
}

func decryptPassword(t *testing.T, private *rsa.PrivateKey, keyID int, enc string) string {
	t.Helper()
	parts := strings.SplitN(enc, ":", 4)
	require.Len(t, parts, 4)
	require.Equal(t, "#PWD_INSTAGRAM", parts[0])
	require.Equal(t, "4", parts[1])

	payload, err := base64.StdEncoding.DecodeString(parts[3])
	require.NoError(t, err)
	require.Equal(t, byte(1), payload[0])
	require.Equal(t, byte(keyID), payload[1])

	iv := payload[2:14]
	keyLen := int(binary.LittleEndian.Uint16(payload[14:16]))
	wrapped := payload[16 : 16+keyLen]
	tag := payload[16+keyLen : 16+keyLen+16]
	ciphertext := payload[16+keyLen+16:]

	aesKey, err := rsa.DecryptPKCS1v15(nil, private, wrapped)
	require.NoError(t, err)
	require.Len(t, aesKey, 32)

	block, err := aes.NewCipher(aesKey)
	require.NoError(t, err)
	gcm, err := cipher.NewGCM(block)
	require.NoError(t, err)
	plain, err := gcm.Open(nil, iv, append(append([]byte{}, ciphertext...), tag...), []byte(parts[2]))
	require.NoError(t, err)
	return string(plain)
}

func TestEncryptPasswordPlainFallback(t *testing.T) {
	enc, err := encryptPassword("hunter2", nil, testTime)
	require.NoError(t, err)
	require.Equal(t, "#PWD_INSTAGRAM:0:1709294400:hunter2", enc)
}

func TestEncryptPassword(t *testing.T) {
	private, encoded := newPasswordKey(t)
	key, err := parsePasswordKey("41", encoded)
	require.NoError(t, err)

	enc, err := encryptPassword("correct horse battery staple", &key, testTime)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(enc, "#PWD_INSTAGRAM:4:1709294400:"))
	require.Equal(t, "correct horse battery staple", decryptPassword(t, private, 41, enc))

	again, err := encryptPassword("correct horse battery staple", &key, testTime)
	require.NoError(t, err)
	require.NotEqual(t, enc, again)
}

func TestParsePasswordKey(t *testing.T) {
	_, encoded := newPasswordKey(t)

	_, err := parsePasswordKey("abc", encoded)
	require.Error(t, err)
	_, err = parsePasswordKey("300", encoded)
	require.Error(t, err)
	_, err = parsePasswordKey("41", "not base64!")
	require.Error(t, err)
	_, err = parsePasswordKey("41", base64.StdEncoding.EncodeToString([]byte("no pem here")))
	require.Error(t, err)
}

func TestJazoest(t *testing.T) {
	require.Equal(t, "2", jazoest(""))
	// '0' is 48, 'a' is 97
	require.Equal(t, "2145", jazoest("0a"))
}
