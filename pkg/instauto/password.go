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
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mazen160/go-random"
)

const (
	passwordPrefix     = "#PWD_INSTAGRAM"
	passwordVersion    = 4
	passwordAESKeySize = 32
	passwordIVSize     = 12
	passwordTagSize    = 16
)

// passwordKey is the public key the platform hands out on qe/sync to encrypt
// the login password with.
type passwordKey struct {
	ID     int
	PubKey *rsa.PublicKey
}

// parsePasswordKey reads the key id and the base64 encoded pem public key
// the way they arrive in the sync response headers.
func parsePasswordKey(id, encoded string) (passwordKey, error) {
	keyID, err := strconv.Atoi(id)
	if err != nil || keyID < 0 || keyID > 255 {
		return passwordKey{}, fmt.Errorf("invalid password key id %q", id)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return passwordKey{}, fmt.Errorf("decode password key: %w", err)
	}
	block, _ := pem.Decode(raw)
	if block == nil {
		return passwordKey{}, errors.New("password key is not pem encoded")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return passwordKey{}, fmt.Errorf("parse password key: %w", err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return passwordKey{}, fmt.Errorf("password key is a %T, not rsa", parsed)
	}
	return passwordKey{ID: keyID, PubKey: pub}, nil
}

// encryptPassword produces the enc_password login field. Without a key the
// password is sent in the plain version 0 format.
//
// The version 4 payload is laid out as:
//
//	[1][key id][12 byte iv][2 byte LE wrapped key length][wrapped aes key][16 byte tag][ciphertext]
//
// with the timestamp used as additional authenticated data.
func encryptPassword(password string, key *passwordKey, now time.Time) (string, error) {
	timestamp := strconv.FormatInt(now.Unix(), 10)
	if key == nil {
		return fmt.Sprintf("%s:0:%s:%s", passwordPrefix, timestamp, password), nil
	}

	aesKey, err := random.Bytes(passwordAESKeySize)
	if err != nil {
		return "", fmt.Errorf("generate aes key: %w", err)
	}
	iv, err := random.Bytes(passwordIVSize)
	if err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	wrappedKey, err := rsa.EncryptPKCS1v15(rand.Reader, key.PubKey, aesKey)
	if err != nil {
		return "", fmt.Errorf("wrap aes key: %w", err)
	}

	block, err := aes.NewCipher(aesKey)
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, iv, []byte(password), []byte(timestamp))
	ciphertext := sealed[:len(sealed)-passwordTagSize]
	tag := sealed[len(sealed)-passwordTagSize:]

	payload := make([]byte, 0, 2+passwordIVSize+2+len(wrappedKey)+passwordTagSize+len(ciphertext))
	payload = append(payload, 1, byte(key.ID))
	payload = append(payload, iv...)
	payload = binary.LittleEndian.AppendUint16(payload, uint16(len(wrappedKey)))
	payload = append(payload, wrappedKey...)
	payload = append(payload, tag...)
	payload = append(payload, ciphertext...)

	return fmt.Sprintf(
		"%s:%d:%s:%s",
		passwordPrefix,
		passwordVersion,
		timestamp,
		base64.StdEncoding.EncodeToString(payload),
	), nil
}
