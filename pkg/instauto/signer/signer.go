// Package signer produces the signed_body envelope that signed endpoints of
// the private API expect: an HMAC-SHA256 of the JSON payload, followed by a
// dot and the payload itself.
package signer

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"instauto/internal/components/assert"
	"net/url"
	"strings"
)

var (
	ErrEncode            = errors.New("signer: payload is not json serializable")
	ErrMalformedEnvelope = errors.New("signer: malformed envelope")
	ErrSignatureMismatch = errors.New("signer: signature does not match payload")
)

// signatureLength is the length of a hex encoded sha256 digest.
const signatureLength = sha256.Size * 2

type Signer struct {
	key        []byte
	keyVersion string
}

func New(key, keyVersion string) Signer {
	assert.NotEmptyStr("signing key", key)
	return Signer{key: []byte(key), keyVersion: keyVersion}
}

// Encode serializes the payload the way it is signed: compact, without
// html escaping, no trailing newline.
func Encode(payload any) ([]byte, error) {
	buff := bytes.NewBuffer(nil)
	encoder := json.NewEncoder(buff)
	encoder.SetEscapeHTML(false)
	err := encoder.Encode(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return bytes.TrimSuffix(buff.Bytes(), []byte("\n")), nil
}

func (s Signer) digest(body []byte) string {
	mac := hmac.New(sha256.New, s.key)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign returns "<hex signature>.<json>".
func (s Signer) Sign(payload any) (string, error) {
	body, err := Encode(payload)
	if err != nil {
		return "", err
	}
	return s.digest(body) + "." + string(body), nil
}

// Envelope returns the form fields a signed request carries.
func (s Signer) Envelope(payload any) (url.Values, error) {
	signed, err := s.Sign(payload)
	if err != nil {
		return nil, err
	}
	values := url.Values{}
	values.Set("signed_body", signed)
	if s.keyVersion != "" {
		values.Set("ig_sig_key_version", s.keyVersion)
	}
	return values, nil
}

// Open splits a signed body back into its signature and json and checks that
// the signature was produced with this signer's key.
func (s Signer) Open(signed string) (signature string, body []byte, err error) {
	if len(signed) < signatureLength+1 || signed[signatureLength] != '.' {
		return "", nil, ErrMalformedEnvelope
	}
	signature = signed[:signatureLength]
	if strings.Trim(signature, "0123456789abcdef") != "" {
		return "", nil, ErrMalformedEnvelope
	}
	body = []byte(signed[signatureLength+1:])

	if !hmac.Equal([]byte(signature), []byte(s.digest(body))) {
		return signature, body, ErrSignatureMismatch
	}
	return signature, body, nil
}
