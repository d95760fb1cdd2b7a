// Package crypto collects the small set of hashing and encoding helpers
// venue signers need: HMAC request signatures, hex/base64 rendering of
// signature bytes, and checksum salts.
package crypto

import (
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // required by legacy venue checksum schemes
	"crypto/rand"
	"crypto/sha1" //nolint:gosec // required by legacy venue signing schemes
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"hash"
)

// HashType selects the underlying hash.Hash implementation GetHMAC uses.
type HashType uint8

// Supported hash algorithms, named for the venue signing schemes that
// require them.
const (
	HashSHA1 HashType = iota
	HashSHA256
	HashSHA512
	HashSHA512_384
	HashMD5
)

func newHasher(h HashType) func() hash.Hash {
	switch h {
	case HashSHA1:
		return sha1.New
	case HashSHA256:
		return sha256.New
	case HashSHA512:
		return sha512.New
	case HashSHA512_384:
		return sha512.New384
	case HashMD5:
		return md5.New
	default:
		return sha256.New
	}
}

// GetHMAC signs payload with secret using the requested hash algorithm.
func GetHMAC(h HashType, payload, secret []byte) ([]byte, error) {
	mac := hmac.New(newHasher(h), secret)
	if _, err := mac.Write(payload); err != nil {
		return nil, err
	}
	return mac.Sum(nil), nil
}

// HexEncodeToString renders data as lower-case hex, the format most REST
// signing schemes expect in the signature header or query parameter.
func HexEncodeToString(data []byte) string {
	return hex.EncodeToString(data)
}

// Base64Encode renders data as standard base64.
func Base64Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Base64Decode parses standard base64 back into bytes.
func Base64Decode(data string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(data)
}

// GetMD5 returns the MD5 digest of data.
func GetMD5(data []byte) ([]byte, error) {
	h := md5.New() //nolint:gosec // checksum use only, not a security boundary
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// GetSHA256 returns the SHA-256 digest of data.
func GetSHA256(data []byte) ([]byte, error) {
	h := sha256.New()
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// GetSHA512 returns the SHA-512 digest of data.
func GetSHA512(data []byte) ([]byte, error) {
	h := sha512.New()
	if _, err := h.Write(data); err != nil {
		return nil, err
	}
	return h.Sum(nil), nil
}

// GetRandomSalt returns a random salt of length input bytes, prefixed by the
// caller-supplied seed when non-empty.
func GetRandomSalt(seed []byte, length int) ([]byte, error) {
	if length <= 0 {
		return nil, errors.New("salt length is too small")
	}
	salt := make([]byte, length)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return append(seed, salt...), nil
}
