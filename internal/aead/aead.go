// Package aead implements the two symmetric-cipher conventions the UID2
// envelope formats use: AES-CBC with PKCS#7 padding and an external IV
// (the V2 convention), and AES-GCM with the IV prepended to the ciphertext
// and the tag appended (the V3 convention). Both build directly on
// crypto/aes and crypto/cipher; no third-party library does AES-CBC/GCM
// envelope framing any more directly than the standard library already
// does, so that choice is recorded and justified in DESIGN.md rather than
// routed through an extra dependency.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned for any cryptographic failure that the
// caller should surface as an InvalidPayload status: bad padding, a
// ciphertext length that isn't a block multiple, or GCM tag mismatch.
var ErrInvalidPayload = errors.New("aead: invalid payload")

const (
	// GCMIVLen is the length in bytes of a GCM initialization vector.
	GCMIVLen = 12
	// GCMTagLen is the length in bytes of a GCM authentication tag.
	GCMTagLen = 16
	// CBCIVLen is the length in bytes of a CBC initialization vector.
	CBCIVLen = 16
	// cbcBlockLen is the AES block size CBC mode operates on.
	cbcBlockLen = 16
)

// GenerateIV returns n cryptographically random bytes from the platform
// CSPRNG. It never reuses output across calls.
func GenerateIV(n int) ([]byte, error) {
	iv := make([]byte, n)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("aead: generate iv: %w", err)
	}
	return iv, nil
}

// CBCDecrypt decrypts ciphertext with AES-CBC using iv and key, then
// strips PKCS#7 padding. key must be 16 or 32 bytes. Fails with
// ErrInvalidPayload if the ciphertext length isn't a multiple of the
// block size or the padding is malformed.
func CBCDecrypt(ciphertext, iv, key []byte) ([]byte, error) {
	if len(iv) != CBCIVLen {
		return nil, fmt.Errorf("%w: bad iv length %d", ErrInvalidPayload, len(iv))
	}
	if len(ciphertext) == 0 || len(ciphertext)%cbcBlockLen != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a block multiple", ErrInvalidPayload, len(ciphertext))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return pkcs7Unpad(out)
}

// CBCEncrypt encrypts plaintext with AES-CBC under iv/key after applying
// PKCS#7 padding. The caller is responsible for prepending iv to the
// ciphertext when building a V2 envelope; this function returns only the
// ciphertext bytes.
func CBCEncrypt(plaintext, iv, key []byte) ([]byte, error) {
	if len(iv) != CBCIVLen {
		return nil, fmt.Errorf("aead: bad iv length %d", len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	padded := pkcs7Pad(plaintext, cbcBlockLen)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// GCMDecrypt decrypts combined = iv(12) || ciphertext || tag(16) with
// AES-GCM under key. The IV is read from the leading 12 bytes and the tag
// from the trailing 16; everything between is the ciphertext.
func GCMDecrypt(combined, key []byte) ([]byte, error) {
	if len(combined) < GCMIVLen+GCMTagLen {
		return nil, fmt.Errorf("%w: gcm blob too short (%d bytes)", ErrInvalidPayload, len(combined))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMIVLen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	iv := combined[:GCMIVLen]
	rest := combined[GCMIVLen:]
	plaintext, err := gcm.Open(nil, iv, rest, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: gcm authentication failed", ErrInvalidPayload)
	}
	return plaintext, nil
}

// GCMEncrypt encrypts plaintext with AES-GCM under iv/key and returns
// ciphertext||tag, a buffer of length len(plaintext)+GCMTagLen. The caller
// prepends iv when building the wire envelope.
func GCMEncrypt(plaintext, iv, key []byte) ([]byte, error) {
	if len(iv) != GCMIVLen {
		return nil, fmt.Errorf("aead: bad iv length %d", len(iv))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, GCMIVLen)
	if err != nil {
		return nil, err
	}
	return gcm.Seal(nil, iv, plaintext, nil), nil
}

func pkcs7Pad(b []byte, blockLen int) []byte {
	pad := blockLen - (len(b) % blockLen)
	out := make([]byte, len(b)+pad)
	copy(out, b)
	for i := len(b); i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func pkcs7Unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", ErrInvalidPayload)
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > cbcBlockLen || pad > len(b) {
		return nil, fmt.Errorf("%w: bad pkcs7 padding", ErrInvalidPayload)
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, fmt.Errorf("%w: bad pkcs7 padding", ErrInvalidPayload)
		}
	}
	return b[:len(b)-pad], nil
}
