// Package seal implements the authenticated-encryption primitive used to
// build garbled gate rows: single-key AEAD sealing where a second, "inner"
// key may be folded in as associated data, plus the magic-prefix check
// that guards against accidental acceptance of a mis-decrypted row.
package seal

import (
	"crypto/rand"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/twopc-lab/yaogc/wirekey"
)

// Magic is the fixed 4-byte marker prepended to every plaintext before
// sealing and checked after opening.
var Magic = [4]byte{'G', 'A', 'R', 'B'}

// ErrAuth is returned by Open when the ciphertext fails AEAD
// authentication or the recovered plaintext lacks the magic prefix. It
// deliberately does not distinguish the two cases, so callers cannot
// learn which check failed from a decrypted-but-wrong row.
var ErrAuth = errors.New("seal: authentication failed")

// Blob is a sealed payload: a fresh nonce plus the AEAD ciphertext
// (which includes the authentication tag).
type Blob struct {
	Nonce      []byte
	Ciphertext []byte
}

// Seal encrypts plaintext under outer using an AEAD construction. If
// inner is non-nil, its bytes are bound in as additional authenticated
// data, so Open only succeeds when both keys match. plaintext is prefixed
// with Magic before sealing.
func Seal(outer wirekey.Key, inner *wirekey.Key, plaintext []byte) (Blob, error) {
	aead, err := chacha20poly1305.New(outer[:])
	if err != nil {
		return Blob{}, fmt.Errorf("seal: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Blob{}, fmt.Errorf("seal: %w", err)
	}

	msg := make([]byte, 0, len(Magic)+len(plaintext))
	msg = append(msg, Magic[:]...)
	msg = append(msg, plaintext...)

	ad := aad(inner)
	ct := aead.Seal(nil, nonce, msg, ad)

	return Blob{Nonce: nonce, Ciphertext: ct}, nil
}

// Open decrypts blob under outer (and, if inner is non-nil, verifies
// inner as associated data), returning the plaintext with the magic
// prefix stripped. It returns ErrAuth on tag failure or a missing/wrong
// magic prefix.
func Open(outer wirekey.Key, inner *wirekey.Key, blob Blob) ([]byte, error) {
	aead, err := chacha20poly1305.New(outer[:])
	if err != nil {
		return nil, fmt.Errorf("seal: %w", err)
	}

	ad := aad(inner)
	msg, err := aead.Open(nil, blob.Nonce, blob.Ciphertext, ad)
	if err != nil {
		return nil, ErrAuth
	}
	if len(msg) < len(Magic) || !hasMagic(msg) {
		return nil, ErrAuth
	}
	return msg[len(Magic):], nil
}

func hasMagic(msg []byte) bool {
	var diff byte
	for i, b := range Magic {
		diff |= msg[i] ^ b
	}
	return diff == 0
}

func aad(inner *wirekey.Key) []byte {
	if inner == nil {
		return nil
	}
	return inner[:]
}
