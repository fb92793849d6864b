// Package wirekey implements the per-wire secret key material used by the
// garbling scheme: two independent keys per wire, one for each possible
// bit value, generated fresh for every run.
package wirekey

import (
	"crypto/subtle"
	"fmt"
	"io"
)

// Size is the wire key length in bytes (256 bits), chosen to match the
// AEAD construction's key size in package seal.
const Size = 32

// Key is an opaque 256 bit wire key.
type Key [Size]byte

// String renders the key as a truncated hex string. Full key material is
// never logged.
func (k Key) String() string {
	return fmt.Sprintf("%x...", k[:4])
}

// Equal reports whether two keys are identical, in constant time.
func (k Key) Equal(o Key) bool {
	return subtle.ConstantTimeCompare(k[:], o[:]) == 1
}

// Xor returns k XOR o.
func (k Key) Xor(o Key) Key {
	var r Key
	for i := range r {
		r[i] = k[i] ^ o[i]
	}
	return r
}

// Bytes returns the key as a byte slice backed by the key array.
func (k *Key) Bytes() []byte {
	return k[:]
}

// Zero overwrites the key with zeroes. Callers use this once a run has
// consumed the key, per the key-material lifetime rule.
func (k *Key) Zero() {
	for i := range k {
		k[i] = 0
	}
}

// New draws a fresh random key from rand.
func New(rand io.Reader) (Key, error) {
	var k Key
	if _, err := io.ReadFull(rand, k[:]); err != nil {
		return k, err
	}
	return k, nil
}

// FromBytes copies data into a new Key. len(data) must equal Size.
func FromBytes(data []byte) (Key, error) {
	var k Key
	if len(data) != Size {
		return k, fmt.Errorf("wirekey: invalid key length %d, want %d",
			len(data), Size)
	}
	copy(k[:], data)
	return k, nil
}

// Pair holds the two keys owned by a single wire: Zero for bit 0, One for
// bit 1.
type Pair struct {
	Zero Key
	One  Key
}

// NewPair draws a fresh independent key pair for one wire.
func NewPair(rand io.Reader) (Pair, error) {
	z, err := New(rand)
	if err != nil {
		return Pair{}, err
	}
	o, err := New(rand)
	if err != nil {
		return Pair{}, err
	}
	return Pair{Zero: z, One: o}, nil
}

// ForBit returns the key corresponding to the given bit value.
func (p Pair) ForBit(bit int) Key {
	if bit == 0 {
		return p.Zero
	}
	return p.One
}

// BitFor resolves a concrete key back to the bit it represents, per the
// pair that issued it. Returns an error if the key belongs to neither.
func (p Pair) BitFor(k Key) (int, error) {
	switch {
	case k.Equal(p.Zero):
		return 0, nil
	case k.Equal(p.One):
		return 1, nil
	default:
		return 0, fmt.Errorf("wirekey: key does not belong to this pair")
	}
}

// ZeroOut overwrites both keys of the pair.
func (p *Pair) ZeroOut() {
	p.Zero.Zero()
	p.One.Zero()
}
