//
// mpint.go
//
// Thin math/big helpers used by the OT trapdoor-permutation arithmetic.
package mpint

import (
	crand "crypto/rand"
	"io"
	"math/big"
)

// FromBytes interprets data as a big-endian unsigned integer.
func FromBytes(data []byte) *big.Int {
	return new(big.Int).SetBytes(data)
}

// Add returns a + b.
func Add(a, b *big.Int) *big.Int {
	return new(big.Int).Add(a, b)
}

// Sub returns a - b.
func Sub(a, b *big.Int) *big.Int {
	return new(big.Int).Sub(a, b)
}

// Exp returns x^y mod m.
func Exp(x, y, m *big.Int) *big.Int {
	return new(big.Int).Exp(x, y, m)
}

// Mod returns x mod y.
func Mod(x, y *big.Int) *big.Int {
	return new(big.Int).Mod(x, y)
}

// RandomZStar draws a uniformly random element of Z_n* (in practice, a
// uniform element of [1, n) rejected on the rare zero draw).
func RandomZStar(reader io.Reader, n *big.Int) (*big.Int, error) {
	for {
		v, err := crand.Int(reader, n)
		if err != nil {
			return nil, err
		}
		if v.Sign() != 0 {
			return v, nil
		}
	}
}
