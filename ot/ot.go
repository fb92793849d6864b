//
// ot.go
//
// Package ot implements 1-out-of-2 oblivious transfer of wire keys via a
// Bellare-Micali-style construction over an RSA trapdoor permutation: the
// receiver blinds its choice bit behind a random group element, the
// sender inverts both candidate blindings and XOR-masks each offered key
// under a hash of the corresponding preimage, and only the receiver's
// own preimage lets it recover the mask for its chosen key.
//
// There is no network transport here: a transfer is a sequence of Go
// values passed directly between a Sender and a Receiver, mirroring
// what would cross a wire if there were one.
package ot

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"golang.org/x/crypto/hkdf"

	"github.com/twopc-lab/yaogc/internal/mpint"
	"github.com/twopc-lab/yaogc/wirekey"
)

// KeyBits is the RSA modulus size used for the trapdoor permutation. The
// design calls for "adequate modulus size (>=2048 bits)".
const KeyBits = 2048

// Setup is the message the sender publishes at the start of a transfer:
// the RSA public key and the two random group elements x0, x1.
type Setup struct {
	N  *big.Int
	E  int
	X0 *big.Int
	X1 *big.Int
}

// Sender holds Alice's per-wire OT state: the RSA keypair and the two
// keys being offered.
type Sender struct {
	priv   *rsa.PrivateKey
	offer  wirekey.Pair
	x0, x1 *big.Int
	k0, k1 *big.Int
}

// NewSender runs the setup phase for one wire: it generates a fresh RSA
// keypair and two random elements of Z_N*, and prepares to offer the
// given key pair.
func NewSender(offer wirekey.Pair) (*Sender, error) {
	priv, err := rsa.GenerateKey(rand.Reader, KeyBits)
	if err != nil {
		return nil, fmt.Errorf("ot: keygen failed: %w", err)
	}

	x0, err := mpint.RandomZStar(rand.Reader, priv.PublicKey.N)
	if err != nil {
		return nil, fmt.Errorf("ot: %w", err)
	}
	x1, err := mpint.RandomZStar(rand.Reader, priv.PublicKey.N)
	if err != nil {
		return nil, fmt.Errorf("ot: %w", err)
	}

	return &Sender{
		priv:  priv,
		offer: offer,
		x0:    x0,
		x1:    x1,
	}, nil
}

// Offer returns the setup message to hand to the receiver.
func (s *Sender) Offer() Setup {
	return Setup{
		N:  new(big.Int).Set(s.priv.PublicKey.N),
		E:  s.priv.PublicKey.E,
		X0: new(big.Int).Set(s.x0),
		X1: new(big.Int).Set(s.x1),
	}
}

// Mask computes the masked pair (m0, m1) from the receiver's blinded
// value v. Exactly one of the two masks can be removed by the receiver,
// depending on which of k0, k1 it was able to reconstruct.
func (s *Sender) Mask(v *big.Int) (m0, m1 wirekey.Key, err error) {
	N := s.priv.PublicKey.N
	d := s.priv.D

	s.k0 = mpint.Exp(mpint.Mod(mpint.Sub(v, s.x0), N), d, N)
	s.k1 = mpint.Exp(mpint.Mod(mpint.Sub(v, s.x1), N), d, N)

	h0, err := kdf(s.k0)
	if err != nil {
		return wirekey.Key{}, wirekey.Key{}, err
	}
	h1, err := kdf(s.k1)
	if err != nil {
		return wirekey.Key{}, wirekey.Key{}, err
	}

	m0 = s.offer.Zero.Xor(h0)
	m1 = s.offer.One.Xor(h1)
	return m0, m1, nil
}

// Receiver holds Bob's per-wire OT state: his choice bit and blinding
// factor.
type Receiver struct {
	setup  Setup
	choice int
	k      *big.Int
	v      *big.Int
}

// NewReceiver begins a transfer for the given setup message and choice
// bit.
func NewReceiver(setup Setup, choice int) (*Receiver, error) {
	if choice != 0 && choice != 1 {
		return nil, fmt.Errorf("ot: choice bit must be 0 or 1, got %d", choice)
	}
	return &Receiver{setup: setup, choice: choice}, nil
}

// Blind draws a random blinding factor k and returns the blinded value
// v = (x_choice + k^e) mod N, statistically hiding the choice bit from
// the sender.
func (r *Receiver) Blind() (*big.Int, error) {
	k, err := mpint.RandomZStar(rand.Reader, r.setup.N)
	if err != nil {
		return nil, fmt.Errorf("ot: %w", err)
	}
	r.k = k

	x := r.setup.X0
	if r.choice == 1 {
		x = r.setup.X1
	}

	e := big.NewInt(int64(r.setup.E))
	ke := mpint.Exp(k, e, r.setup.N)
	v := mpint.Mod(mpint.Add(x, ke), r.setup.N)

	if v.Cmp(r.setup.X0) == 0 || v.Cmp(r.setup.X1) == 0 {
		return nil, fmt.Errorf("ot: degenerate blinding, retry this wire")
	}

	r.v = v
	return v, nil
}

// Unblind recovers the chosen key from the sender's masked pair, using
// only the receiver's own blinding factor k. It cannot be used to
// recover the unchosen key, which would require inverting the RSA
// permutation without the private exponent.
func (r *Receiver) Unblind(m0, m1 wirekey.Key) (wirekey.Key, error) {
	h, err := kdf(r.k)
	if err != nil {
		return wirekey.Key{}, err
	}
	m := m0
	if r.choice == 1 {
		m = m1
	}
	return m.Xor(h), nil
}

// Transfer runs one full 1-out-of-2 transfer in-process: Alice offers
// pair, Bob selects by choice, and Bob's recovered key is returned. It
// exists for callers that model both roles in a single address space;
// the Setup/v/(m0,m1) values it exchanges internally are exactly what
// would cross a wire if there were one.
func Transfer(pair wirekey.Pair, choice int) (wirekey.Key, error) {
	sender, err := NewSender(pair)
	if err != nil {
		return wirekey.Key{}, err
	}

	receiver, err := NewReceiver(sender.Offer(), choice)
	if err != nil {
		return wirekey.Key{}, err
	}

	v, err := receiver.Blind()
	if err != nil {
		return wirekey.Key{}, err
	}

	m0, m1, err := sender.Mask(v)
	if err != nil {
		return wirekey.Key{}, err
	}

	return receiver.Unblind(m0, m1)
}

// kdf derives a wire-key-sized mask from a big-integer preimage.
func kdf(preimage *big.Int) (wirekey.Key, error) {
	reader := hkdf.New(sha256.New, preimage.Bytes(), nil, []byte("yaogc-ot-mask"))
	var out wirekey.Key
	if _, err := io.ReadFull(reader, out[:]); err != nil {
		return wirekey.Key{}, fmt.Errorf("ot: kdf: %w", err)
	}
	return out, nil
}
