package ot

import (
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/twopc-lab/yaogc/wirekey"
)

func randPair(t *testing.T) wirekey.Pair {
	t.Helper()
	p, err := wirekey.NewPair(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestTransferRecoversChoice(t *testing.T) {
	for _, choice := range []int{0, 1} {
		pair := randPair(t)
		got, err := Transfer(pair, choice)
		if err != nil {
			t.Fatal(err)
		}
		want := pair.ForBit(choice)
		if !got.Equal(want) {
			t.Fatalf("choice=%d: got %v, want %v", choice, got, want)
		}
	}
}

func TestTransferManyRandomChoices(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping RSA-heavy loop in short mode")
	}
	for i := 0; i < 8; i++ {
		choice := i % 2
		pair := randPair(t)
		got, err := Transfer(pair, choice)
		if err != nil {
			t.Fatal(err)
		}
		if !got.Equal(pair.ForBit(choice)) {
			t.Fatalf("iteration %d: recovered key mismatch", i)
		}
	}
}

func TestNewReceiverRejectsInvalidChoice(t *testing.T) {
	sender, err := NewSender(randPair(t))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewReceiver(sender.Offer(), 2); err == nil {
		t.Fatal("expected error for out-of-range choice bit")
	}
}

func TestBlindIsUniformAcrossChoices(t *testing.T) {
	// Sanity check for the hiding property: v should not simply equal
	// x0 or x1, and should differ across independent blindings.
	sender, err := NewSender(randPair(t))
	if err != nil {
		t.Fatal(err)
	}
	setup := sender.Offer()

	seen := make(map[string]bool)
	for i := 0; i < 16; i++ {
		r, err := NewReceiver(setup, i%2)
		if err != nil {
			t.Fatal(err)
		}
		v, err := r.Blind()
		if err != nil {
			t.Fatal(err)
		}
		if v.Cmp(setup.X0) == 0 || v.Cmp(setup.X1) == 0 {
			t.Fatal("blinded value leaked x0/x1 directly")
		}
		seen[v.String()] = true
	}
	if len(seen) < 8 {
		t.Fatalf("blinded values are not sufficiently spread: %d distinct of 16", len(seen))
	}
}

func TestUnblindOnlyRecoversChosenKey(t *testing.T) {
	pair := randPair(t)
	sender, err := NewSender(pair)
	if err != nil {
		t.Fatal(err)
	}
	receiver, err := NewReceiver(sender.Offer(), 0)
	if err != nil {
		t.Fatal(err)
	}
	v, err := receiver.Blind()
	if err != nil {
		t.Fatal(err)
	}
	m0, m1, err := sender.Mask(v)
	if err != nil {
		t.Fatal(err)
	}

	got, err := receiver.Unblind(m0, m1)
	if err != nil {
		t.Fatal(err)
	}
	// The receiver chose bit 0: it must recover Zero, and must NOT be
	// able to derive One by any means available to it (it never
	// computed k1's preimage).
	if got.Equal(pair.One) {
		t.Fatal("receiver recovered the unchosen key")
	}
	if !got.Equal(pair.Zero) {
		t.Fatal("receiver failed to recover the chosen key")
	}
}

func TestOfferIsIndependentCopy(t *testing.T) {
	sender, err := NewSender(randPair(t))
	if err != nil {
		t.Fatal(err)
	}
	setup := sender.Offer()
	setup.N.Add(setup.N, big.NewInt(1))
	setup2 := sender.Offer()
	if setup2.N.Cmp(setup.N) == 0 {
		t.Fatal("Offer() leaked internal modulus by reference")
	}
}
