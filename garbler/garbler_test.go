package garbler

import (
	"crypto/rand"
	"testing"

	"github.com/twopc-lab/yaogc/circuit"
)

func andCircuit() *circuit.Circuit {
	return &circuit.Circuit{
		ID:    "and",
		Alice: []circuit.Wire{1},
		Bob:   []circuit.Wire{2},
		Out:   []circuit.Wire{3},
		Gates: []circuit.Gate{
			{Out: 3, Op: circuit.AND, In: []circuit.Wire{1, 2}},
		},
	}
}

func TestGarbleProducesExactlyOneRowPerCombination(t *testing.T) {
	c := andCircuit()
	res, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Garbled.Gates) != 1 {
		t.Fatalf("got %d garbled gates, want 1", len(res.Garbled.Gates))
	}
	if got := len(res.Garbled.Gates[0].Rows); got != 4 {
		t.Fatalf("got %d rows, want 4", got)
	}
}

func TestGarbleNotGateHasTwoRows(t *testing.T) {
	c := &circuit.Circuit{
		ID:    "not",
		Alice: []circuit.Wire{1},
		Bob:   []circuit.Wire{},
		Out:   []circuit.Wire{2},
		Gates: []circuit.Gate{
			{Out: 2, Op: circuit.NOT, In: []circuit.Wire{1}},
		},
	}
	res, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 0})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(res.Garbled.Gates[0].Rows); got != 2 {
		t.Fatalf("got %d rows, want 2", got)
	}
}

func TestGarbleDecodingMapCoversBothBits(t *testing.T) {
	c := andCircuit()
	res, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 1})
	if err != nil {
		t.Fatal(err)
	}
	decode, ok := res.Garbled.Decode[3]
	if !ok {
		t.Fatal("missing decode map for output wire 3")
	}
	if len(decode) != 2 {
		t.Fatalf("got %d entries, want 2", len(decode))
	}
	var zeros, ones int
	for _, bit := range decode {
		if bit == 0 {
			zeros++
		} else {
			ones++
		}
	}
	if zeros != 1 || ones != 1 {
		t.Fatalf("decode map does not cover both bits: %v", decode)
	}
}

func TestGarbleFreshness(t *testing.T) {
	c := andCircuit()
	r1, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 1})
	if err != nil {
		t.Fatal(err)
	}
	r2, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 1})
	if err != nil {
		t.Fatal(err)
	}
	if r1.AliceInputKeys[1].Equal(r2.AliceInputKeys[1]) {
		t.Fatal("two runs produced identical wire keys")
	}
	same := true
	for i := range r1.Garbled.Gates[0].Rows {
		if string(r1.Garbled.Gates[0].Rows[i].Ciphertext) !=
			string(r2.Garbled.Gates[0].Rows[i].Ciphertext) {
			same = false
			break
		}
	}
	if same {
		t.Fatal("two runs produced identical garbled rows")
	}
}

func TestGarbleMissingAliceInputBit(t *testing.T) {
	c := andCircuit()
	if _, err := Garble(rand.Reader, c, map[circuit.Wire]int{}); err == nil {
		t.Fatal("expected error for missing alice input bit")
	}
}

func TestGarbleBobInputPairsPresent(t *testing.T) {
	c := andCircuit()
	res, err := Garble(rand.Reader, c, map[circuit.Wire]int{1: 0})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := res.BobInputPairs[2]; !ok {
		t.Fatal("missing key pair for bob input wire 2")
	}
}
