//
// garbler.go
//
// Package garbler builds a garbled circuit from a validated circuit
// description: independent key pairs for every wire, sealed truth-table
// rows for every gate, and output-wire decoding tables.
package garbler

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/twopc-lab/yaogc/circuit"
	"github.com/twopc-lab/yaogc/seal"
	"github.com/twopc-lab/yaogc/wirekey"
)

// Gate is one garbled gate: the shuffled list of sealed truth-table
// rows. No plaintext index survives into this list.
type Gate struct {
	Rows []seal.Blob
}

// Decode maps a recovered output key back to its plaintext bit.
type Decode map[wirekey.Key]int

// Circuit is the garbled circuit: one Gate per circuit gate (same
// order), plus a decoding table per output wire.
type Circuit struct {
	Gates  []Gate
	Decode map[circuit.Wire]Decode
}

// Result bundles everything the Garbler produces for one run: the
// garbled circuit, the concrete keys for Alice's input wires (ready to
// hand over directly), and the key pairs for Bob's input wires (offered
// through OT rather than transferred directly).
type Result struct {
	Garbled        *Circuit
	AliceInputKeys map[circuit.Wire]wirekey.Key
	BobInputPairs  map[circuit.Wire]wirekey.Pair
}

// Garble builds a fresh garbled circuit for c. Every run draws new key
// material, nonces, and row orderings, so no two runs of the same
// circuit produce the same garbled circuit.
func Garble(rnd io.Reader, c *circuit.Circuit, aliceInputs map[circuit.Wire]int) (*Result, error) {
	if rnd == nil {
		rnd = rand.Reader
	}

	pairs, err := generateWireKeys(rnd, c)
	if err != nil {
		return nil, err
	}

	gates := make([]Gate, len(c.Gates))
	for i, g := range c.Gates {
		gate, err := garbleGate(rnd, g, pairs)
		if err != nil {
			return nil, fmt.Errorf("garbler: gate %d: %w", i, err)
		}
		gates[i] = gate
	}

	decode := make(map[circuit.Wire]Decode, len(c.Out))
	for _, w := range c.Out {
		pair, ok := pairs[w]
		if !ok {
			return nil, fmt.Errorf("garbler: output wire %s has no key pair", w)
		}
		decode[w] = Decode{
			pair.Zero: 0,
			pair.One:  1,
		}
	}

	aliceKeys := make(map[circuit.Wire]wirekey.Key, len(c.Alice))
	for _, w := range c.Alice {
		bit, ok := aliceInputs[w]
		if !ok {
			return nil, fmt.Errorf("garbler: missing input bit for alice wire %s", w)
		}
		aliceKeys[w] = pairs[w].ForBit(bit)
	}

	bobPairs := make(map[circuit.Wire]wirekey.Pair, len(c.Bob))
	for _, w := range c.Bob {
		bobPairs[w] = pairs[w]
	}

	return &Result{
		Garbled: &Circuit{
			Gates:  gates,
			Decode: decode,
		},
		AliceInputKeys: aliceKeys,
		BobInputPairs:  bobPairs,
	}, nil
}

// generateWireKeys draws an independent key pair for every wire that
// appears anywhere in the circuit: circuit inputs and every gate output.
func generateWireKeys(rnd io.Reader, c *circuit.Circuit) (map[circuit.Wire]wirekey.Pair, error) {
	pairs := make(map[circuit.Wire]wirekey.Pair, c.NumWires())

	newPair := func(w circuit.Wire) error {
		if _, ok := pairs[w]; ok {
			return nil
		}
		p, err := wirekey.NewPair(rnd)
		if err != nil {
			return fmt.Errorf("garbler: %w", err)
		}
		pairs[w] = p
		return nil
	}

	for _, w := range c.Alice {
		if err := newPair(w); err != nil {
			return nil, err
		}
	}
	for _, w := range c.Bob {
		if err := newPair(w); err != nil {
			return nil, err
		}
	}
	for _, g := range c.Gates {
		if err := newPair(g.Out); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

// garbleGate seals every row of one gate's truth table and returns them
// in a uniformly shuffled order.
func garbleGate(rnd io.Reader, g circuit.Gate, pairs map[circuit.Wire]wirekey.Pair) (Gate, error) {
	out, ok := pairs[g.Out]
	if !ok {
		return Gate{}, fmt.Errorf("no key pair for output wire %s", g.Out)
	}

	switch g.Op.Arity() {
	case 1:
		return garbleUnary(rnd, g, pairs, out)
	case 2:
		return garbleBinary(rnd, g, pairs, out)
	default:
		return Gate{}, fmt.Errorf("unsupported gate arity for op %s", g.Op)
	}
}

func garbleUnary(rnd io.Reader, g circuit.Gate, pairs map[circuit.Wire]wirekey.Pair, out wirekey.Pair) (Gate, error) {
	in, ok := pairs[g.In[0]]
	if !ok {
		return Gate{}, fmt.Errorf("no key pair for input wire %s", g.In[0])
	}

	rows := make([]seal.Blob, 0, 2)
	for a := 0; a <= 1; a++ {
		v := g.Op.Eval(a, 0)
		outKey := out.ForBit(v)
		blob, err := seal.Seal(in.ForBit(a), nil, outKey.Bytes())
		if err != nil {
			return Gate{}, err
		}
		rows = append(rows, blob)
	}
	if err := shuffle(rnd, rows); err != nil {
		return Gate{}, err
	}
	return Gate{Rows: rows}, nil
}

func garbleBinary(rnd io.Reader, g circuit.Gate, pairs map[circuit.Wire]wirekey.Pair, out wirekey.Pair) (Gate, error) {
	in0, ok := pairs[g.In[0]]
	if !ok {
		return Gate{}, fmt.Errorf("no key pair for input wire %s", g.In[0])
	}
	in1, ok := pairs[g.In[1]]
	if !ok {
		return Gate{}, fmt.Errorf("no key pair for input wire %s", g.In[1])
	}

	rows := make([]seal.Blob, 0, 4)
	for a := 0; a <= 1; a++ {
		for b := 0; b <= 1; b++ {
			v := g.Op.Eval(a, b)
			outer := in0.ForBit(a)
			inner := in1.ForBit(b)
			outKey := out.ForBit(v)
			blob, err := seal.Seal(outer, &inner, outKey.Bytes())
			if err != nil {
				return Gate{}, err
			}
			rows = append(rows, blob)
		}
	}
	if err := shuffle(rnd, rows); err != nil {
		return Gate{}, err
	}
	return Gate{Rows: rows}, nil
}

// shuffle performs a cryptographically seeded Fisher-Yates shuffle in
// place, so that no row's original truth-table index leaks through its
// position in the list.
func shuffle(rnd io.Reader, rows []seal.Blob) error {
	for i := len(rows) - 1; i > 0; i-- {
		j, err := randIntn(rnd, i+1)
		if err != nil {
			return fmt.Errorf("garbler: shuffle: %w", err)
		}
		rows[i], rows[j] = rows[j], rows[i]
	}
	return nil
}

// randIntn returns a uniform random integer in [0, n) drawn from rnd.
func randIntn(rnd io.Reader, n int) (int, error) {
	if n <= 1 {
		return 0, nil
	}
	v, err := rand.Int(rnd, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(v.Int64()), nil
}
