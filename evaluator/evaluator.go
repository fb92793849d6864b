//
// evaluator.go
//
// Package evaluator implements the evaluator's side of the garbled
// circuit protocol: walk gates in circuit order, trial-decrypt each
// gate's shuffled row list against the evaluator's known input keys,
// and decode the resulting output keys into plaintext bits.
package evaluator

import (
	"fmt"

	"github.com/twopc-lab/yaogc/circuit"
	"github.com/twopc-lab/yaogc/garbler"
	"github.com/twopc-lab/yaogc/seal"
	"github.com/twopc-lab/yaogc/wirekey"
)

// IntegrityError reports a violation of the "exactly one row
// authenticates" invariant, either because no row authenticated
// (garbling/evaluation failure) or because more than one did (protocol
// integrity failure indicating a bug or corruption).
type IntegrityError struct {
	GateIndex int
	Accepted  int
}

func (e *IntegrityError) Error() string {
	if e.Accepted == 0 {
		return fmt.Sprintf(
			"evaluator: gate %d: no row authenticated", e.GateIndex)
	}
	return fmt.Sprintf(
		"evaluator: gate %d: %d rows authenticated, want exactly 1",
		e.GateIndex, e.Accepted)
}

// Evaluate walks gc's gates in the same order as circuit c, using
// wireKeys as the evaluator's known key for every input wire. It
// returns the known key for every wire touched during evaluation
// (inputs plus every gate output).
func Evaluate(gc *garbler.Circuit, c *circuit.Circuit, wireKeys map[circuit.Wire]wirekey.Key) (map[circuit.Wire]wirekey.Key, error) {
	if len(gc.Gates) != len(c.Gates) {
		return nil, fmt.Errorf(
			"evaluator: garbled circuit has %d gates, circuit has %d",
			len(gc.Gates), len(c.Gates))
	}

	known := make(map[circuit.Wire]wirekey.Key, len(wireKeys))
	for w, k := range wireKeys {
		known[w] = k
	}

	for i, g := range c.Gates {
		outKey, err := evalGate(i, gc.Gates[i], g, known)
		if err != nil {
			return nil, err
		}
		known[g.Out] = outKey
	}

	return known, nil
}

// evalGate trial-decrypts every row of one garbled gate, requiring
// exactly one authenticated row across the full scan.
func evalGate(gateIndex int, gg garbler.Gate, g circuit.Gate, known map[circuit.Wire]wirekey.Key) (wirekey.Key, error) {
	outer, ok := known[g.In[0]]
	if !ok {
		return wirekey.Key{}, fmt.Errorf(
			"evaluator: no known key for input wire %s", g.In[0])
	}

	var inner *wirekey.Key
	if g.Op.Arity() == 2 {
		k, ok := known[g.In[1]]
		if !ok {
			return wirekey.Key{}, fmt.Errorf(
				"evaluator: no known key for input wire %s", g.In[1])
		}
		inner = &k
	}

	var (
		accepted int
		result   wirekey.Key
	)

	for _, row := range gg.Rows {
		plaintext, err := seal.Open(outer, inner, row)
		if err != nil {
			continue
		}
		k, err := wirekey.FromBytes(plaintext)
		if err != nil {
			return wirekey.Key{}, fmt.Errorf(
				"evaluator: gate output wire %s: %w", g.Out, err)
		}
		accepted++
		result = k
	}

	if accepted != 1 {
		return wirekey.Key{}, &IntegrityError{GateIndex: gateIndex, Accepted: accepted}
	}
	return result, nil
}

// DecodeError reports that a recovered output key was absent from its
// wire's decoding map.
type DecodeError struct {
	Wire circuit.Wire
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf(
		"evaluator: output wire %s: recovered key absent from decoding map",
		e.Wire)
}

// Decode maps every output wire's recovered key through the garbled
// circuit's decoding tables to produce the plaintext output bits.
func Decode(gc *garbler.Circuit, c *circuit.Circuit, known map[circuit.Wire]wirekey.Key) (map[circuit.Wire]int, error) {
	out := make(map[circuit.Wire]int, len(c.Out))
	for _, w := range c.Out {
		k, ok := known[w]
		if !ok {
			return nil, fmt.Errorf(
				"evaluator: output wire %s was never assigned a key", w)
		}
		table, ok := gc.Decode[w]
		if !ok {
			return nil, fmt.Errorf(
				"evaluator: no decoding table for output wire %s", w)
		}
		bit, ok := table[k]
		if !ok {
			return nil, &DecodeError{Wire: w}
		}
		out[w] = bit
	}
	return out, nil
}
