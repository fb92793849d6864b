package circuit

import (
	"fmt"
)

// ParseBits maps a string of '0'/'1' characters onto an ordered wire
// list, in declared order, as used to decode the alice_bits/bob_bits
// command-line arguments.
func ParseBits(bits string, wires []Wire) (map[Wire]int, error) {
	if len(bits) != len(wires) {
		return nil, fmt.Errorf(
			"circuit: input has %d bits, want %d (matching wire count)",
			len(bits), len(wires))
	}
	result := make(map[Wire]int, len(wires))
	for i, w := range wires {
		switch bits[i] {
		case '0':
			result[w] = 0
		case '1':
			result[w] = 1
		default:
			return nil, fmt.Errorf(
				"circuit: invalid bit %q at position %d, want '0' or '1'",
				bits[i], i)
		}
	}
	return result, nil
}

// EvalPlain evaluates the circuit directly on plaintext bit assignments,
// without any cryptography. It is used by tests to compute the expected
// output of a circuit for a given input.
func EvalPlain(c *Circuit, inputs map[Wire]int) (map[Wire]int, error) {
	values := make(map[Wire]int, c.NumWires())
	for w, b := range inputs {
		values[w] = b
	}
	for i, g := range c.Gates {
		a, ok := values[g.In[0]]
		if !ok {
			return nil, &LoadError{c.ID, i, fmt.Sprintf(
				"no value for input wire %s", g.In[0])}
		}
		var b int
		if g.Op != NOT {
			b, ok = values[g.In[1]]
			if !ok {
				return nil, &LoadError{c.ID, i, fmt.Sprintf(
					"no value for input wire %s", g.In[1])}
			}
		}
		values[g.Out] = g.Op.Eval(a, b)
	}

	out := make(map[Wire]int, len(c.Out))
	for _, w := range c.Out {
		v, ok := values[w]
		if !ok {
			return nil, &LoadError{c.ID, -1, fmt.Sprintf(
				"no value for output wire %s", w)}
		}
		out[w] = v
	}
	return out, nil
}
