//
// party.go
//
// Package party sequences one run of the two-party protocol: it wires
// package garbler, package ot, and package evaluator together the way
// two real parties would, using in-process values everywhere a network
// message would otherwise cross a wire.
package party

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/markkurossi/tabulate"
	"github.com/markkurossi/text/symbols"

	"github.com/twopc-lab/yaogc/circuit"
	"github.com/twopc-lab/yaogc/evaluator"
	"github.com/twopc-lab/yaogc/garbler"
	"github.com/twopc-lab/yaogc/ot"
	"github.com/twopc-lab/yaogc/wirekey"
)

// Report summarizes one completed run for display: gate counts by
// operator and the decoded output bits, in wire order.
type Report struct {
	CircuitID string
	Stats     circuit.Stats
	Outputs   map[circuit.Wire]int
}

// Print renders the report as an aligned table.
func (r *Report) Print(w io.Writer) {
	tab := tabulate.New(tabulate.UnicodeLight)
	tab.Header("Gate").SetAlign(tabulate.ML)
	tab.Header("Count").SetAlign(tabulate.MR)

	row := tab.Row()
	row.Column("AND")
	row.Column(fmt.Sprintf("%d", r.Stats.AND))
	row = tab.Row()
	row.Column("OR")
	row.Column(fmt.Sprintf("%d", r.Stats.OR))
	row = tab.Row()
	row.Column("NOT")
	row.Column(fmt.Sprintf("%d", r.Stats.NOT))

	row = tab.Row()
	row.Column("Total").SetFormat(tabulate.FmtBold)
	row.Column(fmt.Sprintf("%d", r.Stats.AND+r.Stats.OR+r.Stats.NOT)).
		SetFormat(tabulate.FmtBold)

	tab.Print(w)

	for _, wr := range sortedWires(r.Outputs) {
		fmt.Fprintf(w, "Output[%s] = %d\n", wr, r.Outputs[wr])
	}
}

func sortedWires(m map[circuit.Wire]int) []circuit.Wire {
	out := make([]circuit.Wire, 0, len(m))
	for w := range m {
		out = append(out, w)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// Run sequences one full protocol run for circuit c against alice's and
// bob's input bits (keyed by wire): validate, garble, direct-transfer
// Alice's keys, OT-transfer Bob's keys, evaluate, decode. logger may be
// nil, in which case phase-boundary logging is skipped.
func Run(c *circuit.Circuit, alice, bob map[circuit.Wire]int, logger *log.Logger) (*Report, error) {
	logf := func(format string, args ...interface{}) {
		if logger != nil {
			logger.Printf(format, args...)
		}
	}

	if err := validateInputs(c, alice, bob); err != nil {
		return nil, err
	}

	logf("circuit %s: phase garble: start", c.ID)
	res, err := garbler.Garble(rand.Reader, c, alice)
	if err != nil {
		return nil, fmt.Errorf("party: garble: %w", err)
	}
	logf("circuit %s: phase garble: done", c.ID)

	known := make(map[circuit.Wire]wirekey.Key, len(c.Alice)+len(c.Bob))

	logf("circuit %s: phase key-transfer: start", c.ID)
	for w, k := range res.AliceInputKeys {
		known[w] = k
	}
	logf("circuit %s: phase key-transfer: done (%d keys)", c.ID, len(res.AliceInputKeys))

	logf("circuit %s: phase ot: start (%c per-wire transfer)", c.ID, symbols.Lambda)
	for w, pair := range res.BobInputPairs {
		bit, ok := bob[w]
		if !ok {
			return nil, fmt.Errorf("party: missing input bit for bob wire %s", w)
		}
		k, err := ot.Transfer(pair, bit)
		if err != nil {
			return nil, fmt.Errorf("party: ot on wire %s: %w", w, err)
		}
		known[w] = k
		pair.ZeroOut()
		res.BobInputPairs[w] = pair
	}
	logf("circuit %s: phase ot: done (%d transfers)", c.ID, len(res.BobInputPairs))

	logf("circuit %s: phase evaluate: start", c.ID)
	final, err := evaluator.Evaluate(res.Garbled, c, known)
	if err != nil {
		return nil, fmt.Errorf("party: evaluate: %w", err)
	}
	logf("circuit %s: phase evaluate: done", c.ID)

	logf("circuit %s: phase decode: start", c.ID)
	out, err := evaluator.Decode(res.Garbled, c, final)
	if err != nil {
		return nil, fmt.Errorf("party: decode: %w", err)
	}
	logf("circuit %s: phase decode: done", c.ID)

	for w, k := range final {
		k.Zero()
		final[w] = k
	}
	for w, k := range res.AliceInputKeys {
		k.Zero()
		res.AliceInputKeys[w] = k
	}

	return &Report{
		CircuitID: c.ID,
		Stats:     c.GateStats(),
		Outputs:   out,
	}, nil
}

// validateInputs enforces step 1 of the orchestrator: the circuit
// requires at least one Bob input wire, since the OT path has no
// key-transfer step to run otherwise, and both parties' supplied bit
// maps must cover exactly their declared input wires.
func validateInputs(c *circuit.Circuit, alice, bob map[circuit.Wire]int) error {
	if len(c.Bob) == 0 {
		return fmt.Errorf(
			"party: circuit %q has no Bob input wires; not supported by the OT-backed orchestrator",
			c.ID)
	}
	for _, w := range c.Alice {
		if _, ok := alice[w]; !ok {
			return fmt.Errorf("party: missing alice input bit for wire %s", w)
		}
	}
	for _, w := range c.Bob {
		if _, ok := bob[w]; !ok {
			return fmt.Errorf("party: missing bob input bit for wire %s", w)
		}
	}
	if len(alice) != len(c.Alice) {
		return fmt.Errorf("party: got %d alice input bits, want %d",
			len(alice), len(c.Alice))
	}
	if len(bob) != len(c.Bob) {
		return fmt.Errorf("party: got %d bob input bits, want %d",
			len(bob), len(c.Bob))
	}
	return nil
}

// DefaultLogger returns a logger writing phase-boundary diagnostics to
// standard error, for callers (the CLI) that want -v tracing without
// constructing a *log.Logger themselves.
func DefaultLogger() *log.Logger {
	return log.New(os.Stderr, "yaogc: ", log.LstdFlags)
}
