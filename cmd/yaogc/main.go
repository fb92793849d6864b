//
// main.go
//
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/twopc-lab/yaogc/circuit"
	"github.com/twopc-lab/yaogc/party"
)

func main() {
	os.Exit(run())
}

func run() int {
	fVerbose := flag.Bool("v", false, "Verbose output")
	fDebug := flag.Bool("d", false, "Debug output")
	flag.Parse()

	args := flag.Args()
	if len(args) < 3 {
		fmt.Fprintf(os.Stderr,
			"usage: yaogc [-v] [-d] circuit_file circuit_index alice_bits bob_bits\n")
		return 1
	}

	circuitFile := args[0]
	index, err := parseIndex(args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaogc: %v\n", err)
		return 1
	}
	aliceBits := args[2]
	var bobBits string
	if len(args) > 3 {
		bobBits = args[3]
	}

	c, err := circuit.LoadIndex(circuitFile, index)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaogc: %v\n", err)
		return 2
	}

	alice, err := circuit.ParseBits(aliceBits, c.Alice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaogc: %v\n", err)
		return 1
	}
	bob, err := circuit.ParseBits(bobBits, c.Bob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaogc: %v\n", err)
		return 1
	}

	var logger *log.Logger
	if *fVerbose || *fDebug {
		logger = party.DefaultLogger()
	}

	report, err := party.Run(c, alice, bob, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "yaogc: %v\n", err)
		return 3
	}

	printSummary(c, alice, bob, report)
	return 0
}

func parseIndex(s string) (int, error) {
	var index int
	_, err := fmt.Sscanf(s, "%d", &index)
	if err != nil {
		return 0, fmt.Errorf("invalid circuit index %q", s)
	}
	return index, nil
}

func printSummary(c *circuit.Circuit, alice, bob map[circuit.Wire]int, report *party.Report) {
	for _, w := range c.Alice {
		fmt.Printf("Alice[%d]=%d ", int(w), alice[w])
	}
	for _, w := range c.Bob {
		fmt.Printf("Bob[%d]=%d ", int(w), bob[w])
	}
	fmt.Print(" ")
	for _, w := range c.Out {
		fmt.Printf("Output[%d]=%d ", int(w), report.Outputs[w])
	}
	fmt.Println()

	report.Print(os.Stdout)
}
