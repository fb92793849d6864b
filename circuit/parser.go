//
// parser.go
//
// The JSON circuit loader. Circuit files vary in how they name a gate's
// operator and input-wire fields; this loader accepts both spellings
// seen in the wild (gate_type/type, inputs/in) rather than picking one.
package circuit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

type rawFile struct {
	Name     string           `json:"name"`
	Circuits []json.RawMessage `json:"circuits"`
}

type rawCircuit struct {
	ID    string    `json:"id"`
	Alice []int     `json:"alice"`
	Bob   []int     `json:"bob"`
	Out   []int     `json:"out"`
	Gates []rawGate `json:"gates"`
}

type rawGate struct {
	ID int `json:"id"`

	GateType *string `json:"gate_type"`
	Type     *string `json:"type"`

	Inputs *[]int `json:"inputs"`
	In     *[]int `json:"in"`
}

func (g rawGate) opName() (string, error) {
	switch {
	case g.GateType != nil:
		return *g.GateType, nil
	case g.Type != nil:
		return *g.Type, nil
	default:
		return "", fmt.Errorf("gate %d: missing operator field "+
			"(expected \"gate_type\" or \"type\")", g.ID)
	}
}

func (g rawGate) inputs() ([]int, error) {
	switch {
	case g.Inputs != nil:
		return *g.Inputs, nil
	case g.In != nil:
		return *g.In, nil
	default:
		return nil, fmt.Errorf("gate %d: missing inputs field "+
			"(expected \"inputs\" or \"in\")", g.ID)
	}
}

func parseOp(name string) (Op, error) {
	switch name {
	case "AND", "and":
		return AND, nil
	case "OR", "or":
		return OR, nil
	case "NOT", "not", "INV", "inv":
		return NOT, nil
	default:
		return 0, fmt.Errorf("unknown gate operator %q", name)
	}
}

func toWires(ids []int) []Wire {
	if ids == nil {
		return nil
	}
	w := make([]Wire, len(ids))
	for i, id := range ids {
		w[i] = Wire(id)
	}
	return w
}

// Parse decodes circuit definitions from r. The document may be either a
// bare JSON array of circuit records or an object of the form
// {"name": "...", "circuits": [...]}. Every decoded circuit is validated
// before being returned.
func Parse(r io.Reader) ([]*Circuit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}

	var rawCircuits []json.RawMessage

	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err == nil {
		rawCircuits = arr
	} else {
		var wrapped rawFile
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("circuit: invalid circuit file: %w", err)
		}
		rawCircuits = wrapped.Circuits
	}

	if len(rawCircuits) == 0 {
		return nil, fmt.Errorf("circuit: file contains no circuits")
	}

	result := make([]*Circuit, 0, len(rawCircuits))
	for i, raw := range rawCircuits {
		var rc rawCircuit
		if err := json.Unmarshal(raw, &rc); err != nil {
			return nil, fmt.Errorf("circuit: record %d: invalid JSON: %w", i, err)
		}

		c, err := fromRaw(rc)
		if err != nil {
			return nil, err
		}
		if err := c.Validate(); err != nil {
			return nil, err
		}
		result = append(result, c)
	}

	return result, nil
}

func fromRaw(rc rawCircuit) (*Circuit, error) {
	id := rc.ID
	if id == "" {
		id = "<unnamed>"
	}

	gates := make([]Gate, len(rc.Gates))
	for i, rg := range rc.Gates {
		opName, err := rg.opName()
		if err != nil {
			return nil, &LoadError{id, i, err.Error()}
		}
		op, err := parseOp(opName)
		if err != nil {
			return nil, &LoadError{id, i, err.Error()}
		}
		inputs, err := rg.inputs()
		if err != nil {
			return nil, &LoadError{id, i, err.Error()}
		}
		gates[i] = Gate{
			Out: Wire(rg.ID),
			Op:  op,
			In:  toWires(inputs),
		}
	}

	return &Circuit{
		ID:    id,
		Alice: toWires(rc.Alice),
		Bob:   toWires(rc.Bob),
		Out:   toWires(rc.Out),
		Gates: gates,
	}, nil
}

// Load reads and parses a circuit file from path.
func Load(path string) ([]*Circuit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("circuit: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// LoadIndex loads the circuit file at path and returns the circuit at
// the given index.
func LoadIndex(path string, index int) (*Circuit, error) {
	circuits, err := Load(path)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(circuits) {
		return nil, fmt.Errorf(
			"circuit: index %d out of range, file has %d circuits",
			index, len(circuits))
	}
	return circuits[index], nil
}
