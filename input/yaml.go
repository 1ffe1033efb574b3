package input

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/keepaway/sim"
)

// AgentList is the YAML form of the notes.
type AgentList struct {
	Agents []AgentEntry `yaml:"agents"`
}

// AgentEntry is one agent in the YAML form.
type AgentEntry struct {
	Items     []uint64 `yaml:"items"`
	Operation string   `yaml:"operation"`
	Divisor   uint64   `yaml:"divisor"`
	IfTrue    int      `yaml:"if_true"`
	IfFalse   int      `yaml:"if_false"`
}

// DecodeYAML reads a YAML agent list.
func DecodeYAML(r io.Reader) ([]sim.AgentSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var list AgentList
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("agents yaml: %w", err)
	}

	specs := make([]sim.AgentSpec, 0, len(list.Agents))
	for i, a := range list.Agents {
		op, err := ParseOperation(a.Operation)
		if err != nil {
			return nil, fmt.Errorf("agents yaml: agent %d: %w", i, err)
		}

		specs = append(specs, sim.AgentSpec{
			InitialItems:     a.Items,
			Operation:        op,
			Divisor:          a.Divisor,
			TrueDestination:  sim.AgentID(a.IfTrue),
			FalseDestination: sim.AgentID(a.IfFalse),
		})
	}

	return specs, nil
}

// EncodeYAML writes specs as a YAML agent list.
func EncodeYAML(w io.Writer, specs []sim.AgentSpec) error {
	list := AgentList{Agents: make([]AgentEntry, 0, len(specs))}
	for _, s := range specs {
		list.Agents = append(list.Agents, AgentEntry{
			Items:     s.InitialItems,
			Operation: s.Operation.String(),
			Divisor:   s.Divisor,
			IfTrue:    int(s.TrueDestination),
			IfFalse:   int(s.FalseDestination),
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(list); err != nil {
		return err
	}

	return enc.Close()
}

// LoadFile reads agents from a file. Files ending in .yaml or .yml are read
// as YAML agent lists, anything else as notes.
func LoadFile(path string) ([]sim.AgentSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var specs []sim.AgentSpec

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		specs, err = DecodeYAML(bytes.NewReader(raw))
	default:
		specs, err = Parse(bytes.NewReader(raw))
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return specs, nil
}
