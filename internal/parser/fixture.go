package parser

import (
	"fmt"
	"os"

	"github.com/raphaelgruber/chainburst/internal/chain"
	"gopkg.in/yaml.v3"
)

// Fixture is one named chain with its expected solve result.
type Fixture struct {
	Name       string  `yaml:"name"`
	Potentials []int64 `yaml:"potentials"`
	Classes    string  `yaml:"classes"`
	TieBreak   string  `yaml:"tie_break,omitempty"`
	Energy     *uint64 `yaml:"energy,omitempty"`
	Order      []int   `yaml:"order,omitempty"`
}

// Chain builds the fixture's chain.
func (f Fixture) Chain() (chain.Chain, error) {
	c, err := chain.ParseChain(len(f.Potentials), f.Potentials, f.Classes)
	if err != nil {
		return chain.Chain{}, fmt.Errorf("fixture %q: %w", f.Name, err)
	}
	return c, nil
}

// HasExpectation reports whether the fixture pins an expected result.
func (f Fixture) HasExpectation() bool {
	return f.Energy != nil
}

// ParseFixtures decodes a YAML list of fixtures.
func ParseFixtures(data []byte) ([]Fixture, error) {
	var fixtures []Fixture
	if err := yaml.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("%w: decode fixtures: %v", chain.ErrInvalidInput, err)
	}
	for i, f := range fixtures {
		if f.Name == "" {
			fixtures[i].Name = fmt.Sprintf("fixture-%d", i+1)
		}
	}
	return fixtures, nil
}

// LoadFixtures reads and decodes a YAML fixture file.
func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}
