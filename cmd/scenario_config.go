package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	sim "github.com/arxos/physics-sim/sim"
)

// Scenario is a YAML-defined batch of simulation requests.
type Scenario struct {
	Version     string        `yaml:"version"`
	Name        string        `yaml:"name"`
	Simulations []sim.Request `yaml:"simulations"`
}

// LoadScenario reads a scenario file. Parsing is strict: unknown fields
// are errors so typos fail loudly instead of silently dropping inputs.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parse scenario file %s: %w", path, err)
	}
	if len(scenario.Simulations) == 0 {
		return nil, fmt.Errorf("scenario file %s defines no simulations", path)
	}
	return &scenario, nil
}
