package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadScenario_Valid(t *testing.T) {
	path := writeScenario(t, `
version: "1"
name: beam-check
simulations:
  - type: structural
    priority: high
    data:
      elements:
        - length: 1.0
          area: 0.01
          moment_of_inertia: 1.0e-6
          material: steel
      loads:
        - magnitude: 1000
          direction: [0, -1, 0]
  - type: rf_propagation
    data:
      environment:
        type: urban
        frequency: 2.4e9
      transmitters:
        - id: tx-1
          position: [50, 50, 0]
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "beam-check", scenario.Name)
	require.Len(t, scenario.Simulations, 2)
	assert.Equal(t, "structural", scenario.Simulations[0].Type)
	assert.Equal(t, "high", scenario.Simulations[0].Priority)
	assert.Contains(t, scenario.Simulations[0].Data, "elements")
	assert.Equal(t, "rf_propagation", scenario.Simulations[1].Type)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	// Strict parsing: a typo must be an error, not a silently empty batch.
	path := writeScenario(t, `
version: "1"
simulatons:
  - type: structural
`)

	_, err := LoadScenario(path)
	assert.Error(t, err)
}

func TestLoadScenario_EmptySimulationsRejected(t *testing.T) {
	path := writeScenario(t, `
version: "1"
name: empty
`)

	_, err := LoadScenario(path)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no simulations")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
