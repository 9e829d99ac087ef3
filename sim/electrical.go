// Electrical circuit engine: resistive nodal analysis. Components are
// stamped into a conductance matrix G and current vector i (Kirchhoff's
// current law at every non-ground node), then G*v = i is solved directly
// for the node voltages. Node 0 is ground.

package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

// circuitComponent is one parsed component with resolved terminals.
type circuitComponent struct {
	ID    string
	Kind  string
	Value float64
	N1    int
	N2    int
}

// circuitTopology is the parsed circuit.
type circuitTopology struct {
	NumNodes   int
	Components []circuitComponent
}

// CircuitEngine solves resistive circuits by nodal analysis.
type CircuitEngine struct {
	cfg       *Config
	materials *MaterialDB
}

// NewCircuitEngine creates a circuit solver sharing the engine config and
// component model tables.
func NewCircuitEngine(cfg *Config, materials *MaterialDB) *CircuitEngine {
	return &CircuitEngine{cfg: cfg, materials: materials}
}

// SimulateCircuit parses the circuit payload, builds the nodal system and
// solves it. A singular conductance matrix (disconnected or ill-formed
// circuit) is reported as a failed result, never propagated.
func (c *CircuitEngine) SimulateCircuit(circuit map[string]any) Result {
	start := time.Now()

	topo, err := c.parseTopology(circuit)
	if err != nil {
		logrus.Errorf("electrical circuit simulation failed: %v", err)
		return failedResult(start, err)
	}

	data, err := c.solveCircuit(topo)
	if err != nil {
		logrus.Errorf("electrical circuit simulation failed: %v", err)
		return failedResult(start, err)
	}

	return Result{
		Success:             true,
		Data:                data,
		DurationMs:          sinceMs(start),
		Iterations:          1,
		ConvergenceAchieved: true,
	}
}

func (c *CircuitEngine) parseTopology(circuit map[string]any) (circuitTopology, error) {
	if circuit == nil {
		return circuitTopology{}, fmt.Errorf("circuit description is missing")
	}
	nodes := payloadSlice(circuit, "nodes")
	if len(nodes) < 2 {
		return circuitTopology{}, fmt.Errorf("circuit needs at least 2 nodes, got %d", len(nodes))
	}

	topo := circuitTopology{NumNodes: len(nodes)}
	for idx, raw := range payloadMaps(payloadSlice(circuit, "components")) {
		comp := circuitComponent{
			ID:   payloadString(raw, "id", fmt.Sprintf("component-%d", idx)),
			Kind: payloadString(raw, "type", "resistor"),
		}
		model, ok := c.materials.Component(comp.Kind)
		if !ok {
			return circuitTopology{}, fmt.Errorf("unknown component type %q", comp.Kind)
		}
		comp.Value = payloadFloat(raw, "value", componentDefault(comp.Kind, model))

		terminals := payloadVector(raw, "nodes", 2, []float64{0, 0})
		comp.N1 = int(terminals[0])
		comp.N2 = int(terminals[1])
		if comp.N1 < 0 || comp.N1 >= topo.NumNodes || comp.N2 < 0 || comp.N2 >= topo.NumNodes {
			return circuitTopology{}, fmt.Errorf("component %q terminals (%d,%d) out of range for %d nodes",
				comp.ID, comp.N1, comp.N2, topo.NumNodes)
		}
		topo.Components = append(topo.Components, comp)
	}
	return topo, nil
}

func componentDefault(kind string, model ComponentModel) float64 {
	switch kind {
	case "resistor":
		return model.Resistance
	case "capacitor":
		return model.Capacitance
	case "inductor":
		return model.Inductance
	case "voltage_source":
		return model.Voltage
	case "current_source":
		return model.Current
	}
	return 0
}

// stiffSourceConductance is the Norton-equivalent series conductance used
// to stamp ideal voltage sources without extending the system with
// branch-current unknowns.
const stiffSourceConductance = 1e6

// solveCircuit stamps the components into G and i, solves G*v = i over the
// non-ground nodes, and derives branch currents and power dissipation.
func (c *CircuitEngine) solveCircuit(topo circuitTopology) (map[string]any, error) {
	n := topo.NumNodes - 1 // unknowns exclude ground
	G := mat.NewDense(n, n, nil)
	I := make([]float64, n)

	stampConductance := func(n1, n2 int, g float64) {
		if n1 > 0 {
			G.Set(n1-1, n1-1, G.At(n1-1, n1-1)+g)
		}
		if n2 > 0 {
			G.Set(n2-1, n2-1, G.At(n2-1, n2-1)+g)
		}
		if n1 > 0 && n2 > 0 {
			G.Set(n1-1, n2-1, G.At(n1-1, n2-1)-g)
			G.Set(n2-1, n1-1, G.At(n2-1, n1-1)-g)
		}
	}
	stampCurrent := func(n1, n2 int, amps float64) {
		// Current flows through the source from n1 to n2: it leaves the
		// n1 node equation and enters n2.
		if n1 > 0 {
			I[n1-1] -= amps
		}
		if n2 > 0 {
			I[n2-1] += amps
		}
	}

	for _, comp := range topo.Components {
		switch comp.Kind {
		case "resistor":
			if comp.Value <= 0 {
				return nil, fmt.Errorf("resistor %q has non-positive resistance %g", comp.ID, comp.Value)
			}
			stampConductance(comp.N1, comp.N2, 1/comp.Value)
		case "current_source":
			stampCurrent(comp.N1, comp.N2, comp.Value)
		case "voltage_source":
			// Norton equivalent: stiff conductance with a matching
			// injected current holds the terminal near comp.Value volts.
			stampConductance(comp.N1, comp.N2, stiffSourceConductance)
			stampCurrent(comp.N2, comp.N1, comp.Value*stiffSourceConductance)
		case "capacitor":
			// Open circuit in DC: no stamp.
		case "inductor":
			// Short circuit in DC, approximated by a stiff conductance.
			stampConductance(comp.N1, comp.N2, stiffSourceConductance)
		default:
			return nil, fmt.Errorf("unknown component type %q", comp.Kind)
		}
	}

	var v mat.VecDense
	if err := v.SolveVec(G, mat.NewVecDense(n, I)); err != nil {
		return nil, fmt.Errorf("singular conductance matrix (disconnected or ill-formed circuit): %w", err)
	}

	// Node voltages including ground.
	voltages := make([]float64, topo.NumNodes)
	for i := 0; i < n; i++ {
		voltages[i+1] = v.AtVec(i)
	}

	branchCurrents := make([]map[string]any, 0, len(topo.Components))
	powerDissipation := make([]map[string]any, 0, len(topo.Components))
	for _, comp := range topo.Components {
		if comp.Kind != "resistor" {
			continue
		}
		drop := voltages[comp.N1] - voltages[comp.N2]
		current := drop / comp.Value
		branchCurrents = append(branchCurrents, map[string]any{
			"component": comp.ID,
			"current":   current,
		})
		powerDissipation = append(powerDissipation, map[string]any{
			"component": comp.ID,
			"power":     drop * current,
		})
	}

	return map[string]any{
		"node_voltages":     voltages,
		"branch_currents":   branchCurrents,
		"power_dissipation": powerDissipation,
		"iterations":        1,
		"converged":         true,
	}, nil
}
