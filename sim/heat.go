// Heat transfer engine: simplified 1D conduction solver. Builds a
// thermal mesh, fixes the end temperatures from the thermal conditions,
// then Jacobi-relaxes the interior until the residual drops below the
// convergence threshold. Approximate by design, like the fluid solver;
// the contract is the (iterations, converged) pair and field summaries.

package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// thermalMesh is the discretized conduction domain.
type thermalMesh struct {
	Nodes     []any
	Elements  []any
	Materials map[string]any
	Cells     int
	Props     ThermalProperties
}

// thermalConditions are the resolved thermal boundary conditions.
type thermalConditions struct {
	HotTemp  float64 // fixed temperature at the hot end (K)
	ColdTemp float64 // fixed temperature at the cold end (K)
	HeatFlux float64 // imposed flux (W/m^2), added as a source term
	HTC      float64 // convection coefficient (W/(m^2*K)), 0 = no convection
	AmbientT float64 // convection reference temperature (K)
}

// HeatTransferEngine simulates steady conduction through a geometry.
type HeatTransferEngine struct {
	cfg       *Config
	materials *MaterialDB
}

// NewHeatTransferEngine creates a heat solver sharing the engine config
// and thermal property tables.
func NewHeatTransferEngine(cfg *Config, materials *MaterialDB) *HeatTransferEngine {
	return &HeatTransferEngine{cfg: cfg, materials: materials}
}

// SimulateHeatTransfer runs the conduction pipeline: mesh, boundary
// conditions, iterative solve.
func (h *HeatTransferEngine) SimulateHeatTransfer(geometry, thermalConds map[string]any) Result {
	start := time.Now()

	mesh, err := h.buildThermalMesh(geometry)
	if err != nil {
		logrus.Errorf("heat transfer simulation failed: %v", err)
		return failedResult(start, err)
	}
	bc := h.applyThermalBoundaryConditions(thermalConds)

	data, iterations, converged := h.solveHeatEquation(mesh, bc)
	return Result{
		Success:             true,
		Data:                data,
		DurationMs:          sinceMs(start),
		Iterations:          iterations,
		ConvergenceAchieved: converged,
	}
}

func (h *HeatTransferEngine) buildThermalMesh(geometry map[string]any) (thermalMesh, error) {
	if geometry == nil {
		return thermalMesh{}, fmt.Errorf("thermal geometry is missing")
	}
	mesh := thermalMesh{
		Nodes:     payloadSlice(geometry, "nodes"),
		Elements:  payloadSlice(geometry, "elements"),
		Materials: payloadMap(geometry, "materials"),
		Props:     h.materials.ThermalMaterial(payloadString(geometry, "material", "steel")),
	}
	mesh.Cells = len(mesh.Nodes)
	if mesh.Cells == 0 {
		mesh.Cells = 100
	}
	if mesh.Cells < 2 {
		return thermalMesh{}, fmt.Errorf("thermal mesh needs at least 2 nodes, got %d", mesh.Cells)
	}
	return mesh, nil
}

func (h *HeatTransferEngine) applyThermalBoundaryConditions(conds map[string]any) thermalConditions {
	temps := payloadMap(conds, "temperature")
	conv := payloadMap(conds, "convection")
	return thermalConditions{
		HotTemp:  payloadFloat(temps, "hot", 350),
		ColdTemp: payloadFloat(temps, "cold", 250),
		HeatFlux: payloadFloat(payloadMap(conds, "heat_flux"), "magnitude", 0),
		HTC:      payloadFloat(conv, "coefficient", 0),
		AmbientT: payloadFloat(conv, "ambient", 300),
	}
}

// solveHeatEquation Jacobi-relaxes the interior temperature field with
// fixed end temperatures, an optional flux source, and optional
// convection exchange with the ambient.
func (h *HeatTransferEngine) solveHeatEquation(mesh thermalMesh, bc thermalConditions) (map[string]any, int, bool) {
	n := mesh.Cells
	temp := make([]float64, n)
	temp[0] = bc.HotTemp
	temp[n-1] = bc.ColdTemp
	mid := (bc.HotTemp + bc.ColdTemp) / 2
	for i := 1; i < n-1; i++ {
		temp[i] = mid
	}

	// Source terms are scaled by conductivity so the relaxation stays a
	// temperature update.
	source := 0.0
	if mesh.Props.Conductivity > 0 {
		source = bc.HeatFlux / mesh.Props.Conductivity
	}

	next := make([]float64, n)
	next[0] = bc.HotTemp
	next[n-1] = bc.ColdTemp

	iterations := 0
	converged := false
	for it := 0; it < h.cfg.MaxIterations; it++ {
		iterations = it + 1
		maxDelta := 0.0
		for i := 1; i < n-1; i++ {
			t := (temp[i-1]+temp[i+1])/2 + source
			if bc.HTC > 0 {
				// Convection relaxes the node toward ambient.
				t += bc.HTC / mesh.Props.Conductivity * (bc.AmbientT - temp[i])
			}
			next[i] = t
			if d := math.Abs(t - temp[i]); d > maxDelta {
				maxDelta = d
			}
		}
		temp, next = next, temp
		next[0], next[n-1] = bc.HotTemp, bc.ColdTemp
		if maxDelta < h.cfg.ConvergenceThreshold {
			converged = true
			break
		}
	}

	maxTemp, minTemp := temp[0], temp[0]
	for _, t := range temp {
		maxTemp = math.Max(maxTemp, t)
		minTemp = math.Min(minTemp, t)
	}

	// Fourier's law per cell face, unit spacing.
	flux := make([]float64, n)
	for i := 0; i < n-1; i++ {
		flux[i] = -mesh.Props.Conductivity * (temp[i+1] - temp[i])
	}
	flux[n-1] = flux[n-2]

	return map[string]any{
		"temperature_field": temp,
		"heat_flux":         flux,
		"iterations":        iterations,
		"converged":         converged,
		"max_temperature":   maxTemp,
		"min_temperature":   minTemp,
	}, iterations, converged
}
