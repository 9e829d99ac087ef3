// Fluid dynamics engine: simplified channel-flow solver. Builds a mesh
// from the geometry payload, applies inlet/outlet/wall boundary
// conditions, then relaxes the velocity field iteratively until the
// residual drops below the convergence threshold. This is an
// approximate solver, not a Navier-Stokes discretization; the contract
// is the (iterations, converged) pair plus the field summaries.

package sim

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
)

// flowMesh is the discretized fluid domain.
type flowMesh struct {
	Nodes      []any
	Elements   []any
	Boundaries []any
	Cells      int // field size; node count, or 100 for legacy payloads without nodes
}

// flowConditions are the resolved boundary conditions for one run.
type flowConditions struct {
	InletVelocity  []float64
	OutletPressure float64
	WallCondition  string
	Fluid          FluidProperties
	Diameter       float64 // characteristic length for Reynolds number
}

// FluidEngine simulates incompressible flow through a geometry.
type FluidEngine struct {
	cfg       *Config
	materials *MaterialDB
}

// NewFluidEngine creates a fluid solver sharing the engine config and
// fluid property tables.
func NewFluidEngine(cfg *Config, materials *MaterialDB) *FluidEngine {
	return &FluidEngine{cfg: cfg, materials: materials}
}

// SimulateFlow runs the flow pipeline: mesh, boundary conditions,
// iterative solve.
func (f *FluidEngine) SimulateFlow(geometry, boundaryConditions map[string]any) Result {
	start := time.Now()

	mesh, err := f.buildMesh(geometry)
	if err != nil {
		logrus.Errorf("fluid dynamics simulation failed: %v", err)
		return failedResult(start, err)
	}
	bc := f.applyBoundaryConditions(geometry, boundaryConditions)

	data, iterations, converged := f.solveFlow(mesh, bc)
	return Result{
		Success:             true,
		Data:                data,
		DurationMs:          sinceMs(start),
		Iterations:          iterations,
		ConvergenceAchieved: converged,
	}
}

func (f *FluidEngine) buildMesh(geometry map[string]any) (flowMesh, error) {
	if geometry == nil {
		return flowMesh{}, fmt.Errorf("fluid geometry is missing")
	}
	mesh := flowMesh{
		Nodes:      payloadSlice(geometry, "nodes"),
		Elements:   payloadSlice(geometry, "elements"),
		Boundaries: payloadSlice(geometry, "boundaries"),
	}
	mesh.Cells = len(mesh.Nodes)
	if mesh.Cells == 0 {
		mesh.Cells = 100
	}
	return mesh, nil
}

func (f *FluidEngine) applyBoundaryConditions(geometry, bc map[string]any) flowConditions {
	return flowConditions{
		InletVelocity:  payloadVector(bc, "inlet_velocity", 3, []float64{1, 0, 0}),
		OutletPressure: payloadFloat(bc, "outlet_pressure", 0),
		WallCondition:  payloadString(bc, "wall_conditions", "no_slip"),
		Fluid:          f.materials.Fluid(payloadString(geometry, "fluid", "water")),
		Diameter:       payloadFloat(geometry, "diameter", 1.0),
	}
}

// solveFlow relaxes the axial velocity field toward the inlet speed,
// stopping when the largest per-cell update falls below the convergence
// threshold or the iteration cap is hit.
func (f *FluidEngine) solveFlow(mesh flowMesh, bc flowConditions) (map[string]any, int, bool) {
	inletSpeed := math.Sqrt(bc.InletVelocity[0]*bc.InletVelocity[0] +
		bc.InletVelocity[1]*bc.InletVelocity[1] +
		bc.InletVelocity[2]*bc.InletVelocity[2])

	velocity := make([]float64, mesh.Cells)
	const relaxation = 0.3

	iterations := 0
	converged := false
	for i := 0; i < f.cfg.MaxIterations; i++ {
		iterations = i + 1
		maxDelta := 0.0
		for c := range velocity {
			delta := relaxation * (inletSpeed - velocity[c])
			velocity[c] += delta
			if d := math.Abs(delta); d > maxDelta {
				maxDelta = d
			}
		}
		if maxDelta < f.cfg.ConvergenceThreshold {
			converged = true
			break
		}
	}

	reynolds := reynoldsNumber(bc.Fluid, inletSpeed, bc.Diameter)
	drop := pressureDrop(bc.Fluid, inletSpeed, reynolds)

	maxVelocity := 0.0
	velocityField := make([][]float64, mesh.Cells)
	pressureField := make([]float64, mesh.Cells)
	for c := range velocityField {
		velocityField[c] = []float64{velocity[c], 0, 0}
		if velocity[c] > maxVelocity {
			maxVelocity = velocity[c]
		}
		// Linear pressure recovery from outlet back to inlet.
		frac := 1.0
		if mesh.Cells > 1 {
			frac = float64(mesh.Cells-1-c) / float64(mesh.Cells-1)
		}
		pressureField[c] = bc.OutletPressure + drop*frac
	}
	maxPressure := bc.OutletPressure + drop

	return map[string]any{
		"velocity_field":  velocityField,
		"pressure_field":  pressureField,
		"iterations":      iterations,
		"converged":       converged,
		"max_velocity":    maxVelocity,
		"max_pressure":    maxPressure,
		"reynolds_number": reynolds,
		"pressure_drop":   drop,
	}, iterations, converged
}

// reynoldsNumber computes Re = rho*v*D/mu.
func reynoldsNumber(fluid FluidProperties, speed, diameter float64) float64 {
	if fluid.Viscosity == 0 {
		return 0
	}
	return fluid.Density * speed * diameter / fluid.Viscosity
}

// pressureDrop estimates the dynamic-pressure loss using a Darcy friction
// factor: 64/Re for laminar flow, Blasius 0.316/Re^0.25 above Re=2300.
func pressureDrop(fluid FluidProperties, speed, reynolds float64) float64 {
	if reynolds <= 0 {
		return 0
	}
	friction := 64.0 / reynolds
	if reynolds > 2300 {
		friction = 0.316 / math.Pow(reynolds, 0.25)
	}
	return friction * 0.5 * fluid.Density * speed * speed
}
