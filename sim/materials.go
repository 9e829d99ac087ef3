package sim

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// MaterialProperties describes a structural material.
type MaterialProperties struct {
	ElasticModulus float64 `yaml:"elastic_modulus"` // Pa
	PoissonRatio   float64 `yaml:"poisson_ratio"`
	Density        float64 `yaml:"density"` // kg/m^3
}

// FluidProperties describes a working fluid.
type FluidProperties struct {
	Density   float64 `yaml:"density"`   // kg/m^3
	Viscosity float64 `yaml:"viscosity"` // Pa*s
}

// ThermalProperties describes a material's conduction behavior.
type ThermalProperties struct {
	Conductivity float64 `yaml:"thermal_conductivity"` // W/(m*K)
	SpecificHeat float64 `yaml:"specific_heat"`        // J/(kg*K)
	Density      float64 `yaml:"density"`              // kg/m^3
}

// ComponentModel holds default values for circuit component kinds.
type ComponentModel struct {
	Resistance  float64 `yaml:"resistance"`  // ohm
	Capacitance float64 `yaml:"capacitance"` // farad
	Inductance  float64 `yaml:"inductance"`  // henry
	Voltage     float64 `yaml:"voltage"`     // volt
	Current     float64 `yaml:"current"`     // ampere
}

// MaterialDB is the static lookup data consumed by all solvers.
// Tables are read-only after construction, so concurrent solver calls may
// share one instance without locking.
type MaterialDB struct {
	Materials  map[string]MaterialProperties `yaml:"materials"`
	Fluids     map[string]FluidProperties    `yaml:"fluids"`
	Thermal    map[string]ThermalProperties  `yaml:"thermal"`
	Components map[string]ComponentModel     `yaml:"components"`
}

// NewMaterialDB returns the built-in property tables.
func NewMaterialDB() *MaterialDB {
	return &MaterialDB{
		Materials: map[string]MaterialProperties{
			"steel":    {ElasticModulus: 200e9, PoissonRatio: 0.3, Density: 7850},
			"concrete": {ElasticModulus: 30e9, PoissonRatio: 0.2, Density: 2400},
			"aluminum": {ElasticModulus: 70e9, PoissonRatio: 0.33, Density: 2700},
		},
		Fluids: map[string]FluidProperties{
			"water": {Density: 1000, Viscosity: 1e-3},
			"air":   {Density: 1.225, Viscosity: 1.8e-5},
			"oil":   {Density: 900, Viscosity: 0.1},
		},
		Thermal: map[string]ThermalProperties{
			"steel":    {Conductivity: 50, SpecificHeat: 460, Density: 7850},
			"aluminum": {Conductivity: 237, SpecificHeat: 900, Density: 2700},
			"copper":   {Conductivity: 401, SpecificHeat: 385, Density: 8960},
		},
		Components: map[string]ComponentModel{
			"resistor":       {Resistance: 100},
			"capacitor":      {Capacitance: 1e-6},
			"inductor":       {Inductance: 1e-3},
			"voltage_source": {Voltage: 12},
			"current_source": {Current: 1},
		},
	}
}

// LoadMaterialDB reads table overrides from a YAML file and merges them
// over the built-in defaults. Unknown keys in the file are errors.
func LoadMaterialDB(path string) (*MaterialDB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read materials file: %w", err)
	}

	var overrides MaterialDB
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&overrides); err != nil {
		return nil, fmt.Errorf("parse materials file %s: %w", path, err)
	}

	db := NewMaterialDB()
	for name, p := range overrides.Materials {
		db.Materials[name] = p
	}
	for name, p := range overrides.Fluids {
		db.Fluids[name] = p
	}
	for name, p := range overrides.Thermal {
		db.Thermal[name] = p
	}
	for name, p := range overrides.Components {
		db.Components[name] = p
	}
	return db, nil
}

// Material resolves a structural material by name, falling back to steel
// for unknown names (legacy payloads routinely omit the material field).
func (db *MaterialDB) Material(name string) MaterialProperties {
	if p, ok := db.Materials[name]; ok {
		return p
	}
	return db.Materials["steel"]
}

// Fluid resolves a fluid by name, falling back to water.
func (db *MaterialDB) Fluid(name string) FluidProperties {
	if p, ok := db.Fluids[name]; ok {
		return p
	}
	return db.Fluids["water"]
}

// ThermalMaterial resolves thermal properties by name, falling back to steel.
func (db *MaterialDB) ThermalMaterial(name string) ThermalProperties {
	if p, ok := db.Thermal[name]; ok {
		return p
	}
	return db.Thermal["steel"]
}

// Component resolves a circuit component model by kind.
func (db *MaterialDB) Component(kind string) (ComponentModel, bool) {
	m, ok := db.Components[kind]
	return m, ok
}
