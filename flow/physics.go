/*package flow configures flow physics and boundary conditions for a
meshed domain and defines the solver engine contract.

The physics model mirrors a steady, laminar, constant-density, single
component liquid setup. The solver itself is an external collaborator
behind the Engine interface; Segregated is a small reference engine so the
pipeline and its tests can run end to end without one.
*/
package flow

import (
	"errors"
	"fmt"

	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/mesh"
)

// ErrConfiguration is returned when the meshed domain cannot carry the
// requested boundary conditions, e.g. a missing inlet or outlet face.
var ErrConfiguration = errors.New("flow: invalid configuration")

// ConditionKind is the type of a boundary condition.
type ConditionKind int

const (
	// TotalPressureInlet holds a fixed total pressure (a stagnation
	// condition) on the face.
	TotalPressureInlet ConditionKind = iota
	// StaticPressureOutlet holds a fixed static reference pressure.
	StaticPressureOutlet
	// NoSlipWall is an impermeable wall.
	NoSlipWall
)

// Condition is one boundary condition: a kind and its scalar value.
type Condition struct {
	Kind  ConditionKind
	Value float64
}

// Model selects the flow physics. All fields default to the laminar
// liquid setup used for pore-scale permeability runs; they exist so a real
// engine binding can reject combinations it does not support.
type Model struct {
	ThreeDimensional bool
	SingleComponent  bool
	Segregated       bool
	ConstantDensity  bool
	Steady           bool
	Laminar          bool
}

// DefaultModel is the steady laminar constant-density liquid model.
func DefaultModel() Model {
	return Model{
		ThreeDimensional: true,
		SingleComponent:  true,
		Segregated:       true,
		ConstantDensity:  true,
		Steady:           true,
		Laminar:          true,
	}
}

// Fluid holds the constant fluid properties.
type Fluid struct {
	Density   float64 // kg/m^3
	Viscosity float64 // Pa s
}

// Config is the physics side of a solver case.
type Config struct {
	Fluid           Fluid
	DrivingPressure float64
	Model           Model
}

// Case is a configured, solvable case: a mesh with boundary conditions
// attached to its tagged faces.
type Case struct {
	Mesh       *mesh.Mesh
	Config     Config
	Conditions map[geom.FaceTag]Condition
}

// Configure attaches boundary conditions to the tagged faces of m: the
// inlet gets a fixed total pressure, the outlet a zero static reference
// pressure, and every other face a no-slip impermeable wall. It fails when
// the mesh is missing an inlet or outlet face, or when the model or fluid
// is unusable.
func Configure(m *mesh.Mesh, cfg Config) (*Case, error) {
	if !cfg.Model.Steady || !cfg.Model.Laminar || !cfg.Model.ConstantDensity {
		return nil, fmt.Errorf(
			"%w: only the steady laminar constant-density model is supported",
			ErrConfiguration,
		)
	}
	if cfg.Fluid.Density <= 0 || cfg.Fluid.Viscosity <= 0 {
		return nil, fmt.Errorf("%w: non-physical fluid %+v",
			ErrConfiguration, cfg.Fluid)
	}
	for _, tag := range []geom.FaceTag{geom.Inlet, geom.Outlet} {
		if len(m.TaggedFaces(tag)) == 0 {
			return nil, fmt.Errorf("%w: no %s face on mesh",
				ErrConfiguration, tag)
		}
	}

	return &Case{
		Mesh:   m,
		Config: cfg,
		Conditions: map[geom.FaceTag]Condition{
			geom.Inlet: {
				Kind: TotalPressureInlet, Value: cfg.DrivingPressure,
			},
			geom.Outlet:       {Kind: StaticPressureOutlet, Value: 0},
			geom.BlockSurface: {Kind: NoSlipWall},
			geom.PoreWall:     {Kind: NoSlipWall},
		},
	}, nil
}
