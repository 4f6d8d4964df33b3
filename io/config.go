package io

const ExampleSimulateFile = `[Simulate]

#######################
# Required Parameters #
#######################

# Directory containing the input tables. For every sample index n in
# [Start, End] there must be a pore_bodies_n.csv and a pore_throats_n.csv
# pair in this directory.
Input = path/to/data/dir

# Directory which result rows will be written to, one simulation_n.csv per
# sample. A sample whose result row already exists is skipped, so an
# interrupted batch can simply be rerun.
Output = path/to/output/dir

# Inclusive sample index range for this invocation. Separate invocations
# over disjoint ranges may run concurrently against the same Output
# directory.
Start = 1
End   = 1

#######################
# Optional Parameters #
#######################

# Fluid properties. Defaults are water at room temperature in SI units.
# Density   = 997
# Viscosity = 0.00089

# Total pressure held at the inlet, in the solver's pressure unit. The
# outlet is held at a static reference pressure of zero.
# DrivingPressure = 1.0

# Unit conversion from the micron-valued input tables to meters happens in
# two stages: table values are multiplied by TableScale on read, and the
# assembled geometry is scaled by ScaleFactor about the origin before
# meshing. The product must be 1e-6.
# TableScale  = 0.01
# ScaleFactor = 1e-4

# Conversion from m^2 to millidarcies used by the permeability estimates.
# MillidarcyPerSquareMeter = 1.01324996582814e15

# Number of mesh cells across the long (flow) axis of the extended domain,
# and the iteration budget of the reference solver.
# MeshCells = 96
# MaxSteps  = 200
# Tolerance = 1e-6

# When set, a residual-history plot is written per exported sample.
# PlotDir = path/to/plot/dir

# Output files which are useful for profiling and debugging. Generally,
# there isn't a reason to use these unless something goes wrong.
# ProfileFile = prof.out
# LogFile = log.out`

// SimulateConfig configures one batch invocation over a closed sample
// index range.
type SimulateConfig struct {
	// Required
	Input, Output string
	Start, End    int

	// Optional
	Density, Viscosity       float64
	DrivingPressure          float64
	TableScale, ScaleFactor  float64
	MillidarcyPerSquareMeter float64
	MeshCells, MaxSteps      int
	Tolerance                float64
	PlotDir                  string
	LogFile, ProfileFile     string
}

type SimulateWrapper struct {
	Simulate SimulateConfig
}

// DefaultSimulateWrapper returns a wrapper with every optional parameter
// set to its documented default, ready to be filled in by gcfg.
func DefaultSimulateWrapper() *SimulateWrapper {
	con := SimulateConfig{}
	con.Start, con.End = 0, -1
	con.Density = 997
	con.Viscosity = 0.00089
	con.DrivingPressure = 1.0
	con.TableScale = 0.01
	con.ScaleFactor = 1e-4
	con.MillidarcyPerSquareMeter = 1.01324996582814e15
	con.MeshCells = 96
	con.MaxSteps = 200
	con.Tolerance = 1e-6
	return &SimulateWrapper{con}
}

func (con *SimulateConfig) ValidInput() bool {
	return con.Input != ""
}
func (con *SimulateConfig) ValidOutput() bool {
	return con.Output != ""
}
func (con *SimulateConfig) ValidRange() bool {
	return con.Start >= 0 && con.End >= con.Start
}
func (con *SimulateConfig) ValidFluid() bool {
	return con.Density > 0 && con.Viscosity > 0
}
func (con *SimulateConfig) ValidScales() bool {
	return con.TableScale > 0 && con.ScaleFactor > 0
}
func (con *SimulateConfig) ValidMeshCells() bool {
	return con.MeshCells > 1
}
func (con *SimulateConfig) ValidMaxSteps() bool {
	return con.MaxSteps > 0
}
func (con *SimulateConfig) ValidLogFile() bool {
	return con.LogFile != ""
}
func (con *SimulateConfig) ValidProfileFile() bool {
	return con.ProfileFile != ""
}
