/*package metrics turns solved field data into the transport properties
reported per sample: porosity, tortuosity, permeability, Reynolds number,
mass flows, pressure drop and surface areas.

Every function here is pure in the mesh/field data. Division by zero is
avoided structurally with the Epsilon constant rather than by guarding
branches, so estimators stay defined (and obviously wrong) when a network
carries no flow instead of crashing the sample.
*/
package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"

	"github.com/porelab/poreflow/flow"
	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/mesh"
)

// Epsilon is added to every denominator that may legitimately be zero.
// It is a numerical safety net, not a physical correction.
const Epsilon = 1e-99

// Physical holds the constants entering the derived-quantity formulas.
type Physical struct {
	Density   float64 // kg/m^3
	Viscosity float64 // Pa s
	// MillidarcyPerSquareMeter converts permeability from m^2 to mD.
	MillidarcyPerSquareMeter float64
}

// Metrics is one result row. Field order matches the exported column
// order.
type Metrics struct {
	Tort1     float64
	CellCount int
	LengthA   float64
	Perm1     float64
	Porosity  float64
	ReyNo     float64
	Perm2     float64
	InMass    float64
	OutMass   float64
	Tort2     float64
	Perm3     float64
	PresDrop  float64
	PorVol    float64
	SurfArea  float64
	InArea    float64
	OutArea   float64
	InOutArea float64
	InPres    float64
	OutPres   float64
	Vel       float64
	VelX      float64

	Residuals flow.Residuals
}

// Columns is the fixed output schema, in order.
func Columns() []string {
	return []string{
		"Tort1", "CellCount", "LengthA", "Perm1", "Porosity", "ReyNo",
		"Perm2", "InMassFlow", "OutMassFlow", "Tort2", "Perm3", "PresDrop",
		"PorVol", "SurfArea", "in-area", "out-area", "in-out-area",
		"InPres", "OutPres", "Vel", "VelX",
		"Continuity", "X-momentum", "Y-momentum", "Z-momentum",
	}
}

// Values returns the row values in the same order as Columns.
func (m *Metrics) Values() []float64 {
	return []float64{
		m.Tort1, float64(m.CellCount), m.LengthA, m.Perm1, m.Porosity,
		m.ReyNo, m.Perm2, m.InMass, m.OutMass, m.Tort2, m.Perm3,
		m.PresDrop, m.PorVol, m.SurfArea, m.InArea, m.OutArea,
		m.InOutArea, m.InPres, m.OutPres, m.Vel, m.VelX,
		m.Residuals.Continuity, m.Residuals.XMomentum,
		m.Residuals.YMomentum, m.Residuals.ZMomentum,
	}
}

// Compute derives the full metric set. m is the meshed flow domain, box
// the meshed bare extension-box region (the boundary-feature container),
// f the solved fields, and halfLength the post-scale region-of-interest
// half-length. The region of interest |x|,|y|,|z| <= halfLength is where
// all volume metrics are taken; the extension boxes only contribute
// through the true inlet/outlet boundaries.
func Compute(
	m, box *mesh.Mesh, f *flow.Fields, halfLength float64, phys Physical,
) *Metrics {
	out := &Metrics{Residuals: f.Residuals}

	// Characteristic domain length from the inlet cross section.
	areaInlet := m.SurfaceArea(geom.Inlet)
	out.LengthA = math.Sqrt(areaInlet)

	// Volume metrics over the region of interest.
	sub := m.Subvolume(halfLength)
	out.CellCount = len(sub)

	// vel2/velX2 are the unnormalized totals behind the second tortuosity
	// estimate; the two estimators diverge under anisotropic flow.
	var volSum, velVolSum, velXVolSum, vel2, velX2 float64
	for _, c := range sub {
		speed := r3.Norm(f.V[c])
		vol := m.Volumes[c]
		volSum += vol
		velVolSum += speed * vol
		velXVolSum += f.V[c].X * vol
		vel2 += speed
		velX2 += f.V[c].X
	}
	out.PorVol = volSum
	if volSum > 0 {
		out.Vel = velVolSum / volSum
		out.VelX = velXVolSum / volSum
	}
	out.Tort1 = (out.Vel + Epsilon) / (out.VelX + Epsilon)
	out.Tort2 = (vel2 + Epsilon) / (velX2 + Epsilon)

	out.Porosity = out.PorVol /
		(out.LengthA*out.LengthA*out.LengthA + Epsilon)
	out.ReyNo = (out.Vel + Epsilon) * out.LengthA *
		phys.Density / phys.Viscosity

	// Pressures on cross sections at the faces of the region of interest,
	// not at the far domain boundaries.
	out.InPres = sectionPressure(m, f, -halfLength)
	out.OutPres = sectionPressure(m, f, halfLength)
	out.PresDrop = out.InPres - out.OutPres

	// Darcy estimators, converted to millidarcies.
	k := phys.MillidarcyPerSquareMeter
	out.Perm1 = (out.Vel + Epsilon) * phys.Viscosity * out.LengthA /
		(out.PresDrop + Epsilon) * k

	out.InMass = massFlow(m, f, geom.Inlet, phys.Density)
	out.OutMass = massFlow(m, f, geom.Outlet, phys.Density)
	area2 := out.LengthA*out.LengthA + Epsilon
	out.Perm2 = (out.InMass/phys.Density + Epsilon) / area2 *
		phys.Viscosity * out.LengthA / (out.PresDrop + Epsilon) * k
	out.Perm3 = (out.OutMass/phys.Density + Epsilon) / area2 *
		phys.Viscosity * out.LengthA / (out.PresDrop + Epsilon) * k

	// Surface areas for geometric sanity checks.
	out.SurfArea = m.SurfaceArea(geom.PoreWall)
	boundArea := m.SurfaceArea(geom.BlockSurface) +
		m.SurfaceArea(geom.Inlet) + m.SurfaceArea(geom.Outlet)
	out.InOutArea = box.TotalSurfaceArea() - boundArea
	out.InArea = sectionArea(m, -0.9999*halfLength)
	out.OutArea = out.InOutArea - out.InArea

	return out
}

// sectionPressure is the area-averaged pressure on the plane section at x.
func sectionPressure(m *mesh.Mesh, f *flow.Fields, x float64) float64 {
	section := m.PlaneSection(x)
	if len(section) == 0 {
		return 0
	}
	ps := make([]float64, len(section))
	ws := make([]float64, len(section))
	for i, sf := range section {
		ps[i] = 0.5 * (f.P[sf.Lo] + f.P[sf.Hi])
		ws[i] = sf.Area
	}
	return stat.Mean(ps, ws)
}

// sectionArea is the open flow area of the plane section at x.
func sectionArea(m *mesh.Mesh, x float64) float64 {
	sum := 0.0
	for _, sf := range m.PlaneSection(x) {
		sum += sf.Area
	}
	return sum
}

// massFlow is the through-flow mass rate across the tagged boundary,
// positive in the direction of transport: into the domain at the inlet,
// out of it at the outlet.
func massFlow(m *mesh.Mesh, f *flow.Fields, tag geom.FaceTag, rho float64) float64 {
	sum := 0.0
	for _, face := range m.TaggedFaces(tag) {
		flux := r3.Dot(f.V[face.Cell], face.Normal) * face.Area
		if tag == geom.Inlet {
			flux = -flux
		}
		sum += rho * flux
	}
	return sum
}
