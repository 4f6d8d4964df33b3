package flow

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
)

// ErrDivergence is returned when the engine cannot produce a usable field,
// e.g. the iteration blew up to non-finite values.
var ErrDivergence = errors.New("flow: solver diverged")

// Engine solves a configured case and returns converged field data.
type Engine interface {
	Solve(c *Case) (*Fields, error)
}

// Residuals are the solver's convergence diagnostics. They are exported
// with every result row.
type Residuals struct {
	Continuity float64
	XMomentum  float64
	YMomentum  float64
	ZMomentum  float64
}

// Fields is the solved field data: one pressure and one velocity per mesh
// cell, in mesh cell order.
type Fields struct {
	P []float64
	V []r3.Vec

	Residuals Residuals
	History   []Residuals // one entry per iteration
	Steps     int
	Converged bool
}

// Neighbor sentinels for the solver's adjacency table.
const (
	nbWall   = -1
	nbInlet  = -2
	nbOutlet = -3
)

// Segregated is the reference flow engine: a Jacobi pressure iteration
// with Dirichlet inlet/outlet faces and zero-gradient walls, with cell
// velocities reconstructed from the pressure gradient through a
// Poiseuille-type mobility. It is not a CFD code; it exists so the
// pipeline contract is executable and testable. Deployments wire a real
// engine in its place.
type Segregated struct {
	MaxSteps  int
	Tolerance float64
}

func (s Segregated) Solve(c *Case) (*Fields, error) {
	if s.MaxSteps <= 0 {
		return nil, fmt.Errorf("%w: non-positive step budget", ErrDivergence)
	}
	m := c.Mesh
	n := m.CellCount()
	pIn := c.Config.DrivingPressure
	h := m.Step

	adj := buildAdjacency(c)

	// Poiseuille-type mobility with the cell width as the channel scale.
	mob := h * h / (8 * c.Config.Fluid.Viscosity)

	p := make([]float64, n)
	pNext := make([]float64, n)
	v := make([]r3.Vec, n)
	vPrev := make([]r3.Vec, n)

	f := &Fields{}
	for step := 0; step < s.MaxSteps; step++ {
		maxDelta := 0.0
		for i := 0; i < n; i++ {
			sum := 0.0
			for _, nb := range adj[i] {
				switch {
				case nb >= 0:
					sum += p[nb]
				case nb == nbWall:
					sum += p[i]
				case nb == nbInlet:
					sum += 2*pIn - p[i]
				case nb == nbOutlet:
					sum += -p[i]
				}
			}
			pNext[i] = sum / 6
			if d := math.Abs(pNext[i] - p[i]); d > maxDelta {
				maxDelta = d
			}
		}
		p, pNext = pNext, p

		v, vPrev = vPrev, v
		velocities(adj, p, pIn, h, mob, v)

		res := residuals(c, adj, v, vPrev, h)
		f.History = append(f.History, res)
		f.Residuals = res
		f.Steps = step + 1

		if !finiteResiduals(res) || !finiteField(p) {
			return nil, fmt.Errorf(
				"%w: non-finite fields after %d steps", ErrDivergence, f.Steps,
			)
		}
		if maxDelta <= s.Tolerance*math.Max(math.Abs(pIn), 1) {
			f.Converged = true
			break
		}
	}

	f.P = p
	f.V = v
	return f, nil
}

// buildAdjacency walks the structured grid once and returns, per cell, the
// six neighbor entries: a fluid cell index, or a boundary sentinel decided
// by the face's boundary condition.
func buildAdjacency(c *Case) [][6]int {
	m := c.Mesh
	adj := make([][6]int, m.CellCount())

	kind := func(tag geom.FaceTag) int {
		switch c.Conditions[tag].Kind {
		case TotalPressureInlet:
			return nbInlet
		case StaticPressureOutlet:
			return nbOutlet
		}
		return nbWall
	}

	// Tags of boundary faces, keyed by cell and direction.
	tags := map[[2]int]geom.FaceTag{}
	for _, face := range m.Faces {
		tags[[2]int{face.Cell, dirIndex(face.Normal)}] = face.Tag
	}

	for k := 0; k < m.Dims[2]; k++ {
		for j := 0; j < m.Dims[1]; j++ {
			for i := 0; i < m.Dims[0]; i++ {
				cell := m.At(i, j, k)
				if cell < 0 {
					continue
				}
				steps := [6][3]int{
					{-1, 0, 0}, {1, 0, 0},
					{0, -1, 0}, {0, 1, 0},
					{0, 0, -1}, {0, 0, 1},
				}
				for d, s := range steps {
					nb := m.At(i+s[0], j+s[1], k+s[2])
					if nb >= 0 {
						adj[cell][d] = nb
						continue
					}
					adj[cell][d] = kind(tags[[2]int{cell, d}])
				}
			}
		}
	}
	return adj
}

// dirIndex maps an axis-aligned outward normal to the adjacency slot
// ordering used by buildAdjacency.
func dirIndex(normal r3.Vec) int {
	switch {
	case normal.X < -0.5:
		return 0
	case normal.X > 0.5:
		return 1
	case normal.Y < -0.5:
		return 2
	case normal.Y > 0.5:
		return 3
	case normal.Z < -0.5:
		return 4
	}
	return 5
}

// velocities fills v with -mob * grad p per cell, using the same ghost
// values as the pressure iteration.
func velocities(
	adj [][6]int, p []float64, pIn, h, mob float64, v []r3.Vec,
) {
	ghost := func(i, nb int) float64 {
		switch {
		case nb >= 0:
			return p[nb]
		case nb == nbInlet:
			return 2*pIn - p[i]
		case nb == nbOutlet:
			return -p[i]
		}
		return p[i]
	}
	for i := range v {
		g := r3.Vec{
			X: (ghost(i, adj[i][1]) - ghost(i, adj[i][0])) / (2 * h),
			Y: (ghost(i, adj[i][3]) - ghost(i, adj[i][2])) / (2 * h),
			Z: (ghost(i, adj[i][5]) - ghost(i, adj[i][4])) / (2 * h),
		}
		v[i] = r3.Scale(-mob, g)
	}
}

// residuals computes the continuity defect (rms divergence of the velocity
// field) and per-axis momentum defects (rms velocity change since the last
// iteration).
func residuals(c *Case, adj [][6]int, v, vPrev []r3.Vec, h float64) Residuals {
	n := len(v)
	if n == 0 {
		return Residuals{}
	}

	var div2, dx2, dy2, dz2 float64
	for i := 0; i < n; i++ {
		// Central-difference divergence. Boundary neighbors mirror the
		// no-slip/through-flow conditions: walls carry zero normal flow,
		// open faces carry the cell's own velocity.
		div := 0.0
		axes := [3][2]int{{0, 1}, {2, 3}, {4, 5}}
		for a, slot := range axes {
			lo, hi := adj[i][slot[0]], adj[i][slot[1]]
			vLo := boundaryVel(v, i, lo, a)
			vHi := boundaryVel(v, i, hi, a)
			div += (vHi - vLo) / (2 * h)
		}
		div2 += div * div

		d := r3.Sub(v[i], vPrev[i])
		dx2 += d.X * d.X
		dy2 += d.Y * d.Y
		dz2 += d.Z * d.Z
	}

	rms := func(s float64) float64 { return math.Sqrt(s / float64(n)) }
	return Residuals{
		Continuity: rms(div2),
		XMomentum:  rms(dx2),
		YMomentum:  rms(dy2),
		ZMomentum:  rms(dz2),
	}
}

func boundaryVel(v []r3.Vec, cell, nb, axis int) float64 {
	pick := func(u r3.Vec) float64 {
		switch axis {
		case 0:
			return u.X
		case 1:
			return u.Y
		}
		return u.Z
	}
	switch {
	case nb >= 0:
		return pick(v[nb])
	case nb == nbInlet, nb == nbOutlet:
		return pick(v[cell])
	}
	return -pick(v[cell]) // no-slip wall: velocity vanishes at the face
}

func finiteResiduals(r Residuals) bool {
	for _, x := range []float64{
		r.Continuity, r.XMomentum, r.YMomentum, r.ZMomentum,
	} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func finiteField(p []float64) bool {
	for _, x := range p {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
