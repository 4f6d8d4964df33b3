/*package mesh defines the volumetric mesh contract between the geometry
builder and the flow solver, plus a uniform Cartesian reference mesher.

A production deployment points Engine at a real meshing code; the types
here are the only thing the rest of the pipeline sees.
*/
package mesh

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
)

// Engine generates a volume mesh for a solid. classify tags each boundary
// face; it may be nil, in which case faces are left untagged.
type Engine interface {
	Mesh(solid sdf.SDF3, classify geom.Classifier) (*Mesh, error)
}

// Face is a boundary face of the fluid volume: the face of a fluid cell
// whose neighbor is solid or outside the domain.
type Face struct {
	Cell   int // adjacent fluid cell
	Center r3.Vec
	Normal r3.Vec // outward unit normal
	Area   float64
	Tag    geom.FaceTag
}

// SectionFace is an interior face crossing a plane section. Lo and Hi are
// the fluid cells on the low and high side of the plane.
type SectionFace struct {
	Lo, Hi int
	Center r3.Vec
	Area   float64
}

// Mesh is a cell-centered uniform Cartesian mesh of the fluid volume.
// Cells are cubes of width Step. Grid maps structured indices to compact
// cell indices (-1 for solid/exterior) so solvers can walk neighbors.
type Mesh struct {
	Centers []r3.Vec
	Volumes []float64
	Faces   []Face

	Step   float64
	Origin r3.Vec // min corner of the structured grid
	Dims   [3]int
	Grid   []int // len Dims[0]*Dims[1]*Dims[2], fluid cell index or -1
}

// At returns the compact cell index at structured coordinates, or -1 when
// out of range or not fluid.
func (m *Mesh) At(i, j, k int) int {
	if i < 0 || j < 0 || k < 0 ||
		i >= m.Dims[0] || j >= m.Dims[1] || k >= m.Dims[2] {
		return -1
	}
	return m.Grid[(k*m.Dims[1]+j)*m.Dims[0]+i]
}

// CellCount returns the number of fluid cells.
func (m *Mesh) CellCount() int { return len(m.Centers) }

// SurfaceArea sums the area of every boundary face carrying the tag.
func (m *Mesh) SurfaceArea(tag geom.FaceTag) float64 {
	sum := 0.0
	for i := range m.Faces {
		if m.Faces[i].Tag == tag {
			sum += m.Faces[i].Area
		}
	}
	return sum
}

// TotalSurfaceArea sums the area of every boundary face regardless of tag.
func (m *Mesh) TotalSurfaceArea() float64 {
	sum := 0.0
	for i := range m.Faces {
		sum += m.Faces[i].Area
	}
	return sum
}

// TaggedFaces returns the boundary faces carrying the tag.
func (m *Mesh) TaggedFaces(tag geom.FaceTag) []Face {
	out := []Face{}
	for i := range m.Faces {
		if m.Faces[i].Tag == tag {
			out = append(out, m.Faces[i])
		}
	}
	return out
}

// Subvolume returns the indices of cells whose centers lie inside the
// axis-aligned cube |x|,|y|,|z| <= h. This re-derives the region of
// interest after scaling; metrics are computed over it rather than over
// the extension boxes.
func (m *Mesh) Subvolume(h float64) []int {
	cells := []int{}
	for i, c := range m.Centers {
		if math.Abs(c.X) <= h && math.Abs(c.Y) <= h && math.Abs(c.Z) <= h {
			cells = append(cells, i)
		}
	}
	return cells
}

// PlaneSection collects the interior x-normal faces on the grid face plane
// nearest to x. Faces on the domain boundary are not included; the section
// only sees open flow area.
func (m *Mesh) PlaneSection(x float64) []SectionFace {
	// Interior face planes sit at Origin.X + i*Step for i in [1, Dims[0]-1].
	i := int(math.Round((x - m.Origin.X) / m.Step))
	if i < 1 {
		i = 1
	}
	if i > m.Dims[0]-1 {
		i = m.Dims[0] - 1
	}
	planeX := m.Origin.X + float64(i)*m.Step

	section := []SectionFace{}
	for k := 0; k < m.Dims[2]; k++ {
		for j := 0; j < m.Dims[1]; j++ {
			lo, hi := m.At(i-1, j, k), m.At(i, j, k)
			if lo < 0 || hi < 0 {
				continue
			}
			section = append(section, SectionFace{
				Lo: lo, Hi: hi,
				Center: r3.Vec{
					X: planeX,
					Y: m.Origin.Y + (float64(j)+0.5)*m.Step,
					Z: m.Origin.Z + (float64(k)+0.5)*m.Step,
				},
				Area: m.Step * m.Step,
			})
		}
	}
	return section
}
