package mesh

import (
	"errors"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
)

// ErrEmptyMesh is returned when no cell center falls inside the solid,
// which happens when the resolution is far too coarse for the geometry.
var ErrEmptyMesh = errors.New("mesh: no fluid cells inside solid")

// Uniform is the reference mesher. It samples the signed distance field at
// cell centers on a Cartesian grid spanning the solid's bounds; a cell is
// fluid when the distance there is negative. Boundary faces appear
// wherever a fluid cell meets a non-fluid cell or the edge of the grid.
type Uniform struct {
	// Cells is the cell count across the longest axis of the bounds.
	Cells int
}

func (u Uniform) Mesh(solid sdf.SDF3, classify geom.Classifier) (*Mesh, error) {
	if u.Cells < 2 {
		return nil, errors.New("mesh: need at least 2 cells")
	}

	bounds := solid.Bounds()
	size := r3.Sub(bounds.Max, bounds.Min)
	long := math.Max(size.X, math.Max(size.Y, size.Z))
	step := long / float64(u.Cells)

	m := &Mesh{
		Step:   step,
		Origin: bounds.Min,
		Dims: [3]int{
			gridDim(size.X, step),
			gridDim(size.Y, step),
			gridDim(size.Z, step),
		},
	}
	m.Grid = make([]int, m.Dims[0]*m.Dims[1]*m.Dims[2])

	// Pass 1: sample cell centers.
	idx := 0
	for k := 0; k < m.Dims[2]; k++ {
		for j := 0; j < m.Dims[1]; j++ {
			for i := 0; i < m.Dims[0]; i++ {
				c := r3.Vec{
					X: m.Origin.X + (float64(i)+0.5)*step,
					Y: m.Origin.Y + (float64(j)+0.5)*step,
					Z: m.Origin.Z + (float64(k)+0.5)*step,
				}
				cell := -1
				if solid.Evaluate(c) < 0 {
					cell = len(m.Centers)
					m.Centers = append(m.Centers, c)
					m.Volumes = append(m.Volumes, step*step*step)
				}
				m.Grid[idx] = cell
				idx++
			}
		}
	}
	if len(m.Centers) == 0 {
		return nil, ErrEmptyMesh
	}

	// Pass 2: boundary faces.
	dirs := []struct {
		di, dj, dk int
		normal     r3.Vec
	}{
		{-1, 0, 0, r3.Vec{X: -1}}, {1, 0, 0, r3.Vec{X: 1}},
		{0, -1, 0, r3.Vec{Y: -1}}, {0, 1, 0, r3.Vec{Y: 1}},
		{0, 0, -1, r3.Vec{Z: -1}}, {0, 0, 1, r3.Vec{Z: 1}},
	}
	for k := 0; k < m.Dims[2]; k++ {
		for j := 0; j < m.Dims[1]; j++ {
			for i := 0; i < m.Dims[0]; i++ {
				cell := m.At(i, j, k)
				if cell < 0 {
					continue
				}
				for _, d := range dirs {
					if m.At(i+d.di, j+d.dj, k+d.dk) >= 0 {
						continue
					}
					f := Face{
						Cell: cell,
						Center: r3.Add(
							m.Centers[cell],
							r3.Scale(step/2, d.normal),
						),
						Normal: d.normal,
						Area:   step * step,
					}
					if classify != nil {
						f.Tag = classify(f.Center, f.Normal)
					}
					m.Faces = append(m.Faces, f)
				}
			}
		}
	}
	return m, nil
}

func gridDim(extent, step float64) int {
	n := int(math.Ceil(extent/step - 1e-9))
	if n < 1 {
		n = 1
	}
	return n
}
