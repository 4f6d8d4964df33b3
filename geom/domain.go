package geom

import (
	"errors"
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// ErrDegenerate is returned when row filtering leaves no valid pore bodies,
// so there is nothing to union a flow domain out of.
var ErrDegenerate = errors.New("geom: no valid pore bodies")

// Body is one pore body row. Coordinates and radii are in the working unit
// of the table reader (microns divided by the table scale). HalfLength is
// half the edge length of the cubic region of interest and is shared by
// every body of a sample.
type Body struct {
	Center     r3.Vec
	Radius     float64
	HalfLength float64
	Branches   int
}

// Throat is one pore throat row: a channel from A to B.
type Throat struct {
	A, B   r3.Vec
	Radius float64
}

// Valid reports whether the row can be turned into a sphere. Rows with
// non-finite cells or a non-positive radius are excluded from construction
// rather than failing the sample.
func (b *Body) Valid() bool {
	return finiteVec(b.Center) && finite(b.Radius) && b.Radius > 0
}

// Valid reports whether the row can be turned into a cylinder.
func (t *Throat) Valid() bool {
	return finiteVec(t.A) && finiteVec(t.B) && finite(t.Radius) &&
		t.Radius > 0 && r3.Norm(r3.Sub(t.B, t.A)) > 0
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func finiteVec(v r3.Vec) bool {
	return finite(v.X) && finite(v.Y) && finite(v.Z)
}

// FaceTag labels a boundary face of the meshed flow domain.
type FaceTag int

const (
	Untagged FaceTag = iota
	// Inlet is the far outward face of the inlet extension box.
	Inlet
	// Outlet is the far outward face of the outlet extension box.
	Outlet
	// BlockSurface is the remaining hull of the extension boxes.
	BlockSurface
	// PoreWall is every other solid surface: sphere and cylinder walls.
	PoreWall
)

func (t FaceTag) String() string {
	switch t {
	case Inlet:
		return "Inlet"
	case Outlet:
		return "Outlet"
	case BlockSurface:
		return "Block Surface"
	case PoreWall:
		return "Pore Wall Surface"
	}
	return "Untagged"
}

// Classifier tags a boundary face from its center and outward normal.
// Selection is geometric, never by construction index.
type Classifier func(center, normal r3.Vec) FaceTag

// Domain is a fully assembled, scaled flow domain ready for meshing. Solid
// is the union of pores, skeleton and extension boxes. Box is the bare
// extension-box union (the secondary region), kept so its meshed surface
// area can be measured independently of the pore network.
type Domain struct {
	Solid sdf.SDF3
	Box   sdf.SDF3

	// HalfLength is the region-of-interest half-length after scaling.
	HalfLength float64
	// Span is the extent of the extension boxes along x after scaling.
	Span float64
}

// BuildPores unions every valid pore body into a single sphere solid.
func BuildPores(bodies []Body) (sdf.SDF3, error) {
	u := Union{}
	for i := range bodies {
		if !bodies[i].Valid() {
			continue
		}
		u.Parts = append(u.Parts, Sphere{
			Center: bodies[i].Center, Radius: bodies[i].Radius,
		})
	}
	if len(u.Parts) == 0 {
		return nil, ErrDegenerate
	}
	return u, nil
}

// BuildSkeleton unions every valid pore throat into a single cylinder
// solid. A sample with no throats yields nil, which Assemble tolerates:
// isolated spheres are geometrically legal and show up downstream as a
// network the fluid cannot cross.
func BuildSkeleton(throats []Throat) sdf.SDF3 {
	u := Union{}
	for i := range throats {
		if !throats[i].Valid() {
			continue
		}
		u.Parts = append(u.Parts, Cylinder{
			A: throats[i].A, B: throats[i].B, Radius: throats[i].Radius,
		})
	}
	if len(u.Parts) == 0 {
		return nil
	}
	return u
}

// BuildExtensionBoxes builds the inlet and outlet extension volumes for a
// region of interest with half-length h. Each box runs from 1x to 10x h
// along the flow axis and spans the full +-h cross section transversely,
// so the region of interest stays centered at the origin and strictly
// interior to the extended domain.
func BuildExtensionBoxes(h float64) sdf.SDF3 {
	inlet := Box{
		Min: r3.Vec{X: -10 * h, Y: -h, Z: -h},
		Max: r3.Vec{X: -h, Y: h, Z: h},
	}
	outlet := Box{
		Min: r3.Vec{X: h, Y: -h, Z: -h},
		Max: r3.Vec{X: 10 * h, Y: h, Z: h},
	}
	return NewUnion(inlet, outlet)
}

// Assemble unions pores, skeleton and extension boxes into the flow domain
// and applies the final scale factor about the origin. skeleton may be nil.
func Assemble(pores, skeleton, boxes sdf.SDF3, h, scale float64) *Domain {
	parts := []sdf.SDF3{pores, boxes}
	if skeleton != nil {
		parts = append(parts, skeleton)
	}
	return &Domain{
		Solid:      Scaled{Solid: Union{Parts: parts}, Factor: scale},
		Box:        Scaled{Solid: boxes, Factor: scale},
		HalfLength: h * scale,
		Span:       10 * h * scale,
	}
}

// Build runs the full construction pipeline for one sample.
func Build(bodies []Body, throats []Throat, h, scale float64) (*Domain, error) {
	pores, err := BuildPores(bodies)
	if err != nil {
		return nil, err
	}
	skeleton := BuildSkeleton(throats)
	boxes := BuildExtensionBoxes(h)
	return Assemble(pores, skeleton, boxes, h, scale), nil
}

// Classify returns the face classifier for the domain. tol should be on
// the order of half a mesh cell width.
//
// A face is the Inlet if it looks out of the -x extreme of the inlet box
// and the Outlet if it looks out of the +x extreme of the outlet box. Any
// other face lying on the extension-box hull is Block Surface; everything
// else is pore wall.
func (d *Domain) Classify(tol float64) Classifier {
	return func(center, normal r3.Vec) FaceTag {
		if normal.X < -0.5 && math.Abs(center.X+d.Span) <= tol {
			return Inlet
		}
		if normal.X > 0.5 && math.Abs(center.X-d.Span) <= tol {
			return Outlet
		}
		if math.Abs(d.Box.Evaluate(center)) <= tol {
			return BlockSurface
		}
		return PoreWall
	}
}
