/*package geom builds pore-network flow domains out of signed distance
fields.

Pore bodies become spheres, pore throats become capped cylinders between
their endpoint pairs, and the inlet/outlet extensions become axis-aligned
boxes. Everything implements sdf.SDF3 so the assembled domain can be handed
directly to any mesher that consumes signed distance fields. Distances are
negative inside the solid.
*/
package geom

import (
	"math"

	"github.com/soypat/sdf"
	"gonum.org/v1/gonum/spatial/r3"
)

// Sphere is an SDF3 for a sphere with an arbitrary center. It models a
// single pore body.
type Sphere struct {
	Center r3.Vec
	Radius float64
}

func (s Sphere) Evaluate(q r3.Vec) float64 {
	return r3.Norm(r3.Sub(q, s.Center)) - s.Radius
}

func (s Sphere) Bounds() r3.Box {
	r := r3.Vec{X: s.Radius, Y: s.Radius, Z: s.Radius}
	return r3.Box{Min: r3.Sub(s.Center, r), Max: r3.Add(s.Center, r)}
}

// Cylinder is an SDF3 for a capped cylinder spanning the segment from A to
// B. It models a single pore throat. The distance is exact, including at
// the caps.
type Cylinder struct {
	A, B   r3.Vec
	Radius float64
}

func (c Cylinder) Evaluate(q r3.Vec) float64 {
	ba := r3.Sub(c.B, c.A)
	pa := r3.Sub(q, c.A)
	baba := r3.Dot(ba, ba)
	paba := r3.Dot(pa, ba)

	x := r3.Norm(r3.Sub(r3.Scale(baba, pa), r3.Scale(paba, ba))) - c.Radius*baba
	y := math.Abs(paba-baba*0.5) - baba*0.5
	x2 := x * x
	y2 := y * y * baba

	var d float64
	if math.Max(x, y) < 0 {
		d = -math.Min(x2, y2)
	} else {
		if x > 0 {
			d += x2
		}
		if y > 0 {
			d += y2
		}
	}
	return math.Copysign(math.Sqrt(math.Abs(d)), d) / baba
}

func (c Cylinder) Bounds() r3.Box {
	r := r3.Vec{X: c.Radius, Y: c.Radius, Z: c.Radius}
	min := r3.Vec{
		X: math.Min(c.A.X, c.B.X), Y: math.Min(c.A.Y, c.B.Y),
		Z: math.Min(c.A.Z, c.B.Z),
	}
	max := r3.Vec{
		X: math.Max(c.A.X, c.B.X), Y: math.Max(c.A.Y, c.B.Y),
		Z: math.Max(c.A.Z, c.B.Z),
	}
	return r3.Box{Min: r3.Sub(min, r), Max: r3.Add(max, r)}
}

// Box is an SDF3 for an axis-aligned box spanning [Min, Max].
type Box struct {
	Min, Max r3.Vec
}

func (b Box) Evaluate(q r3.Vec) float64 {
	c := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	h := r3.Scale(0.5, r3.Sub(b.Max, b.Min))
	p := r3.Sub(q, c)
	d := r3.Vec{
		X: math.Abs(p.X) - h.X,
		Y: math.Abs(p.Y) - h.Y,
		Z: math.Abs(p.Z) - h.Z,
	}
	outside := r3.Norm(r3.Vec{
		X: math.Max(d.X, 0), Y: math.Max(d.Y, 0), Z: math.Max(d.Z, 0),
	})
	inside := math.Min(math.Max(d.X, math.Max(d.Y, d.Z)), 0)
	return outside + inside
}

func (b Box) Bounds() r3.Box { return r3.Box{Min: b.Min, Max: b.Max} }

// Union is the boolean union of its parts. The distance is the pointwise
// minimum, which is exact outside the solid.
type Union struct {
	Parts []sdf.SDF3
}

func NewUnion(parts ...sdf.SDF3) Union { return Union{Parts: parts} }

func (u Union) Evaluate(q r3.Vec) float64 {
	d := math.Inf(1)
	for _, p := range u.Parts {
		if pd := p.Evaluate(q); pd < d {
			d = pd
		}
	}
	return d
}

func (u Union) Bounds() r3.Box {
	if len(u.Parts) == 0 {
		return r3.Box{}
	}
	b := u.Parts[0].Bounds()
	for _, p := range u.Parts[1:] {
		pb := p.Bounds()
		b.Min.X = math.Min(b.Min.X, pb.Min.X)
		b.Min.Y = math.Min(b.Min.Y, pb.Min.Y)
		b.Min.Z = math.Min(b.Min.Z, pb.Min.Z)
		b.Max.X = math.Max(b.Max.X, pb.Max.X)
		b.Max.Y = math.Max(b.Max.Y, pb.Max.Y)
		b.Max.Z = math.Max(b.Max.Z, pb.Max.Z)
	}
	return b
}

// Scaled wraps an SDF3 and scales it uniformly about the coordinate-system
// origin, not about the solid's own centroid, so the relative positions of
// unioned parts are preserved.
type Scaled struct {
	Solid  sdf.SDF3
	Factor float64
}

func (s Scaled) Evaluate(q r3.Vec) float64 {
	return s.Solid.Evaluate(r3.Scale(1/s.Factor, q)) * s.Factor
}

func (s Scaled) Bounds() r3.Box {
	b := s.Solid.Bounds()
	return r3.Box{
		Min: r3.Scale(s.Factor, b.Min),
		Max: r3.Scale(s.Factor, b.Max),
	}
}
