package flow

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/mesh"
)

// channelMesh is a straight 4 x 2 x 2 channel with flow along x.
func channelMesh(t *testing.T) *mesh.Mesh {
	t.Helper()
	solid := geom.Box{
		Min: r3.Vec{X: -2, Y: -1, Z: -1},
		Max: r3.Vec{X: 2, Y: 1, Z: 1},
	}
	classify := func(center, normal r3.Vec) geom.FaceTag {
		switch {
		case normal.X < -0.5 && math.Abs(center.X+2) < 1e-9:
			return geom.Inlet
		case normal.X > 0.5 && math.Abs(center.X-2) < 1e-9:
			return geom.Outlet
		}
		return geom.PoreWall
	}
	m, err := mesh.Uniform{Cells: 8}.Mesh(solid, classify)
	if err != nil {
		t.Fatal(err.Error())
	}
	return m
}

func channelConfig() Config {
	return Config{
		Fluid:           Fluid{Density: 1000, Viscosity: 0.1},
		DrivingPressure: 1.0,
		Model:           DefaultModel(),
	}
}

func TestSegregatedChannel(t *testing.T) {
	m := channelMesh(t)
	c, err := Configure(m, channelConfig())
	if err != nil {
		t.Fatal(err.Error())
	}

	f, err := Segregated{MaxSteps: 2000, Tolerance: 1e-10}.Solve(c)
	if err != nil {
		t.Fatal(err.Error())
	}

	assert.True(t, f.Converged)
	assert.Equal(t, f.Steps, len(f.History))
	assert.Equal(t, m.CellCount(), len(f.P))
	assert.Equal(t, m.CellCount(), len(f.V))

	// The converged pressure is linear along x, p(-2) = 1, p(2) = 0, and
	// the velocity is uniform: vx = mob * pIn / L with mob = h^2/(8 mu).
	mob := m.Step * m.Step / (8 * 0.1)
	wantVX := mob * 1.0 / 4.0
	for i, p := range f.P {
		x := m.Centers[i].X
		assert.InDelta(t, (2-x)/4, p, 1e-6, "pressure at x=%g", x)
		assert.InDelta(t, wantVX, f.V[i].X, 1e-6)
		assert.InDelta(t, 0, f.V[i].Y, 1e-9)
		assert.InDelta(t, 0, f.V[i].Z, 1e-9)
	}

	// Uniform flow has no divergence.
	assert.InDelta(t, 0, f.Residuals.Continuity, 1e-6)
}

func TestSegregatedResidualHistoryDecays(t *testing.T) {
	m := channelMesh(t)
	c, err := Configure(m, channelConfig())
	if err != nil {
		t.Fatal(err.Error())
	}

	f, err := Segregated{MaxSteps: 2000, Tolerance: 1e-10}.Solve(c)
	if err != nil {
		t.Fatal(err.Error())
	}

	if len(f.History) < 10 {
		t.Fatalf("only %d iterations recorded", len(f.History))
	}
	first, last := f.History[2], f.History[len(f.History)-1]
	assert.Less(t, last.XMomentum, first.XMomentum)
	assert.Equal(t, last, f.Residuals)
}

func TestSegregatedStepBudget(t *testing.T) {
	m := channelMesh(t)
	c, err := Configure(m, channelConfig())
	if err != nil {
		t.Fatal(err.Error())
	}

	f, err := Segregated{MaxSteps: 3, Tolerance: 1e-12}.Solve(c)
	if err != nil {
		t.Fatal(err.Error())
	}
	assert.False(t, f.Converged)
	assert.Equal(t, 3, f.Steps)

	_, err = Segregated{MaxSteps: 0, Tolerance: 1e-6}.Solve(c)
	assert.True(t, errors.Is(err, ErrDivergence))
}
