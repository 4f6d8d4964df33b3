package flow

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/mesh"
)

func TestConfigureChannel(t *testing.T) {
	m := channelMesh(t)
	c, err := Configure(m, channelConfig())
	if err != nil {
		t.Fatal(err.Error())
	}

	assert.Equal(t, TotalPressureInlet, c.Conditions[geom.Inlet].Kind)
	assert.Equal(t, 1.0, c.Conditions[geom.Inlet].Value)
	assert.Equal(t, StaticPressureOutlet, c.Conditions[geom.Outlet].Kind)
	assert.Equal(t, 0.0, c.Conditions[geom.Outlet].Value)
	assert.Equal(t, NoSlipWall, c.Conditions[geom.PoreWall].Kind)
	assert.Equal(t, NoSlipWall, c.Conditions[geom.BlockSurface].Kind)
}

func TestConfigureMissingBoundary(t *testing.T) {
	// All faces are walls, so there is nothing to drive flow through.
	solid := geom.Box{
		Min: r3.Vec{X: -1, Y: -1, Z: -1},
		Max: r3.Vec{X: 1, Y: 1, Z: 1},
	}
	walls := func(center, normal r3.Vec) geom.FaceTag { return geom.PoreWall }
	m, err := mesh.Uniform{Cells: 4}.Mesh(solid, walls)
	if err != nil {
		t.Fatal(err.Error())
	}

	_, err = Configure(m, channelConfig())
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestConfigureRejectsModelAndFluid(t *testing.T) {
	m := channelMesh(t)

	cfg := channelConfig()
	cfg.Model.Steady = false
	_, err := Configure(m, cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = channelConfig()
	cfg.Fluid.Viscosity = 0
	_, err = Configure(m, cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))

	cfg = channelConfig()
	cfg.Fluid.Density = -1
	_, err = Configure(m, cfg)
	assert.True(t, errors.Is(err, ErrConfiguration))
}
