package batch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/porelab/poreflow/flow"
	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/io"
	"github.com/porelab/poreflow/mesh"
)

// testConfig is a small, fast setup: one spherical pore with a single
// through-going throat, meshed coarsely and iterated a handful of steps.
func testConfig(t *testing.T) *io.SimulateConfig {
	t.Helper()
	cfg := io.DefaultSimulateWrapper().Simulate
	cfg.Input = t.TempDir()
	cfg.Output = t.TempDir()
	cfg.ScaleFactor = 1.0
	cfg.MeshCells = 40
	cfg.MaxSteps = 30
	cfg.Tolerance = 1e-3
	return &cfg
}

func testRunner(cfg *io.SimulateConfig) *Runner {
	return &Runner{
		Config: cfg,
		Mesher: mesh.Uniform{Cells: cfg.MeshCells},
		Solver: flow.Segregated{
			MaxSteps: cfg.MaxSteps, Tolerance: cfg.Tolerance,
		},
	}
}

func writeSample(t *testing.T, dir string, n int) {
	t.Helper()
	bodies := "X,Y,Z,pore_radius,half_domain_length,branches\n" +
		"0,0,0,150,200,2\n"
	throats := "-200,0,0,200,0,0,80\n"
	if err := os.WriteFile(
		io.BodiesPath(dir, n), []byte(bodies), 0666,
	); err != nil {
		t.Fatal(err.Error())
	}
	if err := os.WriteFile(
		io.ThroatsPath(dir, n), []byte(throats), 0666,
	); err != nil {
		t.Fatal(err.Error())
	}
}

func TestRunBatchResumable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Start, cfg.End = 1, 3

	// Samples 1 and 3 get valid tables; sample 2 has none.
	writeSample(t, cfg.Input, 1)
	writeSample(t, cfg.Input, 3)

	results := testRunner(cfg).Run()
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	assert.Equal(t, Exported, results[0].State)
	assert.Equal(t, Failed, results[1].State)
	assert.Equal(t, Exported, results[2].State)

	assert.Equal(t, KindInput, results[1].Err.Kind)
	assert.Equal(t, 2, results[1].Err.Index)
	if results[0].Metrics == nil || results[0].Metrics.CellCount == 0 {
		t.Fatal("exported sample carries no metrics")
	}
	porosity := results[0].Metrics.Porosity
	if porosity < 0 || porosity > 1 {
		t.Errorf("porosity %g out of [0, 1]", porosity)
	}

	assert.True(t, io.RowExists(cfg.Output, 1))
	assert.False(t, io.RowExists(cfg.Output, 2), "failed sample left a row")
	assert.True(t, io.RowExists(cfg.Output, 3))

	// A second invocation skips the done samples and retries the failed
	// one, which now succeeds.
	writeSample(t, cfg.Input, 2)
	results = testRunner(cfg).Run()
	assert.Equal(t, Skipped, results[0].State)
	assert.Equal(t, Exported, results[1].State)
	assert.Equal(t, Skipped, results[2].State)
	assert.True(t, io.RowExists(cfg.Output, 2))
}

func TestRunDegenerateGeometry(t *testing.T) {
	cfg := testConfig(t)
	cfg.Start, cfg.End = 1, 1

	bodies := "NaN,0,0,150,200,1\n"
	throats := "-200,0,0,200,0,0,80\n"
	if err := os.WriteFile(
		io.BodiesPath(cfg.Input, 1), []byte(bodies), 0666,
	); err != nil {
		t.Fatal(err.Error())
	}
	if err := os.WriteFile(
		io.ThroatsPath(cfg.Input, 1), []byte(throats), 0666,
	); err != nil {
		t.Fatal(err.Error())
	}

	results := testRunner(cfg).Run()
	assert.Equal(t, Failed, results[0].State)
	assert.Equal(t, KindGeometry, results[0].Err.Kind)
	assert.True(t, errors.Is(results[0].Err, geom.ErrDegenerate))
	assert.False(t, io.RowExists(cfg.Output, 1))
}

func TestRunExportedRowReadable(t *testing.T) {
	cfg := testConfig(t)
	cfg.Start, cfg.End = 5, 5
	writeSample(t, cfg.Input, 5)

	results := testRunner(cfg).Run()
	if results[0].State != Exported {
		t.Fatalf("sample failed: %v", results[0].Err)
	}

	data, err := os.ReadFile(filepath.Join(
		cfg.Output, "simulation_5.csv",
	))
	if err != nil {
		t.Fatal(err.Error())
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 2, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "Tort1,CellCount,"))
}

func TestSampleError(t *testing.T) {
	inner := errors.New("boom")
	err := &SampleError{Index: 7, Kind: KindSolver, Err: inner}

	assert.Contains(t, err.Error(), "sample 7")
	assert.Contains(t, err.Error(), "solver divergence")
	assert.True(t, errors.Is(err, inner))

	assert.Equal(t, "Exported", Exported.String())
	assert.Equal(t, "input missing or malformed", KindInput.String())
}
