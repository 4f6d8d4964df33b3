/*package batch drives the pipeline across a numbered dataset: read
tables, build geometry, mesh, configure physics, solve, derive metrics,
export one row per sample.

Samples are processed strictly sequentially and are isolated from one
another: any failure is recorded on the sample's result and the iterator
moves on. A sample whose result row already exists is skipped, which makes
interrupted batches resumable and lets concurrent invocations share an
output directory as long as their index ranges are disjoint.
*/
package batch

import (
	"fmt"
	"log"

	"github.com/porelab/poreflow/flow"
	"github.com/porelab/poreflow/geom"
	"github.com/porelab/poreflow/io"
	"github.com/porelab/poreflow/mesh"
	"github.com/porelab/poreflow/metrics"
)

// State is a sample's position in its lifecycle.
type State int

const (
	Pending State = iota
	Skipped
	Running
	Exported
	Failed
)

func (s State) String() string {
	return [...]string{
		"Pending", "Skipped", "Running", "Exported", "Failed",
	}[s]
}

// Kind tags the stage a sample failed in, so failure causes stay
// distinguishable in logs and tests.
type Kind int

const (
	KindInput Kind = iota
	KindGeometry
	KindConfiguration
	KindSolver
	KindExport
)

func (k Kind) String() string {
	return [...]string{
		"input missing or malformed", "degenerate geometry",
		"configuration error", "solver divergence", "export failure",
	}[k]
}

// SampleError is a failure isolated to one sample.
type SampleError struct {
	Index int
	Kind  Kind
	Err   error
}

func (e *SampleError) Error() string {
	return fmt.Sprintf("sample %d: %s: %v", e.Index, e.Kind, e.Err)
}

func (e *SampleError) Unwrap() error { return e.Err }

// SampleResult is the outcome of one sample.
type SampleResult struct {
	Index   int
	State   State
	Metrics *metrics.Metrics
	Err     *SampleError
}

// Runner runs a batch. Mesher and Solver are the external engine
// bindings; mesh.Uniform and flow.Segregated are the in-tree references.
type Runner struct {
	Config *io.SimulateConfig
	Mesher mesh.Engine
	Solver flow.Engine
}

// Run processes every sample index in the configured closed range and
// returns one result per index. No error crosses a sample boundary.
func (r *Runner) Run() []SampleResult {
	results := []SampleResult{}
	for n := r.Config.Start; n <= r.Config.End; n++ {
		if io.RowExists(r.Config.Output, n) {
			log.Printf("Sample %d: result row exists, skipping.", n)
			results = append(results, SampleResult{Index: n, State: Skipped})
			continue
		}

		m, err := r.runSample(n)
		if err != nil {
			log.Printf("Sample %d failed: %s", n, err)
			results = append(results, SampleResult{
				Index: n, State: Failed, Err: err,
			})
			continue
		}
		log.Printf("Sample %d: exported.", n)
		results = append(results, SampleResult{
			Index: n, State: Exported, Metrics: m,
		})
	}
	return results
}

// runSample runs the full pipeline for one sample. Partially built state
// is garbage once the sample ends either way; nothing is shared between
// samples except the output directory.
func (r *Runner) runSample(n int) (*metrics.Metrics, *SampleError) {
	cfg := r.Config
	fail := func(k Kind, err error) *SampleError {
		return &SampleError{Index: n, Kind: k, Err: err}
	}

	log.Printf("Sample %d: loading tables.", n)
	bodies, halfLength, err := io.ReadBodies(
		io.BodiesPath(cfg.Input, n), cfg.TableScale,
	)
	if err != nil {
		return nil, fail(KindInput, err)
	}
	throats, err := io.ReadThroats(
		io.ThroatsPath(cfg.Input, n), cfg.TableScale,
	)
	if err != nil {
		return nil, fail(KindInput, err)
	}

	log.Printf("Sample %d: building flow domain.", n)
	domain, err := geom.Build(bodies, throats, halfLength, cfg.ScaleFactor)
	if err != nil {
		return nil, fail(KindGeometry, err)
	}

	log.Printf("Sample %d: meshing.", n)
	tol := domain.Span / float64(cfg.MeshCells)
	flowMesh, err := r.Mesher.Mesh(domain.Solid, domain.Classify(tol))
	if err != nil {
		return nil, fail(KindGeometry, err)
	}
	// The bare extension boxes are meshed on their own as the boundary
	// feature container; only their surface area is consumed.
	boxMesh, err := r.Mesher.Mesh(domain.Box, nil)
	if err != nil {
		return nil, fail(KindGeometry, err)
	}

	log.Printf("Sample %d: configuring physics.", n)
	c, err := flow.Configure(flowMesh, flow.Config{
		Fluid: flow.Fluid{
			Density: cfg.Density, Viscosity: cfg.Viscosity,
		},
		DrivingPressure: cfg.DrivingPressure,
		Model:           flow.DefaultModel(),
	})
	if err != nil {
		return nil, fail(KindConfiguration, err)
	}

	log.Printf("Sample %d: solving.", n)
	fields, err := r.Solver.Solve(c)
	if err != nil {
		return nil, fail(KindSolver, err)
	}

	m := metrics.Compute(flowMesh, boxMesh, fields, domain.HalfLength,
		metrics.Physical{
			Density:                  cfg.Density,
			Viscosity:                cfg.Viscosity,
			MillidarcyPerSquareMeter: cfg.MillidarcyPerSquareMeter,
		},
	)

	if err := io.WriteRow(cfg.Output, n, m); err != nil {
		return nil, fail(KindExport, err)
	}

	if cfg.PlotDir != "" {
		// Plot trouble shouldn't undo an exported sample.
		if err := writeResidualPlot(cfg.PlotDir, n, fields.History); err != nil {
			log.Printf("Sample %d: residual plot failed: %v", n, err)
		}
	}
	return m, nil
}
