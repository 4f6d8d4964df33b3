package batch

import (
	"fmt"
	"os"
	"path/filepath"

	plt "github.com/phil-mansfield/pyplot"

	"github.com/porelab/poreflow/flow"
)

// writeResidualPlot renders the per-iteration residual history of one
// sample to <dir>/residuals_<n>.png. It stands in for the monitor plots
// an interactive solver session would show.
func writeResidualPlot(dir string, n int, hist []flow.Residuals) error {
	if len(hist) == 0 {
		return fmt.Errorf("no residual history for sample %d", n)
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}

	steps := make([]float64, len(hist))
	cont := make([]float64, len(hist))
	xm := make([]float64, len(hist))
	ym := make([]float64, len(hist))
	zm := make([]float64, len(hist))
	for i, r := range hist {
		steps[i] = float64(i + 1)
		cont[i] = r.Continuity
		xm[i] = r.XMomentum
		ym[i] = r.YMomentum
		zm[i] = r.ZMomentum
	}

	plt.Figure()
	plt.Plot(steps, cont, "k", plt.LW(2))
	plt.Plot(steps, xm, plt.C("r"))
	plt.Plot(steps, ym, plt.C("g"))
	plt.Plot(steps, zm, plt.C("b"))
	plt.YScale("log")
	plt.XLabel("Iteration")
	plt.YLabel("Residual")
	plt.Title(fmt.Sprintf("Sample %d residuals", n))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(filepath.Join(dir, fmt.Sprintf("residuals_%d.png", n)))
	plt.Execute()

	return nil
}
