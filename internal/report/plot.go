package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

// NewPlot draws the macro F1 of every valid fold as a bar with the mean as a
// horizontal line.
func NewPlot(rep *multilabel.AggregateReport) (*plot.Plot, error) {
	if rep.ValidFolds() == 0 {
		return nil, errors.NewValueError("report.NewPlot", "no valid folds to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Macro F1 per fold (%s)", rep.Splitter)
	p.Y.Label.Text = "macro F1"
	p.Y.Min = 0
	p.Y.Max = 1

	values := make(plotter.Values, len(rep.FoldReports))
	names := make([]string, len(rep.FoldReports))
	for i, f := range rep.FoldReports {
		values[i] = f.MacroF1()
		names[i] = fmt.Sprintf("fold %d", f.Fold())
	}

	bars, err := plotter.NewBarChart(values, vg.Points(24))
	if err != nil {
		return nil, errors.Wrap(err, "bar chart")
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 70, G: 110, B: 170, A: 255}
	p.Add(bars)

	mean := rep.MeanMacroF1
	line := plotter.NewFunction(func(float64) float64 { return mean })
	line.Color = color.RGBA{R: 200, G: 60, B: 50, A: 255}
	line.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(line)
	p.Legend.Add(fmt.Sprintf("mean %.3f ± %.3f", rep.MeanMacroF1, rep.StdMacroF1), line)
	p.Legend.Top = true

	p.Add(plotter.NewGrid())
	p.NominalX(names...)
	return p, nil
}

// SavePlot writes the chart to path. The image format follows the file
// extension (png, svg, pdf, ...).
func SavePlot(path string, rep *multilabel.AggregateReport) error {
	p, err := NewPlot(rep)
	if err != nil {
		return err
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
