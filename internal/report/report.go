// Package report renders calibration diagnostics: a PNG of the fitted
// section radii per surface for quick inspection, and a self-contained
// HTML page with the same data for sharing.
package report

import (
	"fmt"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SaveProfilePlot writes a PNG of the radius matrix: one line per
// surface of fitted radius against section index, with a horizontal
// reference at the true phantom radius. NaN (unmeasurable) sections are
// left as gaps.
func SaveProfilePlot(path string, matrix [][]float64, trueRadius float64) error {
	p := plot.New()
	p.Title.Text = "Phantom section radii at converged coefficients"
	p.X.Label.Text = "section index"
	p.Y.Label.Text = "fitted radius"

	maxSections := 0
	for _, row := range matrix {
		if len(row) > maxSections {
			maxSections = len(row)
		}
	}
	ref := plotter.XYs{
		{X: 0, Y: trueRadius},
		{X: float64(maxSections - 1), Y: trueRadius},
	}
	refLine, err := plotter.NewLine(ref)
	if err != nil {
		return err
	}
	refLine.Width = vg.Points(2)
	refLine.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	p.Add(refLine)
	p.Legend.Add("true radius", refLine)

	for i, row := range matrix {
		pts := make(plotter.XYs, 0, len(row))
		for j, r := range row {
			if math.IsNaN(r) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(j), Y: r})
		}
		if len(pts) == 0 {
			continue
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(fmt.Sprintf("surface %d", i), line)
	}

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}

// SaveHTMLReport writes a standalone HTML page with a scatter of the
// fitted section radii per surface.
func SaveHTMLReport(path string, matrix [][]float64, trueRadius float64, subtitle string) error {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Phantom calibration", Width: "1100px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fitted section radii", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "section index"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "fitted radius", Scale: opts.Bool(true)}),
	)

	for i, row := range matrix {
		data := make([]opts.ScatterData, 0, len(row))
		for j, r := range row {
			if math.IsNaN(r) {
				continue
			}
			data = append(data, opts.ScatterData{Value: []interface{}{j, r}})
		}
		scatter.AddSeries(fmt.Sprintf("surface %d", i), data,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}

	// Reference line rendered as a dense series so it survives the
	// scatter-only chart type.
	maxSections := 0
	for _, row := range matrix {
		if len(row) > maxSections {
			maxSections = len(row)
		}
	}
	ref := make([]opts.ScatterData, maxSections)
	for j := range ref {
		ref[j] = opts.ScatterData{Value: []interface{}{j, trueRadius}, SymbolSize: 2}
	}
	scatter.AddSeries("true radius", ref)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scatter.Render(f)
}
