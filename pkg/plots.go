package tools

import (
	"fmt"
	"path/filepath"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
)

// PlotSet collects the publication histograms filled while the tree
// maker runs: the NCV PMT #1 charge spectrum and the coincidence time
// difference between the two NCV PMTs.
type PlotSet struct {
	ncvCharge     *hbook.H1D
	coincidenceDT *hbook.H1D
	coincidences  int
}

func NewPlotSet(coincidenceTolerance int64) *PlotSet {
	tol := float64(coincidenceTolerance)
	return &PlotSet{
		ncvCharge:     hbook.NewH1D(100, 0, 2),
		coincidenceDT: hbook.NewH1D(80, -tol, tol),
	}
}

func (p *PlotSet) FillCoincidence(charge float64, deltaT int64) {
	p.ncvCharge.Fill(charge, 1)
	p.coincidenceDT.Fill(float64(deltaT), 1)
	p.coincidences++
}

func (p *PlotSet) Coincidences() int {
	return p.coincidences
}

// Save renders both histograms as PDFs into dir.
func (p *PlotSet) Save(dir string) error {
	charge := hplot.New()
	charge.Title.Text = "NCV PMT 1 charge"
	charge.Title.Padding = 2 * vg.Millimeter
	charge.X.Label.Text = "charge {nC}"
	charge.Y.Label.Text = "count"
	charge.Add(hplot.NewH1D(p.ncvCharge))
	if err := charge.Save(15*vg.Centimeter, 10*vg.Centimeter, filepath.Join(dir, "ncv_charge.pdf")); err != nil {
		return fmt.Errorf("error saving charge plot: %w", err)
	}

	deltaT := hplot.New()
	deltaT.Title.Text = "NCV coincidence time difference"
	deltaT.Title.Padding = 2 * vg.Millimeter
	deltaT.X.Label.Text = "t_ncv2 - t_ncv1 {ns}"
	deltaT.Y.Label.Text = "count"
	deltaT.Add(hplot.NewH1D(p.coincidenceDT))
	if err := deltaT.Save(15*vg.Centimeter, 10*vg.Centimeter, filepath.Join(dir, "coincidence_dt.pdf")); err != nil {
		return fmt.Errorf("error saving coincidence plot: %w", err)
	}
	return nil
}
