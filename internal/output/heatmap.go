package output

import (
	"errors"
	"fmt"
	"math"

	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/model"
	"github.com/wildstyl3r/rzpic/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// NodeGrid exposes a node field as a plotter.GridXYZ with z along columns
// and r along rows.
type NodeGrid struct {
	Grid      *mesh.Grid
	Field     *mesh.Field
	Transform func(float64) float64
}

func (g NodeGrid) Dims() (c, r int) { return g.Grid.NZ, g.Grid.NR }
func (g NodeGrid) X(c int) float64  { return float64(c) * g.Grid.DZ }
func (g NodeGrid) Y(r int) float64  { return float64(r) * g.Grid.DR }
func (g NodeGrid) Z(c, r int) float64 {
	v := g.Field.At(c, r)
	if g.Transform != nil {
		return g.Transform(v)
	}
	return v
}

// Heatmaps renders the density and potential of every report as PNG files.
type Heatmaps struct {
	OutputPath   string
	MakeDir      bool
	Width        vg.Length
	Height       vg.Length
	DensityFloor float64 // [m^-3]
}

func NewHeatmaps(outputPath string, makeDir bool) *Heatmaps {
	return &Heatmaps{
		OutputPath:   outputPath,
		MakeDir:      makeDir,
		Width:        16 * vg.Centimeter,
		Height:       8 * vg.Centimeter,
		DensityFloor: 1e4,
	}
}

func (h *Heatmaps) Report(s *model.Snapshot) error {
	name := fmt.Sprintf("%s_%06d", s.Model, s.Step)
	den := NodeGrid{Grid: s.Grid, Field: s.Density, Transform: func(v float64) float64 {
		return math.Log10(math.Max(v, h.DensityFloor))
	}}
	phi := NodeGrid{Grid: s.Grid, Field: s.Potential}
	return errors.Join(
		h.write(name, "den", fmt.Sprintf("log10 n (m^-3), step %d", s.Step), den),
		h.write(name, "phi", fmt.Sprintf("phi (V), step %d", s.Step), phi),
	)
}

func (h *Heatmaps) write(name, suffix, title string, data NodeGrid) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "z (m)"
	p.Y.Label.Text = "r (m)"

	hm := plotter.NewHeatMap(data, moreland.Kindlmann().Palette(255))
	if hm.Max <= hm.Min {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)

	c := vgimg.New(h.Width, h.Height)
	p.Draw(draw.New(c))

	file, err := utils.OpenFile(h.MakeDir, h.OutputPath, suffix, name, ".png")
	if err != nil {
		return fmt.Errorf("cannot create %s heatmap: %w", suffix, err)
	}
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(file); err != nil {
		file.Close()
		return fmt.Errorf("cannot write png: %w", err)
	}
	return file.Close()
}
