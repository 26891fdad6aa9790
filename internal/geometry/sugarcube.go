package geometry

import "github.com/wildstyl3r/rzpic/internal/mesh"

const (
	InnerTube mesh.CellType = 1
	OuterTube mesh.CellType = 2
)

// SugarCube is an ion source made of two coaxial tubes. The inner tube is
// closed at z = 0, held at InnerPotential and ends in an aperture of radius
// InnerAperture; the slightly longer outer tube is held at OuterPotential.
// All lengths are in meters.
type SugarCube struct {
	InnerRadius   float64
	InnerLength   float64
	InnerAperture float64
	OuterRadius   float64
	OuterLength   float64
	OuterAperture float64

	InnerPotential float64
	OuterPotential float64
}

// NewSugarCube sizes the tubes on the grid spacing: a 6-cell inner tube 10 mm
// long with a 4-cell aperture inside a 7-cell outer tube with a 3-cell aperture
// two cells downstream.
func NewSugarCube(g *mesh.Grid, inner, outer float64) SugarCube {
	return SugarCube{
		InnerRadius:    6 * g.DR,
		InnerLength:    0.01,
		InnerAperture:  4 * g.DR,
		OuterRadius:    7 * g.DR,
		OuterLength:    0.01 + 2*g.DZ,
		OuterAperture:  3 * g.DR,
		InnerPotential: inner,
		OuterPotential: outer,
	}
}

func (s SugarCube) CellTypes(g *mesh.Grid) *mesh.CellTypes {
	cells := mesh.NewCellTypes(g.NZ, g.NR)
	l1, r1 := g.ToLogical(s.InnerLength, s.InnerRadius)
	_, a1 := g.ToLogical(0, s.InnerAperture)
	l2, r2 := g.ToLogical(s.OuterLength, s.OuterRadius)
	_, a2 := g.ToLogical(0, s.OuterAperture)
	for i := range g.NZ {
		z := float64(i)
		for j := range g.NR {
			r := float64(j)
			if (i == 0 && r < r1-eps) ||
				(z <= l1+eps && r >= r1-eps && r < r1+0.5-eps) ||
				(z >= l1-eps && z < l1+0.5-eps && r >= a1-eps && r < r1-eps) {
				cells.SetConductor(i, j, InnerTube, s.InnerPotential)
			}
			if (z <= l2+eps && r >= r2-eps && r < r2+0.5-eps) ||
				(z >= l2-eps && z <= l2+1.5+eps && r >= a2-eps && r <= r2+eps) {
				cells.SetConductor(i, j, OuterTube, s.OuterPotential)
			}
		}
	}
	return cells
}
