package geometry

import (
	"fmt"

	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/mesh"
)

// Provider classifies the nodes of a grid into free space and conductors.
type Provider interface {
	CellTypes(g *mesh.Grid) *mesh.CellTypes
}

// tolerance in logical units for comparisons of node positions with
// physical boundaries
const eps = 1e-9

func New(p *config.ModelParameters, g *mesh.Grid) (Provider, error) {
	switch p.Geometry {
	case config.GeometrySugarCube:
		return NewSugarCube(g, p.ReferencePotential, p.WallPotential), nil
	case config.GeometryElectrodes:
		return Electrodes(p.Electrodes), nil
	}
	return nil, &config.Error{Field: "Geometry", Reason: fmt.Sprintf("unknown geometry %q", p.Geometry)}
}

// Electrodes places rectangular conductors; a node belongs to an electrode
// when its position lies within the closed rectangle. Later electrodes win.
type Electrodes []config.Electrode

func (e Electrodes) CellTypes(g *mesh.Grid) *mesh.CellTypes {
	cells := mesh.NewCellTypes(g.NZ, g.NR)
	for n, electrode := range e {
		zmin, rmin := g.ToLogical(electrode.ZMin, electrode.RMin)
		zmax, rmax := g.ToLogical(electrode.ZMax, electrode.RMax)
		for i := range g.NZ {
			li := float64(i)
			if li < zmin-eps || li > zmax+eps {
				continue
			}
			for j := range g.NR {
				lj := float64(j)
				if lj < rmin-eps || lj > rmax+eps {
					continue
				}
				cells.SetConductor(i, j, mesh.CellType(n+1), electrode.Potential)
			}
		}
	}
	return cells
}
