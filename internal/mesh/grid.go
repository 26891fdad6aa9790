package mesh

import (
	"math"

	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

// Grid is a uniform RZ mesh of NZ axial by NR radial nodes. Node (i, j) sits
// at z = i*DZ, r = j*DR; j = 0 is the symmetry axis.
type Grid struct {
	NZ int
	NR int
	DZ float64
	DR float64

	nodeVolume *Field
}

func NewGrid(nz, nr int, dz, dr float64) (*Grid, error) {
	switch {
	case nz < 2:
		return nil, &config.Error{Field: "NZ", Reason: "at least 2 nodes required"}
	case nr < 2:
		return nil, &config.Error{Field: "NR", Reason: "at least 2 nodes required"}
	case !(dz > 0) || math.IsInf(dz, 0):
		return nil, &config.Error{Field: "DZ", Reason: "spacing must be positive"}
	case !(dr > 0) || math.IsInf(dr, 0):
		return nil, &config.Error{Field: "DR", Reason: "spacing must be positive"}
	}
	g := &Grid{NZ: nz, NR: nr, DZ: dz, DR: dr}
	g.nodeVolume = g.computeNodeVolumes()
	return g, nil
}

func (g *Grid) NewField() *Field {
	return NewField(g.NZ, g.NR)
}

// ToLogical maps a physical position to fractional node indices.
func (g *Grid) ToLogical(z, r float64) (li, lj float64) {
	return z / g.DZ, r / g.DR
}

// ToPhysical is the inverse of ToLogical.
func (g *Grid) ToPhysical(li, lj float64) (z, r float64) {
	return li * g.DZ, lj * g.DR
}

// Radius of a (possibly fractional) radial index.
func (g *Grid) Radius(j float64) float64 {
	return j * g.DR
}

func (g *Grid) Length() float64 {
	return float64(g.NZ-1) * g.DZ
}

func (g *Grid) OuterRadius() float64 {
	return float64(g.NR-1) * g.DR
}

// Volume of the cylinder covered by the grid.
func (g *Grid) Volume() float64 {
	r := g.OuterRadius()
	return math.Pi * r * r * g.Length()
}

// NodeVolumes returns the volume represented by every node. The table is
// shared and must not be modified.
func (g *Grid) NodeVolumes() *Field {
	return g.nodeVolume
}

// computeNodeVolumes splits the domain into cylindrical shells between the
// half-index neighbours of every node; shells are clipped at the domain edges
// so the volumes sum to Volume.
func (g *Grid) computeNodeVolumes() *Field {
	volume := g.NewField()
	for i := range g.NZ {
		a := 1.
		if i == 0 || i == g.NZ-1 {
			a = 0.5
		}
		for j := range g.NR {
			jmin := utils.Clamp(float64(j)-0.5, 0, float64(g.NR-1))
			jmax := utils.Clamp(float64(j)+0.5, 0, float64(g.NR-1))
			rmin, rmax := g.Radius(jmin), g.Radius(jmax)
			volume.Set(i, j, a*g.DZ*math.Pi*(rmax*rmax-rmin*rmin))
		}
	}
	return volume
}
