package particle

import (
	"math"

	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

// Region is a half-open block of cells [IMin, IMax) x [JMin, JMax); cell (i, j)
// spans nodes i..i+1 and j..j+1.
type Region struct {
	IMin, IMax int
	JMin, JMax int
}

// RegionOf returns the cells whose lower corner lies within the physical
// bounds, clipped to the grid.
func RegionOf(g *mesh.Grid, zmin, zmax, rmin, rmax float64) Region {
	const eps = 1e-9
	imin, jmin := g.ToLogical(zmin, rmin)
	imax, jmax := g.ToLogical(zmax, rmax)
	return Region{
		IMin: utils.Clamp(int(math.Ceil(imin-eps)), 0, g.NZ-1),
		IMax: utils.Clamp(int(math.Ceil(imax-eps)), 0, g.NZ-1),
		JMin: utils.Clamp(int(math.Ceil(jmin-eps)), 0, g.NR-1),
		JMax: utils.Clamp(int(math.Ceil(jmax-eps)), 0, g.NR-1),
	}
}

func (r Region) Cells() int {
	return max(r.IMax-r.IMin, 0) * max(r.JMax-r.JMin, 0)
}

// Source creates macro-ions in the free cells of a region. Expected counts
// below one are carried over between steps in a per-cell remainder.
type Source struct {
	Grid            *mesh.Grid
	Cells           *mesh.CellTypes
	Region          Region
	ThermalVelocity float64 // [m s^-1]
	Rand            Rand

	remainder *mesh.Field
}

func NewSource(g *mesh.Grid, cells *mesh.CellTypes, region Region, vth float64, rng Rand) *Source {
	return &Source{
		Grid:            g,
		Cells:           cells,
		Region:          region,
		ThermalVelocity: vth,
		Rand:            rng,
		remainder:       g.NewField(),
	}
}

// Inject appends the particles produced in one step by dni ion pairs per
// unit volume, each macro-ion standing for spwt ions. It returns the number
// of particles created.
func (s *Source) Inject(pop *Population, dni, spwt float64) int {
	created := 0
	volume := s.Grid.NodeVolumes()
	for i := s.Region.IMin; i < s.Region.IMax; i++ {
		for j := s.Region.JMin; j < s.Region.JMax; j++ {
			if s.Cells.IsConductor(i, j) {
				continue
			}
			cellVolume := volume.Gather(float64(i)+0.5, float64(j)+0.5)
			expected := dni*cellVolume/spwt + s.remainder.At(i, j)
			n := max(int(math.Trunc(expected+s.Rand.Float64())), 0)
			s.remainder.Set(i, j, expected-float64(n))
			for range n {
				z, r := s.Grid.ToPhysical(float64(i)+s.Rand.Float64(), float64(j)+s.Rand.Float64())
				pop.Add(Particle{
					Pos: [3]float64{z, r, 0},
					Vel: IsotropicVelocity(s.Rand, s.ThermalVelocity),
				})
			}
			created += n
		}
	}
	return created
}

// Remainder returns the fractional production carried by cell (i, j).
func (s *Source) Remainder(i, j int) float64 {
	return s.remainder.At(i, j)
}

// IsotropicVelocity draws a direction uniformly on the unit sphere and a
// speed from a sum of three uniforms approximating a Maxwellian at vth.
func IsotropicVelocity(rng Rand, vth float64) [3]float64 {
	theta := 2 * math.Pi * rng.Float64()
	R := -1 + 2*rng.Float64()
	a := math.Sqrt(1 - R*R)
	n := [3]float64{math.Cos(theta) * a, math.Sin(theta) * a, R}

	vm := math.Sqrt2 * vth * 2 * (rng.Float64() + rng.Float64() + rng.Float64() - 1.5)
	return [3]float64{n[0] * vm, n[1] * vm, n[2] * vm}
}
