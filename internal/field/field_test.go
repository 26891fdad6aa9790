package field

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildstyl3r/rzpic/internal/constants"
	"github.com/wildstyl3r/rzpic/internal/geometry"
	"github.com/wildstyl3r/rzpic/internal/mesh"
)

func grid(t *testing.T, nz, nr int) *mesh.Grid {
	t.Helper()
	g, err := mesh.NewGrid(nz, nr, 1e-3, 1e-3)
	require.NoError(t, err)
	return g
}

func TestStencilExactForQuadratic(t *testing.T) {
	g := grid(t, 10, 9)
	const a = 1e6
	phi, rhoI := g.NewField(), g.NewField()
	for i := range g.NZ {
		for j := range g.NR {
			z, r := g.ToPhysical(float64(i), float64(j))
			phi.Set(i, j, a*(r*r+z*z))
		}
	}
	// laplacian of a(r^2 + z^2) in cylindrical coordinates is 6a
	rhoI.Fill(-6 * a * constants.FreeSpacePermittivityE0)
	want := phi.Copy()

	s := NewSolver(g, mesh.NewCellTypes(g.NZ, g.NR), 5, 0, 1)
	s.Solve(phi, rhoI, 0, 1)
	for i := 1; i < g.NZ-1; i++ {
		for j := 1; j < g.NR-1; j++ {
			assert.InDelta(t, want.At(i, j), phi.At(i, j), 1e-9, "(%d,%d)", i, j)
		}
	}
	// faces follow the neighbouring row or column
	for j := range g.NR {
		assert.Equal(t, phi.At(1, j), phi.At(0, j))
	}
	for i := range g.NZ {
		assert.Equal(t, phi.At(i, 1), phi.At(i, 0))
	}
}

func TestConductorsKeepPotential(t *testing.T) {
	g := grid(t, 35, 12)
	cells := geometry.NewSugarCube(g, 100, 0).CellTypes(g)
	phi, rhoI := g.NewField(), g.NewField()
	for k := range rhoI.Data {
		rhoI.Data[k] = 1e-7 * float64(k%7)
	}
	cells.ApplyTo(phi)
	s := NewSolver(g, cells, 5, 100, 1)
	for _, iterations := range []int{1, 3, 50} {
		s.Solve(phi, rhoI, 1e12, iterations)
		for k, kind := range cells.Kind {
			if kind > mesh.Free {
				assert.Equal(t, cells.Potential[k], phi.Data[k])
			}
		}
	}
}

func TestSolverParallelMatchesSequential(t *testing.T) {
	g := grid(t, 35, 12)
	cells := geometry.NewSugarCube(g, 100, 0).CellTypes(g)
	sequential, parallel, rhoI := g.NewField(), g.NewField(), g.NewField()
	rhoI.Fill(2e-8)
	cells.ApplyTo(sequential)
	cells.ApplyTo(parallel)

	NewSolver(g, cells, 5, 100, 1).Solve(sequential, rhoI, 1e12, 200)
	NewSolver(g, cells, 5, 100, 4).Solve(parallel, rhoI, 1e12, 200)
	assert.Equal(t, sequential.Data, parallel.Data)
}

func TestSolverFollowsThreadChanges(t *testing.T) {
	g := grid(t, 35, 12)
	cells := geometry.NewSugarCube(g, 100, 0).CellTypes(g)
	sequential, changed, rhoI := g.NewField(), g.NewField(), g.NewField()
	rhoI.Fill(2e-8)
	cells.ApplyTo(sequential)
	cells.ApplyTo(changed)

	NewSolver(g, cells, 5, 100, 1).Solve(sequential, rhoI, 1e12, 100)

	s := NewSolver(g, cells, 5, 100, 1)
	s.Solve(changed, rhoI, 1e12, 50)
	require.Len(t, s.rows, 1)
	s.Threads = 4
	s.Solve(changed, rhoI, 1e12, 50)
	assert.Len(t, s.rows, 4)
	assert.Equal(t, sequential.Data, changed.Data)

	s.Threads = 0
	s.Solve(changed, rhoI, 1e12, 0)
	assert.Len(t, s.rows, 1)
}

func TestMonitorAndNonFiniteSource(t *testing.T) {
	g := grid(t, 20, 10)
	cells := mesh.NewCellTypes(g.NZ, g.NR)
	cells.SetConductor(5, 3, 1, 100)
	cells.SetConductor(15, 6, 2, 0)
	phi, rhoI := g.NewField(), g.NewField()
	rhoI.Set(10, 5, math.NaN())

	var residuals []float64
	s := NewSolver(g, cells, 5, 100, 2)
	s.Monitor = func(iteration int, residual float64) {
		assert.Equal(t, len(residuals), iteration)
		residuals = append(residuals, residual)
	}
	s.Solve(phi, rhoI, 0, 500)
	require.Len(t, residuals, 500)
	assert.Less(t, residuals[499], residuals[0])
	for _, v := range phi.Data {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
	}
	assert.InDelta(t, residuals[499], s.Residual(phi, rhoI, 0), residuals[0])
}

func TestDifferentiatorLinearPotential(t *testing.T) {
	g := grid(t, 7, 5)
	phi, efz, efr := g.NewField(), g.NewField(), g.NewField()
	for i := range g.NZ {
		for j := range g.NR {
			z, r := g.ToPhysical(float64(i), float64(j))
			phi.Set(i, j, 10+2000*z-500*r)
		}
	}
	efz.Fill(math.NaN())
	efr.Fill(1e30)
	Differentiator{Grid: g}.Compute(phi, efz, efr)
	for k := range phi.Data {
		assert.InDelta(t, -2000., efz.Data[k], 1e-6)
		assert.InDelta(t, 500., efr.Data[k], 1e-6)
	}
}
