package field

import (
	"math"
	"sync"

	"github.com/wildstyl3r/rzpic/internal/constants"
	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/utils"
	"gonum.org/v1/gonum/floats"
)

// Solver relaxes the axisymmetric Poisson equation
//
//	d2phi/dr2 + (1/r) dphi/dr + d2phi/dz2 = -(rho_i - rho_e) / eps0
//
// with Boltzmann electrons rho_e = e n0 exp((phi - phi0) / kTe) by a bounded
// number of Jacobi sweeps. The electron term of every sweep is evaluated on
// the previous iterate. Conductor nodes keep their fixed potential; the four
// grid faces are zero-gradient.
type Solver struct {
	Grid  *mesh.Grid
	Cells *mesh.CellTypes

	ElectronTemperature float64 // [eV]
	ReferencePotential  float64 // [V]

	Threads int
	// Monitor, if set, receives the largest potential change of every sweep.
	Monitor func(iteration int, residual float64)

	rhs        *mesh.Field
	next       *mesh.Field
	rows       [][2]int
	rowThreads int
}

func NewSolver(g *mesh.Grid, cells *mesh.CellTypes, kTe, phi0 float64, threads int) *Solver {
	return &Solver{
		Grid:                g,
		Cells:               cells,
		ElectronTemperature: kTe,
		ReferencePotential:  phi0,
		Threads:             threads,
		rhs:                 g.NewField(),
		next:                g.NewField(),
	}
}

// Solve runs iterations sweeps on phi in place, with ion charge density rhoI
// and electron reference density n0.
func (s *Solver) Solve(phi, rhoI *mesh.Field, n0 float64, iterations int) {
	if threads := max(s.Threads, 1); s.rows == nil || s.rowThreads != threads {
		s.rows = utils.Chunks(s.Grid.NZ-2, threads)
		s.rowThreads = threads
	}
	for it := range iterations {
		s.electronTerm(phi, rhoI, n0)
		s.next.CopyFrom(phi)
		if len(s.rows) > 1 {
			var wg sync.WaitGroup
			for _, rows := range s.rows {
				wg.Add(1)
				go func(from, to int) {
					defer wg.Done()
					s.sweep(phi, from+1, to+1)
				}(rows[0], rows[1])
			}
			wg.Wait()
		} else {
			s.sweep(phi, 1, s.Grid.NZ-1)
		}
		s.neumann()
		s.Cells.ApplyTo(s.next)
		if s.Monitor != nil {
			s.Monitor(it, floats.Distance(s.next.Data, phi.Data, math.Inf(1)))
		}
		phi.CopyFrom(s.next)
	}
}

func (s *Solver) electronTerm(phi, rhoI *mesh.Field, n0 float64) {
	for k, kind := range s.Cells.Kind {
		if kind > mesh.Free {
			s.rhs.Data[k] = 0
			continue
		}
		rhoE := constants.ElectronCharge * n0 * math.Exp((phi.Data[k]-s.ReferencePotential)/s.ElectronTemperature)
		s.rhs.Data[k] = (rhoI.Data[k] - rhoE) / constants.FreeSpacePermittivityE0
	}
}

// sweep updates the free interior nodes of rows [from, to). The axis row j = 0
// is never swept: it is filled from j = 1 by the symmetry condition, so the
// 1/r term is only evaluated at r > 0.
func (s *Solver) sweep(phi *mesh.Field, from, to int) {
	g := s.Grid
	nr := g.NR
	dz2, dr2 := g.DZ*g.DZ, g.DR*g.DR
	denominator := 2/dr2 + 2/dz2
	p, b, out := phi.Data, s.rhs.Data, s.next.Data
	for i := from; i < to; i++ {
		for j := 1; j < nr-1; j++ {
			k := i*nr + j
			if s.Cells.Kind[k] > mesh.Free {
				continue
			}
			r := g.Radius(float64(j))
			v := (b[k] +
				(p[k+1]+p[k-1])/dr2 +
				(p[k+1]-p[k-1])/(2*g.DR*r) +
				(p[k-nr]+p[k+nr])/dz2) / denominator
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			out[k] = v
		}
	}
}

// neumann copies the adjacent row or column onto each face in the order
// left, right, top, axis.
func (s *Solver) neumann() {
	f := s.next
	nz, nr := f.NZ, f.NR
	copy(f.Row(0), f.Row(1))
	copy(f.Row(nz-1), f.Row(nz-2))
	for i := range nz {
		f.Set(i, nr-1, f.At(i, nr-2))
	}
	for i := range nz {
		f.Set(i, 0, f.At(i, 1))
	}
}

// Residual returns the largest change a single sweep would apply to phi
// without modifying it.
func (s *Solver) Residual(phi, rhoI *mesh.Field, n0 float64) float64 {
	s.electronTerm(phi, rhoI, n0)
	s.next.CopyFrom(phi)
	s.sweep(phi, 1, s.Grid.NZ-1)
	s.neumann()
	s.Cells.ApplyTo(s.next)
	return floats.Distance(s.next.Data, phi.Data, math.Inf(1))
}
