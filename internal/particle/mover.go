package particle

import (
	"math"
	"sync"

	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

type Mover struct {
	Grid         *mesh.Grid
	ChargeToMass float64 // [C kg^-1]
	TimeStep     float64 // [s]
	Threads      int
}

// Push advances every particle by one time step in the field (efz, efr) and
// returns the largest axial velocity, never below zero.
func (m Mover) Push(pop *Population, efz, efr *mesh.Field) float64 {
	chunks := utils.Chunks(pop.Len(), max(m.Threads, 1))
	if len(chunks) <= 1 {
		return m.push(pop.Particles, efz, efr)
	}
	maxima := make([]float64, len(chunks))
	var wg sync.WaitGroup
	for c, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			maxima[c] = m.push(pop.Particles[chunk[0]:chunk[1]], efz, efr)
		}()
	}
	wg.Wait()
	return maxima[utils.Argmax(maxima)]
}

func (m Mover) push(particles []Particle, efz, efr *mesh.Field) (maxZVel float64) {
	qmdt := m.ChargeToMass * m.TimeStep
	for k := range particles {
		p := &particles[k]
		var ez, er float64
		li, lj := m.Grid.ToLogical(p.Pos[0], p.Pos[1])
		if m.inside(li, lj) {
			ez, er = efz.Gather(li, lj), efr.Gather(li, lj)
		}
		p.Vel[0] += qmdt * ez
		p.Vel[1] += qmdt * er
		for dim := range 3 {
			p.Pos[dim] += p.Vel[dim] * m.TimeStep
		}
		maxZVel = max(maxZVel, p.Vel[0])
		Rotate(p)
	}
	return
}

// inside reports whether the field can be gathered at (li, lj); outside the
// grid the particle drifts freely until it is removed by deposition.
func (m Mover) inside(li, lj float64) bool {
	return li >= 0 && li < float64(m.Grid.NZ-1) && lj >= 0 && lj < float64(m.Grid.NR-1)
}

// Rotate folds the particle back onto the r-z half-plane and turns its
// transverse velocity by the same angle. cos keeps the sign of Pos[1], so a
// particle that crossed the axis during the step has its radial velocity
// reversed along with its position.
func Rotate(p *Particle) {
	r := math.Hypot(p.Pos[1], p.Pos[2])
	sin, cos := 0., 1.
	if r > 0 {
		sin, cos = p.Pos[2]/r, p.Pos[1]/r
	}
	p.Pos[1], p.Pos[2] = r, 0

	u, v := p.Vel[1], p.Vel[2]
	p.Vel[1] = cos*u + sin*v
	p.Vel[2] = -sin*u + cos*v
}
