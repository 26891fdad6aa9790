package particle

import (
	"math"
	"sync"

	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

// Depositor turns the particle population into number and charge density.
type Depositor struct {
	Grid           *mesh.Grid
	Cells          *mesh.CellTypes
	SpecificWeight float64
	Charge         float64 // [C]
	Threads        int

	buffers []*mesh.Field
}

// Deposit removes lost particles, then computes the number density den and
// the charge density rho. It returns the number of particles removed.
func (d *Depositor) Deposit(pop *Population, den, rho *mesh.Field) int {
	removed := d.Compact(pop)
	d.Scatter(pop, den)
	volume := d.Grid.NodeVolumes()
	for k := range den.Data {
		if volume.Data[k] > 0 {
			den.Data[k] /= volume.Data[k]
		} else {
			den.Data[k] = 0
		}
		rho.Data[k] = d.Charge * den.Data[k]
	}
	return removed
}

// Compact removes every particle that left the grid, reached a conductor or
// has a non-finite position.
func (d *Depositor) Compact(pop *Population) int {
	removed := 0
	for k := 0; k < pop.Len(); {
		if d.lost(&pop.Particles[k]) {
			pop.Remove(k)
			removed++
			continue
		}
		k++
	}
	return removed
}

func (d *Depositor) lost(p *Particle) bool {
	li, lj := d.Grid.ToLogical(p.Pos[0], p.Pos[1])
	if math.IsNaN(li) || math.IsNaN(lj) || math.IsInf(li, 0) || math.IsInf(lj, 0) {
		return true
	}
	fi, fj := math.Floor(li), math.Floor(lj)
	if fi < 0 || fi >= float64(d.Grid.NZ-1) || fj < 0 || fj >= float64(d.Grid.NR-1) {
		return true
	}
	return d.Cells.IsConductor(int(fi), int(fj))
}

// Scatter clears den and accumulates SpecificWeight per particle into it.
// Particles must already be compacted.
func (d *Depositor) Scatter(pop *Population, den *mesh.Field) {
	den.Clear()
	chunks := utils.Chunks(pop.Len(), max(d.Threads, 1))
	if len(chunks) <= 1 {
		d.scatter(pop.Particles, den)
		return
	}
	for len(d.buffers) < len(chunks) {
		d.buffers = append(d.buffers, d.Grid.NewField())
	}
	var wg sync.WaitGroup
	for c, chunk := range chunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.buffers[c].Clear()
			d.scatter(pop.Particles[chunk[0]:chunk[1]], d.buffers[c])
		}()
	}
	wg.Wait()
	for c := range chunks {
		den.Merge(d.buffers[c])
	}
}

func (d *Depositor) scatter(particles []Particle, den *mesh.Field) {
	for k := range particles {
		li, lj := d.Grid.ToLogical(particles[k].Pos[0], particles[k].Pos[1])
		den.Scatter(li, lj, d.SpecificWeight)
	}
}
