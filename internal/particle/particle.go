package particle

// Rand supplies uniform variates in [0, 1). *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Particle is a macro-ion. Pos and Vel hold (z, r, theta) components: after
// every push the particle is rotated back so that Pos[2] is zero and Pos[1]
// is its radius.
type Particle struct {
	Pos [3]float64
	Vel [3]float64
}

// Population is the set of live particles. Removal swaps with the last live
// particle, so order is not preserved.
type Population struct {
	Particles []Particle
}

func NewPopulation(capacity int) *Population {
	return &Population{Particles: make([]Particle, 0, capacity)}
}

func (p *Population) Len() int {
	return len(p.Particles)
}

func (p *Population) Add(particle Particle) {
	p.Particles = append(p.Particles, particle)
}

func (p *Population) Remove(k int) {
	last := len(p.Particles) - 1
	p.Particles[k] = p.Particles[last]
	p.Particles = p.Particles[:last]
}

func (p *Population) Clear() {
	p.Particles = p.Particles[:0]
}
