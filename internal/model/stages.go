package model

import "github.com/wildstyl3r/rzpic/internal/particle"

// Stage is one operation of a time step. Stages run in order and each sees
// the complete result of the previous one.
type Stage func(m *Model) error

// Inject creates the macro-ions produced by electron impact ionization.
func Inject() Stage {
	return func(m *Model) error {
		p := &m.Parameters
		dni := particle.ProductionPerStep(m.RateCoefficient, p.ElectronDensity, p.NeutralDensity, p.TimeStep)
		m.Injected = m.source.Inject(m.Particles, dni, p.SpecificWeight)
		m.TotalInjected += m.Injected
		return nil
	}
}

// Push advances all particles in the current electric field.
func Push() Stage {
	return func(m *Model) error {
		m.MaxZVel = m.mover.Push(m.Particles, m.Efz, m.Efr)
		return nil
	}
}

// Deposit removes lost particles and recomputes ion density.
func Deposit() Stage {
	return func(m *Model) error {
		m.Removed = m.depositor.Deposit(m.Particles, m.Den, m.Rho)
		m.TotalRemoved += m.Removed
		return nil
	}
}

// Solve relaxes the potential with the per-step iteration budget.
func Solve() Stage {
	return func(m *Model) error {
		m.solve(m.Parameters.SolverIterations)
		return nil
	}
}

func Differentiate() Stage {
	return func(m *Model) error {
		m.differentiator.Compute(m.Phi, m.Efz, m.Efr)
		return nil
	}
}

// UpdateReferenceDensity closes the electron model on the peak ion density;
// it takes effect in the next field solve.
func UpdateReferenceDensity() Stage {
	return func(m *Model) error {
		m.ReferenceDensity = m.Den.Max()
		return nil
	}
}
