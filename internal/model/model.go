package model

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/constants"
	"github.com/wildstyl3r/rzpic/internal/field"
	"github.com/wildstyl3r/rzpic/internal/geometry"
	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/particle"
)

// ErrTerminated is returned by Step once the step budget is exhausted.
var ErrTerminated = errors.New("model: simulation terminated")

type State int

const (
	Initializing State = iota
	Solving
	Stepping
	Reporting
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Solving:
		return "solving"
	case Stepping:
		return "stepping"
	case Reporting:
		return "reporting"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Model owns the whole simulation state of one ion source: grid, fields and
// the particle population.
type Model struct {
	Name       string
	Parameters config.ModelParameters

	Grid  *mesh.Grid
	Cells *mesh.CellTypes

	Phi *mesh.Field // [V]
	Efz *mesh.Field // [V m^-1]
	Efr *mesh.Field // [V m^-1]
	Den *mesh.Field // [m^-3]
	Rho *mesh.Field // [C m^-3]

	Particles *particle.Population

	// RateCoefficient is the ionization rate coefficient in use [m^3 s^-1].
	RateCoefficient float64
	// ReferenceDensity is the electron density at ReferencePotential used by
	// the next field solve [m^-3].
	ReferenceDensity float64

	Injected int // created during the last step
	Removed  int // removed during the last step
	MaxZVel  float64

	TotalInjected int
	TotalRemoved  int

	solver         *field.Solver
	differentiator field.Differentiator
	mover          particle.Mover
	source         *particle.Source
	depositor      *particle.Depositor
	stages         []Stage
	reporters      []Reporter

	log   logrus.FieldLogger
	state State
	step  int
	iters int
}

// New builds the model from validated parameters. rng may be nil, in which
// case a source seeded by Parameters.Seed (or the clock when zero) is used.
func New(name string, p config.ModelParameters, log logrus.FieldLogger, rng particle.Rand, reporters ...Reporter) (*Model, error) {
	if err := p.Validate(name); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	g, err := mesh.NewGrid(p.NZ, p.NR, p.DZ, p.DR)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	provider, err := geometry.New(&p, g)
	if err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	if rng == nil {
		seed := p.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	m := &Model{
		Name:             name,
		Parameters:       p,
		Grid:             g,
		Cells:            provider.CellTypes(g),
		Phi:              g.NewField(),
		Efz:              g.NewField(),
		Efr:              g.NewField(),
		Den:              g.NewField(),
		Rho:              g.NewField(),
		Particles:        particle.NewPopulation(0),
		RateCoefficient:  p.RateCoefficient,
		ReferenceDensity: p.ReferenceDensity,
		reporters:        reporters,
		log:              log.WithField("model", name),
	}
	if cs := p.CrossSectionsData(); cs != nil {
		m.RateCoefficient = particle.CrossSectionRate(cs, p.ElectronTemperature)
	}

	m.solver = field.NewSolver(g, m.Cells, p.ElectronTemperature, p.ReferencePotential, p.Threads())
	if p.CheckResidual {
		m.solver.Monitor = func(iteration int, residual float64) {
			if iteration == m.iters-1 {
				m.log.WithFields(logrus.Fields{"step": m.step, "iterations": m.iters}).Debugf("solver residual %.3e V", residual)
			}
		}
	}
	m.differentiator = field.Differentiator{Grid: g}
	m.mover = particle.Mover{
		Grid:         g,
		ChargeToMass: p.ChargeToMass(),
		TimeStep:     p.TimeStep,
		Threads:      p.Threads(),
	}
	region := particle.RegionOf(g, p.InjectionZMin, p.InjectionZMax, p.InjectionRMin, p.InjectionRMax)
	m.source = particle.NewSource(g, m.Cells, region, p.ThermalVelocity, rng)
	m.depositor = &particle.Depositor{
		Grid:           g,
		Cells:          m.Cells,
		SpecificWeight: p.SpecificWeight,
		Charge:         p.IonCharge * constants.ElectronCharge,
		Threads:        p.Threads(),
	}
	m.stages = []Stage{Inject(), Push(), Deposit(), Solve(), Differentiate(), UpdateReferenceDensity()}
	return m, nil
}

func (m *Model) State() State {
	return m.state
}

// CurrentStep is the number of completed time steps.
func (m *Model) CurrentStep() int {
	return m.step
}

func (m *Model) setState(s State) {
	m.log.WithField("step", m.step).Debugf("%s -> %s", m.state, s)
	m.state = s
}

// Init solves the vacuum potential with the initial iteration budget.
func (m *Model) Init() error {
	if m.state != Initializing {
		return fmt.Errorf("model %s: init in state %s", m.Name, m.state)
	}
	p := &m.Parameters
	m.log.WithFields(logrus.Fields{
		"nodes":      p.NZ * p.NR,
		"conductors": m.Cells.Conductors(),
		"rate":       m.RateCoefficient,
	}).Debug("grid ready")
	debye := p.DebyeLength()
	m.log.Infof("Debye length is %.4g m, which is %.2g*dz", debye, debye/p.DZ)
	m.log.Infof("Expected ion speed is %.2f m/s", p.IonSpeed())

	m.setState(Solving)
	m.Cells.ApplyTo(m.Phi)
	m.solve(p.InitialSolverIterations)
	m.differentiator.Compute(m.Phi, m.Efz, m.Efr)
	m.log.WithFields(logrus.Fields{
		"phi_min": m.Phi.Min(),
		"phi_max": m.Phi.Max(),
	}).Info("initial potential solved")

	if p.Steps == 0 {
		m.setState(Terminated)
		return nil
	}
	m.setState(Stepping)
	return nil
}

func (m *Model) solve(iterations int) {
	m.iters = iterations
	m.solver.Solve(m.Phi, m.Rho, m.ReferenceDensity, iterations)
}

// Step advances the simulation by one time step, initializing it first if
// needed, and reports when the step count is a multiple of ReportInterval.
func (m *Model) Step() error {
	switch m.state {
	case Initializing:
		if err := m.Init(); err != nil {
			return err
		}
		if m.state == Terminated {
			return ErrTerminated
		}
	case Terminated:
		return ErrTerminated
	}

	for _, stage := range m.stages {
		if err := stage(m); err != nil {
			return fmt.Errorf("model %s: step %d: %w", m.Name, m.step, err)
		}
	}
	m.step++

	if m.step%m.Parameters.ReportInterval == 0 || m.step == m.Parameters.Steps {
		m.setState(Reporting)
		if err := m.report(); err != nil {
			return fmt.Errorf("model %s: report at step %d: %w", m.Name, m.step, err)
		}
	}
	if m.step >= m.Parameters.Steps {
		m.setState(Terminated)
	} else {
		m.setState(Stepping)
	}
	return nil
}

func (m *Model) report() error {
	if len(m.reporters) == 0 {
		return nil
	}
	snapshot := m.Snapshot()
	var errs []error
	for _, r := range m.reporters {
		errs = append(errs, r.Report(snapshot))
	}
	return errors.Join(errs...)
}

// Run steps the model until the step budget is exhausted. ctx is checked
// between steps only.
func (m *Model) Run(ctx context.Context) error {
	if m.state == Initializing {
		if err := m.Init(); err != nil {
			return err
		}
	}
	for m.state != Terminated {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("model %s: stopped at step %d: %w", m.Name, m.step, err)
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	m.log.WithFields(logrus.Fields{
		"steps":     m.step,
		"particles": m.Particles.Len(),
		"injected":  m.TotalInjected,
		"removed":   m.TotalRemoved,
	}).Info("simulation finished")
	return nil
}
