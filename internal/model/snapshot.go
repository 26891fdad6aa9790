package model

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/wildstyl3r/rzpic/internal/mesh"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

// Snapshot is a copy of the model state taken between steps. Reporters may
// keep it; the model never touches it again.
type Snapshot struct {
	Model     string
	Step      int
	Time      float64 // [s]
	Particles int
	Injected  int
	Removed   int

	PhiMin     float64
	PhiMax     float64
	MaxDensity float64
	MaxZVel    float64

	Grid      *mesh.Grid
	Cells     *mesh.CellTypes
	Density   *mesh.Field
	Potential *mesh.Field
}

func (m *Model) Snapshot() *Snapshot {
	return &Snapshot{
		Model:      m.Name,
		Step:       m.step,
		Time:       float64(m.step) * m.Parameters.TimeStep,
		Particles:  m.Particles.Len(),
		Injected:   m.Injected,
		Removed:    m.Removed,
		PhiMin:     m.Phi.Min(),
		PhiMax:     m.Phi.Max(),
		MaxDensity: m.Den.Max(),
		MaxZVel:    m.MaxZVel,
		Grid:       m.Grid,
		Cells:      m.Cells,
		Density:    m.Den.Copy(),
		Potential:  m.Phi.Copy(),
	}
}

// Reporter consumes snapshots every report interval.
type Reporter interface {
	Report(s *Snapshot) error
}

type ReporterFunc func(s *Snapshot) error

func (f ReporterFunc) Report(s *Snapshot) error {
	return f(s)
}

// LogReporter writes one line of diagnostics per report.
type LogReporter struct {
	Log logrus.FieldLogger
}

func (r LogReporter) Report(s *Snapshot) error {
	r.Log.WithFields(logrus.Fields{
		"model":     s.Model,
		"step":      s.Step,
		"particles": s.Particles,
		"phi_min":   s.PhiMin,
		"phi_max":   s.PhiMax,
		"max_den":   s.MaxDensity,
		"max_zvel":  s.MaxZVel,
	}).Info("report")
	return nil
}

// Record is the scalar part of a snapshot.
type Record struct {
	Step       int
	Time       float64
	Particles  int
	Injected   int
	Removed    int
	PhiMin     float64
	PhiMax     float64
	MaxDensity float64
	MaxZVel    float64
}

// History keeps the scalar diagnostics of every report and the last
// snapshot.
type History struct {
	mu      sync.Mutex
	records []Record
	last    *Snapshot
}

func (h *History) Report(s *Snapshot) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, Record{
		Step:       s.Step,
		Time:       s.Time,
		Particles:  s.Particles,
		Injected:   s.Injected,
		Removed:    s.Removed,
		PhiMin:     s.PhiMin,
		PhiMax:     s.PhiMax,
		MaxDensity: s.MaxDensity,
		MaxZVel:    s.MaxZVel,
	})
	h.last = s
	return nil
}

func (h *History) Records() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Record(nil), h.records...)
}

func (h *History) Last() *Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// MeanParticles is the live particle count averaged over all reports.
func (h *History) MeanParticles() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	counts := make([]int, len(h.records))
	for i, r := range h.records {
		counts[i] = r.Particles
	}
	return utils.Average(counts)
}
