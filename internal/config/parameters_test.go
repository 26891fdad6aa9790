package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(name+".toml", []byte(body), 0600))
	return name
}

func load(t *testing.T, body, model string) (ModelParameters, error) {
	t.Helper()
	config, meta, err := LoadConfig(writeConfig(t, body))
	require.NoError(t, err)
	mp, ok := config.Models[model]
	require.True(t, ok, "model %q not found", model)
	err = mp.Unify(model, &config, &meta)
	return mp, err
}

func TestDefaultsAreValid(t *testing.T) {
	mp := Defaults()
	require.NoError(t, mp.Validate("default"))
	assert.Equal(t, 35, mp.NZ)
	assert.Equal(t, 12, mp.NR)
	assert.Equal(t, 5e-9, mp.TimeStep)
	assert.Equal(t, GeometrySugarCube, mp.Geometry)
}

func TestEmptyFileRunsDefaultModel(t *testing.T) {
	mp, err := load(t, "OutputDir = \"out/\"\n", DefaultModel)
	require.NoError(t, err)
	assert.Equal(t, Defaults().Steps, mp.Steps)
	assert.Equal(t, []string{"m", "s"}, mp.OutputUnits())
}

func TestModelOverridesGlobal(t *testing.T) {
	body := `
Steps = 50
NZ = 20

[Models.fine]
NZ = 70

[Models.coarse]
`
	fine, err := load(t, body, "fine")
	require.NoError(t, err)
	assert.Equal(t, 70, fine.NZ)
	assert.Equal(t, 50, fine.Steps)
	assert.Equal(t, 12, fine.NR)

	coarse, err := load(t, body, "coarse")
	require.NoError(t, err)
	assert.Equal(t, 20, coarse.NZ)
}

func TestUnitConversion(t *testing.T) {
	body := `
InputUnits = ["mm", "ns"]
DZ = 0.5
TimeStep = 2
InjectionZMax = 3
Geometry = "Electrodes"

[[Electrodes]]
ZMin = 0
ZMax = 1
RMin = 0
RMax = 2
Potential = 100
`
	mp, err := load(t, body, DefaultModel)
	require.NoError(t, err)
	assert.InDelta(t, 5e-4, mp.DZ, 1e-15)
	assert.InDelta(t, 1e-3, mp.DR, 1e-15)
	assert.InDelta(t, 2e-9, mp.TimeStep, 1e-20)
	assert.InDelta(t, 3e-3, mp.InjectionZMax, 1e-15)
	assert.Equal(t, GeometryElectrodes, mp.Geometry)
	require.Len(t, mp.Electrodes, 1)
	assert.InDelta(t, 2e-3, mp.Electrodes[0].RMax, 1e-15)
	assert.Equal(t, 100., mp.Electrodes[0].Potential)
}

func TestUnitConflict(t *testing.T) {
	_, _, err := LoadConfig(writeConfig(t, `InputUnits = ["mm", "cm"]`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	_, _, err = LoadConfig(writeConfig(t, `OutputUnits = ["furlong"]`))
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestValidation(t *testing.T) {
	for name, mutate := range map[string]func(*ModelParameters){
		"NZ":                      func(p *ModelParameters) { p.NZ = 2 },
		"DR":                      func(p *ModelParameters) { p.DR = 0 },
		"TimeStep":                func(p *ModelParameters) { p.TimeStep = -1 },
		"IonCharge":               func(p *ModelParameters) { p.IonCharge = 0 },
		"InjectionZMax":           func(p *ModelParameters) { p.InjectionZMax = 0 },
		"SolverIterations":        func(p *ModelParameters) { p.SolverIterations = 0 },
		"InitialSolverIterations": func(p *ModelParameters) { p.InitialSolverIterations = 0 },
		"ReportInterval":          func(p *ModelParameters) { p.ReportInterval = 0 },
		"Geometry":                func(p *ModelParameters) { p.Geometry = "torus" },
		"Electrodes": func(p *ModelParameters) {
			p.Geometry = GeometryElectrodes
			p.Electrodes = nil
		},
	} {
		t.Run(name, func(t *testing.T) {
			mp := Defaults()
			mutate(&mp)
			err := mp.Validate("broken")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			var cfgErr *Error
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, name, cfgErr.Field)
			assert.Equal(t, "broken", cfgErr.Model)
		})
	}
}

func TestSIRoundTrip(t *testing.T) {
	units := []string{"cm", "us"}
	velocity := []UnitElement{{Class: Length, Power: 1}, {Class: Time, Power: -1}}
	si := SI(3, velocity, units, true)
	assert.InDelta(t, 3e4, si, 1e-9)
	assert.InDelta(t, 3, SI(si, velocity, units, false), 1e-12)
}

func TestDerivedQuantities(t *testing.T) {
	mp := Defaults()
	assert.InDelta(t, 2.41e6, mp.ChargeToMass(), 1e4)
	assert.InDelta(t, 1.66e-2, mp.DebyeLength(), 1e-4)
	assert.InDelta(t, 2.2e4, mp.IonSpeed(), 1e2)
}

func TestExampleConfig(t *testing.T) {
	config, meta, err := LoadConfig(filepath.Join("..", "..", "config.toml"))
	require.NoError(t, err)
	require.Len(t, config.Models, 3)
	for name, mp := range config.Models {
		require.NoError(t, mp.Unify(name, &config, &meta), name)
		config.Models[name] = mp
	}

	fine := config.Models["sugarcube_fine"]
	assert.InDelta(t, 0.5e-3, fine.DZ, 1e-18)
	assert.InDelta(t, 2.5e-9, fine.TimeStep, 1e-24)
	assert.Equal(t, 20, fine.ReportInterval)

	plates := config.Models["plates"]
	assert.Equal(t, 0, plates.Steps)
	require.Len(t, plates.Electrodes, 2)
	assert.InDelta(t, 5e-3, plates.Electrodes[0].ZMin, 1e-15)
	assert.InDelta(t, 8e-3, plates.Electrodes[1].RMax, 1e-15)
	assert.Equal(t, []string{"mm", "us"}, plates.OutputUnits())
}
