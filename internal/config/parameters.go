package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/wildstyl3r/lxgata"
	"github.com/wildstyl3r/rzpic/internal/constants"
)

type Config struct {
	OutputDir string
	Models    map[string]ModelParameters
	ModelParameters

	InputUnits  []string
	OutputUnits []string
}

// Electrode is a rectangle of fixed potential in physical coordinates.
type Electrode struct {
	ZMin      float64 // [length]
	ZMax      float64 // [length]
	RMin      float64 // [length]
	RMax      float64 // [length]
	Potential float64 // [V]
}

const (
	GeometrySugarCube  = "sugarcube"
	GeometryElectrodes = "electrodes"
)

// DefaultModel names the single model run when the file has no [Models] tables.
const DefaultModel = "default"

func LoadConfig(configFileName string) (Config, toml.MetaData, error) {
	var config Config
	meta, err := toml.DecodeFile(strings.TrimSuffix(configFileName, ".toml")+".toml", &config)
	if err != nil {
		return config, meta, fmt.Errorf("unable to load config: %w", err)
	}

	var unitsConflict []string
	config.InputUnits, unitsConflict = checkUnits(config.InputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, &Error{Field: "InputUnits", Reason: fmt.Sprintf("unit conflict %v", unitsConflict)}
	}
	if len(config.OutputUnits) == 0 {
		config.OutputUnits = config.InputUnits
	}
	config.OutputUnits, unitsConflict = checkUnits(config.OutputUnits)
	if len(unitsConflict) > 0 {
		return config, meta, &Error{Field: "OutputUnits", Reason: fmt.Sprintf("unit conflict %v", unitsConflict)}
	}

	if len(config.Models) == 0 {
		config.Models = map[string]ModelParameters{DefaultModel: {}}
	}
	return config, meta, nil
}

type ModelParameters struct {
	NZ int
	NR int
	DZ float64 // [length]
	DR float64 // [length]

	TimeStep       float64 // [time]
	IonMass        float64 // [amu]
	IonCharge      float64 // [e]
	SpecificWeight float64

	ReferenceDensity    float64 // [m^-3]
	ElectronTemperature float64 // [eV]
	ReferencePotential  float64 // [V]
	WallPotential       float64 // [V]

	NeutralDensity  float64 // [m^-3]
	ElectronDensity float64 // [m^-3]
	RateCoefficient float64 // [m^3 s^-1]
	CrossSections   string

	InjectionZMin   float64 // [length]
	InjectionZMax   float64 // [length]
	InjectionRMin   float64 // [length]
	InjectionRMax   float64 // [length]
	ThermalVelocity float64 // [m s^-1]

	InitialSolverIterations int
	SolverIterations        int
	Steps                   int
	ReportInterval          int

	Geometry   string
	Electrodes []Electrode

	Seed          int64
	MakeDir       bool
	CheckResidual bool

	_crossSections *lxgata.Collisions
	_outputUnits   []string
	_verbose       bool
	_threads       int
}

func (p *ModelParameters) CrossSectionsData() *lxgata.Collisions {
	return p._crossSections
}

func (p *ModelParameters) SetCrossSectionsData(cd *lxgata.Collisions) {
	p._crossSections = cd
}

func (p *ModelParameters) OutputUnits() []string {
	return p._outputUnits
}

func (p *ModelParameters) SetOutputUnits(u []string) {
	p._outputUnits = u
}

func (p *ModelParameters) Verbose() bool {
	return p._verbose
}

func (p *ModelParameters) SetVerbosity(verbose bool) {
	p._verbose = verbose
}

func (p *ModelParameters) Threads() int {
	return max(p._threads, 1)
}

func (p *ModelParameters) SetThreads(threads int) {
	p._threads = threads
}

// ChargeToMass of the ion species in [C kg^-1].
func (p *ModelParameters) ChargeToMass() float64 {
	return p.IonCharge * constants.ElectronCharge / (p.IonMass * constants.AtomicMassUnit)
}

// DebyeLength of the reference electron population in [m].
func (p *ModelParameters) DebyeLength() float64 {
	return math.Sqrt(constants.FreeSpacePermittivityE0 * p.ElectronTemperature / (p.ReferenceDensity * constants.ElectronCharge))
}

// IonSpeed is the speed an ion gains falling through the reference potential.
func (p *ModelParameters) IonSpeed() float64 {
	return math.Sqrt(2 * math.Abs(p.ReferencePotential) * math.Abs(p.ChargeToMass()))
}

var defaultValues = map[string]any{ // in SI
	"NZ":                      35,
	"NR":                      12,
	"DZ":                      1e-3,   //[m]
	"DR":                      1e-3,   //[m]
	"TimeStep":                5e-9,   //[s]
	"IonMass":                 40.,    //[amu]
	"IonCharge":               1.,     //[e]
	"SpecificWeight":          50.,    //
	"ReferenceDensity":        1e12,   //[m^-3]
	"ElectronTemperature":     5.,     //[eV]
	"ReferencePotential":      100.,   //[V]
	"WallPotential":           0.,     //[V]
	"NeutralDensity":          1e15,   //[m^-3]
	"ElectronDensity":         1e12,   //[m^-3]
	"RateCoefficient":         2e-10,  //[m^3/s]
	"InjectionZMin":           1e-3,   //[m]
	"InjectionZMax":           4e-3,   //[m]
	"InjectionRMin":           0.,     //[m]
	"InjectionRMax":           6e-3,   //[m]
	"ThermalVelocity":         300.,   //[m/s]
	"InitialSolverIterations": 1000,   //
	"SolverIterations":        100,    //
	"Steps":                   1000,   //
	"ReportInterval":          10,     //
	"Geometry":                "sugarcube",
	"MakeDir":                 true,
	"CheckResidual":           false,
}

var valueUnits = map[string][]UnitElement{
	"DZ":            {{Class: Length, Power: 1}},
	"DR":            {{Class: Length, Power: 1}},
	"TimeStep":      {{Class: Time, Power: 1}},
	"InjectionZMin": {{Class: Length, Power: 1}},
	"InjectionZMax": {{Class: Length, Power: 1}},
	"InjectionRMin": {{Class: Length, Power: 1}},
	"InjectionRMax": {{Class: Length, Power: 1}},
}

var electrodeUnits = []UnitElement{{Class: Length, Power: 1}}

// Defaults returns the parameters of the reference ion source in SI.
func Defaults() ModelParameters {
	var mp ModelParameters
	mpReflect := reflect.ValueOf(&mp).Elem()
	for fieldName, value := range defaultValues {
		mpReflect.FieldByName(fieldName).Set(reflect.ValueOf(value))
	}
	return mp
}

func (modelConfig *ModelParameters) toSI(parameterNames, units []string) {
	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	for _, name := range parameterNames {
		field := modelConfigReflect.FieldByName(name)
		if field.CanFloat() {
			field.SetFloat(SI(field.Float(), valueUnits[name], units, true))
		}
	}
}

/*
field value priority:
1. model table
2. global table
3. default
*/

// Unify fills the model parameters from the model table, the global table and
// the defaults, converts them to SI and validates the result.
func (modelConfig *ModelParameters) Unify(modelName string, config *Config, meta *toml.MetaData) error {
	var discoveredParameters []string

	modelConfigReflect := reflect.ValueOf(modelConfig).Elem()
	globalConfigReflect := reflect.ValueOf(&config.ModelParameters).Elem()
	modelConfigType := modelConfigReflect.Type()
	for i := range modelConfigType.NumField() {
		field := modelConfigType.Field(i)
		if !field.IsExported() {
			continue
		}
		switch {
		case meta.IsDefined("Models", modelName, field.Name):
		case meta.IsDefined(field.Name):
			modelConfigReflect.Field(i).Set(globalConfigReflect.Field(i))
		default:
			if value, some := defaultValues[field.Name]; some {
				modelConfigReflect.Field(i).Set(reflect.ValueOf(value))
			}
			continue
		}
		discoveredParameters = append(discoveredParameters, field.Name)
	}

	modelConfig.toSI(discoveredParameters, config.InputUnits)
	electrodes := make([]Electrode, len(modelConfig.Electrodes))
	for i, e := range modelConfig.Electrodes {
		electrodes[i] = Electrode{
			ZMin:      SI(e.ZMin, electrodeUnits, config.InputUnits, true),
			ZMax:      SI(e.ZMax, electrodeUnits, config.InputUnits, true),
			RMin:      SI(e.RMin, electrodeUnits, config.InputUnits, true),
			RMax:      SI(e.RMax, electrodeUnits, config.InputUnits, true),
			Potential: e.Potential,
		}
	}
	modelConfig.Electrodes = electrodes
	modelConfig.Geometry = strings.ToLower(modelConfig.Geometry)
	modelConfig._outputUnits = config.OutputUnits

	return modelConfig.Validate(modelName)
}

// Validate reports every parameter that prevents the model from being built.
// All returned errors match ErrInvalidParameter.
func (p *ModelParameters) Validate(modelName string) error {
	var errs []error
	fail := func(field, reason string, args ...any) {
		errs = append(errs, &Error{Model: modelName, Field: field, Reason: fmt.Sprintf(reason, args...)})
	}
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			fail(field, "must be positive, got %g", v)
		}
	}
	nonNegative := func(field string, v float64) {
		if !(v >= 0) || math.IsInf(v, 0) {
			fail(field, "must be non-negative, got %g", v)
		}
	}

	if p.NZ < 3 {
		fail("NZ", "at least 3 nodes required, got %d", p.NZ)
	}
	if p.NR < 3 {
		fail("NR", "at least 3 nodes required, got %d", p.NR)
	}
	positive("DZ", p.DZ)
	positive("DR", p.DR)
	positive("TimeStep", p.TimeStep)
	positive("IonMass", p.IonMass)
	positive("SpecificWeight", p.SpecificWeight)
	positive("ElectronTemperature", p.ElectronTemperature)
	if p.IonCharge == 0 || math.IsNaN(p.IonCharge) {
		fail("IonCharge", "must be non-zero")
	}
	nonNegative("ReferenceDensity", p.ReferenceDensity)
	nonNegative("NeutralDensity", p.NeutralDensity)
	nonNegative("ElectronDensity", p.ElectronDensity)
	nonNegative("RateCoefficient", p.RateCoefficient)
	nonNegative("ThermalVelocity", p.ThermalVelocity)

	nonNegative("InjectionZMin", p.InjectionZMin)
	nonNegative("InjectionRMin", p.InjectionRMin)
	if p.InjectionZMax < p.InjectionZMin {
		fail("InjectionZMax", "%g is below InjectionZMin %g", p.InjectionZMax, p.InjectionZMin)
	}
	if p.InjectionRMax < p.InjectionRMin {
		fail("InjectionRMax", "%g is below InjectionRMin %g", p.InjectionRMax, p.InjectionRMin)
	}

	if p.InitialSolverIterations < 1 {
		fail("InitialSolverIterations", "must be at least 1, got %d", p.InitialSolverIterations)
	}
	if p.SolverIterations < 1 {
		fail("SolverIterations", "must be at least 1, got %d", p.SolverIterations)
	}
	if p.Steps < 0 {
		fail("Steps", "must be non-negative, got %d", p.Steps)
	}
	if p.ReportInterval < 1 {
		fail("ReportInterval", "must be at least 1, got %d", p.ReportInterval)
	}

	switch p.Geometry {
	case GeometrySugarCube:
	case GeometryElectrodes:
		if len(p.Electrodes) == 0 {
			fail("Electrodes", "geometry %q requires at least one electrode", p.Geometry)
		}
	default:
		fail("Geometry", "unknown geometry %q", p.Geometry)
	}
	for i, e := range p.Electrodes {
		if e.ZMax < e.ZMin || e.RMax < e.RMin {
			fail("Electrodes", "electrode %d has inverted bounds", i)
		}
		if e.RMin < 0 {
			fail("Electrodes", "electrode %d has negative radius", i)
		}
	}
	return errors.Join(errs...)
}
