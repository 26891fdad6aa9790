package config

import "github.com/wildstyl3r/rzpic/internal/utils"

var unitToSI = map[string]float64{
	"m":  1,    // [m]
	"cm": 1e-2, // [m]
	"mm": 1e-3, // [m]
	"s":  1,    // [s]
	"ms": 1e-3, // [s]
	"us": 1e-6, // [s]
	"ns": 1e-9, // [s]
}

type UnitClass int

const (
	Length UnitClass = iota
	Time
)

var unitsInClass = map[UnitClass][]string{
	Length: {"mm", "cm", "m"},
	Time:   {"ns", "us", "ms", "s"},
}

var classesOfUnits = map[string]UnitClass{
	"m":  Length,
	"cm": Length,
	"mm": Length,
	"s":  Time,
	"ms": Time,
	"us": Time,
	"ns": Time,
}

var defaultUnits = []string{"m", "s"}

type UnitElement = struct {
	Class UnitClass
	Power int
}

// checkUnits completes units with the default unit of every class not
// mentioned; unknown units and repeated classes are reported as conflicts.
func checkUnits(units []string) (extended, conflicts []string) {
	classes := map[UnitClass]struct{}{}
	for _, unit := range units {
		class, known := classesOfUnits[unit]
		if !known {
			conflicts = append(conflicts, unit)
			continue
		}
		if _, some := classes[class]; some {
			conflicts = append(conflicts, unit)
		} else {
			classes[class] = struct{}{}
		}
	}
	extended = append([]string(nil), units...)
	for _, unit := range defaultUnits {
		if _, some := classes[classesOfUnits[unit]]; !some {
			extended = append(extended, unit)
		}
	}
	return
}

// SI converts v expressed in units into SI when direct is set, and back
// from SI otherwise.
func SI(v float64, classes []UnitElement, units []string, direct bool) float64 {
	for i := range classes {
		uc := classes[i]
		unit := utils.Intersect(unitsInClass[uc.Class], units)
		if unit == nil {
			continue
		}
		absPower := utils.IntAbs(uc.Power)
		if direct == (uc.Power > 0) {
			for range absPower {
				v *= unitToSI[*unit]
			}
		} else {
			for range absPower {
				v /= unitToSI[*unit]
			}
		}
	}
	return v
}

// UnitName returns the unit of class listed in units, or its SI unit.
func UnitName(class UnitClass, units []string) string {
	if unit := utils.Intersect(unitsInClass[class], units); unit != nil {
		return *unit
	}
	return defaultUnits[class]
}
