package particle

import (
	"math"

	"github.com/wildstyl3r/lxgata"
	"github.com/wildstyl3r/rzpic/internal/constants"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

// ProductionPerStep is the number of ions created per unit volume during dt
// by electron impact with rate coefficient k.
func ProductionPerStep(k, ne, na, dt float64) float64 {
	return k * ne * na * dt
}

// MaxwellianRate averages sigma*v over a Maxwellian electron distribution at
// temperature kTe [eV]:
//
//	k = sqrt(8e / (pi me)) kTe^(-3/2) int sigma(E) E exp(-E/kTe) dE
//
// with E in eV and sigma in m^2. Energies below threshold do not contribute.
func MaxwellianRate(sigma func(e float64) float64, threshold, kTe float64) float64 {
	if kTe <= 0 {
		return 0
	}
	threshold = max(threshold, 0)
	integrand := func(e float64) float64 {
		return sigma(e) * e * math.Exp(-e/kTe)
	}
	integral := utils.Simpson(integrand, threshold, threshold+40*kTe, 4000)
	return math.Sqrt(8*constants.ElectronCharge/(math.Pi*constants.ElectronMass)) * math.Pow(kTe, -1.5) * integral
}

// CrossSectionRate is the Maxwellian ionization rate coefficient [m^3 s^-1]
// of the ionization processes in collisions.
func CrossSectionRate(collisions *lxgata.Collisions, kTe float64) float64 {
	ionization := func(e float64) (sigma float64) {
		crossSections := collisions.CrossSectionsAt(e)
		for i := range *collisions {
			if (*collisions)[i].Type == lxgata.IONIZATION {
				sigma += crossSections[i]
			}
		}
		return
	}
	return MaxwellianRate(ionization, collisions.MinThresholdOfKind(lxgata.IONIZATION), kTe)
}
