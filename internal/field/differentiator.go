package field

import "github.com/wildstyl3r/rzpic/internal/mesh"

// Differentiator computes E = -grad(phi) with central differences inside the
// grid and one-sided differences on its faces.
type Differentiator struct {
	Grid *mesh.Grid
}

// Compute overwrites efz and efr.
func (d Differentiator) Compute(phi, efz, efr *mesh.Field) {
	nz, nr := d.Grid.NZ, d.Grid.NR
	dz, dr := d.Grid.DZ, d.Grid.DR
	for i := range nz {
		for j := range nr {
			switch i {
			case 0:
				efz.Set(i, j, (phi.At(0, j)-phi.At(1, j))/dz)
			case nz - 1:
				efz.Set(i, j, (phi.At(nz-2, j)-phi.At(nz-1, j))/dz)
			default:
				efz.Set(i, j, (phi.At(i-1, j)-phi.At(i+1, j))/(2*dz))
			}
			switch j {
			case 0:
				efr.Set(i, j, (phi.At(i, 0)-phi.At(i, 1))/dr)
			case nr - 1:
				efr.Set(i, j, (phi.At(i, nr-2)-phi.At(i, nr-1))/dr)
			default:
				efr.Set(i, j, (phi.At(i, j-1)-phi.At(i, j+1))/(2*dr))
			}
		}
	}
}
