package mesh

// CellType tags a node: 0 is free space, anything above is a conductor held at
// a fixed potential.
type CellType int

const Free CellType = 0

type CellTypes struct {
	NZ        int
	NR        int
	Kind      []CellType
	Potential []float64
}

func NewCellTypes(nz, nr int) *CellTypes {
	return &CellTypes{
		NZ:        nz,
		NR:        nr,
		Kind:      make([]CellType, nz*nr),
		Potential: make([]float64, nz*nr),
	}
}

// SetConductor pins node (i, j) to phi. kind must be above Free.
func (c *CellTypes) SetConductor(i, j int, kind CellType, phi float64) {
	k := i*c.NR + j
	c.Kind[k] = kind
	c.Potential[k] = phi
}

func (c *CellTypes) At(i, j int) CellType {
	return c.Kind[i*c.NR+j]
}

func (c *CellTypes) IsConductor(i, j int) bool {
	return c.Kind[i*c.NR+j] > Free
}

func (c *CellTypes) PotentialAt(i, j int) float64 {
	return c.Potential[i*c.NR+j]
}

func (c *CellTypes) Conductors() int {
	n := 0
	for _, k := range c.Kind {
		if k > Free {
			n++
		}
	}
	return n
}

// ApplyTo overwrites every conductor node of phi with its fixed potential.
func (c *CellTypes) ApplyTo(phi *Field) {
	for k, kind := range c.Kind {
		if kind > Free {
			phi.Data[k] = c.Potential[k]
		}
	}
}

// AsField exports the tags as a field for output.
func (c *CellTypes) AsField() *Field {
	f := NewField(c.NZ, c.NR)
	for k, kind := range c.Kind {
		f.Data[k] = float64(kind)
	}
	return f
}
