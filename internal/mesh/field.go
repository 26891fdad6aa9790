package mesh

import (
	"gonum.org/v1/gonum/floats"
)

// Field is a per-node scalar stored row-major by axial index.
type Field struct {
	NZ   int
	NR   int
	Data []float64
}

func NewField(nz, nr int) *Field {
	return &Field{NZ: nz, NR: nr, Data: make([]float64, nz*nr)}
}

func (f *Field) Index(i, j int) int {
	return i*f.NR + j
}

func (f *Field) At(i, j int) float64 {
	return f.Data[i*f.NR+j]
}

func (f *Field) Set(i, j int, v float64) {
	f.Data[i*f.NR+j] = v
}

func (f *Field) Add(i, j int, v float64) {
	f.Data[i*f.NR+j] += v
}

func (f *Field) Fill(v float64) {
	for k := range f.Data {
		f.Data[k] = v
	}
}

func (f *Field) Clear() {
	clear(f.Data)
}

func (f *Field) Copy() *Field {
	return &Field{NZ: f.NZ, NR: f.NR, Data: append([]float64(nil), f.Data...)}
}

// CopyFrom overwrites f with the values of src of the same shape.
func (f *Field) CopyFrom(src *Field) {
	copy(f.Data, src.Data)
}

// Merge adds src to f node by node.
func (f *Field) Merge(src *Field) {
	floats.Add(f.Data, src.Data)
}

func (f *Field) Scale(c float64) {
	floats.Scale(c, f.Data)
}

func (f *Field) Min() float64 {
	return floats.Min(f.Data)
}

func (f *Field) Max() float64 {
	return floats.Max(f.Data)
}

func (f *Field) Sum() float64 {
	return floats.Sum(f.Data)
}

// Row returns the radial profile at axial index i. The slice aliases f.
func (f *Field) Row(i int) []float64 {
	return f.Data[i*f.NR : (i+1)*f.NR]
}

func weights(li, lj float64) (i, j int, di, dj float64) {
	i, j = int(li), int(lj)
	return i, j, li - float64(i), lj - float64(j)
}

// Gather interpolates f bilinearly at the logical position (li, lj). The
// integer part must lie within [0, NZ-2] x [0, NR-2].
func (f *Field) Gather(li, lj float64) float64 {
	i, j, di, dj := weights(li, lj)
	k := i*f.NR + j
	return f.Data[k]*(1-di)*(1-dj) +
		f.Data[k+f.NR]*di*(1-dj) +
		f.Data[k+f.NR+1]*di*dj +
		f.Data[k+1]*(1-di)*dj
}

// Scatter distributes v over the four nodes surrounding (li, lj) with the
// weights used by Gather. Values accumulate.
func (f *Field) Scatter(li, lj, v float64) {
	i, j, di, dj := weights(li, lj)
	k := i*f.NR + j
	f.Data[k] += v * (1 - di) * (1 - dj)
	f.Data[k+f.NR] += v * di * (1 - dj)
	f.Data[k+f.NR+1] += v * di * dj
	f.Data[k+1] += v * (1 - di) * dj
}
