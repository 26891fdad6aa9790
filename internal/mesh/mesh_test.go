package mesh

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wildstyl3r/rzpic/internal/config"
)

func TestNewGridRejectsDegenerate(t *testing.T) {
	for _, tc := range []struct {
		nz, nr int
		dz, dr float64
	}{
		{1, 12, 1e-3, 1e-3},
		{35, 0, 1e-3, 1e-3},
		{35, 12, 0, 1e-3},
		{35, 12, 1e-3, -1},
		{35, 12, 1e-3, math.NaN()},
	} {
		_, err := NewGrid(tc.nz, tc.nr, tc.dz, tc.dr)
		assert.ErrorIs(t, err, config.ErrInvalidParameter, "%+v", tc)
	}
}

func TestLogicalRoundTrip(t *testing.T) {
	g, err := NewGrid(35, 12, 1e-3, 2e-3)
	require.NoError(t, err)
	for _, p := range [][2]float64{{0, 0}, {3.3e-3, 7.1e-3}, {0.034, 0.022}} {
		li, lj := g.ToLogical(p[0], p[1])
		z, r := g.ToPhysical(li, lj)
		assert.InDelta(t, p[0], z, 1e-15)
		assert.InDelta(t, p[1], r, 1e-15)
	}
	li, lj := g.ToLogical(5e-3, 4e-3)
	assert.InDelta(t, 5, li, 1e-12)
	assert.InDelta(t, 2, lj, 1e-12)
	assert.InDelta(t, 6e-3, g.Radius(3), 1e-15)
}

func TestNodeVolumesPartitionDomain(t *testing.T) {
	for _, dims := range [][2]int{{35, 12}, {3, 3}, {10, 40}, {2, 2}} {
		g, err := NewGrid(dims[0], dims[1], 1e-3, 5e-4)
		require.NoError(t, err)
		assert.InEpsilon(t, g.Volume(), g.NodeVolumes().Sum(), 1e-12, "grid %v", dims)
	}
}

func TestNodeVolumeHalfWeightAtEnds(t *testing.T) {
	g, err := NewGrid(10, 5, 1e-3, 1e-3)
	require.NoError(t, err)
	vol := g.NodeVolumes()
	for j := range g.NR {
		assert.InDelta(t, vol.At(5, j)/2, vol.At(0, j), 1e-24)
		assert.InDelta(t, vol.At(5, j)/2, vol.At(g.NZ-1, j), 1e-24)
	}
	// axis shell is a disk of radius dr/2
	assert.InDelta(t, math.Pi*0.25e-6*1e-3, vol.At(5, 0), 1e-18)
	// interior shell between (j-1/2)dr and (j+1/2)dr
	assert.InDelta(t, math.Pi*1e-3*(2.5*2.5-1.5*1.5)*1e-6, vol.At(5, 2), 1e-18)
}

func TestGatherBilinearExact(t *testing.T) {
	f := NewField(6, 5)
	for i := range f.NZ {
		for j := range f.NR {
			f.Set(i, j, 2+3*float64(i)-0.5*float64(j)+0.25*float64(i*j))
		}
	}
	before := f.Copy()
	for _, p := range [][2]float64{{0, 0}, {1.5, 2.25}, {4.99, 3.01}, {2, 3}} {
		want := 2 + 3*p[0] - 0.5*p[1] + 0.25*p[0]*p[1]
		assert.InDelta(t, want, f.Gather(p[0], p[1]), 1e-12)
	}
	assert.Equal(t, before.Data, f.Data)
}

func TestScatterConservesValue(t *testing.T) {
	f := NewField(8, 6)
	for _, p := range [][2]float64{{0, 0}, {3.7, 1.2}, {6.999, 4.5}, {2, 2}} {
		f.Clear()
		f.Scatter(p[0], p[1], 7.5)
		assert.InDelta(t, 7.5, f.Sum(), 1e-12)
		for _, v := range f.Data {
			assert.GreaterOrEqual(t, v, 0.)
		}
	}
	f.Clear()
	f.Scatter(2.25, 3.5, 1)
	assert.InDelta(t, 0.75*0.5, f.At(2, 3), 1e-15)
	assert.InDelta(t, 0.25*0.5, f.At(3, 4), 1e-15)
}

func TestFieldReductions(t *testing.T) {
	f := NewField(3, 3)
	f.Set(1, 2, -4)
	f.Set(2, 0, 9)
	assert.Equal(t, -4., f.Min())
	assert.Equal(t, 9., f.Max())
	other := f.Copy()
	f.Merge(other)
	f.Scale(0.5)
	assert.Equal(t, 9., f.At(2, 0))
	assert.Equal(t, []float64{0, 0, -4}, f.Row(1))
}

func TestCellTypes(t *testing.T) {
	c := NewCellTypes(4, 3)
	c.SetConductor(1, 2, 1, 100)
	c.SetConductor(3, 0, 2, -5)
	assert.True(t, c.IsConductor(1, 2))
	assert.False(t, c.IsConductor(0, 0))
	assert.Equal(t, 2, c.Conductors())
	assert.Equal(t, CellType(2), c.At(3, 0))

	phi := NewField(4, 3)
	phi.Fill(42)
	c.ApplyTo(phi)
	assert.Equal(t, 100., phi.At(1, 2))
	assert.Equal(t, -5., phi.At(3, 0))
	assert.Equal(t, 42., phi.At(2, 2))
	assert.Equal(t, 2., c.AsField().At(3, 0))
}
