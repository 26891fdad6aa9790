package output

import (
	"github.com/spf13/pflag"
	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/mesh"
)

// Column names may hold {length} and {time}; both are replaced by the
// output units when the file is written.
type DataItem struct {
	saveFlag   *bool
	fileSuffix string
}

// FieldDataItem is a node field written as one (z, r, value) row per node.
type FieldDataItem struct {
	DataItem
	columnName string
	values     func(*DataExtractor) *mesh.Field
	unit       []config.UnitElement
}

// SequentialDataItem is a table with one row per report.
type SequentialDataItem struct {
	DataItem
	columnNames []string
	values      func(*DataExtractor) (args []float64, values [][]float64)
	xUnit       []config.UnitElement
	yUnits      [][]config.UnitElement
}

type DataFlags struct {
	all         *bool
	fields      map[string]FieldDataItem
	sequentials map[string]SequentialDataItem
	outputPath  string
}

var (
	perVolume = []config.UnitElement{{Class: config.Length, Power: -3}}
	perLength = []config.UnitElement{{Class: config.Length, Power: -1}}
	length    = []config.UnitElement{{Class: config.Length, Power: 1}}
	velocity  = []config.UnitElement{{Class: config.Length, Power: 1}, {Class: config.Time, Power: -1}}
	duration  = []config.UnitElement{{Class: config.Time, Power: 1}}
	volume    = []config.UnitElement{{Class: config.Length, Power: 3}}
)

// NewDataFlags registers one boolean flag per output on fs.
func NewDataFlags(fs *pflag.FlagSet) *DataFlags {
	return &DataFlags{
		all: fs.Bool("all", false, "save every available output"),
		fields: map[string]FieldDataItem{
			"Potential": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("potential", "p", true, "save potential"),
					fileSuffix: "phi",
				},
				columnName: "phi (V)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Phi },
			},
			"Ion density": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("density", "n", true, "save ion number density"),
					fileSuffix: "den",
				},
				columnName: "n ({length}^-3)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Den },
				unit:       perVolume,
			},
			"Charge density": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("rho", false, "save ion charge density"),
					fileSuffix: "rho",
				},
				columnName: "rho (C {length}^-3)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Rho },
				unit:       perVolume,
			},
			"Axial electric field": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("efz", false, "save axial electric field"),
					fileSuffix: "efz",
				},
				columnName: "E_z (V {length}^-1)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Efz },
				unit:       perLength,
			},
			"Radial electric field": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("efr", false, "save radial electric field"),
					fileSuffix: "efr",
				},
				columnName: "E_r (V {length}^-1)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Efr },
				unit:       perLength,
			},
			"Node volume": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("nv", false, "save node volumes"),
					fileSuffix: "nv",
				},
				columnName: "V ({length}^3)",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Grid.NodeVolumes() },
				unit:       volume,
			},
			"Cell types": {
				DataItem: DataItem{
					saveFlag:   fs.Bool("ct", false, "save cell types"),
					fileSuffix: "ct",
				},
				columnName: "type",
				values:     func(de *DataExtractor) *mesh.Field { return de.model.Cells.AsField() },
			},
		},
		sequentials: map[string]SequentialDataItem{
			"History": {
				DataItem: DataItem{
					saveFlag:   fs.BoolP("history", "H", true, "save report history"),
					fileSuffix: "history",
				},
				columnNames: []string{"t ({time})", "step", "particles", "injected", "removed",
					"phi_min (V)", "phi_max (V)", "n_max ({length}^-3)", "v_z max ({length} {time}^-1)"},
				values: func(de *DataExtractor) (args []float64, values [][]float64) {
					for _, r := range de.history.Records() {
						args = append(args, r.Time)
						values = append(values, []float64{
							float64(r.Step), float64(r.Particles), float64(r.Injected), float64(r.Removed),
							r.PhiMin, r.PhiMax, r.MaxDensity, r.MaxZVel,
						})
					}
					return args, values
				},
				xUnit:  duration,
				yUnits: [][]config.UnitElement{nil, nil, nil, nil, nil, nil, perVolume, velocity},
			},
		},
	}
}

func (df *DataFlags) SetOutputPath(path string) {
	if path != "" && path[len(path)-1] != '/' {
		df.outputPath = path + "/"
	} else {
		df.outputPath = path
	}
}

func (df *DataFlags) GetOutputPath() string {
	return df.outputPath
}

// SetAll enables every output regardless of its own flag.
func (df *DataFlags) SetAll(all bool) {
	*df.all = all
}
