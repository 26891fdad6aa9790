package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/wildstyl3r/rzpic/internal/config"
	"github.com/wildstyl3r/rzpic/internal/model"
	"github.com/wildstyl3r/rzpic/internal/utils"
)

type DataExtractor struct {
	model   *model.Model
	history *model.History
	units   []string
	columns *strings.Replacer
}

// NewDataExtractor reads the final state of m. history may be nil when no
// reports were recorded.
func NewDataExtractor(m *model.Model, history *model.History) *DataExtractor {
	if history == nil {
		history = &model.History{}
	}
	units := m.Parameters.OutputUnits()
	return &DataExtractor{
		model:   m,
		history: history,
		units:   units,
		columns: strings.NewReplacer(
			"{length}", config.UnitName(config.Length, units),
			"{time}", config.UnitName(config.Time, units),
		),
	}
}

func (de *DataExtractor) format(v float64, unit []config.UnitElement) string {
	return strconv.FormatFloat(config.SI(v, unit, de.units, false), 'g', -1, 64)
}

func (de *DataExtractor) header(names ...string) []string {
	row := make([]string, len(names))
	for i, name := range names {
		row[i] = de.columns.Replace(name)
	}
	return row
}

// Save writes every enabled output of the model. Outputs that fail do not
// stop the others; all failures are returned joined.
func (de *DataExtractor) Save(modelName string, df *DataFlags, log logrus.FieldLogger) error {
	var errs []error
	for _, name := range sortedNames(df.fields) {
		output := df.fields[name]
		if !*output.saveFlag && !*df.all {
			continue
		}
		if err := de.write(modelName, df.outputPath, output.DataItem, de.fieldRows(output)); err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}
		if de.model.Parameters.Verbose() {
			log.WithField("model", modelName).Infof("%s saved", name)
		}
	}
	for _, name := range sortedNames(df.sequentials) {
		output := df.sequentials[name]
		if !*output.saveFlag && !*df.all {
			continue
		}
		if err := de.write(modelName, df.outputPath, output.DataItem, de.sequentialRows(output)); err != nil {
			errs = append(errs, fmt.Errorf("unable to save %s: %w", name, err))
			continue
		}
		if de.model.Parameters.Verbose() {
			log.WithField("model", modelName).Infof("%s saved", name)
		}
	}
	return errors.Join(errs...)
}

func (de *DataExtractor) fieldRows(output FieldDataItem) [][]string {
	g := de.model.Grid
	f := output.values(de)
	rows := [][]string{de.header("z ({length})", "r ({length})", output.columnName)}
	for i := range g.NZ {
		for j := range g.NR {
			z, r := g.ToPhysical(float64(i), float64(j))
			rows = append(rows, []string{
				de.format(z, length),
				de.format(r, length),
				de.format(f.At(i, j), output.unit),
			})
		}
	}
	return rows
}

func (de *DataExtractor) sequentialRows(output SequentialDataItem) [][]string {
	rows := [][]string{de.header(output.columnNames...)}
	args, values := output.values(de)
	for x := range args {
		row := []string{de.format(args[x], output.xUnit)}
		for i, v := range values[x] {
			var unit []config.UnitElement
			if i < len(output.yUnits) {
				unit = output.yUnits[i]
			}
			row = append(row, de.format(v, unit))
		}
		rows = append(rows, row)
	}
	return rows
}

func (de *DataExtractor) write(modelName, outputPath string, item DataItem, rows [][]string) error {
	file, err := utils.OpenFile(de.model.Parameters.MakeDir, outputPath, item.fileSuffix, modelName)
	if err != nil {
		return err
	}
	if err := writeCSV(file, rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}

func sortedNames[T any](items map[string]T) []string {
	names := make([]string, 0, len(items))
	for name := range items {
		names = append(names, name)
	}
	return utils.SortNatural(names)
}
