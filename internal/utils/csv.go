package utils

import (
	"encoding/csv"
	"fmt"
	"sort"

	"github.com/facette/natsort"
)

// CSV rows are ordered by their first column in natural order, so that
// "run2" precedes "run10".
type CSV [][]string

func (data CSV) Less(i, j int) bool {
	return natsort.Compare(data[i][0], data[j][0])
}

func (data CSV) Len() int {
	return len(data)
}
func (data CSV) Swap(i, j int) {
	data[i], data[j] = data[j], data[i]
}

// SortNatural returns names sorted in natural order.
func SortNatural(names []string) []string {
	sorted := append([]string(nil), names...)
	sort.Slice(sorted, func(i, j int) bool {
		return natsort.Compare(sorted[i], sorted[j])
	})
	return sorted
}

func WriteAsCSV(data CSV, makeDir bool, path, subpath, filename string, columns []string) error {
	file, err := OpenFile(makeDir, path, subpath, GetFilename(filename))
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", filename, err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(columns); err != nil {
		return err
	}
	sort.Sort(data)
	if err := w.WriteAll(data); err != nil {
		return fmt.Errorf("error writing csv: %w", err)
	}
	return nil
}
