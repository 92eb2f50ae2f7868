package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"

	"github.com/simuci/simuci/sim"
)

// formatCell renders a value the way the set's numeric mode types it.
func formatCell(v float64, mode sim.NumericMode) string {
	if mode == sim.ModeInt {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteReplicationCSV writes one row per run under a header of variable
// names.
func WriteReplicationCSV(w io.Writer, set *sim.ReplicationSet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sim.VariableNames()); err != nil {
		return err
	}
	for _, row := range set.Table() {
		record := make([]string, len(row))
		for j, v := range row {
			record[j] = formatCell(v, set.Mode())
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReplicationXLSX saves the set to a workbook with a single sheet.
func WriteReplicationXLSX(path string, set *sim.ReplicationSet) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	for i, h := range sim.VariableNames() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for r, row := range set.Table() {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			var val any = v
			if set.Mode() == sim.ModeInt {
				val = int64(v)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// ReadExperiment loads a previously exported replication table. Columns
// are matched by variable name or alias; cells are coerced with the set's
// usual rule, so unreadable values become 0.
func ReadExperiment(path string, mode sim.NumericMode) (*sim.ReplicationSet, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, err
	}
	cols := make(map[sim.Variable]int, len(sim.Variables))
	for _, v := range sim.Variables {
		if idx := t.Index(variableAliases[v]...); idx >= 0 {
			cols[v] = idx
		}
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%s: no replication variable columns found: %w", path, sim.ErrInvalidInput)
	}
	records := make([]map[string]any, len(t.Rows))
	for i := range t.Rows {
		rec := make(map[string]any, len(cols))
		for v, c := range cols {
			rec[string(v)] = t.Cell(i, c)
		}
		records[i] = rec
	}
	return sim.ReplicationSetFromRecords(records, mode)
}

// ReadColumn returns one numeric column of a result table. column may be a
// variable name, one of its aliases, or any header; an empty column selects
// the first column. Unreadable cells become 0.
func ReadColumn(path, column string) ([]float64, string, error) {
	t, err := ReadTable(path)
	if err != nil {
		return nil, "", err
	}
	idx := 0
	if column != "" {
		if idx = VariableColumn(t, column); idx < 0 {
			return nil, "", fmt.Errorf("%s: no column %q: %w", path, column, sim.ErrInvalidInput)
		}
	}
	vals := make([]float64, len(t.Rows))
	for i := range t.Rows {
		f, err := cast.ToFloat64E(t.Cell(i, idx))
		if err != nil {
			f = 0
		}
		vals[i] = f
	}
	return vals, t.Header[idx], nil
}
