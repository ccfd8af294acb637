package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/xuri/excelize/v2"
)

const xlsxSheet = "Sheet1"

// WriteXLSX exports t as a single-sheet workbook. Absent cells stay empty.
func WriteXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sw, err := f.NewStreamWriter(xlsxSheet)
	if err != nil {
		return err
	}

	header := make([]interface{}, len(t.columns))
	for i, c := range t.columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, r := range t.rows {
		row := make([]interface{}, len(r))
		for j, v := range r {
			if v != nil {
				row[j] = *v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}

	out, err := CreateExclusive(path)
	if err != nil {
		return err
	}
	if err := f.Write(out); err != nil {
		_ = out.Close()
		return fmt.Errorf("xlsx: write %q: %w", path, err)
	}
	return out.Close()
}

// WriteJSON exports t as a JSON array of objects. Keys follow column order
// and absent cells are null.
func WriteJSON(path string, t *Table) error {
	out, err := CreateExclusive(path)
	if err != nil {
		return err
	}
	if err := EncodeJSON(out, t); err != nil {
		_ = out.Close()
		return fmt.Errorf("json: write %q: %w", path, err)
	}
	return out.Close()
}

// EncodeJSON writes the JSON form of t to w.
func EncodeJSON(w io.Writer, t *Table) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range t.rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		for j, c := range t.columns {
			if j > 0 {
				buf.WriteString(", ")
			}
			key, _ := json.Marshal(c)
			val, err := json.Marshal(r[j])
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteString(": ")
			buf.Write(val)
		}
		buf.WriteString("}")
	}
	if len(t.rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")

	_, err := w.Write(buf.Bytes())
	return err
}

// Render prints up to limit rows of t as a terminal table. limit <= 0
// prints everything.
func Render(w io.Writer, t *Table, limit int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)

	header := table.Row{"#"}
	configs := make([]table.ColumnConfig, 0, len(t.columns))
	for i, c := range t.columns {
		header = append(header, c)
		configs = append(configs, table.ColumnConfig{Number: i + 2, WidthMax: 40})
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	n := t.Len()
	if limit > 0 && limit < n {
		n = limit
	}
	for i := 0; i < n; i++ {
		row := table.Row{i}
		for _, v := range t.rows[i] {
			if v == nil {
				row = append(row, "")
				continue
			}
			row = append(row, *v)
		}
		tw.AppendRow(row)
	}
	if n < t.Len() {
		tw.AppendFooter(table.Row{"", fmt.Sprintf("%d of %d rows", n, t.Len())})
	}
	tw.Render()
}
