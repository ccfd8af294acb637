// Package table holds the in-memory product table and its file formats.
package table

import (
	"fmt"

	"github.com/law-makers/shelf/pkg/models"
)

// Column names of the product table, in file order.
const (
	ColProductName = "product_name"
	ColBrand       = "brand"
	ColIngredients = "ingredients"
	ColSize        = "size"
	ColCategory    = "category"
	ColProductURL  = "product_url"
	ColProductImg  = "product_img"

	ColBrandPage      = "brand_page"
	ColAdditionalInfo = "additional_information"
)

// ProductColumns is the fixed column order written by the collector.
var ProductColumns = []string{
	ColProductName, ColBrand, ColIngredients, ColSize, ColCategory, ColProductURL, ColProductImg,
}

// EnrichmentColumns are appended by the enricher.
var EnrichmentColumns = []string{ColBrandPage, ColAdditionalInfo}

// Table is an ordered set of rows over a fixed column list. A nil cell is
// an absent value.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]*string
}

// New creates an empty table. Repeated column names are kept once, at
// their first position.
func New(columns ...string) *Table {
	t := &Table{index: make(map[string]int)}
	for _, c := range UniqueColumns(columns) {
		t.index[c] = len(t.columns)
		t.columns = append(t.columns, c)
	}
	return t
}

// UniqueColumns drops repeated names, preserving first occurrence order.
func UniqueColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// FromRecords builds a product table from collected records.
func FromRecords(records []models.ProductRecord) *Table {
	t := New(ProductColumns...)
	for _, r := range records {
		t.rows = append(t.rows, []*string{
			models.Ptr(r.ProductName),
			models.Ptr(r.Brand),
			r.Ingredients,
			models.Ptr(r.Size),
			r.Category,
			models.Ptr(r.ProductURL),
			r.ProductImg,
		})
	}
	return t
}

// Columns returns a copy of the column names.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// HasColumn reports whether name is a column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

// AddColumn appends an all-absent column. It returns false and leaves the
// table unchanged when the column already exists.
func (t *Table) AddColumn(name string) bool {
	if t.HasColumn(name) {
		return false
	}
	t.index[name] = len(t.columns)
	t.columns = append(t.columns, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], nil)
	}
	return true
}

// ClearColumn marks every cell of an existing column absent.
func (t *Table) ClearColumn(name string) {
	c, ok := t.index[name]
	if !ok {
		return
	}
	for i := range t.rows {
		t.rows[i][c] = nil
	}
}

// AppendRow adds a row. Missing keys are absent; unknown keys are an error.
func (t *Table) AppendRow(values map[string]*string) error {
	row := make([]*string, len(t.columns))
	for k, v := range values {
		i, ok := t.index[k]
		if !ok {
			return fmt.Errorf("unknown column %q", k)
		}
		row[i] = v
	}
	t.rows = append(t.rows, row)
	return nil
}

// Get returns the cell at (row, column) and whether it is present.
func (t *Table) Get(row int, column string) (string, bool) {
	c, ok := t.index[column]
	if !ok || row < 0 || row >= len(t.rows) {
		return "", false
	}
	v := t.rows[row][c]
	if v == nil {
		return "", false
	}
	return *v, true
}

// Set writes a present value into an existing cell.
func (t *Table) Set(row int, column, value string) error {
	c, ok := t.index[column]
	if !ok {
		return fmt.Errorf("unknown column %q", column)
	}
	if row < 0 || row >= len(t.rows) {
		return fmt.Errorf("row %d out of range [0, %d)", row, len(t.rows))
	}
	t.rows[row][c] = models.Ptr(value)
	return nil
}

// Row returns the cells of one row in column order.
func (t *Table) Row(row int) []*string {
	out := make([]*string, len(t.columns))
	copy(out, t.rows[row])
	return out
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	c := New(t.columns...)
	c.rows = make([][]*string, len(t.rows))
	for i, r := range t.rows {
		row := make([]*string, len(r))
		for j, v := range r {
			if v != nil {
				row[j] = models.Ptr(*v)
			}
		}
		c.rows[i] = row
	}
	return c
}
