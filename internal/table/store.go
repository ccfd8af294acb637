package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

var (
	// ErrConflict is returned when the output path already exists.
	ErrConflict = errors.New("output file already exists")
	// ErrNotFound is returned when the input path does not exist.
	ErrNotFound = errors.New("table file not found")
)

// Store reads and writes whole tables.
type Store interface {
	Read(path string) (*Table, error)
	// Write never overwrites: an existing path is ErrConflict.
	Write(path string, t *Table) error
}

// CSVStore persists tables as comma-separated files with a header row.
// Empty cells are absent values.
type CSVStore struct{}

// NewCSVStore returns a CSVStore.
func NewCSVStore() *CSVStore {
	return &CSVStore{}
}

// Read loads the file at path.
func (CSVStore) Read(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("csv: open %q: %w", path, err)
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("csv: read %q: %w", path, err)
	}
	return t, nil
}

// Write creates path (and its parent directories) and writes t to it.
func (CSVStore) Write(path string, t *Table) error {
	f, err := CreateExclusive(path)
	if err != nil {
		return err
	}

	if err := WriteCSV(f, t); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: write %q: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", path, err)
	}

	log.Debug().Str("path", path).Int("rows", t.Len()).Int("columns", len(t.columns)).Msg("Table written")
	return nil
}

// EnsureAbsent returns ErrConflict when something exists at path. Writers
// still open with O_EXCL; this only lets a run fail before doing work.
func EnsureAbsent(path string) error {
	_, err := os.Lstat(path)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrConflict, path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return err
	}
}

// CreateExclusive opens a new file for writing, failing with ErrConflict
// if anything already exists at path.
func CreateExclusive(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrConflict, path)
		}
		return nil, fmt.Errorf("create %q: %w", path, err)
	}
	return f, nil
}

// ReadCSV parses a table from r. The first record is the header.
func ReadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errors.New("missing header row")
	}

	header := records[0]
	if len(UniqueColumns(header)) != len(header) {
		return nil, fmt.Errorf("duplicate column names in header %v", header)
	}

	t := New(header...)
	for _, rec := range records[1:] {
		row := make([]*string, len(header))
		for i, v := range rec {
			if v != "" {
				v := v
				row[i] = &v
			}
		}
		t.rows = append(t.rows, row)
	}
	return t, nil
}

// WriteCSV writes t with a header row.
func WriteCSV(w io.Writer, t *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(t.columns); err != nil {
		return err
	}
	for _, row := range t.rows {
		rec := make([]string, len(row))
		for i, v := range row {
			if v != nil {
				rec[i] = *v
			}
		}
		if err := writer.Write(rec); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
