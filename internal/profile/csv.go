package profile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ReadCSV parses a profile CSV with a header row. Only the header decides
// which columns are read; unknown columns are ignored and missing ones are empty.
func ReadCSV(r io.Reader) (*Profiles, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	profiles := &Profiles{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", profiles.Len()+1, err)
		}

		record := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(row) {
				record[column] = row[i]
			}
		}

		profiles.Items = append(profiles.Items, FromRecord(record))
	}

	return profiles, nil
}

// ReadCSVFile opens path and parses it with ReadCSV.
func ReadCSVFile(path string) (*Profiles, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadCSV(file)
}

// CSVWriter appends profiles to a CSV file, writing the header only once.
type CSVWriter struct {
	path string
	mu   sync.Mutex
}

func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Path() string {
	return w.path
}

// Append writes the given profiles at the end of the file.
func (w *CSVWriter) Append(profiles ...*Profile) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", w.path, err)
		}
	}

	file, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if stat.Size() == 0 {
		if err := writer.Write(Columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for _, p := range profiles {
		if p == nil {
			continue
		}
		if err := writer.Write(p.Record()); err != nil {
			return fmt.Errorf("write profile %q: %w", p.Name, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
