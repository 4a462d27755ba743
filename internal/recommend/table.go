package recommend

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

const (
	// SkillColumn labels rows of skills_count.csv.
	SkillColumn = "Skill"
	// CertificationColumn labels rows of certifications_count.csv.
	CertificationColumn = "Certification"
	// CountColumn holds the number of reference profiles declaring the label.
	CountColumn = "Count"
)

// Entry is a single row of a frequency table.
type Entry struct {
	Label string
	Count int
}

// FrequencyTable is an ordered list of labels with their counts.
type FrequencyTable struct {
	Name    string
	Entries []Entry
}

func (t *FrequencyTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Entries)
}

// Missing returns the entries whose label is not declared, ordered by
// descending count. Entries with equal counts keep their table order.
func (t *FrequencyTable) Missing(declared map[string]struct{}) []Entry {
	if t == nil {
		return nil
	}

	missing := make([]Entry, 0, len(t.Entries))
	for _, entry := range t.Entries {
		if _, ok := declared[entry.Label]; ok {
			continue
		}
		missing = append(missing, entry)
	}

	slices.SortStableFunc(missing, func(a, b Entry) int {
		return b.Count - a.Count
	})

	return missing
}

// ReadTable parses a CSV with a header containing labelColumn and Count.
// Rows with an empty label or an unusable count are skipped.
func ReadTable(r io.Reader, labelColumn string) (*FrequencyTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("frequency table is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	labelIdx, countIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")) {
		case labelColumn:
			labelIdx = i
		case CountColumn:
			countIdx = i
		}
	}
	if labelIdx < 0 || countIdx < 0 {
		return nil, fmt.Errorf("frequency table requires %q and %q columns", labelColumn, CountColumn)
	}

	table := &FrequencyTable{Name: labelColumn}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		if labelIdx >= len(record) || countIdx >= len(record) {
			continue
		}

		label := strings.TrimSpace(record[labelIdx])
		if label == "" {
			continue
		}

		count, ok := parseCount(record[countIdx])
		if !ok {
			continue
		}

		table.Entries = append(table.Entries, Entry{Label: label, Count: count})
	}

	return table, nil
}

func ReadTableFile(path, labelColumn string) (*FrequencyTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	table, err := ReadTable(f, labelColumn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}

// parseCount accepts integers and floats such as "12.0" written by spreadsheet tools.
func parseCount(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(value); err == nil {
		return n, n >= 0
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= math.MaxInt {
		return 0, false
	}
	return int(f), true
}
