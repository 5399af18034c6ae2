package stats

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/absmach/pkgbench/pkg/errors"
)

const (
	ColumnTool          = "Tool"
	ColumnExecutionTime = "Execution Time (s)"
	ColumnCPUUsed       = "CPU Used (%)"
	ColumnMemoryUsed    = "Memory Used (KB)"
)

// Row is one tool invocation from a metrics artifact.
type Row struct {
	Tool          string  `json:"tool"`
	ExecutionTime float64 `json:"execution_time_s"`
	CPUUsed       float64 `json:"cpu_used_percent"`
	MemoryUsed    int64   `json:"memory_used_kb"`
}

type columns struct {
	tool, exec, cpu, mem int
}

// ParseCSVBytes parses a metrics artifact held in memory.
func ParseCSVBytes(data []byte) ([]Row, error) {
	return ParseCSV(bytes.NewReader(data))
}

// ParseCSV reads a metrics artifact. The first record is the header.
// Parsing is lenient: blank lines are skipped, unparseable or missing
// numeric fields become 0 and short rows are padded. Only a header without
// a Tool column is rejected.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []Row{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols, err := locateColumns(header)
	if err != nil {
		return nil, err
	}

	rows := []Row{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			rows = append(rows, Row{})

			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		if blank(record) {
			continue
		}

		rows = append(rows, Row{
			Tool:          field(record, cols.tool),
			ExecutionTime: toFloat(field(record, cols.exec)),
			CPUUsed:       toFloat(field(record, cols.cpu)),
			MemoryUsed:    toInt(field(record, cols.mem)),
		})
	}

	return rows, nil
}

func locateColumns(header []string) (columns, error) {
	cols := columns{tool: -1, exec: -1, cpu: -1, mem: -1}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch name {
		case ColumnTool:
			cols.tool = i
		case ColumnExecutionTime:
			cols.exec = i
		case ColumnCPUUsed:
			cols.cpu = i
		case ColumnMemoryUsed:
			cols.mem = i
		}
	}

	if cols.tool < 0 {
		return cols, fmt.Errorf("%w: %q", pkgerrors.ErrMissingColumn, ColumnTool)
	}

	return cols, nil
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}

	return true
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// toFloat reads the leading decimal number of s and ignores trailing text,
// so "12abc" is 12.
func toFloat(s string) float64 {
	m := floatPrefix.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}

	return v
}

// toInt reads the leading integer of s, so "2048.9" is 2048 and "1e3" is 1.
// Values beyond the int64 range saturate.
func toInt(s string) int64 {
	m := intPrefix.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.ParseInt(m, 10, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0
	}
	if v < 0 {
		return 0
	}

	return v
}
