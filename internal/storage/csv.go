// ABOUTME: Pipe-delimited CSV interchange: value|type|date|metric|id|comment.
// ABOUTME: Every data field is followed by a pipe; empty, "null" and "NULL" mean absent.
package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/measure/internal/models"
)

// CSVHeader is the first line of every export.
const CSVHeader = "value|type|date|metric|id|comment"

const csvDateLayout = "2006-01-02 15:04:05"

const (
	csvValue = iota
	csvType
	csvDate
	csvMetric
	csvID
	csvComment
	csvFields
)

var commentSanitizer = strings.NewReplacer("|", " ", "\r", " ", "\n", " ")

// FormatLine renders one measurement, value in the requested unit system.
func FormatLine(m *models.Measurement, metric bool) string {
	parts := make([]string, csvFields)
	parts[csvValue] = strconv.FormatFloat(m.Value(metric), 'f', -1, 64)
	parts[csvType] = m.TypeName()
	parts[csvDate] = m.Timestamp.In(time.Local).Format(csvDateLayout)
	parts[csvMetric] = strconv.FormatBool(metric)
	if m.HasID() {
		parts[csvID] = m.ID.String()
	}
	parts[csvComment] = commentSanitizer.Replace(m.Comment)

	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
		b.WriteByte('|')
	}
	return b.String()
}

// ParseLine rebuilds a measurement from one data line. The value is validated
// against the type's bounds. An ID that is not a UUID is dropped.
func ParseLine(catalog *models.Catalog, line string) (*models.Measurement, error) {
	parts := strings.Split(strings.TrimRight(line, "\r\n"), "|")
	field := func(pos int) string {
		if pos >= len(parts) {
			return ""
		}
		switch p := parts[pos]; p {
		case "", "null", "NULL":
			return ""
		default:
			return p
		}
	}

	t, err := catalog.ByName(field(csvType))
	if err != nil {
		return nil, err
	}
	metric, _ := strconv.ParseBool(field(csvMetric))

	ts, err := time.ParseInLocation(csvDateLayout, field(csvDate), time.Local)
	if err != nil {
		return nil, fmt.Errorf("%w: %q (want %s)", models.ErrDateParse, field(csvDate), csvDateLayout)
	}

	m := models.NewMeasurement(t).WithTimestamp(ts).WithComment(field(csvComment))
	if id, err := uuid.Parse(field(csvID)); err == nil {
		m.ID = id
	}
	if err := m.ParseAndSetValue(field(csvValue), metric); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteCSV writes the header and one line per measurement.
func WriteCSV(w io.Writer, ms []*models.Measurement, metric bool) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(CSVHeader + "\n"); err != nil {
		return err
	}
	for _, m := range ms {
		if _, err := bw.WriteString(FormatLine(m, metric) + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// LineError locates a line that failed to parse.
type LineError struct {
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ReadCSV parses every data line. Header and blank lines are skipped. Lines
// that fail are collected as *LineError values and do not stop the read.
func ReadCSV(r io.Reader, catalog *models.Catalog) ([]*models.Measurement, []error, error) {
	var result []*models.Measurement
	var lineErrs []error

	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := sc.Text()
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "value") {
			continue
		}
		m, err := ParseLine(catalog, line)
		if err != nil {
			lineErrs = append(lineErrs, &LineError{Line: n, Err: err})
			continue
		}
		result = append(result, m)
	}
	if err := sc.Err(); err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	return result, lineErrs, nil
}

// ExportCSV writes every stored measurement, oldest first.
func ExportCSV(ctx context.Context, repo Repository, w io.Writer, metric bool) (int, error) {
	ms, err := repo.ListMeasurements(ctx, "", 0)
	if err != nil {
		return 0, err
	}
	for i, j := 0, len(ms)-1; i < j; i, j = i+1, j-1 {
		ms[i], ms[j] = ms[j], ms[i]
	}
	return len(ms), WriteCSV(w, ms, metric)
}

// ImportMeasurements stores ms, skipping entries that already exist. A
// measurement whose ID is taken by a different entry gets a fresh ID.
func ImportMeasurements(ctx context.Context, repo Repository, ms []*models.Measurement) (*ImportSummary, error) {
	summary := &ImportSummary{}
	for _, m := range ms {
		exists, err := repo.Exists(ctx, m)
		if err != nil {
			return summary, err
		}
		if exists {
			summary.Skipped++
			continue
		}
		if m.HasID() {
			if _, err := repo.GetMeasurement(ctx, m.ID.String()); err == nil {
				m.ID = uuid.Nil
			}
		}
		if err := repo.CreateMeasurement(ctx, m); err != nil {
			return summary, fmt.Errorf("import measurement: %w", err)
		}
		summary.Measurements++
	}
	return summary, nil
}
