// Package report formats measurements as text lines and parses them back.
package report

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-microbench/benchmark"
)

// ErrNotMeasurement is returned by ParseLine for lines that carry no timing.
var ErrNotMeasurement = errors.New("line is not a measurement")

// lineFormat prints elapsed with the precision of a full timing and the
// per-operation cost with three significant decimals.
const lineFormat = "%s: %.12e s, %.3e s per operation"

var linePattern = regexp.MustCompile(
	`^(.+): ([-+]?\d+(?:\.\d+)?[eE][-+]?\d+) s, ([-+]?\d+(?:\.\d+)?[eE][-+]?\d+) s per operation$`,
)

// Record is a measurement recovered from program output.
type Record struct {
	Section             string  `json:"section"              csv:"section"`
	Label               string  `json:"label"                csv:"label"`
	ElapsedSeconds      float64 `json:"elapsed_seconds"      csv:"elapsed_s"`
	PerOperationSeconds float64 `json:"per_operation_seconds" csv:"per_operation_s"`
}

// FormatLine renders one measurement.
func FormatLine(label string, m benchmark.Measurement) string {
	return fmt.Sprintf(lineFormat, label, m.ElapsedSeconds(), m.PerOperation)
}

// Writer writes a plain-text report. It implements benchmark.Reporter.
type Writer struct {
	out      io.Writer
	sections int
}

// NewWriter creates a report writer.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// Section writes a header, separated from the previous section by a blank line.
func (w *Writer) Section(title string) error {
	prefix := ""
	if w.sections > 0 {
		prefix = "\n"
	}
	w.sections++
	_, err := fmt.Fprintf(w.out, "%s%s\n", prefix, strings.ToUpper(title))
	return err
}

// Note writes a free-form informational line inside the current section.
func (w *Writer) Note(format string, args ...interface{}) error {
	_, err := fmt.Fprintf(w.out, format+"\n", args...)
	return err
}

// Measurement writes one measurement line.
func (w *Writer) Measurement(label string, m benchmark.Measurement) error {
	_, err := fmt.Fprintln(w.out, FormatLine(label, m))
	return err
}

// ParseLine parses a single measurement line.
func ParseLine(line string) (Record, error) {
	match := linePattern.FindStringSubmatch(strings.TrimSpace(line))
	if match == nil {
		return Record{}, ErrNotMeasurement
	}

	elapsed, err := strconv.ParseFloat(match[2], 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "invalid elapsed time %q", match[2])
	}
	perOp, err := strconv.ParseFloat(match[3], 64)
	if err != nil {
		return Record{}, errors.Wrapf(err, "invalid per-operation time %q", match[3])
	}

	return Record{
		Label:               match[1],
		ElapsedSeconds:      elapsed,
		PerOperationSeconds: perOp,
	}, nil
}

// Parse reads a whole report. Lines that are not measurements are treated
// as section headers when they are upper case, and skipped otherwise.
func Parse(r io.Reader) ([]Record, error) {
	var (
		records []Record
		section string
	)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		record, err := ParseLine(line)
		if errors.Is(err, ErrNotMeasurement) {
			if isHeader(line) {
				section = line
			}
			continue
		}
		if err != nil {
			return nil, err
		}

		record.Section = section
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read report")
	}

	return records, nil
}

func isHeader(line string) bool {
	return strings.ToUpper(line) == line && strings.ToLower(line) != line
}

// WriteCSV writes records to w with a header line.
func WriteCSV(w io.Writer, records []Record) error {
	if err := gocsv.Marshal(&records, w); err != nil {
		return errors.Wrap(err, "failed to write records")
	}
	return nil
}
