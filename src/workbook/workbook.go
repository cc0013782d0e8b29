// Package workbook checks a measurement workbook locally before it is uploaded:
// right file type, a sheet for the selected degree, enough rows, and the
// coordinate and time-point columns the backend reads.
package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/iafilius/MPEViewer/src/types"
)

var (
	// ErrUnsupportedFormat indicates the file is not an .xlsx workbook.
	ErrUnsupportedFormat = errors.New("invalid file format, please upload an .xlsx file")
	// ErrMissingSheet indicates the workbook has no sheet named after the degree.
	ErrMissingSheet = errors.New("workbook has no sheet for the selected degree")
	// ErrTooFewRows indicates the degree sheet is shorter than the grid it describes.
	ErrTooFewRows = errors.New("degree sheet has too few data rows")
	// ErrMissingColumns indicates the coordinate or time-point columns are absent.
	ErrMissingColumns = errors.New("degree sheet lacks coordinate or time-point columns")
)

// HeaderRows is the number of stacked header rows above the data.
const HeaderRows = 2

// SummaryRows is the number of trailing summary rows of every degree sheet.
const SummaryRows = 4

// GridRows returns how many test-point rows a degree sheet starts with.
func GridRows(degree string) (int, bool) {
	switch degree {
	case types.Degree6, types.Degree12:
		return 37, true
	case types.Degree100:
		return 68, true
	default:
		return 0, false
	}
}

// Report describes one degree sheet.
type Report struct {
	Path   string
	Degree string
	Sheets []string
	// Columns are the flattened two-row headers, "top_sub".
	Columns           []string
	CoordinateColumns []string
	TimeColumns       []string
	DataRows          int
}

// CheckExtension rejects anything but .xlsx, case-insensitively.
func CheckExtension(path string) error {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupportedFormat)
	}
	return nil
}

// Inspect opens path and reads the sheet named after degree.
func Inspect(path, degree string) (*Report, error) {
	if err := CheckExtension(path); err != nil {
		return nil, err
	}
	if _, ok := GridRows(degree); !ok {
		return nil, fmt.Errorf("unsupported sheet degree %q", degree)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rep := &Report{Path: path, Degree: degree, Sheets: f.GetSheetList()}
	found := false
	for _, s := range rep.Sheets {
		if s == degree {
			found = true
			break
		}
	}
	if !found {
		return rep, fmt.Errorf("%w: %q (sheets: %s)", ErrMissingSheet, degree, strings.Join(rep.Sheets, ", "))
	}
	rows, err := f.GetRows(degree)
	if err != nil {
		return rep, fmt.Errorf("read sheet %q: %w", degree, err)
	}
	rep.Columns = flattenHeader(rows)
	for _, c := range rep.Columns {
		switch {
		case strings.Contains(c, "Coordinates"):
			rep.CoordinateColumns = append(rep.CoordinateColumns, c)
		case strings.Contains(c, "Time point"):
			rep.TimeColumns = append(rep.TimeColumns, c)
		}
	}
	rep.DataRows = countDataRows(rows)
	return rep, nil
}

// Validate applies the degree's shape rules to an inspected sheet.
func (r *Report) Validate() error {
	need, ok := GridRows(r.Degree)
	if !ok {
		return fmt.Errorf("unsupported sheet degree %q", r.Degree)
	}
	if r.DataRows < need {
		return fmt.Errorf("%w: %q has %d, need at least %d", ErrTooFewRows, r.Degree, r.DataRows, need)
	}
	if len(r.CoordinateColumns) < 2 || len(r.TimeColumns) == 0 {
		return fmt.Errorf("%w: %d coordinate, %d time-point", ErrMissingColumns, len(r.CoordinateColumns), len(r.TimeColumns))
	}
	return nil
}

// Check is Inspect followed by Validate.
func Check(path, degree string) (*Report, error) {
	rep, err := Inspect(path, degree)
	if err != nil {
		return rep, err
	}
	return rep, rep.Validate()
}

// flattenHeader joins the two header rows as "top_sub". Blank top cells
// continue the group on their left, as merged header cells read back.
func flattenHeader(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}
	var top, sub []string
	top = rows[0]
	if len(rows) > 1 {
		sub = rows[1]
	}
	n := len(top)
	if len(sub) > n {
		n = len(sub)
	}
	cols := make([]string, 0, n)
	group := ""
	for i := 0; i < n; i++ {
		if i < len(top) && strings.TrimSpace(top[i]) != "" {
			group = strings.TrimSpace(top[i])
		}
		s := ""
		if i < len(sub) {
			s = strings.TrimSpace(sub[i])
		}
		switch {
		case group == "" && s == "":
			continue
		case s == "":
			cols = append(cols, group)
		default:
			cols = append(cols, group+"_"+s)
		}
	}
	return cols
}

// countDataRows counts non-empty rows below the header.
func countDataRows(rows [][]string) int {
	n := 0
	for i := HeaderRows; i < len(rows); i++ {
		for _, c := range rows[i] {
			if strings.TrimSpace(c) != "" {
				n++
				break
			}
		}
	}
	return n
}
