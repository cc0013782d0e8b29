package workbook

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/iafilius/MPEViewer/src/types"
)

// writeWorkbook saves a degree sheet with the two-row header layout and the
// given number of data rows.
func writeWorkbook(t *testing.T, name, sheet string, dataRows int) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if _, err := f.NewSheet(sheet); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetCellValue(sheet, "A1", "Coordinates")
	f.SetCellValue(sheet, "A2", "X")
	f.SetCellValue(sheet, "B2", "Y")
	f.SetCellValue(sheet, "C1", "Time point")
	f.SetCellValue(sheet, "C2", "0")
	f.SetCellValue(sheet, "D2", "6")
	for r := 0; r < dataRows; r++ {
		row := r + 3
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), -27+r%10*6)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), 3)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), 20.5)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), 21)
	}
	path := filepath.Join(t.TempDir(), name)
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestCheckExtension(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"scan.xlsx", true},
		{"SCAN.XLSX", true},
		{"scan.xls", false},
		{"scan.csv", false},
		{"scan", false},
	}
	for _, c := range cases {
		err := CheckExtension(c.path)
		if (err == nil) != c.ok {
			t.Fatalf("%s: err=%v want ok=%v", c.path, err, c.ok)
		}
		if err != nil && !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("%s: expected ErrUnsupportedFormat, got %v", c.path, err)
		}
	}
}

func TestCheck_ValidSixDegreeSheet(t *testing.T) {
	path := writeWorkbook(t, "patient.xlsx", types.Degree6, 41)
	rep, err := Check(path, types.Degree6)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if rep.DataRows != 41 {
		t.Fatalf("data rows %d want 41", rep.DataRows)
	}
	want := []string{"Coordinates_X", "Coordinates_Y", "Time point_0", "Time point_6"}
	if fmt.Sprint(rep.Columns) != fmt.Sprint(want) {
		t.Fatalf("columns %v want %v", rep.Columns, want)
	}
	if len(rep.CoordinateColumns) != 2 || len(rep.TimeColumns) != 2 {
		t.Fatalf("coordinate=%v time=%v", rep.CoordinateColumns, rep.TimeColumns)
	}
}

func TestCheck_MissingSheet(t *testing.T) {
	path := writeWorkbook(t, "patient.xlsx", types.Degree6, 41)
	_, err := Check(path, types.Degree100)
	if !errors.Is(err, ErrMissingSheet) {
		t.Fatalf("expected ErrMissingSheet, got %v", err)
	}
}

func TestCheck_TooFewRowsForDegree(t *testing.T) {
	path := writeWorkbook(t, "patient.xlsx", types.Degree100, 50)
	_, err := Check(path, types.Degree100)
	if !errors.Is(err, ErrTooFewRows) {
		t.Fatalf("expected ErrTooFewRows, got %v", err)
	}
}

func TestInspect_UnsupportedDegree(t *testing.T) {
	path := writeWorkbook(t, "patient.xlsx", "24-degree", 41)
	if _, err := Inspect(path, "24-degree"); err == nil {
		t.Fatalf("expected error for unknown degree")
	}
}

func TestValidate_MissingColumns(t *testing.T) {
	rep := &Report{Degree: types.Degree12, DataRows: 41, CoordinateColumns: []string{"Coordinates_X"}}
	if err := rep.Validate(); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
}

func TestFlattenHeader_ForwardFillsGroups(t *testing.T) {
	rows := [][]string{
		{"Coordinates", "", "Time point", "", "", "Note"},
		{"X", "Y", "0", "6", "12"},
	}
	got := flattenHeader(rows)
	want := []string{"Coordinates_X", "Coordinates_Y", "Time point_0", "Time point_6", "Time point_12", "Note"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}
