package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fyne.io/fyne/v2/test"

	"github.com/iafilius/MPEViewer/src/types"
)

func TestRecentFiles_NewestFirstAndExisting(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	dir := t.TempDir()
	var paths []string
	for _, name := range []string{"a.xlsx", "b.xlsx", "c.xlsx"} {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
		addRecentFile(a, p)
	}
	addRecentFile(a, paths[0])
	got := recentFiles(a)
	want := []string{paths[0], paths[2], paths[1]}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("recent %v want %v", got, want)
	}
	os.Remove(paths[2])
	if got := recentFiles(a); len(got) != 2 {
		t.Fatalf("missing files should be dropped, got %v", got)
	}
	clearRecentFiles(a)
	if got := recentFiles(a); len(got) != 0 {
		t.Fatalf("clear left %v", got)
	}
}

func TestDegreePreference(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()
	if d := loadDegree(a, types.Degree6); d != types.Degree6 {
		t.Fatalf("fallback %q", d)
	}
	saveDegree(a, types.Degree100)
	if d := loadDegree(a, types.Degree6); d != types.Degree100 {
		t.Fatalf("saved %q", d)
	}
	saveDegree(a, "24-degree")
	if d := loadDegree(a, types.Degree12); d != types.Degree12 {
		t.Fatalf("unknown degree should fall back, got %q", d)
	}
}

func TestTruncatePath(t *testing.T) {
	short := "/tmp/a.xlsx"
	if truncatePath(short, 60) != short {
		t.Fatalf("short path changed")
	}
	long := "/very/long/directory/name/that/keeps/going/and/going/patient-0001.xlsx"
	got := truncatePath(long, 40)
	if !strings.HasSuffix(got, "patient-0001.xlsx") || len(got) > 40 {
		t.Fatalf("truncated %q (%d)", got, len(got))
	}
}
