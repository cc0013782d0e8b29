package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iafilius/MPEViewer/src/client"
)

func fakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case client.PathHealth:
			w.Write([]byte(`{"status":"ok"}`))
		case client.PathRegression:
			w.Write([]byte(`{"points":[{"x":3,"y":3,"regression":-1.5},{"x":-3,"y":3,"regression":0.4},{"x":9,"y":-9}],"xRange":[-27,27],"yRange":[-27,27]}`))
		case client.PathChangeBars:
			w.Write([]byte(`{"xLabels":["6","12"],"seriesLabels":["no change","minor","major","lost"],"matrix":[[10,8],[3,4],[1,2],[0,1]]}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No data loaded. Please upload a file first."}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "missing.yaml")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(append([]string{"--config", cfg, "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTypesCommand(t *testing.T) {
	out, err := runCmd(t, "types")
	if err != nil {
		t.Fatalf("types: %v", err)
	}
	if strings.Count(out, "\n") != 5 || !strings.Contains(out, "timepoint-bars") {
		t.Fatalf("unexpected listing:\n%s", out)
	}
}

func TestHealthCommand(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCmd(t, "--base-url", srv.URL, "health")
	if err != nil || !strings.Contains(out, "ok") {
		t.Fatalf("health: %q %v", out, err)
	}
}

func TestExportCommand_WritesNamedPDF(t *testing.T) {
	srv := fakeServer(t)
	dir := t.TempDir()
	out, err := runCmd(t, "--base-url", srv.URL, "export", "change-bars", "--out", dir)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := filepath.Join(dir, "Longitudinal change of loci counts against baseline.pdf")
	b, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("pdf missing: %v (output %q)", err, out)
	}
	if !bytes.HasPrefix(b, []byte("%PDF-")) {
		t.Fatalf("not a pdf")
	}
	if !strings.Contains(out, "1 pages, 0 skipped") {
		t.Fatalf("summary %q", out)
	}
}

func TestRenderCommand_WritesPNGs(t *testing.T) {
	srv := fakeServer(t)
	dir := t.TempDir()
	if _, err := runCmd(t, "--base-url", srv.URL, "render", "2", "--out", dir); err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dir, "regression-01.png"))
	if err != nil {
		t.Fatalf("png missing: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG")) {
		t.Fatalf("not a png")
	}
}

func TestDescribeCommand(t *testing.T) {
	srv := fakeServer(t)
	out, err := runCmd(t, "--base-url", srv.URL, "describe", "regression")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(out, "Pointwise Regression Plot") || !strings.Contains(out, "3 points") {
		t.Fatalf("describe output:\n%s", out)
	}
}

func TestBackendErrorSurfaces(t *testing.T) {
	srv := fakeServer(t)
	_, err := runCmd(t, "--base-url", srv.URL, "describe", "timepoint")
	if err == nil || !strings.Contains(err.Error(), "No data loaded") {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestInspectRejectsNonWorkbook(t *testing.T) {
	p := filepath.Join(t.TempDir(), "data.csv")
	os.WriteFile(p, []byte("a,b\n"), 0o644)
	if _, err := runCmd(t, "inspect", p); err == nil {
		t.Fatalf("csv should be rejected")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, err := runCmd(t, "--log-level", "loud", "types"); err == nil {
		t.Fatalf("expected invalid log level error")
	}
}
