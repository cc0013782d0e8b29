package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestUpload_SendsFileAndDegree(t *testing.T) {
	var gotName, gotBody, gotDegree string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != PathUpload {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer f.Close()
		b, _ := io.ReadAll(f)
		gotName, gotBody = hdr.Filename, string(b)
		gotDegree = r.FormValue("degree")
		json.NewEncoder(w).Encode(map[string]interface{}{"message": "ok", "top_cols": []string{"a"}})
	}))
	defer srv.Close()

	c := New(srv.URL, 5*time.Second)
	resp, err := c.Upload(context.Background(), "mpe.xlsx", strings.NewReader("PK..."), "12-degree")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if gotName != "mpe.xlsx" || gotBody != "PK..." || gotDegree != "12-degree" {
		t.Fatalf("server saw name=%q body=%q degree=%q", gotName, gotBody, gotDegree)
	}
	if resp.Message != "ok" || len(resp.TopCols) != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestNon2xx_ReturnsBodyAsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathRegression:
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "No regression columns found."}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("backend exploded\n"))
		}
	}))
	defer srv.Close()

	c := New(srv.URL+"/", 0)
	_, err := c.Regression(context.Background())
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %T %v", err, err)
	}
	if se.StatusCode != http.StatusBadRequest || err.Error() != "No regression columns found." {
		t.Fatalf("unexpected error: %d %q", se.StatusCode, err.Error())
	}

	_, err = c.TimepointBars(context.Background())
	if err == nil || err.Error() != "backend exploded" {
		t.Fatalf("expected raw body as message, got %v", err)
	}
}

func TestGetters_DecodePayloads(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathTimepointScatter:
			w.Write([]byte(`{"datasets":[{"label":"0 months","points":[{"x":1,"y":2,"value":null},{"x":3,"y":4,"value":15}]}],"xRange":[0,5],"yRange":[0,5],"xLabel":"X (coordinate)"}`))
		case PathChangeBars:
			w.Write([]byte(`{"xLabels":["[months]_3"],"seriesLabels":["normal","subnormal","abnormal","dense scotoma"],"matrix":[[1],[2],[3],[4]]}`))
		case PathHealth:
			w.Write([]byte(`{"status":"Backend server is running"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	c := New(srv.URL, time.Second)
	ctx := context.Background()

	ds, err := c.TimepointScatter(ctx)
	if err != nil {
		t.Fatalf("scatter: %v", err)
	}
	if len(ds.Datasets) != 1 || ds.Datasets[0].Points[0].Value != nil || *ds.Datasets[0].Points[1].Value != 15 {
		t.Fatalf("scatter decode: %+v", ds)
	}
	if ds.XRange == nil || ds.XRange[1] != 5 {
		t.Fatalf("x range decode: %+v", ds.XRange)
	}

	bars, err := c.ChangeBars(ctx)
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	if err := bars.Validate(4); err != nil {
		t.Fatalf("bars validate: %v", err)
	}

	h, err := c.Health(ctx)
	if err != nil || h.Status == "" {
		t.Fatalf("health: %v %+v", err, h)
	}

	if _, err := c.ChangeScatter(ctx); err == nil {
		t.Fatalf("expected 404 error")
	}
}

func TestNew_DefaultsBaseURL(t *testing.T) {
	if c := New("  ", 0); c.BaseURL != DefaultBaseURL {
		t.Fatalf("base = %q", c.BaseURL)
	}
}
