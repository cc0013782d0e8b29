package export

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png" // register PNG for DecodeConfig
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/iafilius/MPEViewer/src/logging"
)

// Job is a point-in-time snapshot of the charts on screen. It is consumed once.
type Job struct {
	ID       string
	FileName string
	Charts   []Chart
	Created  time.Time
}

// NewJob copies charts so later changes to the caller's slice do not leak in.
func NewJob(fileName string, charts []Chart) *Job {
	cp := make([]Chart, len(charts))
	copy(cp, charts)
	return &Job{
		ID:       uuid.New().String(),
		FileName: fileName,
		Charts:   cp,
		Created:  time.Now(),
	}
}

// Result reports what an export produced.
type Result struct {
	JobID   string
	Path    string
	Pages   int
	Skipped int
}

// Exporter assembles PDFs from chart handles.
type Exporter struct {
	opts   PageOptions
	newDoc func(PageOptions) Document
}

// New returns an exporter writing fpdf documents with the given geometry.
func New(opts PageOptions) *Exporter {
	return &Exporter{opts: opts, newDoc: newPDFDocument}
}

// Write acquires one image per chart and writes the PDF to w. Charts that
// yield no image are skipped without leaving a blank page. Only document
// assembly or output errors are returned.
func (e *Exporter) Write(w io.Writer, charts []Chart) (Result, error) {
	defer logging.TimeTrack(time.Now(), "pdf export")
	doc := e.newDoc(e.opts)
	res, err := e.assemble(doc, charts)
	if err != nil {
		return res, err
	}
	if err := doc.Output(w); err != nil {
		return res, fmt.Errorf("write pdf: %w", err)
	}
	return res, nil
}

func (e *Exporter) assemble(doc Document, charts []Chart) (Result, error) {
	var res Result
	// Issue every acquisition first, then collect strictly by index.
	pending := make([]<-chan Snapshot, len(charts))
	for i, c := range charts {
		if c == nil {
			continue
		}
		pending[i] = c.acquire()
	}
	for i, ch := range pending {
		if ch == nil {
			res.Skipped++
			logging.Debugf("export: chart %d not mounted, skipped", i)
			continue
		}
		snap := <-ch
		if len(snap.PNG) == 0 || snap.Err != nil {
			res.Skipped++
			logging.Debugf("export: chart %d (%s) yielded no image: %v", i, charts[i].Kind(), snap.Err)
			continue
		}
		cfg, _, err := image.DecodeConfig(bytes.NewReader(snap.PNG))
		if err != nil {
			res.Skipped++
			logging.Debugf("export: chart %d image undecodable: %v", i, err)
			continue
		}
		doc.AddPage()
		pw, ph := doc.PageSize()
		r := Fit(float64(cfg.Width), float64(cfg.Height), pw, ph)
		if err := doc.PlacePNG(fmt.Sprintf("chart-%d", i), snap.PNG, r); err != nil {
			return res, fmt.Errorf("place chart %d: %w", i, err)
		}
		res.Pages++
	}
	return res, nil
}

// ExportFile runs job and saves the PDF as dir/job.FileName. The file only
// appears once the document is complete.
func (e *Exporter) ExportFile(dir string, job *Job) (Result, error) {
	if job == nil {
		return Result{}, errors.New("export: nil job")
	}
	if job.FileName == "" {
		return Result{JobID: job.ID}, errors.New("export: empty file name")
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{JobID: job.ID}, fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.pdf")
	if err != nil {
		return Result{JobID: job.ID}, fmt.Errorf("create temp pdf: %w", err)
	}
	tmpName := tmp.Name()
	res, werr := e.Write(tmp, job.Charts)
	res.JobID = job.ID
	cerr := tmp.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(tmpName)
		return res, werr
	}
	final := filepath.Join(dir, job.FileName)
	if err := os.Rename(tmpName, final); err != nil {
		os.Remove(tmpName)
		return res, fmt.Errorf("save %s: %w", final, err)
	}
	res.Path = final
	logging.Infof("export %s: %d page(s), %d skipped -> %s", job.ID, res.Pages, res.Skipped, final)
	return res, nil
}
