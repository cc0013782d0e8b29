// Package controller runs the viewer page: degree and file selection, upload,
// chart generation and PDF export, driven by an explicit state machine.
package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/render"
	"github.com/iafilius/MPEViewer/src/types"
	"github.com/iafilius/MPEViewer/src/workbook"
)

var (
	// ErrNoFile is returned by Upload before a file is selected.
	ErrNoFile = errors.New("no file selected")
	// ErrNotUploaded is returned by Generate before a successful upload.
	ErrNotUploaded = errors.New("no file uploaded")
	// ErrNothingToExport is returned by Export when no chart is displayed.
	ErrNothingToExport = errors.New("no charts to export")
	// ErrUnknownDegree is returned by SelectDegree for sheets the page does not offer.
	ErrUnknownDegree = errors.New("unknown degree")
)

// User-facing messages.
const (
	msgSelectFile   = "Please select a file first."
	msgUploaded     = "File uploaded successfully!"
	msgUploadFailed = "Error uploading file"
	msgUploadFirst  = "Please upload a file first."
	msgNoImages     = "No images available for export."
	msgExporting    = "Exporting PDF, please wait..."
	msgExported     = "PDF has been exported successfully!"
)

// Options wire a Controller.
type Options struct {
	Source    Source
	Renderers render.Renderers
	Exporter  *export.Exporter
	Notifier  Notifier
	// Degree is the initially selected sheet; empty means 6-degree.
	Degree string
	// ChartWidth is the on-screen width charts are mounted at.
	ChartWidth int
	// CheckFile validates a workbook before it is accepted. Nil means
	// workbook.Check.
	CheckFile func(path, degree string) error
	// OnChange is called after every state change, outside the lock.
	OnChange func(State)
}

// Controller owns the page state and the mounted chart handles.
type Controller struct {
	opts Options

	mu       sync.Mutex
	state    State
	degree   string
	file     string
	selected string
	handles  []render.Handle
}

// New returns a controller in Idle.
func New(opts Options) *Controller {
	if opts.Notifier == nil {
		opts.Notifier = LogNotifier{}
	}
	if opts.Exporter == nil {
		opts.Exporter = export.New(export.PageOptions{})
	}
	if opts.CheckFile == nil {
		opts.CheckFile = func(path, degree string) error {
			_, err := workbook.Check(path, degree)
			return err
		}
	}
	if opts.Degree == "" {
		opts.Degree = types.Degree6
	}
	return &Controller{opts: opts, degree: opts.Degree}
}

// State returns the current phase.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Degree returns the selected degree sheet.
func (c *Controller) Degree() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.degree
}

// File returns the selected workbook path, empty when none.
func (c *Controller) File() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.file
}

// Selected returns the label of the chart type on display.
func (c *Controller) Selected() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Charts returns the mounted handles in display order.
func (c *Controller) Charts() []render.Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]render.Handle, len(c.handles))
	copy(out, c.handles)
	return out
}

// fire applies e under c.mu.
func (c *Controller) fire(e Event) error {
	next, err := Transition(c.state, e)
	if err != nil {
		return err
	}
	logging.Debugf("[controller] %s: %s -> %s", e, c.state, next)
	c.state = next
	return nil
}

func (c *Controller) changed(s State) {
	if c.opts.OnChange != nil {
		c.opts.OnChange(s)
	}
}

// releaseCharts unmounts every handle under c.mu.
func (c *Controller) releaseCharts() {
	render.ReleaseAll(c.handles)
	c.handles = nil
}

// SelectDegree switches the degree sheet. The selected file, the upload and
// the charts are discarded.
func (c *Controller) SelectDegree(degree string) error {
	known := false
	for _, d := range types.Degrees {
		if d == degree {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("%w: %q", ErrUnknownDegree, degree)
	}
	c.mu.Lock()
	if err := c.fire(SelectDegree); err != nil {
		c.mu.Unlock()
		return err
	}
	c.degree = degree
	c.file = ""
	c.selected = ""
	c.releaseCharts()
	s := c.state
	c.mu.Unlock()
	c.changed(s)
	return nil
}

// SelectFile validates path against the selected degree and makes it the
// file to upload. Charts on display are discarded.
func (c *Controller) SelectFile(path string) error {
	c.mu.Lock()
	if !Allowed(c.state, SelectFile) {
		err := c.fire(SelectFile)
		c.mu.Unlock()
		return err
	}
	degree := c.degree
	c.mu.Unlock()

	if err := c.opts.CheckFile(path, degree); err != nil {
		c.opts.Notifier.Error(err.Error())
		return fmt.Errorf("select %s: %w", filepath.Base(path), err)
	}

	c.mu.Lock()
	if err := c.fire(SelectFile); err != nil {
		c.mu.Unlock()
		return err
	}
	c.file = path
	c.selected = ""
	c.releaseCharts()
	s := c.state
	c.mu.Unlock()
	c.changed(s)
	return nil
}

// Upload sends the selected file with the selected degree.
func (c *Controller) Upload(ctx context.Context) (*types.UploadResponse, error) {
	c.mu.Lock()
	if c.file == "" {
		c.mu.Unlock()
		c.opts.Notifier.Error(msgSelectFile)
		return nil, ErrNoFile
	}
	if err := c.fire(UploadStart); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	path, degree := c.file, c.degree
	c.mu.Unlock()
	c.changed(Uploading)

	resp, err := c.upload(ctx, path, degree)

	c.mu.Lock()
	if err != nil {
		c.fire(UploadFail)
		c.selected = ""
		c.releaseCharts()
	} else {
		c.fire(UploadOK)
	}
	s := c.state
	c.mu.Unlock()
	c.changed(s)

	if err != nil {
		logging.Errorf("[controller] upload %s: %v", path, err)
		c.opts.Notifier.Error(msgUploadFailed)
		return nil, err
	}
	c.opts.Notifier.Success(msgUploaded)
	return resp, nil
}

func (c *Controller) upload(ctx context.Context, path, degree string) (*types.UploadResponse, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return c.opts.Source.Upload(ctx, filepath.Base(path), f, degree)
}

// Generate fetches ct's data, builds and mounts its charts, replacing the ones
// on display.
func (c *Controller) Generate(ctx context.Context, ct ChartType) ([]render.Handle, error) {
	c.mu.Lock()
	if c.state == Idle || c.state == FileSelected {
		c.mu.Unlock()
		c.opts.Notifier.Error(msgUploadFirst)
		return nil, ErrNotUploaded
	}
	if err := c.fire(FetchStart); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.selected = ct.Label
	c.releaseCharts()
	c.mu.Unlock()
	c.changed(Fetching)

	handles, err := c.build(ctx, ct)

	c.mu.Lock()
	if err != nil {
		c.fire(FetchFail)
		c.selected = ""
	} else {
		c.fire(FetchOK)
		c.handles = handles
	}
	s := c.state
	c.mu.Unlock()
	c.changed(s)

	if err != nil {
		c.opts.Notifier.Error(fmt.Sprintf("Error generating %s: %v", ct.Label, err))
		return nil, err
	}
	return handles, nil
}

func (c *Controller) build(ctx context.Context, ct ChartType) ([]render.Handle, error) {
	defer logging.TimeTrack(time.Now(), "generate "+ct.Slug)
	specs, err := ct.Build(ctx, c.opts.Source)
	if err != nil {
		return nil, err
	}
	w, h := render.ChartDimensions(c.opts.ChartWidth)
	handles := make([]render.Handle, 0, len(specs))
	for _, s := range specs {
		mh := h
		if s.Kind == chartspec.KindSurface {
			mh = render.SurfaceHeight(h)
		}
		hd, err := c.opts.Renderers.Mount(s, w, mh)
		if err != nil {
			render.ReleaseAll(handles)
			return nil, fmt.Errorf("mount %q: %w", s.Title, err)
		}
		handles = append(handles, hd)
	}
	return handles, nil
}

// Export writes the charts on display to dir as one PDF named after the
// selected chart type. It blocks until the file is saved.
func (c *Controller) Export(dir string) (export.Result, error) {
	c.mu.Lock()
	if c.state != Exporting && (c.selected == "" || len(c.handles) == 0) {
		c.mu.Unlock()
		c.opts.Notifier.Error(msgNoImages)
		return export.Result{}, ErrNothingToExport
	}
	if err := c.fire(ExportStart); err != nil {
		c.mu.Unlock()
		return export.Result{}, err
	}
	job := export.NewJob(SanitizeFileName(c.selected), render.ExportCharts(c.handles))
	c.mu.Unlock()
	c.changed(Exporting)
	c.opts.Notifier.Info(msgExporting)

	res, err := c.opts.Exporter.ExportFile(dir, job)

	c.mu.Lock()
	c.fire(ExportDone)
	c.mu.Unlock()
	c.changed(Rendered)
	c.opts.Notifier.Dismiss()

	if err != nil {
		logging.Errorf("[controller] export %s: %v", job.ID, err)
		c.opts.Notifier.Error(fmt.Sprintf("Error exporting PDF: %v", err))
		return res, err
	}
	c.opts.Notifier.Success(msgExported)
	return res, nil
}

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// SanitizeFileName keeps ASCII letters, digits and spaces of label and adds
// ".pdf".
func SanitizeFileName(label string) string {
	name := unsafeFileChars.ReplaceAllString(label, "")
	if name == "" {
		name = "charts"
	}
	return name + ".pdf"
}
