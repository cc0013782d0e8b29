package export

import (
	"bytes"
	"io"

	"github.com/go-pdf/fpdf"
)

// Document is the page-assembly surface the exporter draws on.
type Document interface {
	PageSize() (w, h float64)
	AddPage()
	PageCount() int
	PlacePNG(name string, png []byte, r Rect) error
	Output(w io.Writer) error
}

// PageOptions select the PDF page geometry. Zero values mean A4 portrait in
// millimetres.
type PageOptions struct {
	Orientation string
	Unit        string
	Size        string
	Title       string
	Creator     string
}

func (o PageOptions) withDefaults() PageOptions {
	if o.Orientation == "" {
		o.Orientation = "P"
	}
	if o.Unit == "" {
		o.Unit = "mm"
	}
	if o.Size == "" {
		o.Size = "A4"
	}
	if o.Creator == "" {
		o.Creator = "MPEViewer"
	}
	return o
}

type pdfDocument struct {
	pdf *fpdf.Fpdf
}

func newPDFDocument(o PageOptions) Document {
	o = o.withDefaults()
	pdf := fpdf.New(o.Orientation, o.Unit, o.Size, "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator(o.Creator, true)
	if o.Title != "" {
		pdf.SetTitle(o.Title, true)
	}
	return &pdfDocument{pdf: pdf}
}

func (d *pdfDocument) PageSize() (float64, float64) { return d.pdf.GetPageSize() }
func (d *pdfDocument) AddPage()                     { d.pdf.AddPage() }
func (d *pdfDocument) PageCount() int               { return d.pdf.PageCount() }

func (d *pdfDocument) PlacePNG(name string, png []byte, r Rect) error {
	opt := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opt, bytes.NewReader(png))
	if err := d.pdf.Error(); err != nil {
		return err
	}
	d.pdf.ImageOptions(name, r.X, r.Y, r.W, r.H, false, opt, 0, "")
	return d.pdf.Error()
}

func (d *pdfDocument) Output(w io.Writer) error {
	return d.pdf.Output(w)
}
