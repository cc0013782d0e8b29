// Command mpeviewer is the desktop MPE viewer: pick a degree sheet and a
// workbook, upload it, show one of the five chart sets, and export the charts
// on screen as one PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/iafilius/MPEViewer/src/client"
	"github.com/iafilius/MPEViewer/src/config"
	"github.com/iafilius/MPEViewer/src/controller"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/render"
	"github.com/iafilius/MPEViewer/src/types"
)

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

// viewer holds the window and the widgets the controller drives.
type viewer struct {
	app    fyne.App
	window fyne.Window
	cfg    *config.Config
	ctl    *controller.Controller

	degree    *widget.RadioGroup
	fileLabel *widget.Label
	uploadBtn *widget.Button
	chartBtns []*widget.Button
	exportBtn *widget.Button
	heading   *widget.Label
	charts    *fyne.Container
	scroll    *container.Scroll
}

func main() {
	var configPath, fileFlag string
	flag.StringVar(&configPath, "config", "", "Config file (default: mpeviewer.yaml or the user config dir)")
	flag.StringVar(&fileFlag, "file", "", "Workbook (.xlsx) to preselect")
	flag.Parse()

	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	cfg, err := config.Resolve(configPath)
	if err != nil {
		logging.Warnf("[viewer] config: %v; using defaults", err)
		cfg = config.Default()
	}
	logging.SetLevel(cfg.Log.Level)

	a := app.NewWithID("org.mpe.viewer")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("MPE Viewer")
	w.Resize(fyne.NewSize(1100, 850))

	v := &viewer{app: a, window: w, cfg: cfg}
	status := newStatusBar()
	v.ctl = controller.New(controller.Options{
		Source: client.New(cfg.Backend.URL, cfg.Backend.Timeout),
		Renderers: render.Renderers{
			Canvas: render.CanvasRenderer{Hints: cfg.Viewer.Hints},
			Surface: render.SurfaceRenderer{
				Azimuth:    cfg.Surface.Azimuth,
				Elevation:  cfg.Surface.Elevation,
				Resolution: cfg.Surface.Resolution,
			},
		},
		Exporter: export.New(export.PageOptions{
			Orientation: cfg.Export.Orientation,
			Size:        cfg.Export.PageSize,
			Creator:     "MPE Viewer",
		}),
		Notifier:   status,
		Degree:     loadDegree(a, cfg.Viewer.Degree),
		ChartWidth: cfg.Viewer.ChartWidth,
		OnChange:   func(controller.State) { fyne.Do(v.refreshControls) },
	})

	w.SetContent(v.build(status))
	v.buildMenus()
	v.refreshControls()

	if fileFlag != "" {
		v.selectFile(fileFlag)
	}
	w.SetOnClosed(func() { render.ReleaseAll(v.ctl.Charts()) })
	w.ShowAndRun()
}

func (v *viewer) build(status *statusBar) fyne.CanvasObject {
	v.degree = widget.NewRadioGroup(types.Degrees, func(d string) {
		if d == "" || d == v.ctl.Degree() {
			return
		}
		if err := v.ctl.SelectDegree(d); err != nil {
			logging.Warnf("[viewer] degree %s: %v", d, err)
			v.degree.SetSelected(v.ctl.Degree())
			return
		}
		saveDegree(v.app, d)
		v.fileLabel.SetText("No file selected")
		v.showCharts("", nil)
	})
	v.degree.Horizontal = true
	v.degree.SetSelected(v.ctl.Degree())

	v.fileLabel = widget.NewLabel("No file selected")
	chooseBtn := widget.NewButtonWithIcon("Choose file…", theme.FolderOpenIcon(), v.openFileDialog)
	v.uploadBtn = widget.NewButtonWithIcon("Upload", theme.UploadIcon(), v.upload)
	v.uploadBtn.Importance = widget.HighImportance

	chartRow := container.NewGridWithColumns(len(controller.ChartTypes))
	for _, ct := range controller.ChartTypes {
		ct := ct
		b := widget.NewButton(ct.Label, func() { v.generate(ct) })
		v.chartBtns = append(v.chartBtns, b)
		chartRow.Add(b)
	}

	v.exportBtn = widget.NewButtonWithIcon("Export as PDF", theme.DocumentSaveIcon(), v.exportPDF)
	v.heading = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})

	top := container.NewVBox(
		container.NewHBox(widget.NewLabel("Degree:"), v.degree),
		container.NewBorder(nil, nil, chooseBtn, v.uploadBtn, v.fileLabel),
		chartRow,
		widget.NewSeparator(),
	)
	v.charts = container.NewVBox()
	v.scroll = container.NewVScroll(v.charts)
	v.scroll.SetMinSize(fyne.NewSize(900, 600))
	bottom := container.NewBorder(nil, nil, nil, v.exportBtn, status.object())
	return container.NewBorder(top, bottom, nil, nil, container.NewBorder(v.heading, nil, nil, nil, v.scroll))
}

func (v *viewer) buildMenus() {
	var items []*fyne.MenuItem
	for _, f := range recentFiles(v.app) {
		f := f
		items = append(items, fyne.NewMenuItem(truncatePath(f, 60), func() { v.selectFile(f) }))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(v.app); v.buildMenus() })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open…", v.openFileDialog),
		fyne.NewMenuItem("Upload", v.upload),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export as PDF…", v.exportPDF),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { v.window.Close() }),
	)
	v.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu))

	if canv := v.window.Canvas(); canv != nil {
		for _, mod := range []fyne.KeyModifier{fyne.KeyModifierSuper, fyne.KeyModifierControl} {
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: mod}, func(fyne.Shortcut) { v.openFileDialog() })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyE, Modifier: mod}, func(fyne.Shortcut) { v.exportPDF() })
			canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: mod}, func(fyne.Shortcut) { v.window.Close() })
		}
	}
}

// refreshControls enables what the current state allows.
func (v *viewer) refreshControls() {
	s := v.ctl.State()
	busy := s == controller.Uploading || s == controller.Fetching || s == controller.Exporting
	setEnabled(v.uploadBtn, !busy && v.ctl.File() != "")
	for _, b := range v.chartBtns {
		setEnabled(b, !busy)
	}
	setEnabled(v.exportBtn, s == controller.Rendered)
	if busy {
		v.degree.Disable()
	} else {
		v.degree.Enable()
	}
}

func setEnabled(b *widget.Button, on bool) {
	if on {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (v *viewer) openFileDialog() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		path := rc.URI().Path()
		rc.Close()
		v.selectFile(path)
	}, v.window)
	d.Show()
}

// selectFile checks the workbook off the UI goroutine; excelize reads the
// whole sheet.
func (v *viewer) selectFile(path string) {
	go func() {
		err := v.ctl.SelectFile(path)
		fyne.Do(func() {
			if err != nil {
				dialog.ShowError(err, v.window)
				return
			}
			v.fileLabel.SetText(truncatePath(path, 60))
			addRecentFile(v.app, path)
			v.buildMenus()
			v.showCharts("", nil)
		})
	}()
}

func (v *viewer) upload() {
	go func() {
		if _, err := v.ctl.Upload(context.Background()); err != nil {
			logging.Debugf("[viewer] upload: %v", err)
		}
	}()
}

func (v *viewer) generate(ct controller.ChartType) {
	go func() {
		handles, err := v.ctl.Generate(context.Background(), ct)
		fyne.Do(func() {
			if err != nil {
				v.showCharts("", nil)
				return
			}
			v.showCharts(ct.Label, handles)
		})
	}()
}

// showCharts replaces the chart column with the images of handles.
func (v *viewer) showCharts(heading string, handles []render.Handle) {
	v.heading.SetText(heading)
	v.charts.RemoveAll()
	for _, h := range handles {
		img := h.Image()
		if img == nil {
			continue
		}
		v.charts.Add(chartImage(img))
	}
	v.charts.Refresh()
	v.scroll.ScrollToTop()
}

func chartImage(img image.Image) *canvas.Image {
	ci := canvas.NewImageFromImage(img)
	ci.FillMode = canvas.ImageFillContain
	b := img.Bounds()
	ci.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	return ci
}

func (v *viewer) exportPDF() {
	dir := v.cfg.Export.Dir
	go func() {
		res, err := v.ctl.Export(dir)
		if err != nil {
			return
		}
		abs, aerr := filepath.Abs(res.Path)
		if aerr != nil {
			abs = res.Path
		}
		logging.Infof("[viewer] exported %s (%d pages)", abs, res.Pages)
		v.app.SendNotification(fyne.NewNotification("MPE Viewer", fmt.Sprintf("Saved %s", filepath.Base(abs))))
	}()
}
