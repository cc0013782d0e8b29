// Command mpectl drives the MPE viewer headlessly: it checks workbooks,
// uploads them, and renders or exports the chart sets to files.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iafilius/MPEViewer/src/chartspec"
	"github.com/iafilius/MPEViewer/src/client"
	"github.com/iafilius/MPEViewer/src/config"
	"github.com/iafilius/MPEViewer/src/controller"
	"github.com/iafilius/MPEViewer/src/export"
	"github.com/iafilius/MPEViewer/src/logging"
	"github.com/iafilius/MPEViewer/src/render"
	"github.com/iafilius/MPEViewer/src/workbook"
)

// app carries the resolved configuration into subcommands.
type app struct {
	configPath string
	baseURL    string
	logLevel   string

	cfg *config.Config
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "mpectl",
		Short: "Inspect, upload, render and export MPE workbooks",
		Long: `mpectl talks to the MPE data server the desktop viewer uses.
It checks a workbook before upload, uploads it for a degree sheet, and renders
each chart set to PNG files or one PDF.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: mpeviewer.yaml or the user config dir)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "Data server URL (overrides config and MPE_BASE_URL)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(
		a.inspectCmd(),
		a.uploadCmd(),
		a.renderCmd(),
		a.exportCmd(),
		a.describeCmd(),
		a.healthCmd(),
		typesCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	path := a.configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Resolve(path)
	if err != nil {
		return err
	}
	if a.baseURL != "" {
		cfg.Backend.URL = a.baseURL
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if !logging.SetLevel(cfg.Log.Level) {
		return fmt.Errorf("invalid log level %q", cfg.Log.Level)
	}
	logging.SetOutput(cmd.ErrOrStderr())
	a.cfg = cfg
	return nil
}

func (a *app) client() *client.Client {
	return client.New(a.cfg.Backend.URL, a.cfg.Backend.Timeout)
}

func (a *app) renderers() render.Renderers {
	return render.Renderers{
		Canvas: render.CanvasRenderer{Hints: a.cfg.Viewer.Hints},
		Surface: render.SurfaceRenderer{
			Azimuth:    a.cfg.Surface.Azimuth,
			Elevation:  a.cfg.Surface.Elevation,
			Resolution: a.cfg.Surface.Resolution,
		},
	}
}

func (a *app) exporter() *export.Exporter {
	return export.New(export.PageOptions{
		Orientation: a.cfg.Export.Orientation,
		Size:        a.cfg.Export.PageSize,
	})
}

func (a *app) controller() *controller.Controller {
	return controller.New(controller.Options{
		Source:     a.client(),
		Renderers:  a.renderers(),
		Exporter:   a.exporter(),
		Notifier:   controller.LogNotifier{},
		Degree:     a.cfg.Viewer.Degree,
		ChartWidth: a.cfg.Viewer.ChartWidth,
	})
}

func (a *app) inspectCmd() *cobra.Command {
	var degree string
	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Check a workbook for the selected degree sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if degree == "" {
				degree = a.cfg.Viewer.Degree
			}
			rep, err := workbook.Inspect(args[0], degree)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:        %s\n", rep.Path)
			fmt.Fprintf(out, "degree:      %s\n", rep.Degree)
			fmt.Fprintf(out, "sheets:      %s\n", strings.Join(rep.Sheets, ", "))
			fmt.Fprintf(out, "data rows:   %d\n", rep.DataRows)
			fmt.Fprintf(out, "coordinates: %s\n", strings.Join(rep.CoordinateColumns, ", "))
			fmt.Fprintf(out, "time points: %s\n", strings.Join(rep.TimeColumns, ", "))
			if err := rep.Validate(); err != nil {
				return err
			}
			fmt.Fprintln(out, "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&degree, "degree", "", "Degree sheet: 6-degree, 12-degree or 10^2 (default from config)")
	return cmd
}

func (a *app) uploadCmd() *cobra.Command {
	var degree string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload a workbook to the data server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := a.controller()
			if err := a.upload(cmd.Context(), c, args[0], degree); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "uploaded %s (%s)\n", args[0], c.Degree())
			return nil
		},
	}
	cmd.Flags().StringVar(&degree, "degree", "", "Degree sheet (default from config)")
	return cmd
}

// upload runs the select and upload steps of the page.
func (a *app) upload(ctx context.Context, c *controller.Controller, file, degree string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if degree != "" && degree != c.Degree() {
		if err := c.SelectDegree(degree); err != nil {
			return err
		}
	}
	if err := c.SelectFile(file); err != nil {
		return err
	}
	_, err := c.Upload(ctx)
	return err
}

// chartFlags are shared by render and export.
type chartFlags struct {
	out    string
	file   string
	degree string
}

func (f *chartFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "Output directory (default from config)")
	cmd.Flags().StringVar(&f.file, "file", "", "Upload this workbook first; otherwise the server's current data is used")
	cmd.Flags().StringVar(&f.degree, "degree", "", "Degree sheet for --file")
}

// mount fetches and mounts the charts of ct. With --file the whole page flow
// runs through the controller; without it the data already on the server is
// used directly.
func (a *app) mount(ctx context.Context, ct controller.ChartType, f chartFlags) ([]render.Handle, *controller.Controller, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if f.file != "" {
		c := a.controller()
		if err := a.upload(ctx, c, f.file, f.degree); err != nil {
			return nil, nil, err
		}
		handles, err := c.Generate(ctx, ct)
		return handles, c, err
	}
	specs, err := ct.Build(ctx, a.client())
	if err != nil {
		return nil, nil, err
	}
	r := a.renderers()
	w, h := render.ChartDimensions(a.cfg.Viewer.ChartWidth)
	handles := make([]render.Handle, 0, len(specs))
	for _, s := range specs {
		mh := h
		if s.Kind == chartspec.KindSurface {
			mh = render.SurfaceHeight(h)
		}
		hd, err := r.Mount(s, w, mh)
		if err != nil {
			render.ReleaseAll(handles)
			return nil, nil, err
		}
		handles = append(handles, hd)
	}
	return handles, nil, nil
}

func (a *app) outDir(f chartFlags) string {
	if f.out != "" {
		return f.out
	}
	return a.cfg.Export.Dir
}

func (a *app) renderCmd() *cobra.Command {
	var f chartFlags
	cmd := &cobra.Command{
		Use:   "render TYPE",
		Short: "Render a chart set to PNG files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := controller.LookupChartType(args[0])
			if err != nil {
				return err
			}
			handles, _, err := a.mount(cmd.Context(), ct, f)
			if err != nil {
				return err
			}
			defer render.ReleaseAll(handles)
			paths, err := writePNGs(a.outDir(f), ct.Slug, handles)
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return err
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var f chartFlags
	cmd := &cobra.Command{
		Use:   "export TYPE",
		Short: "Export a chart set as one PDF, one chart per page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := controller.LookupChartType(args[0])
			if err != nil {
				return err
			}
			handles, c, err := a.mount(cmd.Context(), ct, f)
			if err != nil {
				return err
			}
			defer render.ReleaseAll(handles)
			var res export.Result
			if c != nil {
				res, err = c.Export(a.outDir(f))
			} else {
				job := export.NewJob(controller.SanitizeFileName(ct.Label), render.ExportCharts(handles))
				res, err = a.exporter().ExportFile(a.outDir(f), job)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d pages, %d skipped)\n", res.Path, res.Pages, res.Skipped)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func (a *app) describeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "describe TYPE",
		Short: "Fetch a chart set and print what would be drawn",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ct, err := controller.LookupChartType(args[0])
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			specs, err := ct.Build(ctx, a.client())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}
			for i, s := range specs {
				if i > 0 {
					fmt.Fprintln(out)
				}
				if err := chartspec.Describe(out, s); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the chart specifications as JSON")
	return cmd
}

func (a *app) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the data server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h, err := a.client().Health(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.cfg.Backend.URL, h.Status)
			return nil
		},
	}
}

func typesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the chart types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, ct := range controller.ChartTypes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d  %-15s %s\n", i+1, ct.Slug, ct.Label)
			}
			return nil
		},
	}
}
