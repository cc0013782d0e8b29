package chartspec

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
)

// Describe writes a plain-text summary of s: kind, title, axes and one line
// per series with its colour bucket histogram or bar totals.
func Describe(w io.Writer, s Spec) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "kind\t%s\n", s.Kind)
	fmt.Fprintf(tw, "title\t%s\n", s.Title)
	if s.XLabel != "" || s.YLabel != "" {
		fmt.Fprintf(tw, "axes\t%s / %s", s.XLabel, s.YLabel)
		if s.ZLabel != "" {
			fmt.Fprintf(tw, " / %s", s.ZLabel)
		}
		fmt.Fprintln(tw)
	}
	if s.XRange != nil {
		fmt.Fprintf(tw, "x range\t[%g, %g]\n", s.XRange.Min, s.XRange.Max)
	}
	if s.YRange != nil {
		fmt.Fprintf(tw, "y range\t[%g, %g]\n", s.YRange.Min, s.YRange.Max)
	}
	if len(s.Categories) > 0 {
		fmt.Fprintf(tw, "categories\t%s\n", strings.Join(s.Categories, ", "))
	}
	for _, sr := range s.Series {
		switch {
		case len(sr.Values) > 0:
			total := 0.0
			for _, v := range sr.Values {
				total += v
			}
			fmt.Fprintf(tw, "series %q\t%s\ttotal %g\n", sr.Label, sr.Color, total)
		default:
			fmt.Fprintf(tw, "series %q\t%d points\t%s\n", sr.Label, len(sr.Points), bucketCounts(sr.Points))
		}
	}
	return tw.Flush()
}

func bucketCounts(pts []Point) string {
	counts := map[string]int{}
	for _, p := range pts {
		counts[string(p.Color)]++
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		name := k
		if name == "" {
			name = "none"
		}
		parts[i] = fmt.Sprintf("%s=%d", name, counts[k])
	}
	return strings.Join(parts, " ")
}
