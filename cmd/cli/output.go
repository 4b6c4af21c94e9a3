package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"mangashelf/internal/browse"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printView writes one page as an aligned table followed by a page footer.
func printView(w io.Writer, v browse.View) error {
	if v.Status == browse.StatusFailed {
		return fmt.Errorf("catalog unavailable: %s", v.Error)
	}
	if v.Total == 0 {
		_, err := fmt.Fprintln(w, "no titles match")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TITLE\tAUTHOR\tKIND\tYEAR\tCHAPTERS\tRATING\tTAGS")
	for _, it := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%.1f\t%s\n",
			truncate(it.Title, 40), truncate(it.Author, 24), it.Kind,
			it.ReleaseYear, it.ChapterCount, it.Rating, truncate(strings.Join(it.Tags, ", "), 32))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\npage %d of %d (%d titles)\n", v.Page, v.TotalPages, v.Total)
	return err
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
