package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"mangashelf/pkg/models"
)

var exportFilters = newFilters()

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every matching title to CSV or JSON",
	Long: "export applies the same filters as browse but writes the whole result list. " +
		"JSON output is a {\"data\": [...]} catalog that --file and mirror-server accept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		actions, err := exportFilters.actions()
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		if format != "csv" && format != "json" {
			return fmt.Errorf("--format: want csv or json, got %q", format)
		}

		s, err := openLocal(cmd)
		if err != nil {
			return err
		}
		for _, a := range actions {
			if _, err := s.Dispatch(a); err != nil {
				return err
			}
		}
		items := s.Results()

		out := cmd.OutOrStdout()
		if path, _ := cmd.Flags().GetString("out"); path != "" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return err
			}
			f, err := os.Create(path)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		if format == "json" {
			return printJSON(out, map[string]any{"data": items, "total": len(items)})
		}
		return writeCSV(out, items)
	},
}

func init() {
	exportFilters.register(exportCmd)
	exportCmd.Flags().String("format", "csv", "csv or json")
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	addSourceFlags(exportCmd)
	rootCmd.AddCommand(exportCmd)
}

var csvHeader = []string{
	"id", "title", "author", "kind", "categories", "tags", "release_year", "chapters_count",
	"rating", "age_rating", "title_status", "translation_status", "release_formats", "views", "cover",
}

// writeCSV uses column names the CSV source reads back.
func writeCSV(w io.Writer, items []models.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, it := range items {
		cover := ""
		if it.CoverImage != nil {
			cover = *it.CoverImage
		}
		row := []string{
			it.ID, it.Title, it.Author, string(it.Kind),
			strings.Join(it.Categories, ", "), strings.Join(it.Tags, ", "),
			strconv.Itoa(it.ReleaseYear), strconv.Itoa(it.ChapterCount),
			strconv.FormatFloat(it.Rating, 'f', -1, 64),
			string(it.AgeRating), string(it.TitleStatus), string(it.TranslationStatus),
			strings.Join(it.ReleaseFormats, ", "), strconv.Itoa(it.ViewCount), cover,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
