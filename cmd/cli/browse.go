package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mangashelf/internal/browse"
	"mangashelf/internal/catalog"
	"mangashelf/internal/normalize"
	"mangashelf/pkg/database"
	"mangashelf/pkg/utils"
)

var browseFilters = newFilters()

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Filter, sort and page the catalog locally",
	Example: `  mangashelf browse --file catalog.json --tag Magic --no-tag Gore --sort rating
  mangashelf browse --url https://example.com/catalog.json --kind manhwa --chapters-min 100 -p 2`,
	RunE: func(cmd *cobra.Command, args []string) error {
		actions, err := browseFilters.actions()
		if err != nil {
			return err
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
		v, err := s.Page(browseFilters.pageOp())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(cmd.OutOrStdout(), v)
		}
		return printView(cmd.OutOrStdout(), v)
	},
}

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List the tags the catalog uses",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openLocal(cmd)
		if err != nil {
			return err
		}
		for _, t := range s.Facets().Tags {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	},
}

func init() {
	browseFilters.register(browseCmd)
	browseCmd.Flags().Bool("json", false, "print the page as JSON")
	addSourceFlags(browseCmd)
	addSourceFlags(tagsCmd)
	rootCmd.AddCommand(browseCmd, tagsCmd)
}

// openLocal loads a session in-process from the configured source.
func openLocal(cmd *cobra.Command) (*browse.Session, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	src, closeFn, err := localSource(cfg)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	s := browse.NewSession("cli", browse.Options{
		Locale:     cfg.Browse.Locale,
		PageSize:   cfg.Browse.PageSize,
		Normalizer: normalize.New(cfg.Catalog.CoverBaseURL),
	})
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Load(ctx, src); err != nil {
		return nil, fmt.Errorf("load catalog from %s: %w", src.Name(), err)
	}
	return s, nil
}

// localSource falls back to the imported sqlite catalog when neither a URL
// nor a file is configured.
func localSource(cfg utils.Config) (catalog.Source, func(), error) {
	if cfg.Catalog.URL != "" || cfg.Catalog.File != "" {
		src, err := catalog.Select(cfg.Catalog.URL, cfg.Catalog.File, cfg.Catalog.Timeout, nil)
		return src, func() {}, err
	}
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return catalog.NewDBSource(db), func() { _ = db.Close() }, nil
}
