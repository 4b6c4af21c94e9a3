package main

import (
	"context"
	"time"

	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
	"mangashelf/internal/normalize"
	"mangashelf/pkg/database"
	"mangashelf/pkg/utils"
)

// scraper copies the configured remote and file catalogs into the sqlite
// manga table, which sessions read when no URL or file is configured.
func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("scraper")

	var sources []catalog.Source
	if cfg.Catalog.URL != "" {
		sources = append(sources, catalog.NewHTTPSource(cfg.Catalog.URL, cfg.Catalog.Timeout))
	}
	if cfg.Catalog.File != "" {
		sources = append(sources, catalog.NewFileSource(cfg.Catalog.File))
	}
	if len(sources) == 0 {
		logging.Fatal().Err(catalog.ErrNoSource).Msg("set MANGASHELF_CATALOG__URL or MANGASHELF_CATALOG__FILE")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := database.MustOpen(cfg.Database)
	defer db.Close()

	src := catalog.NewMultiSource(sources...)
	n, err := catalog.Import(ctx, db, src, normalize.New(cfg.Catalog.CoverBaseURL))
	if err != nil {
		logging.Fatal().Err(err).Str("source", src.Name()).Msg("import failed")
	}
	log.Info().Int("titles", n).Str("db", cfg.Database.Path).Msg("catalog imported")
}
