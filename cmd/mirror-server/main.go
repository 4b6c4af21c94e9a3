package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"mangashelf/internal/catalog"
	"mangashelf/internal/logging"
	"mangashelf/pkg/utils"
)

const defaultMirrorPath = "data/mirror.json"

// mirror-server serves a catalog file at GET /titles so a session can be
// pointed at a local URL.
func main() {
	cfg, err := utils.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("load config")
	}
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	log := logging.Component("mirror")

	dataPath := cfg.Catalog.File
	if dataPath == "" {
		dataPath = defaultMirrorPath
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), logging.Requests())
	router.GET("/titles", func(c *gin.Context) {
		b, err := os.ReadFile(dataPath)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "cannot read catalog: " + err.Error()})
			return
		}
		// A file sessions could not load is reported, not served.
		if _, err := catalog.DecodePayload(b); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "invalid catalog: " + err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", b)
	})

	log.Info().Str("addr", cfg.Server.MirrorAddr).Str("file", dataPath).Msg("mirror listening")
	if err := router.Run(cfg.Server.MirrorAddr); err != nil {
		logging.Fatal().Err(err).Msg("mirror stopped")
	}
}
