package main

import (
	"github.com/spf13/cobra"

	"mangashelf/internal/logging"
	"mangashelf/pkg/utils"
)

var rootCmd = &cobra.Command{
	Use:           "mangashelf",
	Short:         "Browse a manga catalog from the terminal",
	Long:          "mangashelf filters, sorts and pages a manga catalog, locally or against a running server.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = "debug"
		}
		logging.Init(logging.Config{Level: level, Format: "console"})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log fetches and timings")
}

// loadConfig reads the shared configuration and applies source flags on top.
func loadConfig(cmd *cobra.Command) (utils.Config, error) {
	cfg, err := utils.Load()
	if err != nil {
		return utils.Config{}, err
	}
	if v, _ := cmd.Flags().GetString("url"); v != "" {
		cfg.Catalog.URL = v
	}
	if v, _ := cmd.Flags().GetString("file"); v != "" {
		cfg.Catalog.File = v
	}
	if v, _ := cmd.Flags().GetString("locale"); v != "" {
		cfg.Browse.Locale = v
	}
	return cfg, nil
}

func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("url", "", "catalog URL (overrides config)")
	cmd.Flags().String("file", "", "catalog JSON file (overrides config)")
	cmd.Flags().String("locale", "", "collation locale for names and tags")
}
