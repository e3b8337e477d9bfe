package main

import (
	"github.com/spf13/cobra"

	"folio/internal/domain/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:           "folio",
	Short:         "Static blog and photo portfolio generator",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "site.yaml", "site config file")
}

// loadConfig reads --config, then FOLIO_* / SITE_URL / SITE_PATH from the
// environment.
func loadConfig() (config.Config, error) {
	return config.Load(cfgFile, config.NewEnv())
}
