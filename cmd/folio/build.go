package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"folio/internal/build"
)

var forceBuild bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the site, thumbnails and feed into the public dir",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		res, err := (&build.Builder{Cfg: cfg, Force: forceBuild}).Run(ctx)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			log.Printf("[warn] %s: %s", w.Path, w.Msg)
		}
		log.Printf("[build] %d posts, %d photos -> %s (feed %s)", res.Posts, res.Photos, cfg.Build.PublicDir, res.FeedPath)
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&forceBuild, "force", false, "rewrite pages even when unchanged")
	rootCmd.AddCommand(buildCmd)
}
