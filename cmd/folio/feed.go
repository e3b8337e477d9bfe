package main

import (
	"log"

	"github.com/spf13/cobra"

	"folio/internal/feed"
	"folio/internal/ingest"
)

var feedCmd = &cobra.Command{
	Use:   "feed",
	Short: "Write only the RSS feed",
	Long: `Writes <public_dir>/rss.xml from content/posts. Item content is the
raw markdown body; links use SITE_URL and SITE_PATH.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		posts, warns := ingest.Posts(cfg.PostsPath()).Scan()
		for _, w := range warns {
			log.Printf("[warn] %s: %s", w.Path, w.Msg)
		}
		path, err := feed.Generate(cfg, posts, cfg.Build.PublicDir)
		if err != nil {
			return err
		}
		log.Printf("[feed] %d items -> %s", len(posts), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(feedCmd)
}
