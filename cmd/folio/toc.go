package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"folio/internal/ingest"
	"folio/internal/render"
	"folio/internal/toc"
)

var tocHeight float64

var tocCmd = &cobra.Command{
	Use:   "toc <slug>",
	Short: "Print a post's outline and walk the active heading down the page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		post, err := ingest.Posts(cfg.PostsPath()).Load(args[0])
		if err != nil {
			return err
		}
		md, err := render.NewMarkdownRenderer().Render(post.Body)
		if err != nil {
			return err
		}
		return walkOutline(cmd.OutOrStdout(), post.Body, md.HTML, tocHeight)
	},
}

func init() {
	tocCmd.Flags().Float64Var(&tocHeight, "height", 900, "viewport height in pixels")
	rootCmd.AddCommand(tocCmd)
}

type click struct{}

func (click) PreventDefault() {}

// walkOutline mounts a tracker over the rendered page, then clicks every
// entry in turn and reports where the page scrolled and what became active.
func walkOutline(w io.Writer, body, rendered []byte, height float64) error {
	page, err := toc.PageFromHTML(rendered)
	if err != nil {
		return err
	}
	vp := toc.NewViewport(page, height)
	clock := &toc.ManualClock{}
	tr := toc.New(page, vp, vp, clock, toc.Options{})
	defer tr.Unmount()

	tr.Mount(body)
	clock.Advance(toc.DefaultRegisterDelay)
	vp.Flush()

	st := tr.State()
	if len(st.Outline) == 0 {
		fmt.Fprintln(w, "(no headings)")
		return nil
	}
	anchors := page.Outline()
	for _, h := range st.Outline {
		fmt.Fprintf(w, "%s- %s  #%s\n", strings.Repeat("  ", h.Level-1), h.Text, h.ID)
		if _, ok := anchors.Find(h.ID); !ok {
			fmt.Fprintf(w, "  missing anchor #%s\n", h.ID)
		}
	}
	fmt.Fprintf(w, "\nactive at top: %s\n", st.ActiveID)

	for _, h := range st.Outline {
		tr.Click(click{}, h.ID)
		vp.Flush()
		fmt.Fprintf(w, "click #%s -> scrollY=%.0f active=%s\n", h.ID, vp.ScrollY(), tr.State().ActiveID)
	}
	return nil
}
