package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/arttown/internal/present"
	"github.com/mithrel/arttown/internal/present/tui"
)

func newBrowseCmd() *cobra.Command {
	var headers bool
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse articles interactively and read the one you pick",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !present.IsTerminal(cmd.OutOrStdout()) {
				return errors.New("browse needs an interactive terminal; use `arttown articles` instead")
			}
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			snap := app.Catalog.Snapshot(cmd.Context())
			status := ""
			if snap.UsingFallback() {
				status = "offline copy"
			}
			chosen, ok, err := tui.Browse(cmd.Context(), snap.Articles, tui.BrowseOptions{Headers: headers, Status: status})
			if err != nil || !ok {
				return err
			}
			view, err := app.Catalog.ArticleView(cmd.Context(), chosen.ID)
			if err != nil {
				return fmt.Errorf("article %d: %w", chosen.ID, err)
			}
			width := app.Cfg.GetInt("render.width")
			return present.RenderArticle(cmd.OutOrStdout(), view, present.Options{Mode: present.ModePretty, Width: present.TerminalWidth(cmd.OutOrStdout(), width)})
		},
	}
	cmd.Flags().BoolVar(&headers, "headers", true, "show column headers")
	return cmd
}
