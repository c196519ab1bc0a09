package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/mithrel/arttown/internal/content"
	"github.com/mithrel/arttown/internal/db"
	"github.com/mithrel/arttown/internal/present"
	"github.com/mithrel/arttown/pkg/api"
)

func newRefreshCmd() *cobra.Command {
	var out outputFlags
	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Reload content from the hosted database and update the local cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			snap := app.Catalog.Refresh(cmd.Context())
			if err := present.RenderStatus(cmd.OutOrStdout(), content.StatusOf(snap), opts); err != nil {
				return err
			}
			if snap.Error != "" {
				return fmt.Errorf("hosted database unavailable: %s", snap.Error)
			}
			return nil
		},
	}
	out.register(cmd, "plain|json")
	return cmd
}

func newStatusCmd() *cobra.Command {
	var out outputFlags
	var history int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show where content comes from and the local cache state",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			st := app.Catalog.Status(cmd.Context())
			if opts.Mode == present.ModeJSON {
				recs, err := app.Store.ListRefreshes(cmd.Context(), history)
				if err != nil {
					return err
				}
				return present.RenderJSON(cmd.OutOrStdout(), struct {
					api.Status
					Refreshes []db.RefreshRecord `json:"refreshes"`
				}{st, recs}, opts)
			}
			w := cmd.OutOrStdout()
			if err := present.RenderStatus(w, st, opts); err != nil {
				return err
			}
			now := time.Now()
			for _, t := range api.Tables {
				if at, ok := db.CacheFetchedAt(cmd.Context(), app.Store, t); ok {
					_, _ = fmt.Fprintf(w, "cache %s: saved %s\n", t, humanize.RelTime(at, now, "ago", "from now"))
				} else {
					_, _ = fmt.Fprintf(w, "cache %s: empty\n", t)
				}
			}
			recs, err := app.Store.ListRefreshes(cmd.Context(), history)
			if err != nil {
				return err
			}
			for _, r := range recs {
				state := "ok"
				if !r.OK {
					state = "fallback"
				}
				line := fmt.Sprintf("refresh %s: %s (%s)", humanize.RelTime(r.Time, now, "ago", "from now"), state, r.Source)
				if r.Message != "" {
					line += ": " + r.Message
				}
				_, _ = fmt.Fprintln(w, line)
			}
			return nil
		},
	}
	out.register(cmd, "plain|json")
	cmd.Flags().IntVar(&history, "history", 5, "number of recent refreshes to list")
	return cmd
}
