package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mithrel/arttown/internal/present"
	"github.com/mithrel/arttown/internal/render"
)

func newRenderCmd() *cobra.Command {
	var out outputFlags
	var digest bool
	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a markdown document to display blocks",
		Long:  "Render reads a document from file (or stdin when omitted or \"-\") and prints its headings, paragraphs and lists.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				r = f
			}
			b, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("read document: %w", err)
			}
			opts, err := out.options(cmd)
			if err != nil {
				return err
			}
			if digest {
				_, _ = fmt.Fprintln(cmd.ErrOrStderr(), render.Digest(string(b)))
			}
			return present.RenderBlocks(cmd.OutOrStdout(), render.Render(string(b)), opts)
		},
	}
	out.register(cmd, "plain|pretty|markdown|json")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the document digest to stderr")
	return cmd
}
