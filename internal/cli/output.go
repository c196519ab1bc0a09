package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mithrel/arttown/internal/present"
)

// outputFlags are shared by every command that prints content.
type outputFlags struct {
	format  string
	indent  bool
	headers bool
}

func (f *outputFlags) register(cmd *cobra.Command, modes string) {
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "output format ("+modes+"); default: pretty on a terminal, plain otherwise")
	cmd.Flags().BoolVar(&f.indent, "indent", true, "indent JSON output")
	cmd.Flags().BoolVar(&f.headers, "headers", false, "print column headers in plain listings")
}

// options resolves the presenter options for cmd's stdout.
func (f *outputFlags) options(cmd *cobra.Command) (present.Options, error) {
	out := cmd.OutOrStdout()
	mode := present.DetectMode(out)
	if f.format != "" {
		m, ok := present.ParseMode(f.format)
		if !ok {
			return present.Options{}, fmt.Errorf("unknown format %q", f.format)
		}
		mode = m
	}
	width := getConfig(cmd).GetInt("render.width")
	if width <= 0 {
		width = present.TerminalWidth(out, 80)
	}
	return present.Options{Mode: mode, JSONIndent: f.indent, Headers: f.headers, Width: width}, nil
}
