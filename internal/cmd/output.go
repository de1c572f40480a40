package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/felixgeelhaar/smartplan/internal/errors"
	"github.com/felixgeelhaar/smartplan/internal/tui"
	"github.com/felixgeelhaar/smartplan/internal/ux"
)

func addFormatFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "format", "f", "table", "output format: "+strings.Join(ux.Formats, ", "))
}

// write formats data in the requested format, using render for tables.
func write(cmd *cobra.Command, format string, data interface{}, render ux.RenderFunc) error {
	if !slices.Contains(ux.Formats, format) {
		return perrors.NewMalformedInputError(
			fmt.Sprintf("unknown format %q (supported: %s)", format, strings.Join(ux.Formats, ", ")), nil)
	}
	f, err := ux.NewFormatter(format, &ux.FormatterOptions{
		Writer: cmd.OutOrStdout(),
		Render: render,
	})
	if err != nil {
		return err
	}
	return f.Format(data)
}

// styles returns colour styles for terminals and plain ones otherwise.
func styles() tui.Styles {
	if tui.IsInteractive() {
		return tui.DefaultStyles()
	}
	return tui.PlainStyles()
}
