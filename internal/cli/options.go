package cli

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/splash/internal/options"
)

func newOptionsCmd(a *app) *cobra.Command {
	var opts optionsValue

	cmd := &cobra.Command{
		Use:       "options <launch|show|hide|animate>",
		Short:     "Print the resolved options of a call",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"launch", "show", "hide", "animate"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tree, err := a.tree(nil)
			if err != nil {
				return err
			}
			r, err := a.resolver(tree)
			if err != nil {
				return err
			}
			logger, err := a.logger(cmd, r)
			if err != nil {
				return err
			}
			builder := options.NewBuilder(r, logger.Named("options"))

			var rows [][]string
			switch args[0] {
			case "launch":
				rows = showRows(builder.Launch())
			case "show":
				rows = showRows(builder.Show(opts.Options()))
			case "hide":
				h := builder.Hide(opts.Options())
				rows = [][]string{
					{"delay", formatDuration(h.Delay)},
					{"fadeOutDuration", formatDuration(h.FadeOut)},
				}
			case "animate":
				an := builder.Animate(opts.Options())
				rows = [][]string{
					{"delay", formatDuration(an.Delay)},
					{"animationDuration", formatDuration(an.AnimationDuration)},
				}
				for _, key := range slices.Sorted(maps.Keys(an.Extra)) {
					rows = append(rows, []string{"extra." + key, fmt.Sprint(an.Extra[key])})
				}
			default:
				return fmt.Errorf("unknown call %q (expected launch, show, hide or animate)", args[0])
			}

			table := NewTable([]string{"Option", "Value"})
			for _, row := range rows {
				table.AddRow(row)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}

	addOptionsFlag(cmd.Flags(), &opts)
	return cmd
}

func showRows(s options.Show) [][]string {
	return [][]string{
		{"source", s.Source},
		{"delay", formatDuration(s.Delay)},
		{"fadeInDuration", formatDuration(s.FadeIn)},
		{"showDuration", formatDuration(s.ShowDuration)},
		{"fadeOutDuration", formatDuration(s.FadeOut)},
		{"autoHide", strconv.FormatBool(s.AutoHide)},
		{"isLaunchSplash", strconv.FormatBool(s.IsLaunchSplash)},
		{"backgroundColor", s.BackgroundColor},
		{"showSpinner", strconv.FormatBool(s.ShowSpinner)},
		{"spinnerStyle", s.SpinnerStyle},
		{"spinnerColor", s.SpinnerColor},
		{"imageContentMode", s.ImageContentMode},
	}
}

// formatDuration prints whole milliseconds.
func formatDuration(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10) + "ms"
}
