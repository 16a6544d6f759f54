package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/splash/internal/plugin/host"
)

func newHostCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "host",
		Short: "Inspect splash hosts",
	}
	cmd.AddCommand(newHostListCmd(a), newHostPsCmd(), newHostInfoCmd(a))
	return cmd
}

func newHostListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List built-in hosts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := NewTable([]string{"Name", "Description"})
			for _, name := range a.registry.List() {
				h, _ := a.registry.Get(name)
				table.AddRow([]string{name, h.Description()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func newHostPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ps [executable...]",
		Short: "List running external host processes",
		Long: `List running processes whose executable starts with "` + host.ExecutablePrefix + `",
plus any executables named as arguments.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			processes, err := host.FindProcesses(args...)
			if err != nil {
				return err
			}
			if len(processes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No running hosts found.")
				return nil
			}
			table := NewTable([]string{"PID", "PPID", "Executable"})
			table.AlignRight(0)
			table.AlignRight(1)
			for _, p := range processes {
				table.AddRow([]string{strconv.Itoa(p.PID), strconv.Itoa(p.PPID), p.Executable})
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
}

func newHostInfoCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "info <path>",
		Short: "Query an external host binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := host.NewExternal(args[0], a.runner).Info(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			compatible := "yes"
			if !result.Compatible {
				compatible = "no: " + result.Reason
			}
			table := NewTable([]string{"Field", "Value"})
			table.AddRow([]string{"Name", result.Info.Name})
			table.AddRow([]string{"Version", result.Info.Version})
			table.AddRow([]string{"Protocol", result.Info.ProtocolVersion})
			table.AddRow([]string{"Platform", result.Info.Platform})
			table.AddRow([]string{"Description", result.Info.Description})
			table.AddRow([]string{"Compatible", compatible})
			fmt.Fprintln(cmd.OutOrStdout(), table.Render())
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}
