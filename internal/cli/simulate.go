package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/splash/internal/appstate"
	"github.com/jmylchreest/splash/internal/script"
	"github.com/jmylchreest/splash/internal/splash"
)

// simulationEpoch is where virtual time starts. Timelines print offsets, so
// the value only shows up in debug logs.
var simulationEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type sessionFlags struct {
	noDelegate bool
	asJSON     bool
}

func (f *sessionFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noDelegate, "no-delegate", false, "connect without an animation delegate")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "print the timeline as JSON")
}

// runScript loads a script, wires a lifecycle to the selected host on clock
// and runs it.
func (a *app) runScript(cmd *cobra.Command, path string, clock splash.Clock, flags sessionFlags, needRecorder bool) error {
	s, err := script.Load(path)
	if err != nil {
		return err
	}

	tree, err := a.tree(s.Config)
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

	ctx := cmd.Context()
	conn, err := a.connect(ctx, clock, flags.noDelegate, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	if needRecorder && conn.Recorder == nil {
		return fmt.Errorf("host %s does not record a timeline, use run instead", a.hostName)
	}

	lifecycle, err := splash.NewBuilder().
		WithBridge(conn.Bridge).
		WithDelegate(conn.Delegate).
		WithResolver(r).
		WithClock(clock).
		WithLogger(logger).
		Build()
	if err != nil {
		return err
	}
	defer lifecycle.Close()

	timeline, err := script.Run(ctx, s, script.Session{
		Lifecycle: lifecycle,
		Monitor:   appstate.NewMonitor(),
		Clock:     clock,
		Recorder:  conn.Recorder,
		Logger:    logger.Named("script"),
	})
	if err != nil {
		return err
	}

	if err := printTimeline(cmd.OutOrStdout(), timeline, flags.asJSON); err != nil {
		return err
	}
	if !timeline.Passed() {
		return fmt.Errorf("%d expectation(s) failed", len(timeline.Failures))
	}
	return nil
}

func newSimulateCmd(a *app) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "simulate <script>",
		Short: "Run a session script on virtual time",
		Long: `Run a session script against a recording host on virtual time and print
the timeline of calls, host operations and results. Timers and fades take no
wall-clock time, so long sessions finish instantly.

The command fails if any step's expectation does not hold.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScript(cmd, args[0], splash.NewManualClock(simulationEpoch), flags, true)
		},
	}
	flags.register(cmd)
	return cmd
}

func newRunCmd(a *app) *cobra.Command {
	var flags sessionFlags

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Run a session script in real time",
		Long: `Run a session script in real time, typically against an external host
binary given with --host. Steps are issued at their offsets on the wall clock.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runScript(cmd, args[0], splash.SystemClock(), flags, false)
		},
	}
	flags.register(cmd)
	return cmd
}

type jsonRecord struct {
	AtMS   int64  `json:"at_ms"`
	EndMS  int64  `json:"end_ms,omitempty"`
	Actor  string `json:"actor"`
	Action string `json:"action"`
	View   string `json:"view,omitempty"`
	Call   string `json:"call,omitempty"`
	Detail string `json:"detail,omitempty"`
}

type jsonTimeline struct {
	Script   string       `json:"script"`
	Records  []jsonRecord `json:"records"`
	Phase    string       `json:"final_phase"`
	Failures []string     `json:"failures,omitempty"`
}

func printTimeline(w io.Writer, t *script.Timeline, asJSON bool) error {
	if asJSON {
		out := jsonTimeline{Script: t.Script, Phase: t.Final.Phase.String(), Failures: t.Failures}
		for _, rec := range t.Records {
			out.Records = append(out.Records, jsonRecord{
				AtMS:   rec.At.Milliseconds(),
				EndMS:  rec.End.Milliseconds(),
				Actor:  string(rec.Actor),
				Action: rec.Action,
				View:   string(rec.View),
				Call:   script.ShortID(rec.Call),
				Detail: rec.Detail,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	table := NewTable([]string{"At", "Until", "Actor", "Action", "View", "Call", "Detail"})
	table.AlignRight(0)
	table.AlignRight(1)
	table.SetColumnMaxWidth(6, 60)
	for _, rec := range t.Records {
		until := ""
		if rec.End != 0 {
			until = formatDuration(rec.End)
		}
		table.AddRow([]string{
			formatDuration(rec.At),
			until,
			string(rec.Actor),
			rec.Action,
			string(rec.View),
			script.ShortID(rec.Call),
			rec.Detail,
		})
	}
	fmt.Fprintf(w, "Script: %s\n", t.Script)
	fmt.Fprintln(w, table.Render())
	fmt.Fprintf(w, "Final: %s (view %q, launch %v, pending calls %d)\n",
		t.Final.Phase, t.Final.View, t.Final.IsLaunchSplash, t.Final.PendingCalls)
	for _, failure := range t.Failures {
		fmt.Fprintf(w, "FAIL %s\n", failure)
	}
	return nil
}
