package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/axondata/go-fleetctl"
	"github.com/axondata/go-fleetctl/internal/config"
	"github.com/axondata/go-fleetctl/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// fleetCommand describes one instance command
type fleetCommand struct {
	op      fleetctl.Operation
	short   string
	aliases []string
}

var commandTable = []fleetCommand{
	{op: fleetctl.OpStart, short: "Start instances that are not running"},
	{op: fleetctl.OpStop, short: "Stop running instances, escalating to SIGKILL"},
	{op: fleetctl.OpRestart, short: "Stop then start instances", aliases: []string{"force-reload"}},
	{op: fleetctl.OpStatus, short: "Show instance status"},
	{op: fleetctl.OpEnable, short: "Enable auto-start and start instances"},
	{op: fleetctl.OpDisable, short: "Stop instances and disable auto-start"},
	{op: fleetctl.OpRotateLogs, short: "Ask instances to reopen their log files"},
	{op: fleetctl.OpReload, short: "Ask instances to reload their configuration"},
	{op: fleetctl.OpReindex, short: "Ask instances to rebuild their indexes"},
}

// buildDispatcher wires a Dispatcher from configuration; tests replace it
var buildDispatcher = newDispatcher

func fleetCommands() []*cobra.Command {
	cmds := make([]*cobra.Command, 0, len(commandTable))
	for _, fc := range commandTable {
		use := fc.op.String() + " [<id>... | all]"
		cmds = append(cmds, &cobra.Command{
			Use:     use,
			Short:   fc.short,
			Aliases: fc.aliases,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runFleet(cmd, fc.op, args)
			},
		})
	}
	return cmds
}

func runFleet(cmd *cobra.Command, op fleetctl.Operation, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)

	d, err := buildDispatcher(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reports, err := d.Execute(ctx, op, args)
	if err != nil {
		return fmt.Errorf("discovering instances: %w", err)
	}
	if len(reports) == 0 {
		if len(args) == 0 && !op.DefaultsToAll() {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to do")
		}
		return nil
	}

	printReports(cmd.OutOrStdout(), cmd.ErrOrStderr(), reports)
	if err := reports.Err(); err != nil {
		logger.Debug().Err(err).Str("op", op.String()).Msg("command finished with failures")
	}
	return nil
}

// printReports writes outcomes to out and failures to errOut. A report that
// completed some steps before failing appears on both.
func printReports(out, errOut io.Writer, reports fleetctl.Reports) {
	for _, r := range reports {
		if r.Status != nil || len(r.Outcomes) > 0 {
			fmt.Fprintln(out, r.String())
		}
		if r.Err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", r.ID, r.Err)
		}
	}
}

func newDispatcher(cfg *config.Config, logger zerolog.Logger) (*fleetctl.Dispatcher, error) {
	layout := cfg.Layout()

	launcher := fleetctl.NewExecLauncher(cfg.Daemon.Command)
	launcher.Args = cfg.Daemon.Args

	ctl := fleetctl.NewController(fleetctl.NewFSRepository(layout), fleetctl.OSProcessTable{Command: cfg.Daemon.Command}, launcher)
	ctl.Watch = fleetctl.LayoutWatcher(layout)
	ctl.StopTimeout = cfg.Timeouts.Stop()
	ctl.KillTimeout = cfg.Timeouts.Kill()
	ctl.PollInterval = cfg.Timeouts.PollInterval()
	ctl.Logger = logger

	return fleetctl.NewDispatcher(ctl,
		fleetctl.WithLocker(fleetctl.NewFileLocker(layout)),
		fleetctl.WithLockWait(cfg.Timeouts.LockWait()),
		fleetctl.WithSettleDelay(cfg.Timeouts.Settle()),
		fleetctl.WithSequential(cfg.Dispatch.Sequential),
		fleetctl.WithDispatchLogger(logger),
	), nil
}
