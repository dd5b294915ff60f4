// Package cmd implements the fleetctl command line:
//
//	fleetctl <command> [<id>... | all]
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/axondata/go-fleetctl/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errUsage marks errors that should be followed by the usage text
var errUsage = errors.New("usage error")

// NewRootCmd builds the fleetctl command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "fleetctl <command> [<id>... | all]",
		Short: "Control a fleet of daemon instances",
		Long: `fleetctl starts, stops, probes and signals the instances of a daemon that
share one binary and are told apart by a short id. Commands apply to the
given ids, to "all" discovered instances, or (for start, stop, status and
rotate-logs) to every discovered instance when no id is given.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return fmt.Errorf("%w: no command given", errUsage)
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			initConfig()
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default is "+config.SystemConfigDir+"/fleetctl.toml)")
	flags.Bool("sequential", false, "run commands one instance at a time")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("config", flags.Lookup("config"))
	_ = viper.BindPFlag("dispatch.sequential", flags.Lookup("sequential"))
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))

	for _, c := range fleetCommands() {
		root.AddCommand(c)
	}
	root.AddCommand(newConfigCmd(), newVersionCmd())

	return root
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("fleetctl")
		viper.SetConfigType("toml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(config.SystemConfigDir)
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FLEETCTL")
	// e.g. FLEETCTL_TIMEOUTS_STOP_SECONDS for timeouts.stop_seconds
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing config file is fine; defaults apply
	_ = viper.ReadInConfig()
}

// Execute runs the command line and returns the process exit code.
// Per-instance failures are reported but do not change the exit code;
// only usage and configuration errors exit 1.
func Execute() int {
	return run(NewRootCmd(), os.Args[1:], os.Stdout, os.Stderr)
}

func run(root *cobra.Command, args []string, stdout, stderr io.Writer) int {
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		if isUsageError(err) {
			fmt.Fprintln(stderr)
			root.SetOut(stderr)
			_ = root.Usage()
		}
		return 1
	}
	return 0
}

// isUsageError recognizes our own usage errors and cobra's unknown command
// and flag errors, which are plain strings
func isUsageError(err error) bool {
	if errors.Is(err, errUsage) {
		return true
	}
	msg := err.Error()
	return strings.HasPrefix(msg, "unknown command") ||
		strings.HasPrefix(msg, "unknown flag") ||
		strings.HasPrefix(msg, "unknown shorthand flag")
}
