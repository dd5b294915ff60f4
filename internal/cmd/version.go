package cmd

import (
	"fmt"

	"github.com/axondata/go-fleetctl"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the fleetctl version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			v := fleetctl.GetVersion()
			fmt.Fprintf(cmd.OutOrStdout(), "fleetctl %s (%s)\n", v.Version, v.Platform)
			if !v.FileLocks {
				fmt.Fprintln(cmd.OutOrStdout(), "instance locks: unavailable on this platform")
			}
		},
	}
}
