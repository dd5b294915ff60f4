// Command fleetctl controls a fleet of daemon instances.
package main

import (
	"os"

	"github.com/axondata/go-fleetctl/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
