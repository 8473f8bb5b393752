// Command trafficctl analyzes corridor travel-time and volume CSV exports
// offline. Run "trafficctl --help" for the list of commands.
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/traffic-ops-analytics/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
