// Command netinventory probes networks, stages what it finds and classifies
// devices into the organization's asset registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netinventory/internal/codec"
)

var version = "dev" // set by the linker

// globalFlags are the persistent flags shared by every subcommand
type globalFlags struct {
	configPath string
	dbPath     string
	logLevel   string
	output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Cobra already printed the error
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Tests create fresh instances.
func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "netinventory",
		Short: "Network asset discovery and classification",
		Long: `netinventory sweeps IPv4 addresses and CIDR blocks with ping and SNMP,
stages every observation, and classifies SNMP-answering devices into
department, unit and user using the configured keyword catalog.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := codec.ForFormat(g.output); err != nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&g.configPath, "config", "", "config file (default: search $NETINVENTORY_CONFIG, ./netinventory.yaml, XDG and /etc)")
	cmd.PersistentFlags().StringVar(&g.dbPath, "db", "", "SQLite database path (overrides database.path)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().StringVarP(&g.output, "output", "o", "json", "output format: json or yaml")

	cmd.AddCommand(
		newScanCmd(g),
		newClassifyCmd(g),
		newRecheckCmd(g),
		newStatsCmd(g),
		newPruneCmd(g),
		newStagingCmd(g),
		newDevicesCmd(g),
		newOrgCmd(g),
		newRunCmd(g),
		newConfigCmd(g),
		newDoctorCmd(g),
	)

	return cmd
}

// notFound reports a lookup argument that matched nothing
func notFound(what, key string) error {
	return fmt.Errorf("%s %s not found", what, key)
}
