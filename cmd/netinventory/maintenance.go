package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

func newRecheckCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "recheck [device-id]",
		Short: "Re-ping registered devices and record status changes",
		Long: `Pings one device, or every registered device when no ID is given, and
appends an online/offline entry to the status history whenever a device
changes state.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			liveness := a.newLiveness(ctx)

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return notFound("device", args[0])
				}
				result, err := liveness.RecheckDevice(ctx, id)
				if err != nil {
					return err
				}
				return a.print(result)
			}

			summary, err := liveness.RecheckAll(ctx)
			if summary != nil {
				if perr := a.print(summary); perr != nil {
					return perr
				}
			}
			return err
		},
	}
}

func newStatsCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show staging, registry and status history counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.maintenance.Stats(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(stats)
		},
	}
}

func newPruneCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete discoveries and status history past their retention",
		Long: `Deletes staged discoveries older than maintenance.discovery_retention
and status history entries older than maintenance.history_retention.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.maintenance.Prune(cmd.Context())
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}
}
