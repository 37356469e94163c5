package main

import (
	"github.com/spf13/cobra"
)

func newClassifyCmd(g *globalFlags) *cobra.Command {
	var retryFailed bool

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify pending discoveries into the asset registry",
		Long: `Runs one auto-assignment pass over every pending discovery: each record
is placed into a department, unit and user, upserted into the asset registry
by IP address, and marked processed or failed.

With --retry-failed, failed discoveries are returned to pending first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if retryFailed {
				if _, err := a.classifier.RetryFailed(ctx); err != nil {
					return err
				}
			}

			stats, err := a.classifier.ProcessAutoAssignment(ctx)
			if stats != nil {
				if perr := a.print(stats); perr != nil {
					return perr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "return failed discoveries to pending before the run")
	return cmd
}
