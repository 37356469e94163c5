package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"netinventory/internal/codec"
	"netinventory/internal/domain"
)

func newStagingCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "staging",
		Short: "Inspect and manage staged discoveries",
	}
	cmd.AddCommand(
		newStagingListCmd(g),
		newStagingGetCmd(g),
		newStagingDeleteCmd(g),
		newStagingMarkCmd(g),
		newStagingImportCmd(g),
	)
	return cmd
}

func newStagingListCmd(g *globalFlags) *cobra.Command {
	var (
		status   string
		page     int
		pageSize int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List staged discoveries, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.DiscoveryFilter{Page: page, PageSize: pageSize}
			if status != "" {
				s, err := domain.ParseDiscoveryStatus(status)
				if err != nil {
					return err
				}
				filter.Status = s
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			result, err := a.repo.ListDiscoveries(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return a.print(result)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "filter by status: pending, processed or failed")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&pageSize, "page-size", domain.DefaultPageSize, "records per page")
	return cmd
}

func newStagingGetCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get <ip>",
		Short: "Show one staged discovery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.repo.GetDiscovery(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return notFound("discovery", args[0])
			}
			return a.print(rec)
		},
	}
}

func newStagingDeleteCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ip>",
		Short: "Remove a staged discovery",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.repo.DeleteDiscovery(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.print(map[string]string{"deleted": args[0]})
		},
	}
}

func newStagingMarkCmd(g *globalFlags) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:   "mark <ip> <processed|failed>",
		Short: "Set the status of a staged discovery by hand",
		Long: `Marks a staged discovery processed or failed without classifying it.
Use "classify --retry-failed" to return failed records to pending.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := domain.ParseDiscoveryStatus(args[1])
			if err != nil {
				return err
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			switch status {
			case domain.DiscoveryProcessed:
				err = a.repo.MarkDiscoveryProcessed(ctx, args[0])
			case domain.DiscoveryFailed:
				err = a.repo.MarkDiscoveryFailed(ctx, args[0], message)
			default:
				return fmt.Errorf("cannot mark %s as %s", args[0], status)
			}
			if err != nil {
				return err
			}

			rec, err := a.repo.GetDiscovery(ctx, args[0])
			if err != nil {
				return err
			}
			return a.print(rec)
		},
	}

	cmd.Flags().StringVar(&message, "message", "marked failed by operator", "error message stored with a failed mark")
	return cmd
}

func newStagingImportCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Stage discoveries from a JSON or YAML file",
		Long: `Reads a document with a top-level "discoveries" list (the format is chosen
by file extension) and stages every record as pending, exactly as a scan
would. Records without discovered_at are stamped with the current time.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			records, err := codec.ForPath(args[0]).ParseDiscoveries(f)
			if err != nil {
				return err
			}

			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			for i := range records {
				rec := &records[i]
				if rec.DiscoveredAt.IsZero() {
					rec.DiscoveredAt = a.clock.Now()
				}
				if err := a.repo.UpsertDiscovery(ctx, rec, a.cfg.Probe.PreserveProcessed); err != nil {
					return err
				}
			}

			a.log.Info().Int("records", len(records)).Str("file", args[0]).Msg("discoveries imported")
			return a.print(map[string]int{"imported": len(records)})
		},
	}
}
