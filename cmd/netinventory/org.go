package main

import (
	"github.com/spf13/cobra"

	"netinventory/internal/domain"
)

// departmentView is a department with its units for listing
type departmentView struct {
	domain.Department `yaml:",inline"`
	Units             []domain.Unit `json:"units" yaml:"units"`
}

func newOrgCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "org",
		Short: "Manage the department and unit catalog",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "sync",
			Short: "Load the organization section of the config into the database",
			Long: `Upserts every configured department by name, unit by department and
name, and IP range by CIDR. Rows missing from the config are kept.`,
			Args: cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, g)
				if err != nil {
					return err
				}
				defer a.Close()

				result, err := a.organization.Sync(cmd.Context(), a.cfg.Organization)
				if err != nil {
					return err
				}
				return a.print(result)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List departments with their units, sentinels included",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, g)
				if err != nil {
					return err
				}
				defer a.Close()

				ctx := cmd.Context()
				departments, err := a.repo.ListDepartments(ctx)
				if err != nil {
					return err
				}

				views := make([]departmentView, 0, len(departments))
				for _, d := range departments {
					units, err := a.repo.ListUnits(ctx, d.ID)
					if err != nil {
						return err
					}
					if units == nil {
						units = []domain.Unit{}
					}
					views = append(views, departmentView{Department: d, Units: units})
				}
				return a.print(views)
			},
		},
	)
	return cmd
}
