package main

import (
	"github.com/spf13/cobra"

	"netinventory/internal/adapter"
)

func newScanCmd(g *globalFlags) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "scan <ip|cidr>",
		Short: "Probe an address or CIDR block",
		Long: `Pings every host of the target and queries the SNMP system group of
each host that answers. Results are staged as pending discoveries for the
classifier.

With --direct, staging is skipped: hosts whose SNMP agent answers are
classified straight into the asset registry by IP range.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			target := args[0]
			prober := a.newProber(ctx)

			switch {
			case direct && adapter.IsCIDR(target):
				result, err := a.newSweep(prober).SweepAndClassify(ctx, target)
				if result != nil {
					if perr := a.print(result); perr != nil {
						return perr
					}
				}
				return err

			case direct:
				rec, outcome, err := a.newSweep(prober).ClassifyAddress(ctx, target)
				if err != nil {
					return err
				}
				return a.print(map[string]any{"discovery": rec, "outcome": outcome})

			case adapter.IsCIDR(target):
				result, err := prober.DiscoverSubnet(ctx, target)
				if result != nil {
					if perr := a.print(result); perr != nil {
						return perr
					}
				}
				return err

			default:
				rec, err := prober.DiscoverSingleIP(ctx, target)
				if err != nil {
					return err
				}
				return a.print(rec)
			}
		},
	}

	cmd.Flags().BoolVar(&direct, "direct", false, "classify into the registry without staging")
	return cmd
}
