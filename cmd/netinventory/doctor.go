package main

import (
	"github.com/spf13/cobra"

	"netinventory/internal/adapter"
	"netinventory/internal/core/bootstrap"
)

func newDoctorCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check probing prerequisites and suggest scan targets",
		Long: `Verifies that ICMP echo and nmap work on this host, opens the database,
and lists the private IPv4 subnets attached to local interfaces.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(cmd, g)
			if err != nil {
				return err
			}
			defer a.Close()

			timeout := a.cfg.Probe.PingTimeout.Duration()
			nmap := adapter.NewNmapPinger(a.log, adapter.WithPingTimeout(timeout))

			report := bootstrap.Run(ctx, adapter.NewExecPinger(timeout), nmap, a.log)
			report.ConfigPath = a.cfgPath
			report.Checks = append(report.Checks, bootstrap.Check{Name: "database", OK: true, Detail: a.cfg.Database.Path})
			return a.print(report)
		},
	}
}
