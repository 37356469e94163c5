package main

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"netinventory/internal/domain"
)

func newDevicesCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "Inspect the asset registry",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List registered devices",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, g)
				if err != nil {
					return err
				}
				defer a.Close()

				devices, err := a.repo.ListDevices(cmd.Context())
				if err != nil {
					return err
				}
				if devices == nil {
					devices = []domain.Device{}
				}
				return a.print(devices)
			},
		},
		&cobra.Command{
			Use:   "get <id|ip>",
			Short: "Show one device by ID or IP address",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, g)
				if err != nil {
					return err
				}
				defer a.Close()

				dev, err := a.lookupDevice(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return a.print(dev)
			},
		},
		&cobra.Command{
			Use:   "history <id|ip>",
			Short: "Show the online/offline history of a device, newest first",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a, err := openApp(cmd, g)
				if err != nil {
					return err
				}
				defer a.Close()

				ctx := cmd.Context()
				dev, err := a.lookupDevice(ctx, args[0])
				if err != nil {
					return err
				}
				history, err := a.repo.ListStatusHistory(ctx, dev.ID)
				if err != nil {
					return err
				}
				if history == nil {
					history = []domain.StatusHistoryEntry{}
				}
				return a.print(history)
			},
		},
	)
	return cmd
}

// lookupDevice resolves a numeric ID or an IP address
func (a *app) lookupDevice(ctx context.Context, key string) (*domain.Device, error) {
	var (
		dev *domain.Device
		err error
	)
	if id, perr := strconv.ParseInt(key, 10, 64); perr == nil {
		dev, err = a.repo.GetDevice(ctx, id)
	} else {
		dev, err = a.repo.GetDeviceByIP(ctx, key)
	}
	if err != nil {
		return nil, err
	}
	if dev == nil {
		return nil, notFound("device", key)
	}
	return dev, nil
}
