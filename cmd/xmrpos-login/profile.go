package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/monerokon/xmrpos-login/cliout"
)

func newProfileCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show or clear the saved login profile",
	}
	cmd.AddCommand(newProfileShowCmd(a), newProfileClearCmd(a))
	return cmd
}

func newProfileShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the saved instance URL, vendor ID and username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.cfg.ProfileStore()
			if err != nil {
				return err
			}
			p, found, err := store.Load()
			if err != nil {
				return err
			}

			if cliout.IsJSON() {
				if !found {
					return cliout.PrintJSON(struct{}{})
				}
				return cliout.PrintJSON(p)
			}
			if !found {
				cliout.Info("No saved profile at %s", store.Path())
				return nil
			}
			cliout.Label("Instance", p.InstanceURL.String())
			cliout.Label("Vendor ID", strconv.Itoa(p.VendorID))
			cliout.Label("Username", p.Username)
			cliout.Label("Saved", p.SavedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

func newProfileClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete the saved profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.cfg.ProfileStore()
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return err
			}
			if !cliout.IsJSON() {
				cliout.Success("Profile cleared")
			}
			return nil
		},
	}
}
