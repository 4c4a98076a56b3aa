package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/atelier"
)

func newSeedCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the default page SEO rows and about image slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := atelier.LoadConfig(*envFile)
			if err != nil {
				return err
			}
			store, err := atelier.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			res, err := atelier.Seed(cmd.Context(), store, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d page SEO rows and %d image slots\n", res.PageSEO, res.AboutImages)
			return nil
		},
	}
}

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := atelier.HashPassword(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	}
}
