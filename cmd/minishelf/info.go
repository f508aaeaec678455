package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newGamesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "games",
		Short: "List the distinct game systems in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			games, err := e.lib.Games(ctx)
			if err != nil {
				return err
			}
			for _, g := range games {
				fmt.Fprintln(cmd.OutOrStdout(), g)
			}
			return nil
		},
	}
}

func newKeywordsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "List the distinct keyword tags in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			keywords, err := e.lib.Keywords(ctx)
			if err != nil {
				return err
			}
			for _, k := range keywords {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
			return nil
		},
	}
}
