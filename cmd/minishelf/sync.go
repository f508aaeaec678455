package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wackyweasel/minishelf/internal/application"
)

func newSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Synchronize the collection from a shared URL",
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncLinkCmd())
	cmd.AddCommand(newSyncUnlinkCmd())
	cmd.AddCommand(newSyncRunCmd())

	return cmd
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the sync link state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			status, err := e.syncService().Status(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", status.State)
			if status.URL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "url: %s\n", status.URL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "unsynced changes: %t\n", status.Dirty)
			return nil
		},
	}
}

func newSyncLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link URL",
		Short: "Link a shared collection URL as the sync source",
		Long:  "link fetches and validates the document before storing the URL. The local collection is not modified.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.syncService().Link(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "linked")
			return nil
		},
	}
}

func newSyncUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink",
		Short: "Forget the linked sync source",
		Long:  "unlink removes the stored URL. Local records are kept as they are.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.syncService().Unlink(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "unlinked")
			return nil
		},
	}
}

func newSyncRunCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Re-fetch the linked document and replace the local collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			err = e.syncService().Synchronize(ctx, force)
			if errors.Is(err, application.ErrUnsyncedChanges) {
				return fmt.Errorf("%w (pass --force to overwrite)", err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "synchronized")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite unsynced local changes")

	return cmd
}
