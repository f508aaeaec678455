package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wackyweasel/minishelf/internal/domain/model"
)

func newSetCmd() *cobra.Command {
	var (
		game      string
		name      string
		amount    int
		painted   bool
		keywords  string
		imagePath string
		noImage   bool
	)

	cmd := &cobra.Command{
		Use:   "set ID",
		Short: "Update fields of a miniature",
		Long:  "set applies a partial update: only fields whose flags are given change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd model.MiniatureUpdate
			if cmd.Flags().Changed("game") {
				upd.Game = &game
			}
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("amount") {
				if amount < 1 {
					return fmt.Errorf("amount must be at least 1, got %d", amount)
				}
				upd.Amount = &amount
			}
			if cmd.Flags().Changed("painted") {
				upd.Painted = &painted
			}
			if cmd.Flags().Changed("keywords") {
				upd.Keywords = &keywords
			}
			if cmd.Flags().Changed("image") {
				data, err := encodeImage(imagePath)
				if err != nil {
					return err
				}
				upd.ImageData = &data
			}
			if noImage {
				empty := ""
				upd.ImageData = &empty
			}

			if upd.IsEmpty() {
				return fmt.Errorf("nothing to update; pass at least one field flag")
			}

			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			return e.lib.Update(ctx, args[0], upd)
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game system the miniature belongs to")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().IntVar(&amount, "amount", 1, "Number of copies owned")
	cmd.Flags().BoolVar(&painted, "painted", false, "Painted status")
	cmd.Flags().StringVar(&keywords, "keywords", "", "Comma-separated keyword tags")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a photo to attach")
	cmd.Flags().BoolVar(&noImage, "no-image", false, "Remove the attached photo")

	return cmd
}
