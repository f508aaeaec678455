package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/wackyweasel/minishelf/internal/domain/model"
)

func newAddCmd() *cobra.Command {
	var (
		game      string
		amount    int
		painted   bool
		keywords  string
		imagePath string
	)

	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a miniature to the collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if amount < 1 {
				return fmt.Errorf("amount must be at least 1, got %d", amount)
			}

			imageData := ""
			if imagePath != "" {
				data, err := encodeImage(imagePath)
				if err != nil {
					return err
				}
				imageData = data
			}

			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			id, err := e.lib.Create(ctx, model.Miniature{
				Game:      game,
				Name:      args[0],
				Amount:    amount,
				Painted:   painted,
				Keywords:  keywords,
				ImageData: imageData,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Game system the miniature belongs to")
	cmd.Flags().IntVar(&amount, "amount", 1, "Number of copies owned")
	cmd.Flags().BoolVar(&painted, "painted", false, "Mark the miniature as painted")
	cmd.Flags().StringVar(&keywords, "keywords", "", "Comma-separated keyword tags")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to a photo to attach")

	return cmd
}

// encodeImage reads an image file and encodes it as a data URL for
// inline storage.
func encodeImage(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	mime := http.DetectContentType(data)
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)), nil
}
