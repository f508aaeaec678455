package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/wackyweasel/minishelf/internal/domain/model"
)

func newListCmd() *cobra.Command {
	var (
		game    string
		painted string
		search  string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List miniatures in the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var filter model.Filter
			if game != "" {
				filter.Game = &game
			}
			switch painted {
			case "":
			case "true", "false":
				p := painted == "true"
				filter.Painted = &p
			default:
				return fmt.Errorf("invalid painted value: %s (valid values: true, false)", painted)
			}
			filter.Search = search

			ctx := context.Background()
			e, err := openEnv(ctx, cliLogger())
			if err != nil {
				return err
			}
			defer e.Close()

			minis, err := e.lib.List(ctx, filter)
			if err != nil {
				return err
			}

			switch format {
			case "json":
				return outputJSON(cmd, minis)
			case "table":
				outputTable(cmd, minis)
				return nil
			default:
				return fmt.Errorf("invalid format: %s (valid values: table, json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&game, "game", "", "Only show miniatures for this game")
	cmd.Flags().StringVar(&painted, "painted", "", "Only show painted (true) or unpainted (false) miniatures")
	cmd.Flags().StringVar(&search, "search", "", "Keyword search; all terms must match")
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table or json")

	return cmd
}

type listOutputEntry struct {
	ID       string `json:"id"`
	Game     string `json:"game"`
	Name     string `json:"name"`
	Amount   int    `json:"amount"`
	Painted  bool   `json:"painted"`
	Keywords string `json:"keywords"`
	HasImage bool   `json:"has_image"`
	Created  string `json:"created"`
}

func outputJSON(cmd *cobra.Command, minis []model.Miniature) error {
	output := make([]listOutputEntry, 0, len(minis))
	for _, m := range minis {
		output = append(output, listOutputEntry{
			ID:       m.ID,
			Game:     m.Game,
			Name:     m.Name,
			Amount:   m.Amount,
			Painted:  m.Painted,
			Keywords: m.Keywords,
			HasImage: m.ImageData != "",
			Created:  m.CreatedAt.Format(time.RFC3339),
		})
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputTable(cmd *cobra.Command, minis []model.Miniature) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Game", "Name", "Amount", "Painted", "Keywords"})

	for _, m := range minis {
		painted := ""
		if m.Painted {
			painted = "yes"
		}
		t.AppendRow(table.Row{m.ID, m.Game, m.Name, m.Amount, painted, m.Keywords})
	}

	t.Render()
}
