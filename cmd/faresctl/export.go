package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ale3590/fares/internal/config"
	"github.com/ale3590/fares/internal/export"
	"github.com/ale3590/fares/internal/history"
)

func newExportCmd(cfg *config.Config, g *globalFlags) *cobra.Command {
	var out, client, date string
	cmd := &cobra.Command{
		Use:       "export sales|purchases",
		Short:     "Write the filtered history to an xlsx file",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"sales", "purchases"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if date != "" {
				if _, err := time.Parse(history.DateLayout, date); err != nil {
					return fmt.Errorf("--date must look like %s", history.DateLayout)
				}
			}
			ctx := cmd.Context()
			c, err := g.login(ctx, cfg)
			if err != nil {
				return err
			}
			var recs []history.Record
			if args[0] == "sales" {
				recs, err = c.Sales(ctx)
			} else {
				recs, err = c.Purchases(ctx)
			}
			if err != nil {
				return err
			}
			loc := cfg.App.Location()
			recs = history.Filter{Counterparty: client, Date: date, Location: loc}.Apply(recs)

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := export.WriteHistory(f, recs, loc); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", len(recs), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "historial.xlsx", "Output file")
	cmd.Flags().StringVar(&client, "client", "", "Counterparty name filter")
	cmd.Flags().StringVar(&date, "date", "", "Exact date filter (YYYY-MM-DD)")
	return cmd
}
