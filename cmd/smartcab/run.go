package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"

	"smartcab-rl/internal/buffer"
	"smartcab-rl/internal/trial"
)

type runOutput struct {
	Summaries []trial.Summary       `json:"summaries"`
	Aggregate trial.Aggregate       `json:"aggregate"`
	Penalties *buffer.PenaltyReport `json:"penalties,omitempty"`
}

func newRunCmd() *cobra.Command {
	var (
		flags      simFlags
		penaltyLog int
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run simulations of one strategy and print their summaries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := flags.runner()
			if penaltyLog > 0 {
				history, err := buffer.NewHistory(penaltyLog, "fifo")
				if err != nil {
					return err
				}
				base.History = history
			}

			sums, agg, err := trial.RunMany(cmd.Context(), base, flags.sims)
			if err != nil {
				return err
			}
			out := runOutput{Summaries: sums, Aggregate: agg}
			if base.History != nil {
				trial.LogPenalties(base.History, flags.color)
				if n := base.History.Evicted(); n > 0 {
					log.Printf("penalty log dropped its %d oldest steps", n)
				}
				report := buffer.Report(base.History.Items())
				out.Penalties = &report
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVar(&penaltyLog, "penalty-log", getenvInt("SMARTCAB_PENALTY_LOG", 0), "keep and print up to this many penalised steps")
	return cmd
}
