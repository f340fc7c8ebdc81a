package main

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/spf13/cobra"

	"smartcab-rl/internal/trial"
)

func parseValues(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	var out []float64
	for _, part := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func newSweepCmd() *cobra.Command {
	var (
		flags  simFlags
		values string
		full   bool
	)
	cmd := &cobra.Command{
		Use:   "sweep rate|eps-random",
		Short: "Compare a strategy parameter across several values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, err := parseValues(values)
			if err != nil {
				return err
			}
			results, err := trial.Sweep(cmd.Context(), flags.runner(), args[0], vals, flags.sims)
			if err != nil {
				return err
			}

			au := aurora.NewAurora(flags.color)
			for _, res := range results {
				log.Printf("%s: reached %.1f, penalties %.1f, last penalty %.1f, table %.1f",
					au.Bold(res.Label), res.Aggregate.DestinationsReached, res.Aggregate.Penalties,
					res.Aggregate.LastPenaltyTrial, res.Aggregate.TableSize)
			}
			if !full {
				for i := range results {
					results[i].Summaries = nil
				}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&values, "values", getenv("SMARTCAB_SWEEP_VALUES", ""), "comma separated parameter values (default: built-in list)")
	cmd.Flags().BoolVar(&full, "full", false, "include every simulation summary in the output")
	return cmd
}
