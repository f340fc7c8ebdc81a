package main

import (
	"log"

	"github.com/spf13/cobra"

	"smartcab-rl/internal/policy"
	"smartcab-rl/internal/trial"
	"smartcab-rl/internal/world"
)

// simFlags are the settings shared by every command that runs simulations.
type simFlags struct {
	trials   int
	sims     int
	seed     int64
	encoder  string
	strategy policy.Config
	world    world.Config
	verbose  bool
	color    bool
}

func (f *simFlags) register(cmd *cobra.Command) {
	def := policy.DefaultConfig()
	wdef := world.DefaultConfig()
	fs := cmd.Flags()

	fs.IntVar(&f.trials, "trials", getenvInt("SMARTCAB_TRIALS", 100), "trials per simulation")
	fs.IntVar(&f.sims, "sims", getenvInt("SMARTCAB_SIMS", 1), "independent simulations")
	fs.Int64Var(&f.seed, "seed", defaultSeed(), "random seed of the first simulation")
	fs.StringVar(&f.encoder, "encoder", getenv("SMARTCAB_ENCODER", "sensed"), "state encoder: sensed or legal")

	fs.StringVar(&f.strategy.Name, "strategy", getenv("SMARTCAB_STRATEGY", def.Name), "learning strategy")
	fs.Float64Var(&f.strategy.Bonus, "bonus", getenvFloat("SMARTCAB_BONUS", def.Bonus), "optimistic bonus for untried actions")
	fs.Float64Var(&f.strategy.RateK, "rate-k", getenvFloat("SMARTCAB_RATE_K", def.RateK), "learning rate multiplier k in 1/(1+k*t)")
	fs.Float64Var(&f.strategy.Epsilon, "epsilon", getenvFloat("SMARTCAB_EPSILON", def.Epsilon), "exploration decay per decision")
	fs.IntVar(&f.strategy.MinSamples, "min-samples", getenvInt("SMARTCAB_MIN_SAMPLES", def.MinSamples), "table entries needed before regression")
	fs.StringVar(&f.strategy.Regressor, "regressor", getenv("SMARTCAB_REGRESSOR", def.Regressor), "regression model: tree or linear")
	fs.Float64Var(&f.strategy.Ridge, "ridge", getenvFloat("SMARTCAB_RIDGE", def.Ridge), "ridge penalty of the linear regressor")

	fs.IntVar(&f.world.Width, "width", getenvInt("SMARTCAB_WIDTH", wdef.Width), "grid width")
	fs.IntVar(&f.world.Height, "height", getenvInt("SMARTCAB_HEIGHT", wdef.Height), "grid height")
	fs.IntVar(&f.world.Dummies, "dummies", getenvInt("SMARTCAB_DUMMIES", wdef.Dummies), "dummy cars")
	fs.BoolVar(&f.world.Enforce, "enforce-deadline", getenvBool("SMARTCAB_ENFORCE_DEADLINE", wdef.Enforce), "end trips when the deadline runs out")
	f.world.MinPeriod = wdef.MinPeriod
	f.world.MaxPeriod = wdef.MaxPeriod
	f.world.DeadlineFactor = wdef.DeadlineFactor
	f.world.MinDistance = wdef.MinDistance
	f.world.HardLimit = wdef.HardLimit

	fs.BoolVarP(&f.verbose, "verbose", "v", getenvBool("SMARTCAB_VERBOSE", false), "log every trial")
	fs.BoolVar(&f.color, "color", getenvBool("SMARTCAB_COLOR", true), "colour log output")
}

func (f *simFlags) runner() trial.Runner {
	return trial.Runner{
		Trials:   f.trials,
		Seed:     f.seed,
		World:    f.world,
		Strategy: f.strategy,
		Encoder:  f.encoder,
		Verbose:  f.verbose,
		Color:    f.color,
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "smartcab",
		Short:         "Reinforcement learning for a simulated smart cab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd(), newSweepCmd(), newServeCmd())
	return root
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}
