package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/namsral/flag"

	"github.com/domino14/dice_coverage/internal/coverage"
)

// MaxProbabilities is the most targets a single search accepts.
const MaxProbabilities = 5

type Config struct {
	Probabilities []float64

	Trials    int
	Tolerance float64
	Seed      uint64
	Workers   int

	DBPath     string
	ListenAddr string
	Format     string

	LogLevel string
}

// floatList collects -p flags. Each value may itself be a comma-separated
// list.
type floatList []float64

func (l *floatList) String() string {
	if l == nil {
		return ""
	}
	strs := make([]string, len(*l))
	for i, f := range *l {
		strs[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(strs, ",")
}

func (l *floatList) Set(v string) error {
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return fmt.Errorf("bad probability %q: %w", part, err)
		}
		*l = append(*l, f)
	}
	return nil
}

// Load loads the configs from the given arguments. Any flag can also be set
// through an environment variable named DICECOVER_<FLAG>, e.g.
// DICECOVER_TRIALS.
func (c *Config) Load(args []string) error {
	fs := flag.NewFlagSetWithEnvPrefix("dicecover", "DICECOVER", flag.ContinueOnError)

	var probs floatList
	fs.Var(&probs, "p", "target probability; repeat or comma-separate for up to 5 values")
	fs.IntVar(&c.Trials, "trials", coverage.DefaultTrials, "number of random permutations to try")
	fs.Float64Var(&c.Tolerance, "tolerance", coverage.DefaultTolerance, "how much lower a deviation must be to replace the best so far")
	fs.Uint64Var(&c.Seed, "seed", 0, "random seed; 0 seeds from the runtime")
	fs.IntVar(&c.Workers, "workers", 1, "goroutines used to evaluate trials")

	fs.StringVar(&c.DBPath, "db", "", "sqlite file to record runs in; empty disables history")
	fs.StringVar(&c.ListenAddr, "listen-addr", ":8190", "address the coverage server listens on")
	fs.StringVar(&c.Format, "format", "text", "output format: text or json")

	fs.StringVar(&c.LogLevel, "log-level", "info", "log level")
	err := fs.Parse(args)
	if err != nil {
		return err
	}
	// Positional arguments are treated as more probabilities.
	for _, a := range fs.Args() {
		if err := probs.Set(a); err != nil {
			return err
		}
	}
	c.Probabilities = probs
	return c.validate()
}

func (c *Config) validate() error {
	if len(c.Probabilities) > MaxProbabilities {
		return fmt.Errorf("at most %d probabilities allowed, got %d",
			MaxProbabilities, len(c.Probabilities))
	}
	if c.Trials < 1 {
		return errors.New("trials must be at least 1")
	}
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}
	switch c.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
