// dicecover finds groups of two-dice sums whose combined probabilities come
// close to the probabilities given on the command line.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dice_coverage/config"
	"github.com/domino14/dice_coverage/internal/coverage"
	"github.com/domino14/dice_coverage/internal/dice"
	"github.com/domino14/dice_coverage/internal/report"
	"github.com/domino14/dice_coverage/internal/stores"
)

type jsonOutput struct {
	Targets   []float64            `json:"targets"`
	Found     bool                 `json:"found"`
	Groups    []report.GroupReport `json:"groups,omitempty"`
	Deviation float64              `json:"deviation"`
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("loading-config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if strings.ToLower(cfg.LogLevel) == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Interface("config", cfg).Msg("input")

	if err := run(context.Background(), cfg, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("")
	}
}

func run(ctx context.Context, cfg *config.Config, out io.Writer) error {
	searcher, err := coverage.NewSearcher(
		dice.NewGenerator(dice.NewSeededSource(cfg.Seed)),
		coverage.WithTrials(cfg.Trials),
		coverage.WithTolerance(cfg.Tolerance),
		coverage.WithWorkers(cfg.Workers),
	)
	if err != nil {
		return err
	}

	if cfg.Format == "text" {
		fmt.Fprintf(out, "Finding coverage for probabilities: %v ...\n", cfg.Probabilities)
	}
	res, err := searcher.FindBest(cfg.Probabilities)
	if err != nil && !errors.Is(err, coverage.ErrNoCoverage) {
		return err
	}

	if cfg.DBPath != "" {
		h, herr := stores.Open(cfg.DBPath)
		if herr != nil {
			return fmt.Errorf("opening history: %w", herr)
		}
		defer h.Close()
		id, herr := h.Save(ctx, stores.RunFromResult(cfg.Probabilities, res, cfg.Trials))
		if herr != nil {
			return herr
		}
		log.Debug().Int64("id", id).Msg("saved-run")
	}

	if cfg.Format == "json" {
		o := jsonOutput{Targets: cfg.Probabilities, Found: res != nil}
		if res != nil {
			o.Groups = report.Groups(cfg.Probabilities, res.Chain)
			o.Deviation = res.Deviation
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(o)
	}
	if res == nil {
		return report.WriteNoCoverage(out)
	}
	return report.WriteText(out, cfg.Probabilities, res.Chain, res.Deviation)
}
