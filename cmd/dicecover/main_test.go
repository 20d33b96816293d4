package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/dice_coverage/config"
	"github.com/domino14/dice_coverage/internal/report"
	"github.com/domino14/dice_coverage/internal/stores"
)

func loadConfig(t *testing.T, args ...string) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	if err := cfg.Load(args); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRunText(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	cfg := loadConfig(t, "-seed", "9", "-p", "0.2,0.5")
	is.NoErr(run(context.Background(), cfg, &buf))
	out := buf.String()
	is.True(strings.HasPrefix(out, "Finding coverage for probabilities: [0.2 0.5] ...\n"))
	is.True(strings.Contains(out, "Coverage found with deviation:"))
	is.True(strings.Contains(out, "Group 2: ["))
}

func TestRunNoCoverage(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	cfg := loadConfig(t, "-seed", "9", "-trials", "10", "-p", "1.5")
	is.NoErr(run(context.Background(), cfg, &buf))
	is.True(strings.HasSuffix(buf.String(), report.NoCoverageMsg+"\n"))
}

func TestRunJSONWithHistory(t *testing.T) {
	is := is.New(t)
	var buf bytes.Buffer
	db := filepath.Join(t.TempDir(), "runs.db")
	cfg := loadConfig(t, "-seed", "9", "-format", "json", "-db", db, "-p", "0.4")
	is.NoErr(run(context.Background(), cfg, &buf))

	var o jsonOutput
	is.NoErr(json.Unmarshal(buf.Bytes(), &o))
	is.True(o.Found)
	is.Equal(len(o.Groups), 1)
	is.True(o.Groups[0].Probability >= 0.4)

	h, err := stores.Open(db)
	is.NoErr(err)
	defer h.Close()
	runs, err := h.Recent(context.Background(), 5)
	is.NoErr(err)
	is.Equal(len(runs), 1)
	is.Equal(runs[0].Targets, []float64{0.4})
}
