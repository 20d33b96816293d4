// Package stores keeps a local history of coverage searches.
package stores

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	// sqlite3 driver is used by the history store.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/domino14/dice_coverage/internal/coverage"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at INTEGER NOT NULL,
	targets TEXT NOT NULL,
	chain TEXT,
	deviation REAL,
	trials INTEGER NOT NULL,
	successes INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Run is one stored search. A nil Chain means nothing was found.
type Run struct {
	ID        int64          `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Targets   []float64      `json:"targets"`
	Chain     coverage.Chain `json:"chain"`
	Deviation float64        `json:"deviation"`
	Trials    int            `json:"trials"`
	Successes int            `json:"successes"`
}

// RunFromResult builds a Run out of a search outcome. res may be nil.
func RunFromResult(targets []float64, res *coverage.Result, trials int) Run {
	r := Run{Targets: targets, Trials: trials}
	if res != nil {
		r.Chain = res.Chain
		r.Deviation = res.Deviation
		r.Trials = res.Trials
		r.Successes = res.Successes
	}
	return r
}

type History struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*History, error) {
	if path == "" {
		return nil, errors.New("history path not specified")
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// sqlite only allows one writer anyway.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	log.Debug().Str("path", path).Msg("opened-history")
	return &History{db: db}, nil
}

func (h *History) Close() error {
	return h.db.Close()
}

// Save stores run and returns its new ID. CreatedAt defaults to now.
func (h *History) Save(ctx context.Context, run Run) (int64, error) {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	targets, err := json.Marshal(run.Targets)
	if err != nil {
		return 0, err
	}
	var chain sql.NullString
	var deviation sql.NullFloat64
	if run.Chain != nil {
		bts, err := json.Marshal(run.Chain)
		if err != nil {
			return 0, err
		}
		chain = sql.NullString{String: string(bts), Valid: true}
		deviation = sql.NullFloat64{Float64: run.Deviation, Valid: true}
	}
	res, err := h.db.ExecContext(ctx, `
		INSERT INTO runs (created_at, targets, chain, deviation, trials, successes)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.CreatedAt.UnixMilli(), string(targets), chain, deviation,
		run.Trials, run.Successes)
	if err != nil {
		return 0, fmt.Errorf("saving run: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit runs, newest first.
func (h *History) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, created_at, targets, chain, deviation, trials, successes
		FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		var createdAt int64
		var targets string
		var chain sql.NullString
		var deviation sql.NullFloat64
		if err := rows.Scan(&r.ID, &createdAt, &targets, &chain, &deviation,
			&r.Trials, &r.Successes); err != nil {
			return nil, err
		}
		r.CreatedAt = time.UnixMilli(createdAt)
		if err := json.Unmarshal([]byte(targets), &r.Targets); err != nil {
			return nil, fmt.Errorf("run %d targets: %w", r.ID, err)
		}
		if chain.Valid {
			if err := json.Unmarshal([]byte(chain.String), &r.Chain); err != nil {
				return nil, fmt.Errorf("run %d chain: %w", r.ID, err)
			}
			r.Deviation = deviation.Float64
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
