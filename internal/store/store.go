// Package store persists analysis runs in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/cwbudde/algo-resp/analysis"
	"github.com/cwbudde/algo-resp/measure/impedance"
)

// ErrNotFound is returned for an unknown run ID.
var ErrNotFound = errors.New("store: run not found")

// Store is a SQLite-backed run archive.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and migrates it to the
// latest schema. Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run is a stored analysis run.
type Run struct {
	RunID      string
	Recording  string
	SampleRate float64
	Breaths    int
	Reason     string
	Summary    analysis.Summary
	CreatedAt  int64 // Unix nanoseconds
}

// BreathRecord is one stored breath of a run. Features is nil when the
// breath had no feature row.
type BreathRecord struct {
	BreathIndex      int
	InspirationStart int
	InspirationEnd   int
	ExpirationStart  int
	ExpirationEnd    int
	TotalDuration    float64
	InspVolume       float64
	ExpVolume        float64
	Features         map[string]impedance.ChannelStats
}

// SaveRun stores res and its breaths in one transaction and returns the
// new run. Aborted runs are stored with their reason and no breaths.
func (s *Store) SaveRun(res *analysis.Result) (*Run, error) {
	run := &Run{
		RunID:      uuid.New().String(),
		Recording:  res.Recording,
		SampleRate: res.SampleRate,
		Breaths:    len(res.Entries),
		Reason:     res.Reason,
		Summary:    res.Summary,
		CreatedAt:  time.Now().UnixNano(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	sum := res.Summary
	_, err = tx.Exec(`
		INSERT INTO analysis_runs (
			run_id, recording, sample_rate, breath_count, reason,
			duration_s, rate_per_min, mean_cycle_duration, std_cycle_duration,
			mean_insp_volume, mean_exp_volume, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.Recording, run.SampleRate, run.Breaths, run.Reason,
		nullable(sum.Duration), nullable(sum.Rate), nullable(sum.MeanCycleDuration),
		nullable(sum.StdCycleDuration), nullable(sum.MeanInspVolume), nullable(sum.MeanExpVolume),
		run.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO analysis_breaths (
			run_id, breath_index, inspiration_start, inspiration_end,
			expiration_start, expiration_end, total_duration,
			insp_volume, exp_volume, features_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare breath insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range res.Entries {
		b := e.Breath

		var insp, exp, features any
		if e.Features != nil {
			insp, exp = nullable(e.Features.InspVolume), nullable(e.Features.ExpVolume)

			data, err := json.Marshal(encodeFeatures(e.Features.Channels))
			if err != nil {
				return nil, fmt.Errorf("marshal features of breath %d: %w", b.Index, err)
			}
			features = string(data)
		}

		if _, err := stmt.Exec(
			run.RunID, b.Index, b.InspirationStart, b.InspirationEnd,
			b.ExpirationStart, b.ExpirationEnd, nullable(b.TotalDuration),
			insp, exp, features,
		); err != nil {
			return nil, fmt.Errorf("insert breath %d: %w", b.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return run, nil
}

const runColumns = `
	run_id, recording, sample_rate, breath_count, reason,
	duration_s, rate_per_min, mean_cycle_duration, std_cycle_duration,
	mean_insp_volume, mean_exp_volume, created_at`

// Runs returns all runs, newest first.
func (s *Store) Runs() ([]*Run, error) {
	rows, err := s.db.Query(`SELECT` + runColumns + ` FROM analysis_runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns a single run by ID.
func (s *Store) Get(runID string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT`+runColumns+` FROM analysis_runs WHERE run_id = ?`, runID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, runID)
	}
	return r, err
}

// Breaths returns the stored breaths of a run in breath order.
func (s *Store) Breaths(runID string) ([]BreathRecord, error) {
	rows, err := s.db.Query(`
		SELECT breath_index, inspiration_start, inspiration_end,
		       expiration_start, expiration_end, total_duration,
		       insp_volume, exp_volume, features_json
		FROM analysis_breaths
		WHERE run_id = ?
		ORDER BY breath_index`, runID)
	if err != nil {
		return nil, fmt.Errorf("query breaths: %w", err)
	}
	defer rows.Close()

	var out []BreathRecord
	for rows.Next() {
		var (
			b             BreathRecord
			dur, ins, exp sql.NullFloat64
			features      sql.NullString
		)

		if err := rows.Scan(
			&b.BreathIndex, &b.InspirationStart, &b.InspirationEnd,
			&b.ExpirationStart, &b.ExpirationEnd, &dur, &ins, &exp, &features,
		); err != nil {
			return nil, fmt.Errorf("scan breath: %w", err)
		}

		b.TotalDuration, b.InspVolume, b.ExpVolume = value(dur), value(ins), value(exp)

		if features.Valid {
			var stored map[string]channelJSON
			if err := json.Unmarshal([]byte(features.String), &stored); err != nil {
				return nil, fmt.Errorf("decode features of breath %d: %w", b.BreathIndex, err)
			}
			b.Features = decodeFeatures(stored)
		}

		out = append(out, b)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		r                          Run
		dur, rate, mean, std, i, e sql.NullFloat64
	)

	if err := row.Scan(
		&r.RunID, &r.Recording, &r.SampleRate, &r.Breaths, &r.Reason,
		&dur, &rate, &mean, &std, &i, &e, &r.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}

	r.Summary = analysis.Summary{
		Breaths:           r.Breaths,
		Duration:          value(dur),
		Rate:              value(rate),
		MeanCycleDuration: value(mean),
		StdCycleDuration:  value(std),
		MeanInspVolume:    value(i),
		MeanExpVolume:     value(e),
	}

	return &r, nil
}

// nullable maps NaN and Inf to NULL.
func nullable(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

func value(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
