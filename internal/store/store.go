// Package store records cross-validation runs in a SQLite ledger so results of
// different configurations can be compared later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/YuminosukeSato/multilabelcv/metrics"
	"github.com/YuminosukeSato/multilabelcv/multilabel"
	"github.com/YuminosukeSato/multilabelcv/pkg/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id             TEXT PRIMARY KEY,
	created_at         TEXT NOT NULL,
	dataset_path       TEXT NOT NULL,
	splitter           TEXT NOT NULL,
	n_splits           INTEGER NOT NULL,
	seed               INTEGER NOT NULL,
	n_samples          INTEGER NOT NULL,
	n_labels           INTEGER NOT NULL,
	valid_folds        INTEGER NOT NULL,
	mean_macro_f1      REAL,
	std_macro_f1       REAL,
	min_positive_count INTEGER NOT NULL,
	cancelled          INTEGER NOT NULL,
	config_json        TEXT,
	report_json        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS fold_scores (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id     TEXT NOT NULL,
	fold       INTEGER NOT NULL,
	label      TEXT NOT NULL,
	precision  REAL NOT NULL,
	recall     REAL NOT NULL,
	f1         REAL NOT NULL,
	support    INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_warnings (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id   TEXT NOT NULL,
	message  TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_fold_scores_run ON fold_scores(run_id, fold);
`

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned when a run id is not in the ledger.
var ErrRunNotFound = errors.New("run not found")

// RunMeta describes the inputs of a run that the report does not carry.
type RunMeta struct {
	// RunID is generated when empty.
	RunID       string
	DatasetPath string
	Seed        int
	// Config is stored as JSON when non-nil.
	Config any
}

// RunRecord is one row of the ledger.
type RunRecord struct {
	RunID            string
	CreatedAt        time.Time
	DatasetPath      string
	Splitter         string
	NSplits          int
	Seed             int
	NSamples         int
	NLabels          int
	ValidFolds       int
	MeanMacroF1      sql.NullFloat64
	StdMacroF1       sql.NullFloat64
	MinPositiveCount int
	Cancelled        bool
	Warnings         int
}

// FoldScore is one label (or average) of one fold.
type FoldScore struct {
	Fold  int
	Label string
	metrics.ClassScores
}

// Store manages the run ledger in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "open db")
	}
	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "pragma %q", pragma)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records rep with its per-fold scores and warnings in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, meta RunMeta, rep *multilabel.AggregateReport) (RunRecord, error) {
	if rep == nil {
		return RunRecord{}, errors.NewValidationError("report", "report is required", nil)
	}
	id := meta.RunID
	if id == "" {
		id = uuid.New().String()
	}

	rec := RunRecord{
		RunID:            id,
		CreatedAt:        s.now().UTC(),
		DatasetPath:      meta.DatasetPath,
		Splitter:         rep.Splitter,
		NSplits:          rep.NSplits,
		Seed:             meta.Seed,
		NSamples:         rep.NSamples,
		NLabels:          len(rep.LabelNames),
		ValidFolds:       rep.ValidFolds(),
		MinPositiveCount: rep.MinPositiveCount,
		Cancelled:        rep.Cancelled,
		Warnings:         len(rep.Warnings),
	}
	if rec.ValidFolds > 0 {
		rec.MeanMacroF1 = sql.NullFloat64{Float64: rep.MeanMacroF1, Valid: true}
		rec.StdMacroF1 = sql.NullFloat64{Float64: rep.StdMacroF1, Valid: true}
	}

	reportJSON, err := json.Marshal(rep)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "marshal report")
	}
	var configJSON sql.NullString
	if meta.Config != nil {
		raw, err := json.Marshal(meta.Config)
		if err != nil {
			return RunRecord{}, errors.Wrap(err, "marshal config")
		}
		configJSON = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "begin tx")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, dataset_path, splitter, n_splits, seed, n_samples, n_labels,
		                   valid_folds, mean_macro_f1, std_macro_f1, min_positive_count, cancelled,
		                   config_json, report_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.CreatedAt.Format(timeLayout), rec.DatasetPath, rec.Splitter, rec.NSplits,
		rec.Seed, rec.NSamples, rec.NLabels, rec.ValidFolds, rec.MeanMacroF1, rec.StdMacroF1,
		rec.MinPositiveCount, rec.Cancelled, configJSON, string(reportJSON),
	)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "insert run")
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO fold_scores (run_id, fold, label, precision, recall, f1, support)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return RunRecord{}, errors.Wrap(err, "prepare fold scores")
	}
	defer stmt.Close()
	for _, f := range rep.FoldReports {
		cr := f.Report()
		for _, key := range cr.Keys() {
			sc, _ := cr.Get(key)
			if _, err := stmt.ExecContext(ctx, id, f.Fold(), key, sc.Precision, sc.Recall, sc.F1, sc.Support); err != nil {
				return RunRecord{}, errors.Wrapf(err, "insert fold %d score %q", f.Fold(), key)
			}
		}
	}

	for _, w := range rep.Warnings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_warnings (run_id, message) VALUES (?, ?)`, id, w.Error(),
		); err != nil {
			return RunRecord{}, errors.Wrap(err, "insert warning")
		}
	}

	if err := tx.Commit(); err != nil {
		return RunRecord{}, errors.Wrap(err, "commit")
	}
	return rec, nil
}

const runColumns = `r.run_id, r.created_at, r.dataset_path, r.splitter, r.n_splits, r.seed, r.n_samples,
	r.n_labels, r.valid_folds, r.mean_macro_f1, r.std_macro_f1, r.min_positive_count, r.cancelled,
	(SELECT COUNT(*) FROM run_warnings w WHERE w.run_id = r.run_id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (RunRecord, error) {
	var rec RunRecord
	var created string
	err := row.Scan(&rec.RunID, &created, &rec.DatasetPath, &rec.Splitter, &rec.NSplits, &rec.Seed,
		&rec.NSamples, &rec.NLabels, &rec.ValidFolds, &rec.MeanMacroF1, &rec.StdMacroF1,
		&rec.MinPositiveCount, &rec.Cancelled, &rec.Warnings)
	if err != nil {
		return RunRecord{}, err
	}
	rec.CreatedAt, _ = time.Parse(timeLayout, created)
	return rec, nil
}

// GetRun returns one run by id.
func (s *Store) GetRun(ctx context.Context, id string) (RunRecord, error) {
	rec, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs r WHERE r.run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, errors.Wrapf(ErrRunNotFound, "run %s", id)
	}
	if err != nil {
		return RunRecord{}, errors.Wrapf(err, "get run %s", id)
	}
	return rec, nil
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs r ORDER BY r.created_at DESC, r.rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list runs")
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan run")
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterate runs")
}

// FoldScores returns the stored scores of a run ordered by fold, labels
// before averages as in the report.
func (s *Store) FoldScores(ctx context.Context, runID string) ([]FoldScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT fold, label, precision, recall, f1, support FROM fold_scores
		 WHERE run_id = ? ORDER BY fold, id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query fold scores")
	}
	defer rows.Close()

	var out []FoldScore
	for rows.Next() {
		var fs FoldScore
		if err := rows.Scan(&fs.Fold, &fs.Label, &fs.Precision, &fs.Recall, &fs.F1, &fs.Support); err != nil {
			return nil, errors.Wrap(err, "scan fold score")
		}
		out = append(out, fs)
	}
	return out, errors.Wrap(rows.Err(), "iterate fold scores")
}

// Warnings returns the warning messages of a run in the order recorded.
func (s *Store) Warnings(ctx context.Context, runID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT message FROM run_warnings WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, errors.Wrap(err, "query warnings")
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			return nil, errors.Wrap(err, "scan warning")
		}
		out = append(out, msg)
	}
	return out, errors.Wrap(rows.Err(), "iterate warnings")
}
