package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// ErrRunNotFound is returned when finishing an unknown run.
var ErrRunNotFound = errors.New("run not found")

// RunRepo handles the runs table.
type RunRepo struct {
	db *sql.DB
}

func NewRunRepo(db *sql.DB) *RunRepo { return &RunRepo{db: db} }

func (r *RunRepo) Insert(ctx context.Context, run Run) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO runs(id, repo_url, preferences, status, message, files_changed, started_at, finished_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?);
	`, run.ID, run.RepoURL, run.Preferences, run.Status, run.Message, run.FilesChanged, run.StartedAt, run.FinishedAt)
	return err
}

// Finish records the terminal state of a run.
func (r *RunRepo) Finish(ctx context.Context, id, status, message string, filesChanged int, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE runs SET status = ?, message = ?, files_changed = ?, finished_at = ?
	WHERE id = ?`, status, message, filesChanged, at, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

func (r *RunRepo) Get(ctx context.Context, id string) (Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	return run, err
}

// List returns the newest runs first.
func (r *RunRepo) List(ctx context.Context, limit int) ([]Run, error) {
	return r.query(ctx, `SELECT `+runColumns+` FROM runs ORDER BY rowid DESC LIMIT ?`, limit)
}

// Recent returns the latest run of each distinct repository, newest first.
func (r *RunRepo) Recent(ctx context.Context, limit int) ([]Run, error) {
	return r.query(ctx, `
	SELECT `+runColumns+` FROM runs
	WHERE rowid IN (SELECT MAX(rowid) FROM runs GROUP BY repo_url)
	ORDER BY rowid DESC LIMIT ?`, limit)
}

const runColumns = `id, repo_url, preferences, status, message, files_changed, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var run Run
	err := s.Scan(&run.ID, &run.RepoURL, &run.Preferences, &run.Status, &run.Message,
		&run.FilesChanged, &run.StartedAt, &run.FinishedAt)
	return run, err
}

func (r *RunRepo) query(ctx context.Context, q string, args ...any) ([]Run, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
