package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
)

// syncRunStore implements driven.SyncRunStore.
type syncRunStore struct {
	store *Store
}

var _ driven.SyncRunStore = (*syncRunStore)(nil)

// Save stores or updates a run.
func (s *syncRunStore) Save(ctx context.Context, run domain.SyncRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: sync run id is empty", domain.ErrInvalidInput)
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sync_runs (id, kind, graph_id, started_at, finished_at, upserts, deletes, index_errors, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			graph_id = excluded.graph_id,
			started_at = excluded.started_at,
			finished_at = excluded.finished_at,
			upserts = excluded.upserts,
			deletes = excluded.deletes,
			index_errors = excluded.index_errors,
			error = excluded.error
	`, run.ID, string(run.Kind), string(run.GraphID), run.StartedAt.UTC(), nullTime(run),
		run.Upserts, run.Deletes, run.IndexErrors, run.Error)
	if err != nil {
		return fmt.Errorf("saving sync run: %w", err)
	}
	return nil
}

// Get retrieves a run by id.
func (s *syncRunStore) Get(ctx context.Context, id string) (*domain.SyncRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, kind, graph_id, started_at, finished_at, upserts, deletes, index_errors, error
		FROM sync_runs WHERE id = ?
	`, id)

	run, err := scanSyncRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sync run: %w", err)
	}
	return run, nil
}

// List returns runs newest first. A limit of zero or less returns all.
func (s *syncRunStore) List(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, kind, graph_id, started_at, finished_at, upserts, deletes, index_errors, error
		FROM sync_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sync runs: %w", err)
	}
	defer rows.Close()

	runs := []domain.SyncRun{}
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning sync run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSyncRun(row rowScanner) (*domain.SyncRun, error) {
	var run domain.SyncRun
	var kind, graphID string
	var finishedAt sql.NullTime
	if err := row.Scan(&run.ID, &kind, &graphID, &run.StartedAt, &finishedAt,
		&run.Upserts, &run.Deletes, &run.IndexErrors, &run.Error); err != nil {
		return nil, err
	}

	run.Kind = domain.SyncKind(kind)
	run.GraphID = domain.GraphID(graphID)
	run.StartedAt = run.StartedAt.UTC()
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time.UTC()
	}
	return &run, nil
}

func nullTime(run domain.SyncRun) sql.NullTime {
	if run.FinishedAt.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: run.FinishedAt.UTC(), Valid: true}
}
