package ingest

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	CreateRun(ctx context.Context, run *Run) (string, error)
	UpdateRun(ctx context.Context, run *Run) error
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) (string, error) {
	const sql = `
		INSERT INTO ingest_runs (source, status, started_at)
		VALUES ($1, $2, $3)
		RETURNING id::text`

	var id string
	err := r.db.QueryRow(ctx, sql, run.Source, run.Status, run.StartedAt).Scan(&id)
	return id, err
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const sql = `
		UPDATE ingest_runs SET
			finished_at = $1,
			status = $2,
			entries_parsed = $3,
			entries_upserted = $4,
			error = $5
		WHERE id = $6`

	_, err := r.db.Exec(ctx, sql, run.FinishedAt, run.Status, run.EntriesParsed, run.EntriesUpserted, run.Error, run.ID)
	return err
}
