package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:generate mockgen -source=postgres_repo.go -destination=mock_repository.go -package=catalog

// Repository mirrors the in-memory catalog in a database.
type Repository interface {
	ReplaceAll(ctx context.Context, entries []Entry) (int, error)
	GetByKey(ctx context.Context, key string) (Entry, error)
	List(ctx context.Context, q ListQuery) ([]Entry, int, error)
	Count(ctx context.Context) (int, error)
}

type PostgresRepo struct {
	db *pgxpool.Pool
}

func NewPostgresRepo(db *pgxpool.Pool) *PostgresRepo {
	return &PostgresRepo{db: db}
}

var entryColumns = []string{
	"key", "entry_id", "topic", "category", "category_fold", "subcategory",
	"brief_description", "description", "extra", "block", "position",
}

// ReplaceAll swaps the stored catalog for entries in one transaction.
func (r *PostgresRepo) ReplaceAll(ctx context.Context, entries []Entry) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM catalog_entries"); err != nil {
		return 0, fmt.Errorf("clear catalog: %w", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"catalog_entries"}, entryColumns,
		pgx.CopyFromSlice(len(entries), func(i int) ([]any, error) {
			e := entries[i]
			extra, err := marshalExtra(e.Extra)
			if err != nil {
				return nil, err
			}
			return []any{
				e.Key, e.ID, e.Topic, e.Category, foldCategory(e.Category), e.Subcategory,
				e.BriefDescription, e.Description, extra, e.Block, i + 1,
			}, nil
		}))
	if err != nil {
		return 0, fmt.Errorf("copy catalog entries: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *PostgresRepo) GetByKey(ctx context.Context, key string) (Entry, error) {
	const query = `
		SELECT key, entry_id, topic, category, subcategory, brief_description, description, extra, block
		FROM catalog_entries
		WHERE key = $1
	`
	e, err := scanEntry(r.db.QueryRow(ctx, query, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, &NotFoundError{Key: key}
		}
		return Entry{}, err
	}
	return e, nil
}

// List pages in load order. Category matching uses the same folding as the
// in-memory index, and a cursor key outside the filter is ErrInvalidCursor.
func (r *PostgresRepo) List(ctx context.Context, q ListQuery) ([]Entry, int, error) {
	where := ""
	args := []any{}
	if strings.TrimSpace(q.Category) != "" {
		where = "WHERE category_fold = $1"
		args = append(args, foldCategory(q.Category))
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM catalog_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	offset := max(q.Offset, 0)
	if q.AfterKey != "" {
		var after int
		keyArg := fmt.Sprintf("$%d", len(args)+1)
		cond := "WHERE key = " + keyArg
		if where != "" {
			cond = where + " AND key = " + keyArg
		}
		err := r.db.QueryRow(ctx, "SELECT position FROM catalog_entries "+cond, append(args, q.AfterKey)...).Scan(&after)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, ErrInvalidCursor
		}
		if err != nil {
			return nil, 0, err
		}
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		args = append(args, after)
		where += fmt.Sprintf("position > $%d", len(args))
		offset = 0
	}

	limit := q.Limit
	if limit <= 0 {
		limit = total
	}
	dataSQL := fmt.Sprintf(`
		SELECT key, entry_id, topic, category, subcategory, brief_description, description, extra, block
		FROM catalog_entries
		%s
		ORDER BY position ASC
		LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2)

	rows, err := r.db.Query(ctx, dataSQL, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM catalog_entries").Scan(&count)
	return count, err
}

func scanEntry(row pgx.Row) (Entry, error) {
	var (
		e     Entry
		extra []byte
	)
	if err := row.Scan(
		&e.Key, &e.ID, &e.Topic, &e.Category, &e.Subcategory,
		&e.BriefDescription, &e.Description, &extra, &e.Block,
	); err != nil {
		return Entry{}, err
	}
	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &e.Extra); err != nil {
			return Entry{}, fmt.Errorf("decode extra for %s: %w", e.Key, err)
		}
	}
	return e, nil
}

func marshalExtra(extra map[string]string) ([]byte, error) {
	if len(extra) == 0 {
		return nil, nil
	}
	return json.Marshal(extra)
}
