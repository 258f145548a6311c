package media

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores media records in the media_records table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgresRepository with the given connection pool.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert writes rec. The primary key is the generated id; url is indexed but not unique.
func (r *PostgresRepository) Insert(ctx context.Context, rec Record) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO media_records (id, url, folder, uploaded_at)
		 VALUES ($1, $2, $3, $4)`,
		rec.ID, rec.URL, rec.Folder, rec.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("insert media record: %w", err)
	}
	return nil
}

// List returns records in folder (all records when folder is empty), newest first.
func (r *PostgresRepository) List(ctx context.Context, folder string) ([]Record, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if folder == "" {
		rows, err = r.db.Query(ctx,
			`SELECT id::text, url, folder, uploaded_at
			 FROM media_records
			 ORDER BY uploaded_at DESC`)
	} else {
		rows, err = r.db.Query(ctx,
			`SELECT id::text, url, folder, uploaded_at
			 FROM media_records
			 WHERE folder = $1
			 ORDER BY uploaded_at DESC`,
			folder,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list media records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Record, error) {
		var rec Record
		err := row.Scan(&rec.ID, &rec.URL, &rec.Folder, &rec.UploadedAt)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan media records: %w", err)
	}
	return records, nil
}
