package repository

import (
	"context"
	"database/sql"
	"encoding/json"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Save(ctx context.Context, repo *Repository) error {
	files, err := json.Marshal(repo.Files)
	if err != nil {
		return err
	}
	query := `INSERT INTO repositories (url, owner, name, branch, path, status, file_count, files)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query,
		repo.URL, repo.Owner, repo.Name, repo.Branch, repo.Path, repo.Status, repo.FileCount, files,
	).Scan(&repo.ID, &repo.CreatedAt)
}

func (r *PostgresStore) Get(ctx context.Context, id int) (*Repository, error) {
	repo := &Repository{}
	var files []byte
	var errMsg sql.NullString
	var processedAt sql.NullTime
	query := `SELECT id, url, owner, name, branch, path, status, vectorized, file_count, files, error, processed_at, created_at
		FROM repositories WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&repo.ID, &repo.URL, &repo.Owner, &repo.Name, &repo.Branch, &repo.Path,
		&repo.Status, &repo.Vectorized, &repo.FileCount, &files, &errMsg, &processedAt, &repo.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(files) > 0 {
		if err := json.Unmarshal(files, &repo.Files); err != nil {
			return nil, err
		}
	}
	if errMsg.Valid {
		repo.Error = errMsg.String
	}
	if processedAt.Valid {
		t := processedAt.Time
		repo.ProcessedAt = &t
	}
	return repo, nil
}

func (r *PostgresStore) List(ctx context.Context) ([]Repository, error) {
	query := `SELECT id, url, owner, name, branch, path, status, vectorized, file_count, error, processed_at, created_at
		FROM repositories ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repos []Repository
	for rows.Next() {
		var repo Repository
		var errMsg sql.NullString
		var processedAt sql.NullTime
		if err := rows.Scan(
			&repo.ID, &repo.URL, &repo.Owner, &repo.Name, &repo.Branch, &repo.Path,
			&repo.Status, &repo.Vectorized, &repo.FileCount, &errMsg, &processedAt, &repo.CreatedAt,
		); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			repo.Error = errMsg.String
		}
		if processedAt.Valid {
			t := processedAt.Time
			repo.ProcessedAt = &t
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

func (r *PostgresStore) MarkCompleted(ctx context.Context, id int) error {
	query := `UPDATE repositories SET status = $1, vectorized = TRUE, error = NULL, processed_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, StatusCompleted, id)
	return err
}

func (r *PostgresStore) MarkFailed(ctx context.Context, id int, errMsg string) error {
	query := `UPDATE repositories SET status = $1, error = $2, processed_at = NOW() WHERE id = $3`
	_, err := r.db.ExecContext(ctx, query, StatusFailed, errMsg, id)
	return err
}

func (r *PostgresStore) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	query := `SELECT COUNT(*),
		COUNT(*) FILTER (WHERE vectorized),
		COUNT(*) FILTER (WHERE status = 'failed')
		FROM repositories`
	err := r.db.QueryRowContext(ctx, query).Scan(&c.Total, &c.Vectorized, &c.Failed)
	return c, err
}

func (r *PostgresStore) Delete(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
