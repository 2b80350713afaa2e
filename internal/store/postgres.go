package store

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/amishk599/stagescout/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore keeps jobs in Postgres through a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
	url  string
}

// NewPostgresStore connects to databaseURL and verifies the connection.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool, url: databaseURL}, nil
}

// Init applies the embedded migrations.
func (s *PostgresStore) Init(ctx context.Context) error {
	return RunMigrations(s.url)
}

// RunMigrations applies every pending up migration to databaseURL.
func RunMigrations(databaseURL string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(databaseURL))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres URL onto the pgx/v5 migrate driver scheme.
func migrateURL(databaseURL string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(databaseURL, prefix) {
			return "pgx5://" + strings.TrimPrefix(databaseURL, prefix)
		}
	}
	return databaseURL
}

// Upsert inserts job or overwrites the mutable columns of the row sharing
// its identity, in a transaction of its own.
func (s *PostgresStore) Upsert(ctx context.Context, job model.Job) (model.UpsertResult, error) {
	var res model.UpsertResult
	if err := validate(job); err != nil {
		return res, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return res, fmt.Errorf("begin upsert: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int64
	if job.HasSourceID() {
		err = tx.QueryRow(ctx,
			`SELECT id FROM jobs WHERE source = $1 AND source_job_id = $2`,
			job.Source, job.SourceJobID).Scan(&id)
	} else {
		err = tx.QueryRow(ctx,
			`SELECT id FROM jobs WHERE source = $1 AND apply_url = $2 AND title = $3 ORDER BY id LIMIT 1`,
			job.Source, job.ApplyURL, job.Title).Scan(&id)
	}

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		err = tx.QueryRow(ctx,
			`INSERT INTO jobs (source, source_job_id, title, company, location, country_code, is_remote,
				apply_url, description_text, posted_at, language, tags)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			 RETURNING id`,
			job.Source, optional(job.SourceJobID), job.Title, job.Company, job.Location, job.CountryCode,
			job.IsRemote, job.ApplyURL, job.Description, job.PostedAt, job.Language, JoinTags(job.Tags),
		).Scan(&id)
		if err != nil {
			if isDuplicateKeyError(err) {
				return res, fmt.Errorf("inserting job %s: concurrent insert: %w", job.IdentityKey(), err)
			}
			return res, fmt.Errorf("inserting job %s: %w", job.IdentityKey(), err)
		}
		res = model.UpsertResult{ID: id, Inserted: true}
	case err != nil:
		return res, fmt.Errorf("looking up job: %w", err)
	default:
		if _, err := tx.Exec(ctx,
			`UPDATE jobs SET company = $1, location = $2, country_code = $3, is_remote = $4,
				apply_url = $5, description_text = $6, posted_at = $7, language = $8, tags = $9
			 WHERE id = $10`,
			job.Company, job.Location, job.CountryCode, job.IsRemote,
			job.ApplyURL, job.Description, job.PostedAt, job.Language, JoinTags(job.Tags), id); err != nil {
			return res, fmt.Errorf("updating job %d: %w", id, err)
		}
		res = model.UpsertResult{ID: id}
	}

	if err := tx.Commit(ctx); err != nil {
		return res, fmt.Errorf("commit upsert: %w", err)
	}
	return res, nil
}

// List returns stored jobs, newest first.
func (s *PostgresStore) List(ctx context.Context, opts model.ListOptions) ([]model.StoredJob, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if opts.Source != "" {
		args = append(args, opts.Source)
		q += fmt.Sprintf(` WHERE source = $%d`, len(args))
	}
	q += ` ORDER BY scraped_at DESC, id DESC`
	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []model.StoredJob
	for rows.Next() {
		j, err := scanPostgres(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Get returns the row with the given id, or ErrNotFound.
func (s *PostgresStore) Get(ctx context.Context, id int64) (model.StoredJob, error) {
	j, err := scanPostgres(s.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.StoredJob{}, ErrNotFound
	}
	return j, err
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanPostgres(r pgx.Row) (model.StoredJob, error) {
	var (
		j                                       model.StoredJob
		sourceJobID, company, location, country *string
		description, postedAt, language, tags   *string
	)
	err := r.Scan(&j.ID, &j.Source, &sourceJobID, &j.Title, &company, &location, &country, &j.IsRemote,
		&j.ApplyURL, &description, &postedAt, &j.ScrapedAt, &language, &tags)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return j, err
		}
		return j, fmt.Errorf("scan job: %w", err)
	}
	j.SourceJobID = deref(sourceJobID)
	j.Company = deref(company)
	j.Location = deref(location)
	j.CountryCode = deref(country)
	j.Description = deref(description)
	j.PostedAt = deref(postedAt)
	j.Language = deref(language)
	j.Tags = SplitTags(deref(tags))
	j.ScrapedAt = j.ScrapedAt.UTC()
	return j, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
