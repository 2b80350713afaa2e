package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/stagescout/internal/model"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	source           TEXT NOT NULL,
	source_job_id    TEXT,
	title            TEXT NOT NULL,
	company          TEXT,
	location         TEXT,
	country_code     TEXT,
	is_remote        INTEGER NOT NULL DEFAULT 0,
	apply_url        TEXT NOT NULL,
	description_text TEXT,
	posted_at        TEXT,
	scraped_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
	language         TEXT,
	tags             TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_source_jobid ON jobs (source, source_job_id);
CREATE INDEX IF NOT EXISTS idx_jobs_source_url_title ON jobs (source, apply_url, title);`

// scrapedAtLayout is fixed-width so that the text column sorts as time.
const scrapedAtLayout = "2006-01-02T15:04:05.000000000Z"

const jobColumns = `id, source, source_job_id, title, company, location, country_code, is_remote,
	apply_url, description_text, posted_at, scraped_at, language, tags`

// SQLiteStore keeps jobs in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", dbPath))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers on the file.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates the jobs table and its indexes.
func (s *SQLiteStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating jobs table: %w", err)
	}
	return nil
}

// Upsert inserts job or overwrites the mutable columns of the row sharing
// its identity, in a transaction of its own.
func (s *SQLiteStore) Upsert(ctx context.Context, job model.Job) (res model.UpsertResult, err error) {
	if err := validate(job); err != nil {
		return res, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin upsert: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var id int64
	if job.HasSourceID() {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM jobs WHERE source = ? AND source_job_id = ?`,
			job.Source, job.SourceJobID).Scan(&id)
	} else {
		err = tx.QueryRowContext(ctx,
			`SELECT id FROM jobs WHERE source = ? AND apply_url = ? AND title = ? ORDER BY id LIMIT 1`,
			job.Source, job.ApplyURL, job.Title).Scan(&id)
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		r, ierr := tx.ExecContext(ctx,
			`INSERT INTO jobs (source, source_job_id, title, company, location, country_code, is_remote,
				apply_url, description_text, posted_at, scraped_at, language, tags)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			job.Source, nullable(job.SourceJobID), job.Title, job.Company, job.Location, job.CountryCode,
			job.IsRemote, job.ApplyURL, job.Description, job.PostedAt,
			time.Now().UTC().Format(scrapedAtLayout), job.Language, JoinTags(job.Tags))
		if ierr != nil {
			err = fmt.Errorf("inserting job %s: %w", job.IdentityKey(), ierr)
			return res, err
		}
		if id, err = r.LastInsertId(); err != nil {
			return res, fmt.Errorf("reading inserted id: %w", err)
		}
		res = model.UpsertResult{ID: id, Inserted: true}
	case err != nil:
		return res, fmt.Errorf("looking up job: %w", err)
	default:
		if _, err = tx.ExecContext(ctx,
			`UPDATE jobs SET company = ?, location = ?, country_code = ?, is_remote = ?,
				apply_url = ?, description_text = ?, posted_at = ?, language = ?, tags = ?
			 WHERE id = ?`,
			job.Company, job.Location, job.CountryCode, job.IsRemote,
			job.ApplyURL, job.Description, job.PostedAt, job.Language, JoinTags(job.Tags), id); err != nil {
			return res, fmt.Errorf("updating job %d: %w", id, err)
		}
		res = model.UpsertResult{ID: id}
	}

	if err = tx.Commit(); err != nil {
		return res, fmt.Errorf("commit upsert: %w", err)
	}
	return res, nil
}

// List returns stored jobs, newest first.
func (s *SQLiteStore) List(ctx context.Context, opts model.ListOptions) ([]model.StoredJob, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs`
	var args []any
	if opts.Source != "" {
		q += ` WHERE source = ?`
		args = append(args, opts.Source)
	}
	q += ` ORDER BY scraped_at DESC, id DESC`
	if opts.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	defer rows.Close()

	var out []model.StoredJob
	for rows.Next() {
		j, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// Get returns the row with the given id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int64) (model.StoredJob, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	j, err := scanSQLite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.StoredJob{}, ErrNotFound
	}
	return j, err
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(r rowScanner) (model.StoredJob, error) {
	var (
		j                                       model.StoredJob
		sourceJobID, company, location, country sql.NullString
		description, postedAt, language, tags   sql.NullString
		scrapedAt                               string
	)
	err := r.Scan(&j.ID, &j.Source, &sourceJobID, &j.Title, &company, &location, &country, &j.IsRemote,
		&j.ApplyURL, &description, &postedAt, &scrapedAt, &language, &tags)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return j, err
		}
		return j, fmt.Errorf("scanning job: %w", err)
	}
	j.SourceJobID = sourceJobID.String
	j.Company = company.String
	j.Location = location.String
	j.CountryCode = country.String
	j.Description = description.String
	j.PostedAt = postedAt.String
	j.Language = language.String
	j.Tags = SplitTags(tags.String)
	j.ScrapedAt = parseTimestamp(scrapedAt)
	return j, nil
}

// parseTimestamp reads the scraped_at text column. Rows written by the
// column default have millisecond precision.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
