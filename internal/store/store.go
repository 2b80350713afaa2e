// Package store persists normalized jobs. Each backend upserts on the job's
// identity: (source, source_job_id) when the id is known, (source,
// apply_url, title) otherwise.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/amishk599/stagescout/internal/model"
)

// ErrNotFound is returned by Get when no row has the requested id.
var ErrNotFound = errors.New("job not found")

// Open returns the backend selected by the connection string:
// postgres:// and postgresql:// URLs use Postgres, sqlite:// URLs and bare
// paths use SQLite. The schema is not created until Init.
func Open(ctx context.Context, databaseURL string) (model.JobStore, error) {
	u := strings.TrimSpace(databaseURL)
	switch {
	case u == "":
		return nil, errors.New("empty database url")
	case strings.HasPrefix(u, "postgres://"), strings.HasPrefix(u, "postgresql://"):
		return NewPostgresStore(ctx, u)
	default:
		return NewSQLiteStore(sqlitePath(u))
	}
}

// sqlitePath strips the sqlite:// scheme. sqlite:///abs/path keeps its
// leading slash; sqlite://rel/path is relative to the working directory.
func sqlitePath(u string) string {
	return strings.TrimPrefix(u, "sqlite://")
}

// JoinTags serializes a tag set as one comma-separated column.
func JoinTags(tags []string) string {
	return strings.Join(model.NormalizeTagSet(tags), ",")
}

// SplitTags reverses JoinTags, returning the sorted, deduplicated set.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return model.NormalizeTagSet(strings.Split(s, ","))
}

func validate(job model.Job) error {
	if strings.TrimSpace(job.Source) == "" {
		return fmt.Errorf("job %q has no source", job.Title)
	}
	if strings.TrimSpace(job.ApplyURL) == "" {
		return fmt.Errorf("job %q from %s has no apply url", job.Title, job.Source)
	}
	return nil
}
