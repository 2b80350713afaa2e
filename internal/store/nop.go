package store

import (
	"context"
	"sync/atomic"

	"github.com/amishk599/stagescout/internal/model"
)

// NopStore is a no-op store used in dry-run mode. Nothing is persisted, so
// every job is reported as inserted on every run.
type NopStore struct {
	next atomic.Int64
}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) Init(ctx context.Context) error { return nil }

func (s *NopStore) Upsert(ctx context.Context, job model.Job) (model.UpsertResult, error) {
	if err := validate(job); err != nil {
		return model.UpsertResult{}, err
	}
	return model.UpsertResult{ID: s.next.Add(1), Inserted: true}, nil
}

func (s *NopStore) List(ctx context.Context, opts model.ListOptions) ([]model.StoredJob, error) {
	return nil, nil
}

func (s *NopStore) Get(ctx context.Context, id int64) (model.StoredJob, error) {
	return model.StoredJob{}, ErrNotFound
}

func (s *NopStore) Close() error { return nil }
