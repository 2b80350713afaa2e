package poller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/amishk599/stagescout/internal/adapter"
	"github.com/amishk599/stagescout/internal/config"
	"github.com/amishk599/stagescout/internal/model"
)

// Source is a built strategy and the label it reports under.
type Source struct {
	Label      string
	Discoverer model.JobDiscoverer
}

// BuildSources turns the enabled source configs into strategies, in
// configuration order. Malformed entries, placeholders, unknown types and bad
// identifiers are skipped with a warning.
func BuildSources(cfgs []config.SourceConfig, deps adapter.Deps, logger *slog.Logger) []Source {
	var sources []Source
	for _, sc := range cfgs {
		label := sc.Label()
		if !sc.Enabled {
			continue
		}
		if sc.Err != nil {
			logger.Warn("malformed source entry, skipping", "label", label, "error", sc.Err)
			continue
		}
		if sc.IsPlaceholder() {
			logger.Warn("placeholder identifier, skipping", "label", label, "identifier", sc.ID.String())
			continue
		}
		d, err := adapter.New(sc.Type, sc.ID, sc.Company, deps)
		if err != nil {
			logger.Warn("cannot build source, skipping", "label", label, "error", err)
			continue
		}
		sources = append(sources, Source{Label: label, Discoverer: d})
		logger.Debug("registered source", "label", label)
	}
	return sources
}

// Report is the outcome of one run.
type Report struct {
	RunID    string
	Started  time.Time
	Duration time.Duration
	Seen     int
	Kept     int
	Inserted int
	Sources  []SourceStats // configuration order
}

// Runner executes a full pass over every source.
type Runner struct {
	sources     []Source
	filter      model.JobFilter
	store       model.JobStore
	notifier    model.Notifier
	concurrency int
	logger      *slog.Logger
}

// NewRunner creates a runner. A nil notifier disables notifications;
// concurrency below 2 drains sources one after another.
func NewRunner(
	sources []Source,
	jobFilter model.JobFilter,
	store model.JobStore,
	notifier model.Notifier,
	concurrency int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		sources:     sources,
		filter:      jobFilter,
		store:       store,
		notifier:    notifier,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run initializes the store, drains every source and notifies about newly
// inserted jobs. Only a store initialization failure is returned; per-source
// problems are recorded in the report.
func (r *Runner) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString(), Started: time.Now()}
	logger := r.logger.With("run_id", report.RunID)

	if err := r.store.Init(ctx); err != nil {
		return report, fmt.Errorf("store init: %w", err)
	}
	logger.Info("run started", "sources", len(r.sources), "concurrency", max(r.concurrency, 1))

	report.Sources = make([]SourceStats, len(r.sources))
	var (
		mu       sync.Mutex
		inserted []model.Job
	)
	record := func(i int, stats SourceStats, jobs []model.Job) {
		mu.Lock()
		defer mu.Unlock()
		report.Sources[i] = stats
		report.Seen += stats.Seen
		report.Kept += stats.Kept
		report.Inserted += stats.Inserted
		inserted = append(inserted, jobs...)
	}

	if r.concurrency <= 1 {
		for i, src := range r.sources {
			p := NewSourcePoller(src.Label, src.Discoverer, r.filter, r.store, logger)
			stats, jobs := p.Poll(ctx)
			record(i, stats, jobs)
		}
	} else {
		store := &serialStore{JobStore: r.store}
		var g errgroup.Group
		g.SetLimit(r.concurrency)
		for i, src := range r.sources {
			g.Go(func() error {
				p := NewSourcePoller(src.Label, src.Discoverer, r.filter, store, logger)
				stats, jobs := p.Poll(ctx)
				record(i, stats, jobs)
				return nil
			})
		}
		_ = g.Wait()
	}

	if r.notifier != nil && len(inserted) > 0 {
		if err := r.notifier.Notify(inserted); err != nil {
			logger.Error("notification failed", "jobs", len(inserted), "error", err)
		}
	}

	report.Duration = time.Since(report.Started)
	logger.Info("run finished",
		"seen", report.Seen,
		"kept", report.Kept,
		"new", report.Inserted,
		"duration", report.Duration.Round(time.Millisecond).String(),
	)
	return report, nil
}

// serialStore funnels writes from concurrent pollers through one lock.
type serialStore struct {
	mu sync.Mutex
	model.JobStore
}

func (s *serialStore) Upsert(ctx context.Context, job model.Job) (model.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.JobStore.Upsert(ctx, job)
}
