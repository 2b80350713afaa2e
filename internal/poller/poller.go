package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amishk599/stagescout/internal/classify"
	"github.com/amishk599/stagescout/internal/filter"
	"github.com/amishk599/stagescout/internal/model"
)

// SourceStats summarizes one source's share of a run.
type SourceStats struct {
	Label    string
	Seen     int            // records yielded by the source
	Kept     int            // records that passed the filters and were stored
	Inserted int            // kept records stored for the first time
	Failed   int            // kept records the store rejected
	Rejected map[string]int // filtered records per rejection reason
	Err      error          // error that ended the sequence early, if any
	Duration time.Duration
}

// SourcePoller owns the pipeline for a single source:
// discover → filter → annotate → upsert.
type SourcePoller struct {
	Label      string
	discoverer model.JobDiscoverer
	filter     model.JobFilter
	store      model.JobStore
	logger     *slog.Logger
}

// NewSourcePoller creates a poller wired with all its dependencies. A nil
// filter keeps every record.
func NewSourcePoller(
	label string,
	discoverer model.JobDiscoverer,
	jobFilter model.JobFilter,
	store model.JobStore,
	logger *slog.Logger,
) *SourcePoller {
	return &SourcePoller{
		Label:      label,
		discoverer: discoverer,
		filter:     jobFilter,
		store:      store,
		logger:     logger,
	}
}

// Poll drains the source once. It never fails as a whole: an error element
// ends the source with its counts so far, and a rejected upsert is counted
// and skipped. The returned jobs were inserted for the first time.
func (p *SourcePoller) Poll(ctx context.Context) (stats SourceStats, inserted []model.Job) {
	start := time.Now()
	stats = SourceStats{Label: p.Label, Rejected: make(map[string]int)}

	defer func() {
		// A panicking strategy ends its own source only.
		if r := recover(); r != nil {
			stats.Err = fmt.Errorf("source panicked: %v", r)
			p.logger.Error("source panicked", "label", p.Label, "panic", r)
		}
		stats.Duration = time.Since(start)
		p.logger.Info("polled source",
			"label", p.Label,
			"seen", stats.Seen,
			"kept", stats.Kept,
			"new", stats.Inserted,
			"failed", stats.Failed,
		)
	}()

	for job, err := range p.discoverer.Discover(ctx) {
		if err != nil {
			stats.Err = err
			p.logFailure(err)
			break
		}
		stats.Seen++

		if reason := p.reason(job); reason != "" {
			stats.Rejected[reason]++
			p.logger.Debug("job filtered", "label", p.Label, "title", job.Title, "reason", reason)
			continue
		}

		job = classify.Annotate(job)
		res, err := p.store.Upsert(ctx, job)
		if err != nil {
			stats.Failed++
			p.logger.Error("upsert failed",
				"label", p.Label,
				"source_job_id", job.SourceJobID,
				"apply_url", job.ApplyURL,
				"error", err,
			)
			continue
		}
		stats.Kept++
		if res.Inserted {
			stats.Inserted++
			inserted = append(inserted, job)
		}

		if err := ctx.Err(); err != nil {
			stats.Err = err
			break
		}
	}

	return stats, inserted
}

func (p *SourcePoller) reason(job model.Job) string {
	switch f := p.filter.(type) {
	case nil:
		return ""
	case filter.Reasoner:
		return f.Reason(job)
	default:
		if !f.Match(job) {
			return "filtered"
		}
		return ""
	}
}

func (p *SourcePoller) logFailure(err error) {
	var httpErr *model.HTTPError
	if errors.As(err, &httpErr) {
		p.logger.Warn("source skipped",
			"label", p.Label,
			"status", httpErr.StatusCode,
			"method", httpErr.Method,
			"url", httpErr.URL,
		)
		return
	}
	p.logger.Warn("source skipped", "label", p.Label, "error", err)
}
