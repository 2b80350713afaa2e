package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"

	"github.com/amishk599/stagescout/internal/model"
)

// personioEndpoints are tried in order until one answers with JSON.
var personioEndpoints = []string{
	"search.json?language=en",
	"search.json?language=fr",
	"search.json",
}

// PersonioAdapter discovers positions from a Personio careers page.
type PersonioAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewPersonioAdapter creates a new adapter for a Personio careers page.
func NewPersonioAdapter(companySlug, companyName string, client *http.Client, logger *slog.Logger) *PersonioAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersonioAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

func (a *PersonioAdapter) siteURL() string {
	return fmt.Sprintf("https://%s.jobs.personio.de/", a.companySlug)
}

// Discover yields the positions of the first endpoint that returns any. When
// none does, the sequence is empty.
func (a *PersonioAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *PersonioAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	site := a.siteURL()
	var positions []fields
	for _, ep := range personioEndpoints {
		v, err := getJSON(ctx, a.client, site+ep, nil)
		if err != nil {
			a.logger.Debug("personio endpoint failed", "company", a.companySlug, "endpoint", ep, "error", err)
			continue
		}
		if positions = personioPositions(v); len(positions) > 0 {
			break
		}
	}

	jobs := make([]model.Job, 0, len(positions))
	for _, p := range positions {
		id := p.str("id", "positionId")
		applyURL := p.str("url", "jobUrl")
		if applyURL == "" && id != "" {
			applyURL = site + "job/" + id
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourcePersonio,
			SourceJobID: id,
			Title:       p.str("name", "title"),
			Company:     a.companyName,
			Location:    p.str("office", "locations", "employmentOffice", "location"),
			ApplyURL:    applyURL,
			Description: extractText(p.str("description", "descriptionText")),
			PostedAt:    p.str("publishedAt", "createdAt", "created_at"),
		}, site))
	}
	return jobs, nil
}

// personioPositions accepts a bare list or an object wrapping one.
func personioPositions(v any) []fields {
	switch t := v.(type) {
	case []any:
		return objects(t)
	case map[string]any:
		return objects(fields(t).list("jobs", "positions"))
	}
	return nil
}
