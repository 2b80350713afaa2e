package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/amishk599/stagescout/internal/model"
)

const workableBaseURL = "https://apply.workable.com"

// WorkableAdapter discovers jobs through the Workable v3 accounts API and
// falls back to the job links of the public careers page.
type WorkableAdapter struct {
	accountSlug string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewWorkableAdapter creates a new adapter for a Workable account.
func NewWorkableAdapter(accountSlug, companyName string, client *http.Client, logger *slog.Logger) *WorkableAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkableAdapter{
		accountSlug: accountSlug,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

func (a *WorkableAdapter) careersURL() string {
	return fmt.Sprintf("%s/%s/", workableBaseURL, a.accountSlug)
}

// Discover yields the API results when the API returns any, the page links
// otherwise. Only a failure of the page fetch is reported as an error.
func (a *WorkableAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *WorkableAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	jobs, err := a.fromAPI(ctx)
	if err == nil && len(jobs) > 0 {
		return jobs, nil
	}
	a.logger.Debug("workable api yielded nothing, scraping careers page", "account", a.accountSlug, "error", err)
	return a.fromPage(ctx)
}

func (a *WorkableAdapter) fromAPI(ctx context.Context) ([]model.Job, error) {
	api := fmt.Sprintf("%s/api/v3/accounts/%s/jobs?state=published&limit=100", workableBaseURL, a.accountSlug)
	v, err := getJSON(ctx, a.client, api, nil)
	if err != nil {
		return nil, err
	}

	careers := a.careersURL()
	results := objects(asFields(v).list("results"))
	jobs := make([]model.Job, 0, len(results))
	for _, r := range results {
		jobs = append(jobs, finish(model.Job{
			Source:      SourceWorkable,
			SourceJobID: r.str("id", "shortcode"),
			Title:       r.str("title"),
			Company:     a.companyName,
			Location:    joinNonEmpty(r.str("city"), r.str("country")),
			ApplyURL:    r.str("url", "application_url"),
			Description: extractText(r.str("description")),
			PostedAt:    r.str("published_on", "created_at"),
		}, careers))
	}
	return jobs, nil
}

func (a *WorkableAdapter) fromPage(ctx context.Context) ([]model.Job, error) {
	careers := a.careersURL()
	doc, err := getDocument(ctx, a.client, careers)
	if err != nil {
		return nil, fmt.Errorf("workable fetch for %s: %w", a.accountSlug, err)
	}
	base, err := url.Parse(careers)
	if err != nil {
		return nil, fmt.Errorf("workable careers url for %s: %w", a.accountSlug, err)
	}

	var jobs []model.Job
	for _, an := range scrapeAnchors(doc, base, "a[href*='/jobs/']") {
		jobs = append(jobs, finish(model.Job{
			Source:   SourceWorkable,
			Title:    an.Title,
			Company:  a.companyName,
			ApplyURL: an.URL,
		}, careers))
	}
	return jobs, nil
}
