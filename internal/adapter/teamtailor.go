package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"

	"github.com/amishk599/stagescout/internal/model"
)

// TeamtailorAdapter scrapes job links from a public Teamtailor career site.
type TeamtailorAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewTeamtailorAdapter creates a new adapter for a Teamtailor career site.
func NewTeamtailorAdapter(companySlug, companyName string, client *http.Client) *TeamtailorAdapter {
	return &TeamtailorAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// Discover yields one record per distinct job link on the listing page.
func (a *TeamtailorAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *TeamtailorAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	site := fmt.Sprintf("https://%s.teamtailor.com/", a.companySlug)
	doc, err := getDocument(ctx, a.client, site+"jobs")
	if err != nil {
		return nil, fmt.Errorf("teamtailor fetch for %s: %w", a.companySlug, err)
	}
	base, err := url.Parse(site)
	if err != nil {
		return nil, fmt.Errorf("teamtailor site url for %s: %w", a.companySlug, err)
	}

	var jobs []model.Job
	for _, an := range scrapeAnchors(doc, base, "a[href*='/jobs/']") {
		jobs = append(jobs, finish(model.Job{
			Source:   SourceTeamtailor,
			Title:    an.Title,
			Company:  a.companyName,
			ApplyURL: an.URL,
		}, site))
	}
	return jobs, nil
}
