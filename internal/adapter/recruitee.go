package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/amishk599/stagescout/internal/model"
)

// RecruiteeAdapter discovers offers through a Recruitee careers site API.
type RecruiteeAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewRecruiteeAdapter creates a new adapter for a Recruitee careers site.
func NewRecruiteeAdapter(companySlug, companyName string, client *http.Client) *RecruiteeAdapter {
	return &RecruiteeAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *RecruiteeAdapter) siteURL() string {
	return fmt.Sprintf("https://%s.recruitee.com/", a.companySlug)
}

// Discover yields every published offer.
func (a *RecruiteeAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *RecruiteeAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	site := a.siteURL()
	v, err := getJSON(ctx, a.client, site+"api/offers/?limit=200", nil)
	if err != nil {
		return nil, fmt.Errorf("recruitee fetch for %s: %w", a.companySlug, err)
	}

	offers := objects(asFields(v).list("offers", "items"))
	jobs := make([]model.Job, 0, len(offers))
	for _, o := range offers {
		var location string
		if locs := objects(o.list("locations")); len(locs) > 0 {
			location = joinNonEmpty(locs[0].str("city"), locs[0].str("country_code"))
		}
		applyURL := site
		if path := o.str("careers_url", "slug"); path != "" {
			applyURL = site + "o/" + path
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourceRecruitee,
			SourceJobID: o.str("id"),
			Title:       o.str("title", "name"),
			Company:     a.companyName,
			Location:    location,
			ApplyURL:    applyURL,
			Description: extractText(o.str("description", "description_preview")),
			PostedAt:    o.str("created_at", "updated_at"),
		}, site))
	}
	return jobs, nil
}
