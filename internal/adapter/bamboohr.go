package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/amishk599/stagescout/internal/model"
)

// BambooHRAdapter discovers openings from a BambooHR careers list.
type BambooHRAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewBambooHRAdapter creates a new adapter for a BambooHR careers site.
func NewBambooHRAdapter(companySlug, companyName string, client *http.Client) *BambooHRAdapter {
	return &BambooHRAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// Discover yields every listed opening.
func (a *BambooHRAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *BambooHRAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	careers := fmt.Sprintf("https://%s.bamboohr.com/careers/", a.companySlug)
	v, err := getJSON(ctx, a.client, careers+"list", acceptJSON())
	if err != nil {
		return nil, fmt.Errorf("bamboohr fetch for %s: %w", a.companySlug, err)
	}

	positions := objects(asFields(v).list("positions", "result"))
	jobs := make([]model.Job, 0, len(positions))
	for _, p := range positions {
		loc := p.obj("location")
		jobs = append(jobs, finish(model.Job{
			Source:      SourceBambooHR,
			SourceJobID: p.str("jobOpeningId", "id"),
			Title:       p.str("jobOpeningName", "jobTitle"),
			Company:     a.companyName,
			Location:    joinNonEmpty(loc.str("city"), loc.str("state"), loc.str("country")),
			ApplyURL:    p.str("jobPostingUrl", "jobUrl"),
			Description: extractText(p.str("jobDescription", "description")),
			PostedAt:    p.str("dateOpening", "postedOn"),
		}, careers))
	}
	return jobs, nil
}
