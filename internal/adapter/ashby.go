package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/stagescout/internal/model"
)

const ashbyBaseURL = "https://jobs.ashbyhq.com"

const ashbyAnchorSelector = "a[href*='/jobs/'], a[href*='/job/']"

// AshbyAdapter discovers jobs on a rendered Ashby job board. The page is
// read in three tiers: the __NEXT_DATA__ island, ld+json JobPosting markup,
// then job links.
type AshbyAdapter struct {
	orgSlug     string
	companyName string
	client      *http.Client
}

// NewAshbyAdapter creates a new adapter for an Ashby job board.
func NewAshbyAdapter(orgSlug, companyName string, client *http.Client) *AshbyAdapter {
	return &AshbyAdapter{
		orgSlug:     orgSlug,
		companyName: companyName,
		client:      client,
	}
}

func (a *AshbyAdapter) boardURL() string {
	return fmt.Sprintf("%s/%s", ashbyBaseURL, a.orgSlug)
}

// Discover yields the jobs of the first tier that produces any.
func (a *AshbyAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *AshbyAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	board := a.boardURL()
	doc, err := getDocument(ctx, a.client, board)
	if err != nil {
		return nil, fmt.Errorf("ashby fetch for %s: %w", a.orgSlug, err)
	}
	base, err := url.Parse(board)
	if err != nil {
		return nil, fmt.Errorf("ashby board url for %s: %w", a.orgSlug, err)
	}

	if jobs := a.fromNextData(doc, base); len(jobs) > 0 {
		return jobs, nil
	}
	if jobs := a.fromLinkedData(doc, board); len(jobs) > 0 {
		return jobs, nil
	}
	return a.fromAnchors(doc, base), nil
}

func (a *AshbyAdapter) fromNextData(doc *goquery.Document, base *url.URL) []model.Job {
	var jobs []model.Job
	for _, j := range nextDataJobs(doc) {
		location := j.str("location")
		if location == "" {
			location = j.obj("office").str("name")
		}
		applyURL := j.str("jobUrl", "absoluteUrl")
		if applyURL == "" {
			if ref, err := url.Parse(j.str("canonicalPath")); err == nil {
				applyURL = base.ResolveReference(ref).String()
			}
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourceAshby,
			SourceJobID: j.str("id", "slug"),
			Title:       j.str("title", "name"),
			Company:     a.companyName,
			Location:    location,
			ApplyURL:    applyURL,
			Description: extractText(j.str("description", "descriptionText")),
			PostedAt:    j.str("publishedAt", "createdAt"),
		}, base.String()))
	}
	return jobs
}

func (a *AshbyAdapter) fromLinkedData(doc *goquery.Document, board string) []model.Job {
	var jobs []model.Job
	for _, j := range ldJobPostings(doc) {
		loc := j.obj("jobLocation")
		if loc == nil {
			if objs := objects(j.list("jobLocation")); len(objs) > 0 {
				loc = objs[0]
			}
		}
		addr := loc.obj("address")
		jobs = append(jobs, finish(model.Job{
			Source:      SourceAshby,
			SourceJobID: j.obj("identifier").str("value"),
			Title:       j.str("title"),
			Company:     a.companyName,
			Location:    joinNonEmpty(addr.str("addressLocality"), addr.str("addressCountry")),
			ApplyURL:    firstNonEmpty(j.obj("hiringOrganization").str("sameAs"), j.str("url")),
			Description: extractText(j.str("description")),
			PostedAt:    j.str("datePosted", "validThrough"),
		}, board))
	}
	return jobs
}

func (a *AshbyAdapter) fromAnchors(doc *goquery.Document, base *url.URL) []model.Job {
	var jobs []model.Job
	for _, an := range scrapeAnchors(doc, base, ashbyAnchorSelector) {
		jobs = append(jobs, finish(model.Job{
			Source:   SourceAshby,
			Title:    an.Title,
			Company:  a.companyName,
			ApplyURL: an.URL,
		}, base.String()))
	}
	return jobs
}
