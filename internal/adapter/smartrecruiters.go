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

const (
	smartRecruitersBaseURL  = "https://api.smartrecruiters.com/v1/companies"
	smartRecruitersPageSize = 100
)

// SmartRecruitersAdapter discovers postings through the public
// SmartRecruiters API, following nextPageId cursors. Each posting costs one
// extra detail request for its apply URL and description.
type SmartRecruitersAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewSmartRecruitersAdapter creates a new adapter for a SmartRecruiters company.
func NewSmartRecruitersAdapter(companySlug, companyName string, client *http.Client, logger *slog.Logger) *SmartRecruitersAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SmartRecruitersAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

func (a *SmartRecruitersAdapter) postingsURL() string {
	return fmt.Sprintf("%s/%s/postings", smartRecruitersBaseURL, url.PathEscape(a.companySlug))
}

// Discover pages through the postings lazily. A failed listing page ends the
// sequence with an error; a failed detail request keeps listing data.
func (a *SmartRecruitersAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return func(yield func(model.Job, error) bool) {
		cursor := ""
		for {
			page, next, err := a.fetchPage(ctx, cursor)
			if err != nil {
				yield(model.Job{}, fmt.Errorf("smartrecruiters fetch for %s: %w", a.companySlug, err))
				return
			}
			for _, it := range page {
				if !yield(a.jobFromPosting(ctx, it), nil) {
					return
				}
			}
			if next == "" || next == cursor {
				return
			}
			cursor = next
		}
	}
}

func (a *SmartRecruitersAdapter) fetchPage(ctx context.Context, cursor string) ([]fields, string, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", smartRecruitersPageSize))
	if cursor != "" {
		q.Set("nextPageId", cursor)
	}
	v, err := getJSON(ctx, a.client, a.postingsURL()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, "", err
	}
	data := asFields(v)
	items := objects(data.list("content", "data", "postings"))
	return items, data.str("nextPageId"), nil
}

func (a *SmartRecruitersAdapter) jobFromPosting(ctx context.Context, it fields) model.Job {
	id := it.str("id", "identifier", "refNumber")
	loc := it.obj("location")

	job := model.Job{
		Source:      SourceSmartRecruiters,
		SourceJobID: id,
		Title:       it.str("name", "title"),
		Company:     a.companyName,
		Location:    joinNonEmpty(loc.str("city"), loc.str("region"), loc.str("countryCode", "country")),
		PostedAt:    it.str("releasedDate", "createdOn", "updatedOn"),
	}

	if id != "" {
		applyURL, desc, err := a.fetchDetail(ctx, id)
		if err != nil {
			a.logger.Debug("smartrecruiters detail unavailable", "company", a.companySlug, "id", id, "error", err)
		}
		job.ApplyURL = applyURL
		job.Description = desc
	}
	if job.ApplyURL == "" {
		job.ApplyURL = it.str("applyUrl")
	}
	return finish(job, fmt.Sprintf("https://careers.smartrecruiters.com/%s", a.companySlug))
}

// fetchDetail returns the apply URL and description of one posting.
func (a *SmartRecruitersAdapter) fetchDetail(ctx context.Context, id string) (applyURL, desc string, err error) {
	v, err := getJSON(ctx, a.client, a.postingsURL()+"/"+url.PathEscape(id), nil)
	if err != nil {
		return "", "", err
	}
	d := asFields(v)
	ad := d.obj("jobAd")
	applyURL = firstNonEmpty(d.str("applyUrl"), ad.str("applyUrl"))
	desc = extractText(ad.obj("sections").obj("jobDescription").str("text"))
	return applyURL, desc, nil
}
