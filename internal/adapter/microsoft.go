package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/amishk599/stagescout/internal/model"
)

const (
	microsoftBaseURL  = "https://apply.careers.microsoft.com"
	microsoftPageSize = 10
	microsoftMaxPages = 50
)

// MicrosoftAdapter discovers positions from the Microsoft careers search API
// for a {query, location} pair, one detail request per position.
type MicrosoftAdapter struct {
	query       string
	location    string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewMicrosoftAdapter creates a new adapter for Microsoft careers.
func NewMicrosoftAdapter(query, location, companyName string, client *http.Client, logger *slog.Logger) *MicrosoftAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MicrosoftAdapter{
		query:       query,
		location:    location,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

// Discover pages through search results by offset until the reported count
// is reached or a page comes back short. A missing count leaves only the
// short-page stop.
func (a *MicrosoftAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return func(yield func(model.Job, error) bool) {
		for start := 0; start < microsoftMaxPages*microsoftPageSize; start += microsoftPageSize {
			positions, count, err := a.search(ctx, start)
			if err != nil {
				yield(model.Job{}, err)
				return
			}
			for _, p := range positions {
				if !yield(a.toJob(ctx, p), nil) {
					return
				}
			}
			if len(positions) < microsoftPageSize || (count > 0 && start+microsoftPageSize >= count) {
				return
			}
		}
	}
}

func (a *MicrosoftAdapter) api(endpoint string, q url.Values) string {
	q.Set("domain", "microsoft.com")
	return microsoftBaseURL + "/api/pcsx/" + endpoint + "?" + q.Encode()
}

// search returns one page of positions and the total the API reports.
func (a *MicrosoftAdapter) search(ctx context.Context, start int) ([]fields, int, error) {
	q := url.Values{
		"query":                 {a.query},
		"location":              {a.location},
		"start":                 {strconv.Itoa(start)},
		"sort_by":               {"timestamp"},
		"filter_include_remote": {"1"},
	}
	v, err := getJSON(ctx, a.client, a.api("search", q), acceptJSON())
	if err != nil {
		return nil, 0, fmt.Errorf("microsoft search (start=%d): %w", start, err)
	}
	data := asFields(v).obj("data")
	count, _ := strconv.Atoi(data.str("count"))
	return objects(data.list("positions")), count, nil
}

// toJob normalizes a position, enriched by its detail endpoint when that
// answers.
func (a *MicrosoftAdapter) toJob(ctx context.Context, p fields) model.Job {
	job := model.Job{
		Source:      SourceMicrosoft,
		SourceJobID: p.str("id"),
		Title:       p.str("name"),
		Company:     a.companyName,
	}
	if locs := p.list("locations"); len(locs) > 0 {
		job.Location = textOf(locs[0])
	}
	if ts, err := strconv.ParseInt(p.str("postedTs"), 10, 64); err == nil && ts > 0 {
		job.PostedAt = time.Unix(ts, 0).UTC().Format(time.RFC3339)
	}
	if path := p.str("positionUrl"); path != "" {
		job.ApplyURL = microsoftBaseURL + path
	}

	if job.SourceJobID != "" {
		detail, err := a.detail(ctx, job.SourceJobID)
		if err != nil {
			a.logger.Debug("microsoft detail unavailable", "id", job.SourceJobID, "error", err)
		} else {
			job.Description = extractText(detail.str("jobDescription"))
			if u := detail.str("publicUrl"); u != "" {
				job.ApplyURL = u
			}
		}
	}
	return finish(job, microsoftBaseURL+"/careers?query="+url.QueryEscape(a.query))
}

func (a *MicrosoftAdapter) detail(ctx context.Context, id string) (fields, error) {
	q := url.Values{
		"position_id":      {id},
		"hl":               {"en"},
		"queried_location": {a.location},
	}
	v, err := getJSON(ctx, a.client, a.api("position_details", q), acceptJSON())
	if err != nil {
		return nil, fmt.Errorf("microsoft detail %s: %w", id, err)
	}
	return asFields(v).obj("data"), nil
}
