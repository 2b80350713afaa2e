package adapter

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/amishk599/stagescout/internal/model"
)

const workdayPageSize = 50

// workdayShards are tried after the bare tenant host, in order.
var workdayShards = []string{"", "1", "2", "3", "5"}

// workdayUserAgent is a plain browser agent; some tenants answer the
// default agent with an HTML page.
const workdayUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/123.0 Safari/537.36"

// workdayListingRequest is the POST body for both Workday search endpoints.
type workdayListingRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

// workdayEndpoint is one search API variant on a given host.
type workdayEndpoint struct {
	name      string
	url       string
	itemsKeys []string
}

// WorkdayAdapter discovers jobs on a Workday career site. Workday tenants
// live on unpredictable shard hosts, so every host is probed with the CXS
// API first and the legacy search endpoint second; the first combination
// that yields a job wins.
type WorkdayAdapter struct {
	tenant      string
	site        string
	companyName string
	client      *http.Client
	logger      *slog.Logger
}

// NewWorkdayAdapter creates a new adapter for a Workday {tenant, site}.
func NewWorkdayAdapter(tenant, site, companyName string, client *http.Client, logger *slog.Logger) *WorkdayAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkdayAdapter{
		tenant:      tenant,
		site:        site,
		companyName: companyName,
		client:      client,
		logger:      logger,
	}
}

// hosts returns the host variants in probe order.
func (a *WorkdayAdapter) hosts() []string {
	out := make([]string, 0, len(workdayShards))
	for _, shard := range workdayShards {
		if shard == "" {
			out = append(out, fmt.Sprintf("https://%s.myworkdayjobs.com/", a.tenant))
			continue
		}
		out = append(out, fmt.Sprintf("https://%s.wd%s.myworkdayjobs.com/", a.tenant, shard))
	}
	return out
}

func (a *WorkdayAdapter) endpoints(host string) []workdayEndpoint {
	siteBase := host + url.PathEscape(a.site) + "/"
	return []workdayEndpoint{
		{
			name:      "cxs",
			url:       fmt.Sprintf("%swday/cxs/%s/%s/jobs", host, url.PathEscape(a.tenant), url.PathEscape(a.site)),
			itemsKeys: []string{"jobPostings"},
		},
		{
			name:      "legacy",
			url:       siteBase + "search",
			itemsKeys: []string{"jobPostings", "items"},
		},
	}
}

// Discover probes hosts and endpoints lazily. Exhausting every combination
// yields an empty sequence, never an error.
func (a *WorkdayAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return func(yield func(model.Job, error) bool) {
		for _, host := range a.hosts() {
			for _, ep := range a.endpoints(host) {
				got, stopped := a.drain(ctx, host, ep, yield)
				if stopped {
					return
				}
				if got > 0 {
					a.logger.Debug("workday endpoint resolved", "tenant", a.tenant, "site", a.site, "host", host, "endpoint", ep.name, "jobs", got)
					return
				}
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// drain pages through one endpoint, yielding jobs as pages arrive. stopped
// reports that the consumer ended the iteration.
func (a *WorkdayAdapter) drain(ctx context.Context, host string, ep workdayEndpoint, yield func(model.Job, error) bool) (got int, stopped bool) {
	siteBase, err := url.Parse(host + url.PathEscape(a.site) + "/")
	if err != nil {
		return 0, false
	}
	for offset := 0; ; offset += workdayPageSize {
		items := a.fetchPage(ctx, ep, offset)
		if len(items) == 0 {
			return got, false
		}
		for _, it := range items {
			got++
			if !yield(a.jobFromPosting(it, siteBase), nil) {
				return got, true
			}
		}
		if len(items) < workdayPageSize {
			return got, false
		}
	}
}

// fetchPage returns nil for any unusable answer: transport error, non-200,
// non-JSON content type or an undecodable body.
func (a *WorkdayAdapter) fetchPage(ctx context.Context, ep workdayEndpoint, offset int) []fields {
	body := workdayListingRequest{
		AppliedFacets: map[string]any{},
		Limit:         workdayPageSize,
		Offset:        offset,
		SearchText:    "",
	}
	header := http.Header{
		"Accept":       []string{"application/json, text/plain, */*"},
		"Content-Type": []string{"application/json"},
		"User-Agent":   []string{workdayUserAgent},
	}

	resp, err := send(ctx, a.client, http.MethodPost, ep.url, body, header)
	if err != nil {
		a.logger.Debug("workday page failed", "url", ep.url, "offset", offset, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || !isJSON(resp) {
		a.logger.Debug("workday page unusable", "url", ep.url, "status", resp.StatusCode, "content_type", resp.Header.Get("Content-Type"))
		return nil
	}
	v, err := decodeJSON(resp.Body)
	if err != nil {
		return nil
	}
	return objects(asFields(v).list(ep.itemsKeys...))
}

func (a *WorkdayAdapter) jobFromPosting(it fields, siteBase *url.URL) model.Job {
	applyURL := siteBase.String()
	if path := it.str("externalPath", "externalUrlPath", "url"); path != "" {
		// externalPath is relative to the site, despite its leading slash.
		if !strings.HasPrefix(path, "/"+a.site+"/") {
			path = strings.TrimPrefix(path, "/")
		}
		if ref, err := url.Parse(path); err == nil {
			applyURL = siteBase.ResolveReference(ref).String()
		}
	}

	id := it.str("id")
	if id == "" {
		if bullets := it.list("bulletFields"); len(bullets) > 0 {
			id = textOf(bullets[0])
		}
	}

	return finish(model.Job{
		Source:      SourceWorkday,
		SourceJobID: id,
		Title:       it.str("title", "title_friendly"),
		Company:     a.companyName,
		Location:    it.str("locationsText", "locations", "location"),
		ApplyURL:    applyURL,
		Description: extractText(it.str("shortDescription")),
		PostedAt:    it.str("postedOn", "publicationDate"),
	}, siteBase.String())
}
