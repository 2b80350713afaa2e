package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/stagescout/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// leverPosting represents a single posting in the Lever API response.
type leverPosting struct {
	ID               string          `json:"id"`
	Text             string          `json:"text"`
	HostedURL        string          `json:"hostedUrl"`
	ApplyURL         string          `json:"applyUrl"`
	DescriptionPlain string          `json:"descriptionPlain"`
	Description      string          `json:"description"`
	CreatedAt        json.RawMessage `json:"createdAt"`
	UpdatedAt        json.RawMessage `json:"updatedAt"`
	Categories       struct {
		Location string `json:"location"`
	} `json:"categories"`
}

// LeverAdapter discovers jobs on a Lever postings board.
type LeverAdapter struct {
	companySlug string
	companyName string
	client      *http.Client
}

// NewLeverAdapter creates a new adapter for a Lever board.
func NewLeverAdapter(companySlug, companyName string, client *http.Client) *LeverAdapter {
	return &LeverAdapter{
		companySlug: companySlug,
		companyName: companyName,
		client:      client,
	}
}

// Discover yields every posting on the board.
func (a *LeverAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *LeverAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	url := fmt.Sprintf("%s/%s?mode=json", leverBaseURL, a.companySlug)

	resp, err := send(ctx, a.client, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("lever fetch for %s: %w", a.companySlug, err)
	}
	defer resp.Body.Close()

	var postings []leverPosting
	if err := json.NewDecoder(resp.Body).Decode(&postings); err != nil {
		return nil, fmt.Errorf("lever decode for %s: %w", a.companySlug, err)
	}

	jobs := make([]model.Job, 0, len(postings))
	for _, p := range postings {
		desc := p.DescriptionPlain
		if desc == "" {
			desc = extractText(p.Description)
		}
		applyURL := p.HostedURL
		if applyURL == "" {
			applyURL = p.ApplyURL
		}
		postedAt := leverTimestamp(p.CreatedAt)
		if postedAt == "" {
			postedAt = leverTimestamp(p.UpdatedAt)
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourceLever,
			SourceJobID: p.ID,
			Title:       p.Text,
			Company:     a.companyName,
			Location:    p.Categories.Location,
			ApplyURL:    applyURL,
			Description: desc,
			PostedAt:    postedAt,
		}, fmt.Sprintf("https://jobs.lever.co/%s", a.companySlug)))
	}
	return jobs, nil
}

// leverTimestamp renders Lever's epoch-millisecond timestamps as RFC3339.
// String values are passed through untouched.
func leverTimestamp(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err == nil {
		if n, err := ms.Int64(); err == nil && n != 0 {
			return time.UnixMilli(n).UTC().Format(time.RFC3339)
		}
		if f, err := ms.Float64(); err == nil && f != 0 {
			return time.UnixMilli(int64(f)).UTC().Format(time.RFC3339)
		}
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}
