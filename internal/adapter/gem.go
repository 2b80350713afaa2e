package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/amishk599/stagescout/internal/model"
)

const gemBaseURL = "https://api.gem.com/job_board/v0"

// GemAdapter discovers jobs on a Gem public job board. The endpoint answers
// with a bare array of posts.
type GemAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGemAdapter(boardToken, companyName string, client *http.Client) *GemAdapter {
	return &GemAdapter{boardToken: boardToken, companyName: companyName, client: client}
}

func (a *GemAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *GemAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	v, err := getJSON(ctx, a.client, fmt.Sprintf("%s/%s/job_posts/", gemBaseURL, a.boardToken), acceptJSON())
	if err != nil {
		return nil, fmt.Errorf("gem board %s: %w", a.boardToken, err)
	}
	if _, ok := v.([]any); !ok {
		return nil, fmt.Errorf("gem board %s: expected an array of posts", a.boardToken)
	}

	board := "https://jobs.gem.com/" + a.boardToken
	posts := objects(v)
	jobs := make([]model.Job, 0, len(posts))
	for _, p := range posts {
		desc := p.str("content_plain")
		if desc == "" {
			desc = extractText(p.str("content"))
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourceGem,
			SourceJobID: p.str("id"),
			Title:       p.str("title"),
			Company:     a.companyName,
			Location:    p.obj("location").str("name"),
			ApplyURL:    p.str("absolute_url"),
			Description: desc,
			PostedAt:    p.str("first_published_at", "updated_at"),
		}, board))
	}
	return jobs, nil
}
