package adapter

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/amishk599/stagescout/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

// GreenhouseAdapter discovers jobs on a Greenhouse job board.
type GreenhouseAdapter struct {
	boardToken  string
	companyName string
	client      *http.Client
}

func NewGreenhouseAdapter(boardToken, companyName string, client *http.Client) *GreenhouseAdapter {
	return &GreenhouseAdapter{boardToken: boardToken, companyName: companyName, client: client}
}

// Discover yields every job on the board, descriptions included.
func (a *GreenhouseAdapter) Discover(ctx context.Context) iter.Seq2[model.Job, error] {
	return sequence(ctx, a.fetchJobs)
}

func (a *GreenhouseAdapter) fetchJobs(ctx context.Context) ([]model.Job, error) {
	v, err := getJSON(ctx, a.client, fmt.Sprintf("%s/%s/jobs?content=true", greenhouseBaseURL, a.boardToken), nil)
	if err != nil {
		return nil, fmt.Errorf("greenhouse board %s: %w", a.boardToken, err)
	}

	board := "https://boards.greenhouse.io/" + a.boardToken
	posts := objects(asFields(v).list("jobs"))
	jobs := make([]model.Job, 0, len(posts))
	for _, p := range posts {
		id := p.str("id")
		if id == "0" {
			id = ""
		}
		jobs = append(jobs, finish(model.Job{
			Source:      SourceGreenhouse,
			SourceJobID: id,
			Title:       p.str("title"),
			Company:     a.companyName,
			Location:    p.obj("location").str("name"),
			ApplyURL:    p.str("absolute_url"),
			Description: extractText(p.str("content")),
			PostedAt:    p.str("updated_at", "created_at"),
		}, board))
	}
	return jobs, nil
}
