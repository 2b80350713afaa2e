package adapter

import (
	"html"
	"regexp"
	"strings"

	"github.com/amishk599/stagescout/internal/classify"
	"github.com/amishk599/stagescout/internal/model"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text.
// It first unescapes HTML entities (handles Greenhouse's double-encoding;
// no-op on already-real HTML), strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// joinNonEmpty joins the non-blank parts with ", ".
func joinNonEmpty(parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ", ")
}

// finish enforces record invariants: trimmed title, an apply URL (the
// listing page when the posting has none) and derived tags.
func finish(job model.Job, listingURL string) model.Job {
	job.Title = strings.TrimSpace(job.Title)
	job.ApplyURL = strings.TrimSpace(job.ApplyURL)
	if job.ApplyURL == "" {
		job.ApplyURL = listingURL
	}
	job.Tags = classify.NormalizeTags(job.Title, job.Description)
	return job
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
