package filter

import (
	"strings"

	"github.com/amishk599/stagescout/internal/model"
)

// KeywordFilter rejects jobs whose title contains an excluded keyword, and,
// when locations are configured, jobs whose location matches none of them.
// Matching is case-insensitive. Empty lists are treated as "match all".
type KeywordFilter struct {
	excludeTitle []string
	locations    []string
}

// NewKeywordFilter returns a title-exclusion and location filter.
func NewKeywordFilter(excludeTitle, locations []string) *KeywordFilter {
	return &KeywordFilter{
		excludeTitle: lowerAll(excludeTitle),
		locations:    lowerAll(locations),
	}
}

// Empty reports whether the filter has nothing to check.
func (f *KeywordFilter) Empty() bool {
	return len(f.excludeTitle) == 0 && len(f.locations) == 0
}

// Reason returns ReasonKeywords when the job is rejected.
func (f *KeywordFilter) Reason(job model.Job) string {
	titleLower := strings.ToLower(job.Title)
	for _, kw := range f.excludeTitle {
		if strings.Contains(titleLower, kw) {
			return ReasonKeywords
		}
	}

	if len(f.locations) > 0 {
		locationLower := strings.ToLower(job.Location)
		for _, loc := range f.locations {
			if strings.Contains(locationLower, loc) {
				return ""
			}
		}
		return ReasonKeywords
	}
	return ""
}

// Match reports whether the job passes.
func (f *KeywordFilter) Match(job model.Job) bool {
	return f.Reason(job) == ""
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
