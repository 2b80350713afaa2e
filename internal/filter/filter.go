// Package filter decides which discovered jobs are kept.
package filter

import (
	"github.com/amishk599/stagescout/internal/classify"
	"github.com/amishk599/stagescout/internal/model"
)

// Rejection reasons, in evaluation order.
const (
	ReasonLanguage   = "language"
	ReasonInternship = "internship"
	ReasonCS         = "cs"
	ReasonFrance     = "france"
	ReasonKeywords   = "keywords"
)

// Options toggles the classifier filters.
type Options struct {
	InternOnly   bool
	CSOnly       bool
	FranceOnly   bool
	LangFrEnOnly bool
}

// DefaultOptions keeps French or English CS internships anywhere.
func DefaultOptions() Options {
	return Options{InternOnly: true, CSOnly: true, LangFrEnOnly: true}
}

// Reasoner is a filter that can name why it rejected a job.
type Reasoner interface {
	model.JobFilter
	Reason(job model.Job) string
}

// ClassifierFilter applies the enabled classification heuristics. The first
// failing filter decides.
type ClassifierFilter struct {
	opts Options
}

// NewClassifierFilter returns a filter for the given toggles.
func NewClassifierFilter(opts Options) *ClassifierFilter {
	return &ClassifierFilter{opts: opts}
}

// Reason returns the first failing filter, or "" when the job is kept.
func (f *ClassifierFilter) Reason(job model.Job) string {
	title, body := classify.FilterText(job)
	text := title + " " + body

	if f.opts.LangFrEnOnly && !classify.IsTargetLanguage(text) {
		return ReasonLanguage
	}
	if f.opts.InternOnly && !classify.IsInternship(title, body) {
		return ReasonInternship
	}
	if f.opts.CSOnly && !classify.IsCSRelevant(text) {
		return ReasonCS
	}
	if f.opts.FranceOnly && !classify.LooksLikeFrance(job.Location) {
		return ReasonFrance
	}
	return ""
}

// Match reports whether every enabled filter passes.
func (f *ClassifierFilter) Match(job model.Job) bool {
	return f.Reason(job) == ""
}

// Chain combines filters; a job must pass all of them.
type Chain []model.JobFilter

// Reason returns the reason of the first rejecting filter, or "" when the
// job is kept. Filters that cannot explain themselves report "filtered".
func (c Chain) Reason(job model.Job) string {
	for _, f := range c {
		if r, ok := f.(Reasoner); ok {
			if reason := r.Reason(job); reason != "" {
				return reason
			}
			continue
		}
		if !f.Match(job) {
			return "filtered"
		}
	}
	return ""
}

// Match reports whether every filter in the chain passes.
func (c Chain) Match(job model.Job) bool {
	return c.Reason(job) == ""
}
