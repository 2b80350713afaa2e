package model

import (
	"context"
	"iter"
	"sort"
	"strings"
	"time"
)

// MaxTags caps the number of tags carried by a Job.
const MaxTags = 15

// Job is the normalized record every discovery strategy produces.
type Job struct {
	Source      string // strategy type, e.g. "greenhouse"
	SourceJobID string // opaque platform id; empty when only HTML anchors were scraped
	Title       string
	Company     string // configured label, never scraped
	Location    string // free text
	CountryCode string // set by classification, not discovery
	IsRemote    bool   // set by classification, not discovery
	ApplyURL    string // per-job URL or the source's listing page
	Description string
	PostedAt    string // source-native representation
	Language    string // ISO 639-1, set by classification
	Tags        []string
}

// HasSourceID reports whether the job carries a platform identifier.
func (j Job) HasSourceID() bool {
	return strings.TrimSpace(j.SourceJobID) != ""
}

// IdentityKey returns the persistence identity of the job: (source, source_job_id)
// when an id is present, (source, apply_url, title) otherwise.
func (j Job) IdentityKey() string {
	if j.HasSourceID() {
		return j.Source + "\x00id\x00" + j.SourceJobID
	}
	return j.Source + "\x00url\x00" + j.ApplyURL + "\x00" + j.Title
}

// StoredJob is a persisted Job plus its server-assigned id and scrape time.
type StoredJob struct {
	ID        int64
	ScrapedAt time.Time
	Job
}

// NormalizeTagSet sorts, dedupes and caps tags.
func NormalizeTagSet(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) > MaxTags {
		out = out[:MaxTags]
	}
	return out
}

// Identifier locates a board on its ATS: either a scalar slug or a composite
// such as Workday's {tenant, site}.
type Identifier struct {
	Value string
	Parts map[string]string
}

// Slug returns a scalar identifier.
func Slug(v string) Identifier { return Identifier{Value: v} }

// Composite returns a composite identifier built from key/value parts.
func Composite(parts map[string]string) Identifier { return Identifier{Parts: parts} }

// IsComposite reports whether the identifier has named parts.
func (id Identifier) IsComposite() bool { return len(id.Parts) > 0 }

// Part returns the trimmed value of a named part.
func (id Identifier) Part(name string) string {
	return strings.TrimSpace(id.Parts[name])
}

// Values returns every identifier value, scalar or composite, in key order.
func (id Identifier) Values() []string {
	if !id.IsComposite() {
		return []string{id.Value}
	}
	keys := make([]string, 0, len(id.Parts))
	for k := range id.Parts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	vals := make([]string, 0, len(keys))
	for _, k := range keys {
		vals = append(vals, id.Parts[k])
	}
	return vals
}

// String renders scalar ids as-is, {tenant, site} as "tenant/site", other
// composites as slash-joined values.
func (id Identifier) String() string {
	if !id.IsComposite() {
		return id.Value
	}
	if t, s := id.Part("tenant"), id.Part("site"); t != "" || s != "" {
		return t + "/" + s
	}
	return strings.Join(id.Values(), "/")
}

// JobDiscoverer produces the postings of one external source. Each call to
// Discover returns a fresh lazy sequence; an error element ends the sequence.
type JobDiscoverer interface {
	Discover(ctx context.Context) iter.Seq2[Job, error]
}

// UpsertResult describes what an upsert did.
type UpsertResult struct {
	ID       int64
	Inserted bool // false means an existing row was updated
}

// ListOptions narrows read-side queries.
type ListOptions struct {
	Source string // exact source match, empty for all
	Limit  int    // zero for no limit
}

// JobStore persists jobs idempotently.
type JobStore interface {
	Init(ctx context.Context) error
	Upsert(ctx context.Context, job Job) (UpsertResult, error)
	List(ctx context.Context, opts ListOptions) ([]StoredJob, error)
	Get(ctx context.Context, id int64) (StoredJob, error)
	Close() error
}

// Notifier sends notifications for newly stored jobs.
type Notifier interface {
	Notify(jobs []Job) error
}

// JobFilter decides whether a job matches the configured criteria.
type JobFilter interface {
	Match(job Job) bool
}
