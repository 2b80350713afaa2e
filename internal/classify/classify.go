// Package classify scores job text for internship-ness, CS relevance,
// language and French geography. Everything here is pure.
package classify

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/amishk599/stagescout/internal/model"
)

const (
	// InternshipThreshold is the minimum InternshipScore of an internship.
	InternshipThreshold = 2
	// CSThreshold is the minimum CSScore of a CS-relevant posting.
	CSThreshold = 2

	titleWeight    = 3
	maxBodyHits    = 2
	seniorityMalus = 2
	maxCSScore     = 5
)

// targetLanguages are the ISO 639-1 codes the pipeline keeps.
var targetLanguages = map[string]bool{"fr": true, "en": true}

// InternshipScore weighs a title hit at +3 and body hits at up to +2. A
// seniority term costs 2 points, but only when nothing positive was found.
func InternshipScore(title, body string) int {
	score := 0
	if internshipTitleRe.MatchString(title) {
		score += titleWeight
	}
	score += min(count(internshipBodyRe, body), maxBodyHits)
	if score == 0 && seniorityRe.MatchString(title+" "+body) {
		score -= seniorityMalus
	}
	return score
}

// IsInternship reports whether the posting scores as an internship.
func IsInternship(title, body string) bool {
	return InternshipScore(title, body) >= InternshipThreshold
}

// CSScore counts the distinct buckets matched by text, capped at 5.
func CSScore(text string) int {
	hit := 0
	for _, b := range Buckets {
		if b.Match(text) {
			hit++
		}
	}
	return min(hit, maxCSScore)
}

// IsCSRelevant reports whether text touches enough CS buckets.
func IsCSRelevant(text string) bool {
	return CSScore(text) >= CSThreshold
}

// LooksLikeFrance reports whether a location string hints at France.
func LooksLikeFrance(location string) bool {
	return franceRe.MatchString(location)
}

// LooksRemote reports whether text advertises remote work.
func LooksRemote(text string) bool {
	return remoteRe.MatchString(text)
}

// DetectLanguage returns the ISO 639-1 code of text. ok is false when the
// detector is not confident, which happens for short or mixed text.
func DetectLanguage(text string) (lang string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return "", false
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", false
	}
	return code, true
}

// IsTargetLanguage admits French, English and anything undetectable.
func IsTargetLanguage(text string) bool {
	lang, ok := DetectLanguage(text)
	if !ok {
		return true
	}
	return targetLanguages[lang]
}

// NormalizeTags derives the tag set of a posting: one label per matched
// bucket plus curated technology keywords, sorted, deduplicated, at most 15.
func NormalizeTags(title, description string) []string {
	base := strings.ToLower(title + "\n" + description)
	var tags []string
	for _, b := range Buckets {
		if b.Label != "" && b.Match(base) {
			tags = append(tags, b.Label)
		}
	}
	for _, t := range techKeywords {
		if strings.Contains(base, t) {
			tags = append(tags, t)
		}
	}
	return model.NormalizeTagSet(tags)
}

// FilterText splits a job into the title and body the heuristics read.
func FilterText(job model.Job) (title, body string) {
	return job.Title, strings.Join([]string{job.Description, job.Location, job.Company}, " ")
}

// Annotate fills the classification-derived fields of a job.
func Annotate(job model.Job) model.Job {
	title, body := FilterText(job)
	if lang, ok := DetectLanguage(title + " " + body); ok {
		job.Language = lang
	}
	if job.CountryCode == "" && LooksLikeFrance(job.Location) {
		job.CountryCode = "FR"
	}
	if !job.IsRemote && LooksRemote(job.Title+" "+job.Location) {
		job.IsRemote = true
	}
	return job
}
