package adapter

import (
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// minAnchorText is the shortest anchor text treated as a job title.
const minAnchorText = 3

type anchor struct {
	URL   string
	Title string
}

// scrapeAnchors collects links matching selector, resolved against base and
// deduplicated by absolute URL. Anchors with almost no text are dropped.
func scrapeAnchors(doc *goquery.Document, base *url.URL, selector string) []anchor {
	seen := make(map[string]bool)
	var out []anchor
	doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		title := strings.Join(strings.Fields(s.Text()), " ")
		if utf8.RuneCountInString(title) < minAnchorText {
			return
		}
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		abs := base.ResolveReference(ref).String()
		if seen[abs] {
			return
		}
		seen[abs] = true
		out = append(out, anchor{URL: abs, Title: title})
	})
	return out
}

// nextDataJobs returns the job objects of a Next.js __NEXT_DATA__ island,
// read from props.pageProps.jobs and props.pageProps.sections[].jobs.
func nextDataJobs(doc *goquery.Document) []fields {
	raw := strings.TrimSpace(doc.Find("script#__NEXT_DATA__").First().Text())
	if raw == "" {
		return nil
	}
	v, err := decodeJSON(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	pageProps := asFields(v).obj("props").obj("pageProps")
	if pageProps == nil {
		return nil
	}
	jobs := objects(pageProps.list("jobs"))
	for _, sec := range objects(pageProps.list("sections")) {
		jobs = append(jobs, objects(sec.list("jobs"))...)
	}
	return jobs
}

// ldJobPostings returns the schema.org JobPosting objects found in
// ld+json blocks, whether published alone, as an array or in a @graph.
func ldJobPostings(doc *goquery.Document) []fields {
	var out []fields
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		var candidates []fields
		switch t := v.(type) {
		case map[string]any:
			candidates = append(candidates, fields(t))
			candidates = append(candidates, objects(fields(t).list("@graph"))...)
		case []any:
			candidates = objects(t)
		}
		for _, c := range candidates {
			if c.str("@type") == "JobPosting" {
				out = append(out, c)
			}
		}
	})
	return out
}
