package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

type workdayCall struct {
	host, path string
	offset     int
}

// workdayServer records every request and delegates the answer to respond.
func workdayServer(t *testing.T, respond func(w http.ResponseWriter, c workdayCall)) (*httptest.Server, *[]workdayCall) {
	t.Helper()
	var mu sync.Mutex
	var calls []workdayCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		var body workdayListingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Limit != workdayPageSize || body.AppliedFacets == nil {
			t.Errorf("unexpected body %+v", body)
		}
		c := workdayCall{host: r.Header.Get(originalHostHeader), path: r.URL.Path, offset: body.Offset}
		mu.Lock()
		calls = append(calls, c)
		mu.Unlock()
		respond(w, c)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func workdayPage(offset, n int) string {
	items := make([]map[string]any, 0, n)
	for i := offset; i < offset+n; i++ {
		items = append(items, map[string]any{
			"title":         fmt.Sprintf("Software Intern %d", i),
			"externalPath":  fmt.Sprintf("/job/Paris/Software-Intern_R%d", i),
			"locationsText": "Paris",
			"postedOn":      "Posted Today",
			"bulletFields":  []string{fmt.Sprintf("R%d", i)},
		})
	}
	b, _ := json.Marshal(map[string]any{"total": 110, "jobPostings": items})
	return string(b)
}

func TestWorkdayDiscover_Pagination(t *testing.T) {
	srv, calls := workdayServer(t, func(w http.ResponseWriter, c workdayCall) {
		w.Header().Set("Content-Type", "application/json")
		switch c.offset {
		case 0, 50:
			w.Write([]byte(workdayPage(c.offset, 50)))
		default:
			w.Write([]byte(workdayPage(c.offset, 10)))
		}
	})

	a := NewWorkdayAdapter("acme", "Careers", "Acme", testClient(srv), discardLogger())
	jobs, err := collect(t, a.Discover(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(*calls) != 3 {
		t.Fatalf("expected exactly 3 requests, got %d", len(*calls))
	}
	for i, c := range *calls {
		if c.host != "acme.myworkdayjobs.com" || c.path != "/wday/cxs/acme/Careers/jobs" {
			t.Errorf("call %d: unexpected target %s%s", i, c.host, c.path)
		}
		if c.offset != i*workdayPageSize {
			t.Errorf("call %d: expected offset %d, got %d", i, i*workdayPageSize, c.offset)
		}
	}
	if len(jobs) != 110 {
		t.Fatalf("expected 110 jobs, got %d", len(jobs))
	}
	seen := make(map[string]bool)
	for _, j := range jobs {
		if seen[j.SourceJobID] {
			t.Errorf("duplicate id %s", j.SourceJobID)
		}
		seen[j.SourceJobID] = true
	}
	if got := jobs[0].ApplyURL; got != "https://acme.myworkdayjobs.com/Careers/job/Paris/Software-Intern_R0" {
		t.Errorf("unexpected apply url %q", got)
	}
	if jobs[0].SourceJobID != "R0" {
		t.Errorf("expected bullet field id, got %q", jobs[0].SourceJobID)
	}
}

func TestWorkdayDiscover_SkipsHTMLAndFallsThrough(t *testing.T) {
	srv, calls := workdayServer(t, func(w http.ResponseWriter, c workdayCall) {
		switch {
		case c.host == "acme.myworkdayjobs.com" && strings.HasPrefix(c.path, "/wday/cxs/"):
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html>checking your browser</html>"))
		case c.host == "acme.myworkdayjobs.com":
			w.WriteHeader(http.StatusNotFound)
		case c.host == "acme.wd1.myworkdayjobs.com" && strings.HasPrefix(c.path, "/wday/cxs/"):
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"jobPostings":[]}`))
		case c.host == "acme.wd1.myworkdayjobs.com" && c.path == "/Careers/search":
			w.Header().Set("Content-Type", "application/json; charset=utf-8")
			w.Write([]byte(`{"items":[{"id":"L1","title":"Data Intern","url":"/Careers/job/Lyon/Data-Intern_L1"}]}`))
		default:
			t.Errorf("unexpected probe %s%s", c.host, c.path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	a := NewWorkdayAdapter("acme", "Careers", "Acme", testClient(srv), discardLogger())
	jobs, err := collect(t, a.Discover(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if len(*calls) != 4 {
		t.Errorf("expected 4 probes, got %d", len(*calls))
	}
	if jobs[0].SourceJobID != "L1" {
		t.Errorf("expected id L1, got %q", jobs[0].SourceJobID)
	}
	if jobs[0].ApplyURL != "https://acme.wd1.myworkdayjobs.com/Careers/job/Lyon/Data-Intern_L1" {
		t.Errorf("unexpected apply url %q", jobs[0].ApplyURL)
	}
}

func TestWorkdayDiscover_ExhaustedIsEmpty(t *testing.T) {
	srv, calls := workdayServer(t, func(w http.ResponseWriter, c workdayCall) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	a := NewWorkdayAdapter("acme", "Careers", "Acme", testClient(srv), discardLogger())
	jobs, err := collect(t, a.Discover(context.Background()))
	if err != nil {
		t.Fatalf("expected no error on exhaustion, got %v", err)
	}
	if len(jobs) != 0 {
		t.Fatalf("expected 0 jobs, got %d", len(jobs))
	}
	if want := len(workdayShards) * 2; len(*calls) != want {
		t.Errorf("expected %d probes, got %d", want, len(*calls))
	}
}

func TestWorkdayHosts(t *testing.T) {
	a := NewWorkdayAdapter("acme", "Careers", "Acme", http.DefaultClient, discardLogger())
	want := []string{
		"https://acme.myworkdayjobs.com/",
		"https://acme.wd1.myworkdayjobs.com/",
		"https://acme.wd2.myworkdayjobs.com/",
		"https://acme.wd3.myworkdayjobs.com/",
		"https://acme.wd5.myworkdayjobs.com/",
	}
	got := a.hosts()
	if len(got) != len(want) {
		t.Fatalf("expected %d hosts, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("host %d = %q, want %q", i, got[i], want[i])
		}
	}
}
