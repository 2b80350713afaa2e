package adapter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBambooHRDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("expected JSON accept header, got %q", r.Header.Get("Accept"))
		}
		if r.URL.Path != "/careers/list" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		jsonHandler(`{"result":[
			{"id":"15","jobOpeningName":"Security Intern","location":{"city":"Rennes","country":"France"}}
		]}`)(w, r)
	}))
	defer srv.Close()

	jobs, err := collect(t, NewBambooHRAdapter("acme", "Acme", testClient(srv)).Discover(context.Background()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	j := jobs[0]
	if j.SourceJobID != "15" || j.Title != "Security Intern" || j.Location != "Rennes, France" {
		t.Errorf("unexpected job %+v", j)
	}
	if j.ApplyURL != "https://acme.bamboohr.com/careers/" {
		t.Errorf("expected careers fallback, got %q", j.ApplyURL)
	}
}
