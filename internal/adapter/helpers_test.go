package adapter

import (
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/amishk599/stagescout/internal/model"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// originalHostHeader carries the host a request was addressed to before the
// test transport pointed it at the test server.
const originalHostHeader = "X-Original-Host"

// testClient returns a client that sends every request to srv, whatever
// host it was built for.
func testClient(srv *httptest.Server) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(req *http.Request) (*http.Response, error) {
			req.Header.Set(originalHostHeader, req.URL.Host)
			req.URL.Scheme = "http"
			req.URL.Host = srv.Listener.Addr().String()
			return http.DefaultTransport.RoundTrip(req)
		}),
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// collect drains a sequence, stopping at the first error.
func collect(t *testing.T, seq iter.Seq2[model.Job, error]) ([]model.Job, error) {
	t.Helper()
	var jobs []model.Job
	for j, err := range seq {
		if err != nil {
			return jobs, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func assertRecordInvariants(t *testing.T, jobs []model.Job) {
	t.Helper()
	for i, j := range jobs {
		if j.Source == "" {
			t.Errorf("job %d: empty source", i)
		}
		if j.ApplyURL == "" {
			t.Errorf("job %d: empty apply url", i)
		}
		if len(j.Tags) > model.MaxTags {
			t.Errorf("job %d: %d tags", i, len(j.Tags))
		}
	}
}
