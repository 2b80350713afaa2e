package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/stagescout/internal/model"
)

// DefaultUserAgent is sent on every request that does not set its own.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/125.0 Safari/537.36 JobOfferScraper/0.1"

// DefaultTimeout bounds each request.
const DefaultTimeout = 20 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 16 << 20

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewHTTPClient returns the client shared by all strategies: a fixed
// User-Agent, a per-request timeout and redirects followed. A nil base uses
// http.DefaultTransport.
func NewHTTPClient(timeout time.Duration, userAgent string, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: &userAgentTransport{base: base, userAgent: userAgent},
	}
}

// send issues a request and returns the response only for 2xx statuses.
// Other statuses are closed and reported as *model.HTTPError. A non-nil
// payload is sent as a JSON body.
func send(ctx context.Context, client *http.Client, method, rawURL string, payload any, header http.Header) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s %s: %w", method, rawURL, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, rawURL, err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if payload != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &model.HTTPError{
			StatusCode: resp.StatusCode,
			Method:     method,
			URL:        rawURL,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
	return resp, nil
}

// decodeJSON decodes any JSON value, keeping numbers as json.Number so that
// large ids survive intact.
func decodeJSON(r io.Reader) (any, error) {
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// getJSON issues a GET and decodes the body.
func getJSON(ctx context.Context, client *http.Client, rawURL string, header http.Header) (any, error) {
	resp, err := send(ctx, client, http.MethodGet, rawURL, nil, header)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	v, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return v, nil
}

// getDocument issues a GET and parses the body as HTML.
func getDocument(ctx context.Context, client *http.Client, rawURL string) (*goquery.Document, error) {
	resp, err := send(ctx, client, http.MethodGet, rawURL, nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", rawURL, err)
	}
	return doc, nil
}

// isJSON reports whether the response declares a JSON content type. Some
// back-ends answer bot traffic with an HTML page and a 200.
func isJSON(resp *http.Response) bool {
	return strings.Contains(strings.ToLower(resp.Header.Get("Content-Type")), "json")
}

func acceptJSON() http.Header {
	return http.Header{"Accept": []string{"application/json"}}
}
