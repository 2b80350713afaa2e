package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amishk599/stagescout/internal/model"
)

var _ model.Notifier = (*SlackNotifier)(nil)

const slackPause = 500 * time.Millisecond

// SlackNotifier posts one Block Kit message per job to an Incoming Webhook.
// Failed deliveries are not retried.
type SlackNotifier struct {
	webhookURL string
	httpClient *http.Client
	logger     *slog.Logger
	pause      time.Duration // gap between consecutive messages
}

func NewSlackNotifier(webhookURL string, httpClient *http.Client, logger *slog.Logger) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		httpClient: httpClient,
		logger:     logger,
		pause:      slackPause,
	}
}

// Notify delivers jobs in order. It fails only when no message got through;
// individual failures are logged.
func (s *SlackNotifier) Notify(jobs []model.Job) error {
	if len(jobs) == 0 {
		return nil
	}

	var sent int
	for i, j := range jobs {
		if i > 0 && s.pause > 0 {
			time.Sleep(s.pause)
		}
		if err := s.sendMessage(j); err != nil {
			s.logger.Error("slack notification failed", "company", j.Company, "title", j.Title, "error", err)
			continue
		}
		sent++
	}

	failed := len(jobs) - sent
	if sent == 0 {
		return fmt.Errorf("all %d slack notifications failed", failed)
	}
	s.logger.Info("slack notifications complete", "sent", sent, "failed", failed)
	return nil
}

func (s *SlackNotifier) sendMessage(j model.Job) error {
	body, err := json.Marshal(buildPayload(j))
	if err != nil {
		return fmt.Errorf("marshal slack payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to slack: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode == http.StatusOK {
		s.logger.Debug("slack message sent", "company", j.Company, "title", j.Title)
		return nil
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		return fmt.Errorf("slack returned %d (retry after %ss)", resp.StatusCode, ra)
	}
	return fmt.Errorf("slack returned %d", resp.StatusCode)
}

// SendTestMessage pushes a fixed sample job through n.
func SendTestMessage(n model.Notifier) error {
	return n.Notify([]model.Job{{
		Source:   "test",
		Company:  "stagescout",
		Title:    "Test notification: integration verified",
		Location: "Paris, France",
		ApplyURL: "https://example.com/jobs/test",
		PostedAt: time.Now().UTC().Format(time.RFC3339),
		Tags:     []string{"backend", "python"},
	}})
}

type slackPayload struct {
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type     string         `json:"type"`
	Text     *slackText     `json:"text,omitempty"`
	Fields   []slackText    `json:"fields,omitempty"`
	Elements []slackElement `json:"elements,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type slackElement struct {
	Type  string    `json:"type"`
	Text  slackText `json:"text"`
	URL   string    `json:"url"`
	Style string    `json:"style"`
}

func plain(s string) slackText  { return slackText{Type: "plain_text", Text: s} }
func mrkdwn(s string) slackText { return slackText{Type: "mrkdwn", Text: s} }

func headerBlock(s string) slackBlock {
	t := plain(s)
	return slackBlock{Type: "header", Text: &t}
}

func textBlock(s string) slackBlock {
	t := mrkdwn(s)
	return slackBlock{Type: "section", Text: &t}
}

// fieldsBlock renders label/value pairs as a two-column section.
func fieldsBlock(pairs ...string) slackBlock {
	b := slackBlock{Type: "section"}
	for i := 0; i+1 < len(pairs); i += 2 {
		b.Fields = append(b.Fields, mrkdwn("*"+pairs[i]+":*\n"+pairs[i+1]))
	}
	return b
}

func buttonBlock(label, url string) slackBlock {
	return slackBlock{
		Type:     "actions",
		Elements: []slackElement{{Type: "button", Text: plain(label), URL: url, Style: "primary"}},
	}
}

func buildPayload(j model.Job) slackPayload {
	company := capitalize(orDash(j.Company))

	blocks := []slackBlock{
		headerBlock(company + ": " + j.Title),
		fieldsBlock("Company", company, "Location", orDash(j.Location)),
		fieldsBlock("Posted", postedLabel(j.PostedAt), "Source", capitalize(j.Source)),
	}
	if len(j.Tags) > 0 {
		blocks = append(blocks, textBlock("*Tags:* `"+strings.Join(j.Tags, "` `")+"`"))
	}
	blocks = append(blocks, buttonBlock("Apply Now", j.ApplyURL), slackBlock{Type: "divider"})

	return slackPayload{Blocks: blocks}
}

// postedLabel shows RFC 3339 timestamps in RFC 1123 and anything else as is.
func postedLabel(posted string) string {
	if posted == "" {
		return "Just detected"
	}
	if t, err := time.Parse(time.RFC3339, posted); err == nil {
		return t.Format(time.RFC1123)
	}
	return posted
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
