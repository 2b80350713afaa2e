package notifier

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amishk599/stagescout/internal/model"
)

var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier reports new jobs as structured log records. It never fails.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(jobs []model.Job) error {
	for _, j := range jobs {
		attrs := []slog.Attr{
			slog.String("source", j.Source),
			slog.String("company", j.Company),
			slog.String("title", j.Title),
			slog.String("location", j.Location),
			slog.String("url", j.ApplyURL),
		}
		if j.PostedAt != "" {
			attrs = append(attrs, slog.String("posted_at", j.PostedAt))
		}
		if len(j.Tags) > 0 {
			attrs = append(attrs, slog.String("tags", strings.Join(j.Tags, ",")))
		}
		n.logger.LogAttrs(context.Background(), slog.LevelInfo, "new job", attrs...)
	}
	return nil
}
