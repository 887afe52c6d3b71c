package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"bookfetch/internal/config"
)

const userAgent = "bookfetch/0.1.0"

// RunSummary describes a finished fetch run.
type RunSummary struct {
	PolicyID   string
	Valid      int
	Downloaded int
	Skipped    int
	Failed     int
	Duration   time.Duration
}

// Service defines the notification surface used by the CLI.
type Service interface {
	NotifyFetchCompleted(ctx context.Context, summary RunSummary) error
	NotifyFetchCancelled(ctx context.Context, policyID string, processed int) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds an ntfy-backed service when a topic is configured.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := cfg.NotificationTimeout()
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether svc actually delivers notifications.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyFetchCompleted(ctx context.Context, summary RunSummary) error {
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	title := "bookfetch - Collection Fetched"
	message := fmt.Sprintf("%s: %d images downloaded, %d already present in %s",
		summary.PolicyID, summary.Downloaded, summary.Skipped, duration)
	if summary.Failed > 0 {
		title = "bookfetch - Collection Fetched (with errors)"
		message = fmt.Sprintf("%s: %d downloaded, %d already present, %d failed in %s",
			summary.PolicyID, summary.Downloaded, summary.Skipped, summary.Failed, duration)
	}
	return n.send(ctx, payload{
		title:   title,
		message: message,
		tags:    []string{"bookfetch", "fetch", "completed"},
	})
}

func (n *ntfyService) NotifyFetchCancelled(ctx context.Context, policyID string, processed int) error {
	return n.send(ctx, payload{
		title:   "bookfetch - Fetch Cancelled",
		message: fmt.Sprintf("%s: cancelled after %d images", strings.TrimSpace(policyID), processed),
		tags:    []string{"bookfetch", "fetch", "cancelled"},
	})
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	return n.send(ctx, payload{
		title:    "bookfetch - Error",
		message:  builder.String(),
		tags:     []string{"bookfetch", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "bookfetch - Test",
		message:  "Notification system test",
		tags:     []string{"bookfetch", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyFetchCompleted(context.Context, RunSummary) error  { return nil }
func (noopService) NotifyFetchCancelled(context.Context, string, int) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                 { return nil }
