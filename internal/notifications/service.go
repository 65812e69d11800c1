package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pergola/internal/config"
)

const userAgent = "Pergola/0.1.0"

// Service defines the notification surface exposed to the workflow engine.
type Service interface {
	NotifyDealWon(ctx context.Context, title string, amount float64) error
	NotifyDeliveryCompleted(ctx context.Context, title string) error
	NotifyPaymentCreated(ctx context.Context, title string, total float64) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewNop returns a Service that discards every notification.
func NewNop() Service {
	return noopService{}
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
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
	settings config.Notifications
}

func (n *ntfyService) NotifyDealWon(ctx context.Context, title string, amount float64) error {
	if !n.settings.DealWon {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:    "Pergola - Deal Won",
		message:  fmt.Sprintf("Deal won: %s (R$ %.2f)", title, amount),
		tags:     []string{"pergola", "deal", "won"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDeliveryCompleted(ctx context.Context, title string) error {
	if !n.settings.DeliveryCompleted {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Pergola - Delivery Complete",
		message: fmt.Sprintf("Delivery complete: %s", title),
		tags:    []string{"pergola", "delivery", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPaymentCreated(ctx context.Context, title string, total float64) error {
	if !n.settings.PaymentCreated {
		return nil
	}
	title = strings.TrimSpace(title)
	data := payload{
		title:   "Pergola - Payment Instruction",
		message: fmt.Sprintf("Payment instruction created for %s: R$ %.2f", title, total),
		tags:    []string{"pergola", "payment", "created"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.settings.Errors {
		return nil
	}
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

	data := payload{
		title:    "Pergola - Error",
		message:  builder.String(),
		tags:     []string{"pergola", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Pergola - Test",
		message:  "Notification system test",
		tags:     []string{"pergola", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
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

func (noopService) NotifyDealWon(context.Context, string, float64) error        { return nil }
func (noopService) NotifyDeliveryCompleted(context.Context, string) error       { return nil }
func (noopService) NotifyPaymentCreated(context.Context, string, float64) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }
