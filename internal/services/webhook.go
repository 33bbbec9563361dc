package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/solarworks/solarworks/internal/config"
	"github.com/solarworks/solarworks/internal/logging"
	"github.com/solarworks/solarworks/internal/metrics"
)

type DiscordWebhookField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type DiscordEmbed struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Color       int                   `json:"color"`
	Fields      []DiscordWebhookField `json:"fields"`
	Footer      *DiscordFooter        `json:"footer,omitempty"`
	Timestamp   string                `json:"timestamp"`
}

type DiscordFooter struct {
	Text string `json:"text"`
}

type DiscordWebhookRequest struct {
	Username string         `json:"username"`
	Embeds   []DiscordEmbed `json:"embeds"`
}

type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

type SlackAttachment struct {
	Color     string       `json:"color"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Fields    []SlackField `json:"fields"`
	Footer    string       `json:"footer"`
	Timestamp int64        `json:"ts"`
}

type SlackWebhookRequest struct {
	Username    string            `json:"username"`
	Text        string            `json:"text"`
	Attachments []SlackAttachment `json:"attachments"`
}

const (
	ColorGreen  = 65280    // #00FF00 - created
	ColorOrange = 16753920 // #FFA500 - updated
	ColorRed    = 16711680 // #FF0000 - deleted

	webhookTimeout = 10 * time.Second
)

// WebhookNotifier posts content events to Discord and Slack incoming webhooks.
type WebhookNotifier struct {
	discordURL string
	slackURL   string
	siteName   string
	client     *http.Client
	wg         sync.WaitGroup
}

func NewWebhookNotifier(cfg config.NotifyConfig) *WebhookNotifier {
	return &WebhookNotifier{
		discordURL: cfg.DiscordWebhookURL,
		slackURL:   cfg.SlackWebhookURL,
		siteName:   cfg.SiteName,
		client:     &http.Client{Timeout: webhookTimeout},
	}
}

func (n *WebhookNotifier) Enabled() bool {
	return n.discordURL != "" || n.slackURL != ""
}

// Publish delivers the event in the background.
func (n *WebhookNotifier) Publish(event ContentEvent) {
	if !n.Enabled() {
		return
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancel()

		if err := n.Send(ctx, event); err != nil {
			logging.Warn().Err(err).
				Str("resource", event.Resource).
				Str("action", string(event.Action)).
				Msg("Failed to send content notification")
		}
	}()
}

// Wait blocks until in-flight deliveries finish.
func (n *WebhookNotifier) Wait() {
	n.wg.Wait()
}

func (n *WebhookNotifier) Send(ctx context.Context, event ContentEvent) error {
	var errs []string

	if n.discordURL != "" {
		if err := n.post(ctx, n.discordURL, n.discordPayload(event)); err != nil {
			metrics.WebhookFailures.WithLabelValues("discord").Inc()
			errs = append(errs, fmt.Sprintf("discord: %v", err))
		}
	}

	if n.slackURL != "" {
		if err := n.post(ctx, n.slackURL, n.slackPayload(event)); err != nil {
			metrics.WebhookFailures.WithLabelValues("slack").Inc()
			errs = append(errs, fmt.Sprintf("slack: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}

	return nil
}

func (n *WebhookNotifier) discordPayload(event ContentEvent) DiscordWebhookRequest {
	fields := []DiscordWebhookField{
		{Name: "Resource", Value: event.Resource, Inline: true},
		{Name: "Action", Value: string(event.Action), Inline: true},
	}

	if event.ID != "" {
		fields = append(fields, DiscordWebhookField{Name: "ID", Value: event.ID, Inline: true})
	}

	if event.Admin != "" {
		fields = append(fields, DiscordWebhookField{Name: "By", Value: event.Admin, Inline: true})
	}

	return DiscordWebhookRequest{
		Username: n.siteName,
		Embeds: []DiscordEmbed{
			{
				Title:       headline(event),
				Description: event.Title,
				Color:       actionColor(event.Action),
				Fields:      fields,
				Footer:      &DiscordFooter{Text: n.siteName + " content"},
				Timestamp:   event.At.Format(time.RFC3339),
			},
		},
	}
}

func (n *WebhookNotifier) slackPayload(event ContentEvent) SlackWebhookRequest {
	fields := []SlackField{
		{Title: "Resource", Value: event.Resource, Short: true},
		{Title: "Action", Value: string(event.Action), Short: true},
	}

	if event.Admin != "" {
		fields = append(fields, SlackField{Title: "By", Value: event.Admin, Short: true})
	}

	color := "good"
	switch event.Action {
	case ActionDelete:
		color = "danger"
	case ActionUpdate, ActionReorder:
		color = "warning"
	}

	return SlackWebhookRequest{
		Username: n.siteName,
		Text:     "*" + headline(event) + "*",
		Attachments: []SlackAttachment{
			{
				Color:     color,
				Title:     event.Title,
				Text:      event.ID,
				Fields:    fields,
				Footer:    n.siteName,
				Timestamp: event.At.Unix(),
			},
		},
	}
}

func headline(event ContentEvent) string {
	verb := map[Action]string{
		ActionCreate:  "created",
		ActionUpdate:  "updated",
		ActionDelete:  "deleted",
		ActionReorder: "reordered",
	}[event.Action]

	if verb == "" {
		verb = string(event.Action)
	}

	return fmt.Sprintf("%s %s", event.Resource, verb)
}

func actionColor(action Action) int {
	switch action {
	case ActionDelete:
		return ColorRed
	case ActionUpdate, ActionReorder:
		return ColorOrange
	default:
		return ColorGreen
	}
}

func (n *WebhookNotifier) post(ctx context.Context, url string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
