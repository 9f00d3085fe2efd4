package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

// Embed colors and labels for the two trade directions.
const (
	discordColorBuy  = 3066993  // green
	discordColorSell = 15158332 // red
)

// DiscordSink posts an embed per executed trade to a Discord webhook.
type DiscordSink struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordSink creates a sink for the given webhook URL.
func NewDiscordSink(webhookURL string) *DiscordSink {
	return &DiscordSink{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Name implements Sink.
func (d *DiscordSink) Name() string { return "discord" }

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbed struct {
	Title     string         `json:"title"`
	Color     int            `json:"color"`
	Fields    []discordField `json:"fields"`
	Timestamp string         `json:"timestamp"`
}

// Record posts the trade embed. Only submitted orders are announced; skips
// and rejections stay in the journal.
func (d *DiscordSink) Record(ctx context.Context, ev engine.TradeEvent) error {
	if ev.Outcome != engine.OutcomeSubmitted {
		return nil
	}

	color := discordColorBuy
	emoji := "🚀"
	typeLabel := "Entry"
	if ev.Side == engine.SideSell {
		color = discordColorSell
		emoji = "🔻"
		typeLabel = "Trailing Exit"
	}

	ts := ev.Timestamp.Format(time.RFC3339)
	embed := discordEmbed{
		Title: fmt.Sprintf("%s %s %dx %s", emoji, sideUpper(ev.Side), ev.Qty, ev.Symbol),
		Color: color,
		Fields: []discordField{
			{Name: "Price", Value: "$" + ev.Price.StringFixed(2), Inline: true},
			{Name: "PnL", Value: "$" + ev.PnL.StringFixed(2), Inline: true},
			{Name: "Time", Value: ts, Inline: true},
			{Name: "Type", Value: typeLabel, Inline: true},
		},
		Timestamp: ts,
	}

	return d.post(ctx, map[string]any{"embeds": []discordEmbed{embed}})
}

// SendText posts a plain content message, used for the daily summary.
func (d *DiscordSink) SendText(ctx context.Context, content string) error {
	return d.post(ctx, map[string]any{"content": content})
}

func (d *DiscordSink) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("discord API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

func sideUpper(side engine.Side) string {
	if side == engine.SideSell {
		return "SELL"
	}
	return "BUY"
}
