package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/redwarrior112/ema-webhook-trader/engine"
)

const notionVersion = "2022-06-28"

// NotionSink appends one page per trade event to a Notion database.
type NotionSink struct {
	client     *resty.Client
	databaseID string
}

// NewNotionSink creates a sink writing into the given database.
func NewNotionSink(token, databaseID string) *NotionSink {
	client := resty.New().
		SetBaseURL("https://api.notion.com").
		SetTimeout(10 * time.Second).
		SetAuthToken(token).
		SetHeader("Notion-Version", notionVersion)
	return &NotionSink{client: client, databaseID: databaseID}
}

// Name implements Sink.
func (n *NotionSink) Name() string { return "notion" }

// Record implements Sink. Every outcome is journaled, skips included.
func (n *NotionSink) Record(ctx context.Context, ev engine.TradeEvent) error {
	title := fmt.Sprintf("%s %dx %s", sideUpper(ev.Side), ev.Qty, ev.Symbol)

	price, _ := ev.Price.Float64()
	pnl, _ := ev.PnL.Float64()

	body := map[string]any{
		"parent": map[string]any{"database_id": n.databaseID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{
					{"text": map[string]any{"content": title}},
				},
			},
			"Symbol": map[string]any{
				"rich_text": []map[string]any{
					{"text": map[string]any{"content": ev.Symbol}},
				},
			},
			"Side":    map[string]any{"select": map[string]any{"name": string(ev.Side)}},
			"Qty":     map[string]any{"number": ev.Qty},
			"Price":   map[string]any{"number": price},
			"PnL":     map[string]any{"number": pnl},
			"Outcome": map[string]any{"select": map[string]any{"name": ev.Outcome}},
			"Time": map[string]any{
				"date": map[string]any{"start": ev.Timestamp.Format(time.RFC3339)},
			},
		},
	}

	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/v1/pages")
	if err != nil {
		return fmt.Errorf("create page: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notion API error: status %d, body: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
