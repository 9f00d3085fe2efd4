package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"github.com/redwarrior112/ema-webhook-trader/broker"
	"github.com/redwarrior112/ema-webhook-trader/config"
	"github.com/redwarrior112/ema-webhook-trader/engine"
	"github.com/redwarrior112/ema-webhook-trader/journal"
	"github.com/redwarrior112/ema-webhook-trader/notification"
	"github.com/redwarrior112/ema-webhook-trader/webhook"
)

const (
	defaultConfigPath = "config.yaml"
	paperTradingURL   = "https://paper-api.alpaca.markets"
	liveTradingURL    = "https://api.alpaca.markets"
	liveKeyPrefix     = "AK" // Live API keys usually start with AK
	maxActivities     = 100  // Maximum activities kept for the feed
)

func main() {
	if err := godotenv.Load(); err != nil {
		// If .env file doesn't exist, continue; env may be set elsewhere
		if !errors.Is(err, os.ErrNotExist) {
			log.Printf("[WARN] loading .env file: %v", err)
		}
	}

	configPath := flag.String("config", defaultConfigPath, "Path to YAML config file")
	port := flag.String("port", "", "Port to listen on (overrides config)")
	usePaperTrading := flag.Bool("paper", true, "Use paper trading (true) or live trading (false)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var alpacaAPIKey, alpacaSecretKey string
	if *usePaperTrading {
		alpacaAPIKey = os.Getenv("PAPER_ALPACA_API_KEY")
		alpacaSecretKey = os.Getenv("PAPER_ALPACA_SECRET_KEY")
	} else {
		alpacaAPIKey = os.Getenv("LIVE_ALPACA_API_KEY")
		alpacaSecretKey = os.Getenv("LIVE_ALPACA_SECRET_KEY")
	}
	if alpacaAPIKey == "" || alpacaSecretKey == "" {
		if *usePaperTrading {
			log.Fatal("PAPER_ALPACA_API_KEY and PAPER_ALPACA_SECRET_KEY environment variables are required for paper trading")
		} else {
			log.Fatal("LIVE_ALPACA_API_KEY and LIVE_ALPACA_SECRET_KEY environment variables are required for live trading")
		}
	}

	var baseURL string
	if *usePaperTrading {
		baseURL = paperTradingURL
		log.Println("Using PAPER trading environment")
	} else {
		// Safety check: only allow live trading with a live API key
		if !strings.HasPrefix(alpacaAPIKey, liveKeyPrefix) {
			log.Println("WARNING: Cannot use live trading - live API keys not detected (keys should start with AK)")
			log.Println("Falling back to paper trading mode")
			*usePaperTrading = true
			baseURL = paperTradingURL
		} else {
			baseURL = liveTradingURL
			log.Println("Using LIVE trading environment")
		}
	}

	tradingClient := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    alpacaAPIKey,
		APISecret: alpacaSecretKey,
		BaseURL:   baseURL,
	})
	dataClient := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    alpacaAPIKey,
		APISecret: alpacaSecretKey,
	})
	alpacaBroker := broker.New(tradingClient, dataClient)

	// Notification sinks. Everything downstream of the dispatcher is
	// best-effort: a dead sink never fails a trade.
	manager := notification.NewManager(maxActivities)
	sinks := []notification.Sink{manager}

	var discordSink *notification.DiscordSink
	if cfg.Discord.WebhookURL != "" {
		discordSink = notification.NewDiscordSink(cfg.Discord.WebhookURL)
		sinks = append(sinks, discordSink)
		log.Println("Discord notifications enabled")
	}
	if cfg.Notion.Token != "" && cfg.Notion.DatabaseID != "" {
		sinks = append(sinks, notification.NewNotionSink(cfg.Notion.Token, cfg.Notion.DatabaseID))
		log.Println("Notion journal enabled")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Journal.SQLitePath), 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	sqliteJournal, err := journal.NewSQLiteJournal(cfg.Journal.SQLitePath)
	if err != nil {
		log.Fatalf("Failed to open sqlite journal: %v", err)
	}
	defer sqliteJournal.Close()
	sinks = append(sinks, sqliteJournal)

	csvJournal, err := journal.NewCSVJournal(cfg.Journal.CSVPath)
	if err != nil {
		log.Fatalf("Failed to open csv journal: %v", err)
	}
	sinks = append(sinks, csvJournal)

	dispatcher := notification.NewDispatcher(cfg.CallTimeout(), sinks...)

	eng := engine.New(engine.Options{
		SharedSecret:  cfg.Webhook.SharedSecret,
		TargetCapital: decimal.NewFromFloat(cfg.Trading.TargetCapital),
		PositionLimit: cfg.Trading.PositionLimit,
		CallTimeout:   cfg.CallTimeout(),
	}, alpacaBroker, alpacaBroker, alpacaBroker, dispatcher)

	mux := http.NewServeMux()
	webhook.NewHandler(eng).RegisterRoutes(mux)
	notification.NewHandler(manager).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})

	// Daily summary after the close, posted to Discord when configured.
	scheduler := cron.New(cron.WithSeconds())
	if _, err := scheduler.AddFunc(cfg.Summary.Cron, func() {
		postDailySummary(sqliteJournal, discordSink)
	}); err != nil {
		log.Fatalf("Invalid summary cron %q: %v", cfg.Summary.Cron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] server shutdown: %v", err)
	}
	dispatcher.Drain()
}

// postDailySummary aggregates the last 24 hours of journal activity and
// posts a plain text recap to Discord.
func postDailySummary(j *journal.SQLiteJournal, discord *notification.DiscordSink) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	summary, err := j.Summarize(ctx, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		log.Printf("[ERROR] daily summary: %v", err)
		return
	}

	msg := fmt.Sprintf(
		"**Daily Summary**\nSubmitted: %d (%d buys, %d sells)\nSkipped: %d\nRejected: %d\nReported PnL: $%.2f",
		summary.Submitted, summary.Buys, summary.Sells,
		summary.Skipped, summary.Rejected, summary.TotalPnL,
	)
	log.Printf("[INFO] %s", strings.ReplaceAll(msg, "\n", " | "))

	if discord == nil {
		return
	}
	if err := discord.SendText(ctx, msg); err != nil {
		log.Printf("[WARN] posting daily summary to discord: %v", err)
	}
}
