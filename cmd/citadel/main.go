// Command citadel runs the finance assistant server: REST and websocket
// chat backed by the tool catalog, the paper trading ledger, and the
// scheduled watchlist refresher.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/citadelhq/citadel-go/citadel"
	"github.com/citadelhq/citadel-go/config"
	"github.com/citadelhq/citadel-go/dispatch"
	"github.com/citadelhq/citadel-go/engine"
	"github.com/citadelhq/citadel-go/httpclient"
	"github.com/citadelhq/citadel-go/nepse"
	"github.com/citadelhq/citadel-go/paper"
	"github.com/citadelhq/citadel-go/server"
	"github.com/citadelhq/citadel-go/store"
	"github.com/citadelhq/citadel-go/tools"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		log = log.Level(level)
	}

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("create data dir")
		}
	}
	db, err := sql.Open("sqlite3", cfg.DatabasePath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()

	st, err := store.New(db, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init store")
	}

	httpClient := httpclient.New(httpclient.Config{
		UserAgent:    cfg.UserAgent,
		Timeout:      cfg.HTTPTimeout,
		RetryCount:   cfg.HTTPRetryCount,
		RetryBackoff: cfg.HTTPRetryBackoff,
		CacheTTL:     cfg.CacheTTL,
		MinInterval:  cfg.RateLimitMinInterval,
	}, log)

	nepseClient := nepse.NewClient(httpClient, cfg.NepseAPIBase, log)

	ledger, err := paper.NewLedger(db, nepseClient, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init ledger")
	}

	registry := engine.NewToolRegistry()
	registry.RegisterAll(tools.Catalog(tools.Deps{
		HTTP:            httpClient,
		Nepse:           nepseClient,
		Store:           st,
		Ledger:          ledger,
		UserAgent:       cfg.UserAgent,
		AlphaVantageKey: cfg.AlphaVantageAPIKey,
		Log:             log,
	})...)
	dispatcher := dispatch.New(registry, log)

	anthropicClient := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
	eng := engine.NewEngine(&anthropicClient, registry, dispatcher, engine.Config{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, log)
	eng.SetMemory(st)
	eng.SetLinkFetcher(func(ctx context.Context, url string) (string, string, error) {
		resp, err := httpClient.Get(ctx, url, nil)
		if err != nil {
			return "", "", err
		}
		extracted, err := tools.ExtractText(resp.Text())
		if err != nil {
			return "", "", err
		}
		text, _ := extracted["text"].(string)
		return resp.URL, text, nil
	})

	refresher := citadel.New(nepseClient, st, log)
	if err := refresher.Start(cfg.CitadelRefreshInterval); err != nil {
		log.Fatal().Err(err).Msg("start refresher")
	}
	defer refresher.Stop()

	var origins []string
	if cfg.CORSOrigins != "" {
		origins = strings.Split(cfg.CORSOrigins, ",")
	}
	srv := server.New(server.Config{
		SystemPrompt: engine.NepseSystemPrompt,
		CORSOrigins:  origins,
	}, eng, registry, dispatcher, ledger, st, log)

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: srv.Router()}
	go func() {
		log.Info().Str("addr", cfg.ListenAddr).Msg("listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("serve")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
