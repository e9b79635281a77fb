package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/config"
	"github.com/cryptodigest/cryptodigest/internal/feed"
	"github.com/cryptodigest/cryptodigest/internal/market"
	"github.com/cryptodigest/cryptodigest/internal/pipeline"
	"github.com/cryptodigest/cryptodigest/internal/store"
	"github.com/cryptodigest/cryptodigest/internal/telegram"
	"github.com/spf13/cobra"
)

const apiTimeout = 30 * time.Second

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Publish the headline digest",
	RunE:  runNews,
}

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Publish the daily price digest",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, (*pipeline.Runner).Daily)
	},
}

var weeklyCmd = &cobra.Command{
	Use:   "weekly",
	Short: "Publish the weekly market summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, (*pipeline.Runner).Weekly)
	},
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Send the weekly bullish/bearish poll",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, (*pipeline.Runner).Poll)
	},
}

func runNews(cmd *cobra.Command, args []string) error {
	return withRunner(cmd, (*pipeline.Runner).News)
}

// withRunner builds a Runner from config, runs one job and releases the store.
func withRunner(cmd *cobra.Command, job func(*pipeline.Runner, context.Context) error) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	opts := pipeline.Options{
		Sources:      cfg.EnabledSources(),
		MaxItems:     cfg.GetMaxItems(),
		EveningHour:  cfg.GetEveningHour(),
		Location:     loc,
		FetchTimeout: cfg.FetchTimeoutDuration(),
		ChatID:       cfg.ChatID(),
		Fetcher:      feed.NewRSSFetcher(&http.Client{}),
		Market:       market.New(cfg.Market.APIURL, cfg.Market.FearGreedURL, &http.Client{Timeout: apiTimeout}),
		DryRun:       flagDryRun,
		Out:          os.Stdout,
		Log:          logger,
	}

	if !flagDryRun {
		if opts.ChatID == "" {
			return fmt.Errorf("no chat configured: set telegram.chat_id or %s", config.EnvChatID)
		}
		tg, err := telegram.New(cfg.Telegram.APIURL, cfg.BotToken(), &http.Client{Timeout: apiTimeout})
		if err != nil {
			return fmt.Errorf("%w: set telegram.token or %s", err, config.EnvBotToken)
		}
		opts.Publisher = tg
	}

	// The publish log is optional; a run still goes out without it.
	db, err := store.Open(cfg.StorePath())
	if err != nil {
		logger.Warn("Publish log unavailable", slog.Any("error", err))
	} else {
		defer db.Close()
		opts.Store = db
	}

	runner, err := pipeline.New(opts)
	if err != nil {
		return err
	}

	err = job(runner, cmd.Context())
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("interrupted: %w", err)
	}
	return err
}

func parseSince(s string) (time.Duration, error) {
	if len(s) > 1 && s[len(s)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	return time.ParseDuration(s)
}
