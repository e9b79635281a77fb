package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/cryptodigest/cryptodigest/internal/briefing"
	"github.com/cryptodigest/cryptodigest/internal/config"
	"github.com/cryptodigest/cryptodigest/internal/feed"
	"github.com/cryptodigest/cryptodigest/internal/market"
	"github.com/cryptodigest/cryptodigest/internal/preview"
	"github.com/cryptodigest/cryptodigest/internal/sentiment"
	"github.com/cryptodigest/cryptodigest/internal/store"
	"github.com/cryptodigest/cryptodigest/internal/telegram"
	"github.com/google/uuid"
)

// MarketData is the subset of the market client the digests use.
type MarketData interface {
	TopMovers(ctx context.Context, w market.Window) (*market.Movers, error)
	Prices(ctx context.Context, ids []string, currencies ...string) (map[string]map[string]float64, error)
	Global(ctx context.Context) (market.Global, error)
	Markets(ctx context.Context, w market.Window, ids ...string) ([]market.Coin, error)
	FearGreed(ctx context.Context) (market.FearGreed, error)
}

// Publisher sends composed messages to the chat.
type Publisher interface {
	SendMessage(ctx context.Context, msg telegram.Message) (int64, error)
	SendPoll(ctx context.Context, p telegram.Poll) (int64, error)
}

// Recorder keeps the publish log and the weekly market snapshot.
type Recorder interface {
	Record(p store.Publication) (store.Publication, error)
	WeeklyState() (*store.WeeklyState, error)
	SaveWeeklyState(st store.WeeklyState) error
}

// Options configures a Runner. Publisher may be nil only with DryRun.
// Store and Market may be nil; the parts that need them are skipped.
// EveningHour is used as given, so 0 makes every hour evening.
type Options struct {
	Sources      []config.Source
	MaxItems     int
	EveningHour  int
	Location     *time.Location
	FetchTimeout time.Duration
	ChatID       string

	Fetcher   feed.Fetcher
	Market    MarketData
	Publisher Publisher
	Store     Recorder

	DryRun bool
	Out    io.Writer
	Log    *slog.Logger
	Now    func() time.Time
}

type Runner struct {
	opts Options
	log  *slog.Logger
}

func New(opts Options) (*Runner, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required")
	}
	if opts.Publisher == nil && !opts.DryRun {
		return nil, errors.New("pipeline: publisher is required unless dry run")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{opts: opts, log: opts.Log}, nil
}

func (r *Runner) now() time.Time {
	return r.opts.Now().In(r.opts.Location)
}

func (r *Runner) runLogger(kind store.Kind) *slog.Logger {
	return r.log.With(
		slog.String("run_id", uuid.NewString()),
		slog.String("kind", string(kind)),
	)
}

// News runs the headline digest: fetch, dedupe and rank, compose, publish.
// Source failures are logged and skipped; only publishing can fail the run.
func (r *Runner) News(ctx context.Context) error {
	start := time.Now()
	log := r.runLogger(store.KindNews)
	now := r.now()
	log.Info("News digest started", slog.Int("sources", len(r.opts.Sources)))

	results := feed.FetchAll(ctx, r.opts.Fetcher, r.opts.Sources, r.opts.FetchTimeout, log)
	items := feed.Collect(results, r.opts.MaxItems)

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	log.Info("Headlines collected",
		slog.Int("items", len(items)),
		slog.Int("failed_sources", failed),
	)

	in := briefing.NewsInput{
		Items:       items,
		Now:         now,
		EveningHour: r.opts.EveningHour,
	}
	if len(items) > 0 && briefing.IsEvening(now, r.opts.EveningHour) {
		titles := make([]string, len(items))
		for i, it := range items {
			titles[i] = it.Title
		}
		b := sentiment.ScoreWithBreakdown(titles)
		in.Mood = &b.Label
		log.Debug("Sentiment scored",
			slog.Int("score", b.Score),
			slog.String("label", string(b.Label)),
		)
		in.Movers = r.movers(ctx, log, market.Day)
	}

	msg := telegram.Message{
		ChatID:                r.opts.ChatID,
		Text:                  briefing.News(in),
		ParseMode:             telegram.ModeHTML,
		DisableWebPagePreview: true,
	}
	if err := r.publish(ctx, log, store.KindNews, msg, len(items)); err != nil {
		return err
	}
	log.Info("News digest completed", slog.Duration("duration", time.Since(start)))
	return nil
}

// movers returns nil when market data is unavailable, so the section is omitted.
func (r *Runner) movers(ctx context.Context, log *slog.Logger, w market.Window) *market.Movers {
	if r.opts.Market == nil {
		return nil
	}
	m, err := r.opts.Market.TopMovers(ctx, w)
	if err != nil {
		log.Warn("Top movers unavailable", slog.Any("error", err))
		return nil
	}
	return m
}

func (r *Runner) fearGreed(ctx context.Context, log *slog.Logger) *market.FearGreed {
	fg, err := r.opts.Market.FearGreed(ctx)
	if err != nil {
		log.Warn("Fear & Greed index unavailable", slog.Any("error", err))
		return nil
	}
	return &fg
}

// Daily runs the plain-text price digest.
func (r *Runner) Daily(ctx context.Context) error {
	log := r.runLogger(store.KindDaily)
	if r.opts.Market == nil {
		return errors.New("daily digest: market data is not configured")
	}

	prices, err := r.opts.Market.Prices(ctx, briefing.DailyIDs(), "usd", "eur")
	if err != nil {
		return fmt.Errorf("daily digest: fetching prices: %w", err)
	}
	global, err := r.opts.Market.Global(ctx)
	if err != nil {
		return fmt.Errorf("daily digest: fetching global data: %w", err)
	}

	text := briefing.Daily(briefing.DailyInput{
		Now:       r.now(),
		Prices:    prices,
		Global:    global,
		FearGreed: r.fearGreed(ctx, log),
		Movers:    r.movers(ctx, log, market.Day),
	})
	msg := telegram.Message{ChatID: r.opts.ChatID, Text: text, DisableWebPagePreview: true}
	return r.publish(ctx, log, store.KindDaily, msg, 0)
}

// Weekly runs the HTML weekly summary. The current market cap is saved as
// the next week's baseline only after a successful publish.
func (r *Runner) Weekly(ctx context.Context) error {
	log := r.runLogger(store.KindWeekly)
	if r.opts.Market == nil {
		return errors.New("weekly summary: market data is not configured")
	}
	now := r.now()

	majors, err := r.opts.Market.Markets(ctx, market.Week, briefing.WeeklyIDs()...)
	if err != nil {
		return fmt.Errorf("weekly summary: fetching majors: %w", err)
	}
	global, err := r.opts.Market.Global(ctx)
	if err != nil {
		return fmt.Errorf("weekly summary: fetching global data: %w", err)
	}

	in := briefing.WeeklyInput{
		Now:       now,
		Majors:    majors,
		Global:    global,
		FearGreed: r.fearGreed(ctx, log),
		Movers:    r.movers(ctx, log, market.Week),
	}
	if r.opts.Store != nil {
		prev, err := r.opts.Store.WeeklyState()
		if err != nil {
			log.Warn("Previous weekly state unreadable", slog.Any("error", err))
		} else if prev != nil {
			in.PrevMarketCapUSD = prev.MarketCapUSD
		}
	}

	msg := telegram.Message{
		ChatID:                r.opts.ChatID,
		Text:                  briefing.Weekly(in),
		ParseMode:             telegram.ModeHTML,
		DisableWebPagePreview: true,
	}
	if err := r.publish(ctx, log, store.KindWeekly, msg, 0); err != nil {
		return err
	}

	if r.opts.Store != nil && !r.opts.DryRun {
		st := store.WeeklyState{Date: now.UTC(), MarketCapUSD: global.MarketCapUSD}
		if err := r.opts.Store.SaveWeeklyState(st); err != nil {
			log.Warn("Weekly state not saved", slog.Any("error", err))
		}
	}
	return nil
}

// Poll sends the weekly direction poll.
func (r *Runner) Poll(ctx context.Context) error {
	log := r.runLogger(store.KindPoll)
	p := telegram.Poll{
		ChatID:   r.opts.ChatID,
		Question: briefing.PollQuestion(r.now()),
		Options:  briefing.PollOptions,
	}

	if r.opts.DryRun {
		text := p.Question + "\n\n• " + strings.Join(p.Options, "\n• ")
		fmt.Fprintln(r.opts.Out, preview.Render(preview.Message{Kind: string(store.KindPoll), ChatID: p.ChatID, Text: text}))
		return nil
	}

	id, err := r.opts.Publisher.SendPoll(ctx, p)
	if err != nil {
		log.Error("Publish failed", slog.Any("error", err))
		return fmt.Errorf("publishing poll: %w", err)
	}
	r.record(log, store.Publication{Kind: store.KindPoll, ChatID: p.ChatID, MessageID: id})
	return nil
}

// publish sends msg exactly once. In dry-run mode it renders msg instead.
func (r *Runner) publish(ctx context.Context, log *slog.Logger, kind store.Kind, msg telegram.Message, items int) error {
	if r.opts.DryRun {
		fmt.Fprintln(r.opts.Out, preview.Render(preview.Message{
			Kind:      string(kind),
			ChatID:    msg.ChatID,
			ParseMode: string(msg.ParseMode),
			Text:      msg.Text,
		}))
		return nil
	}

	id, err := r.opts.Publisher.SendMessage(ctx, msg)
	if err != nil {
		log.Error("Publish failed", slog.Any("error", err))
		return fmt.Errorf("publishing %s digest: %w", kind, err)
	}
	log.Info("Digest published", slog.Int64("message_id", id), slog.Int("chars", len([]rune(msg.Text))))

	r.record(log, store.Publication{Kind: kind, ChatID: msg.ChatID, MessageID: id, Items: items})
	return nil
}

// record logs the publication; a failure here never fails the run.
func (r *Runner) record(log *slog.Logger, p store.Publication) {
	if r.opts.Store == nil {
		return
	}
	if _, err := r.opts.Store.Record(p); err != nil {
		log.Warn("Publication not recorded", slog.Any("error", err))
	}
}
