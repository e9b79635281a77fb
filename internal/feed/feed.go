package feed

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cryptodigest/cryptodigest/internal/config"
	"github.com/cryptodigest/cryptodigest/internal/link"
	"github.com/mmcdole/gofeed"
)

// Item is a single headline taken from a feed.
type Item struct {
	Title string
	// Link is the normalized URL and the deduplication key.
	Link string
	// Published is zero when the feed carried no timestamp.
	Published time.Time
	Domain    string
}

// HasTime reports whether the feed supplied a timestamp for the item.
func (i Item) HasTime() bool {
	return !i.Published.IsZero()
}

func (i Item) unix() int64 {
	if i.Published.IsZero() {
		return 0
	}
	return i.Published.Unix()
}

type Fetcher interface {
	Fetch(ctx context.Context, source config.Source) ([]Item, error)
}

// RSSFetcher is safe for concurrent use. A gofeed.Parser is not, so each
// Fetch builds its own and only the http.Client is shared.
type RSSFetcher struct {
	client *http.Client
}

func NewRSSFetcher(client *http.Client) *RSSFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &RSSFetcher{client: client}
}

func (f *RSSFetcher) Fetch(ctx context.Context, source config.Source) ([]Item, error) {
	parser := gofeed.NewParser()
	parser.Client = f.client
	feed, err := parser.ParseURLWithContext(source.URL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", source.Name, err)
	}
	return itemsFromFeed(feed), nil
}

func itemsFromFeed(feed *gofeed.Feed) []Item {
	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry == nil {
			continue
		}
		title := cleanTitle(entry.Title)
		raw := strings.TrimSpace(entry.Link)
		if title == "" || raw == "" {
			continue
		}

		var pub time.Time
		if entry.PublishedParsed != nil {
			pub = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			pub = *entry.UpdatedParsed
		}

		normalized := link.Normalize(raw)
		items = append(items, Item{
			Title:     title,
			Link:      normalized,
			Published: pub,
			Domain:    link.Domain(normalized),
		})
	}
	return items
}

// cleanTitle trims the title and flattens any markup some outlets leave in it.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// SourceResult is the outcome of fetching one source: either Items or Err.
type SourceResult struct {
	Source config.Source
	Items  []Item
	Err    error
}

// FetchAll fetches every source, each bounded by timeout. Results are
// returned in source order regardless of completion order. Failures are
// logged and carried in the result; they never stop the other sources.
func FetchAll(ctx context.Context, fetcher Fetcher, sources []config.Source, timeout time.Duration, log *slog.Logger) []SourceResult {
	results := make([]SourceResult, len(sources))
	var wg sync.WaitGroup

	for i, src := range sources {
		wg.Add(1)
		go func(i int, s config.Source) {
			defer wg.Done()
			fctx := ctx
			if timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			items, err := fetcher.Fetch(fctx, s)
			results[i] = SourceResult{Source: s, Items: items, Err: err}
		}(i, src)
	}
	wg.Wait()

	for _, r := range results {
		log := log.With(slog.String("source", r.Source.Name), slog.String("url", r.Source.URL))
		if r.Err != nil {
			log.Warn("Feed fetch failed, skipping source", slog.Any("error", r.Err))
			continue
		}
		log.Debug("Feed fetched", slog.Int("items", len(r.Items)))
	}
	return results
}

// Collect merges successful results in source order, keeps the first item
// seen for each link, orders newest first and caps the result at n.
// Items without a timestamp sort last; equal timestamps keep input order.
func Collect(results []SourceResult, n int) []Item {
	seen := make(map[string]bool)
	var uniq []Item
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		for _, it := range r.Items {
			if seen[it.Link] {
				continue
			}
			seen[it.Link] = true
			uniq = append(uniq, it)
		}
	}

	sort.SliceStable(uniq, func(i, j int) bool {
		return uniq[i].unix() > uniq[j].unix()
	})

	if n >= 0 && len(uniq) > n {
		uniq = uniq[:n]
	}
	return uniq
}
