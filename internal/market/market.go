package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultAPIURL       = "https://api.coingecko.com/api/v3"
	DefaultFearGreedURL = "https://api.alternative.me/fng/?limit=1"
)

// Window selects the price-change period used for movers.
type Window string

const (
	Day  Window = "24h"
	Week Window = "7d"
)

var stablecoins = map[string]bool{
	"usdt": true, "usdc": true, "dai": true, "tusd": true,
	"usde": true, "fdusd": true, "eurt": true, "eusd": true,
}

// Coin is one row of the markets listing.
type Coin struct {
	ID           string   `json:"id"`
	Symbol       string   `json:"symbol"`
	Name         string   `json:"name"`
	CurrentPrice float64  `json:"current_price"`
	Change24h    *float64 `json:"price_change_percentage_24h"`
	Change7d     *float64 `json:"price_change_percentage_7d_in_currency"`
}

func (c Coin) change(w Window) *float64 {
	if w == Week {
		return c.Change7d
	}
	return c.Change24h
}

// Mover is a coin with its percentage change over a window.
type Mover struct {
	Name    string
	Symbol  string
	Percent float64
}

// Movers holds the largest gainer and loser over a window.
type Movers struct {
	Window Window
	Gainer Mover
	Loser  Mover
}

// Global is the aggregate market snapshot.
type Global struct {
	MarketCapUSD float64
	BTCDominance float64
}

// FearGreed is the alternative.me sentiment index.
type FearGreed struct {
	Value          int
	Classification string
}

// StatusError is returned for a non-200 upstream response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d for url %s", e.StatusCode, e.URL)
}

type Client struct {
	apiURL       string
	fearGreedURL string
	client       *http.Client
}

func New(apiURL, fearGreedURL string, client *http.Client) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if fearGreedURL == "" {
		fearGreedURL = DefaultFearGreedURL
	}
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}
	return &Client{
		apiURL:       strings.TrimRight(apiURL, "/"),
		fearGreedURL: fearGreedURL,
		client:       client,
	}
}

func (c *Client) get(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request for %s: %w", rawURL, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", rawURL, err)
	}
	return nil
}

func (c *Client) endpoint(path string, params url.Values) string {
	u := c.apiURL + "/" + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u
}

// Prices returns spot prices keyed by coin id, then by currency.
func (c *Client) Prices(ctx context.Context, ids []string, currencies ...string) (map[string]map[string]float64, error) {
	params := url.Values{
		"ids":           {strings.Join(ids, ",")},
		"vs_currencies": {strings.Join(currencies, ",")},
	}
	var out map[string]map[string]float64
	if err := c.get(ctx, c.endpoint("simple/price", params), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Global(ctx context.Context) (Global, error) {
	var body struct {
		Data struct {
			TotalMarketCap      map[string]float64 `json:"total_market_cap"`
			MarketCapPercentage map[string]float64 `json:"market_cap_percentage"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.endpoint("global", nil), &body); err != nil {
		return Global{}, err
	}
	return Global{
		MarketCapUSD: body.Data.TotalMarketCap["usd"],
		BTCDominance: body.Data.MarketCapPercentage["btc"],
	}, nil
}

// Markets lists coins by market cap with price change for window. When ids
// is empty the top 250 coins are returned.
func (c *Client) Markets(ctx context.Context, w Window, ids ...string) ([]Coin, error) {
	params := url.Values{
		"vs_currency":             {"usd"},
		"price_change_percentage": {string(w)},
	}
	if len(ids) > 0 {
		params.Set("ids", strings.Join(ids, ","))
	} else {
		params.Set("order", "market_cap_desc")
		params.Set("per_page", "250")
		params.Set("page", "1")
	}
	var coins []Coin
	if err := c.get(ctx, c.endpoint("coins/markets", params), &coins); err != nil {
		return nil, err
	}
	return coins, nil
}

// TopMovers returns the largest gainer and loser over w, skipping
// stablecoins and coins without a change value. It returns nil when no
// coin qualifies.
func (c *Client) TopMovers(ctx context.Context, w Window) (*Movers, error) {
	coins, err := c.Markets(ctx, w)
	if err != nil {
		return nil, err
	}
	return PickMovers(coins, w), nil
}

// PickMovers selects the top gainer and loser from coins.
func PickMovers(coins []Coin, w Window) *Movers {
	var gainer, loser *Coin
	for i := range coins {
		c := &coins[i]
		if stablecoins[strings.ToLower(c.Symbol)] || c.change(w) == nil {
			continue
		}
		if gainer == nil || *c.change(w) > *gainer.change(w) {
			gainer = c
		}
		if loser == nil || *c.change(w) < *loser.change(w) {
			loser = c
		}
	}
	if gainer == nil {
		return nil
	}
	return &Movers{
		Window: w,
		Gainer: Mover{Name: gainer.Name, Symbol: strings.ToUpper(gainer.Symbol), Percent: *gainer.change(w)},
		Loser:  Mover{Name: loser.Name, Symbol: strings.ToUpper(loser.Symbol), Percent: *loser.change(w)},
	}
}

func (c *Client) FearGreed(ctx context.Context) (FearGreed, error) {
	var body struct {
		Data []struct {
			Value          string `json:"value"`
			Classification string `json:"value_classification"`
		} `json:"data"`
	}
	if err := c.get(ctx, c.fearGreedURL, &body); err != nil {
		return FearGreed{}, err
	}
	if len(body.Data) == 0 {
		return FearGreed{}, fmt.Errorf("fear & greed: empty response")
	}
	v, err := strconv.Atoi(body.Data[0].Value)
	if err != nil {
		return FearGreed{}, fmt.Errorf("fear & greed: invalid value %q: %w", body.Data[0].Value, err)
	}
	return FearGreed{Value: v, Classification: body.Data[0].Classification}, nil
}
