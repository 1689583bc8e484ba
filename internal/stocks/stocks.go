package stocks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newshub/internal/logger"
)

// Quote is one ticker row for the market strip.
type Quote struct {
	Name   string `json:"name"`
	Price  string `json:"price"`
	Change string `json:"change"`
	Up     bool   `json:"up"`
}

type symbol struct {
	code string
	name string
}

// Indian indices and large caps, in display order.
var symbols = []symbol{
	{"^BSESN", "SENSEX"},
	{"^NSEI", "NIFTY 50"},
	{"^NSEBANK", "BANK NIFTY"},
	{"RELIANCE.NS", "RELIANCE"},
	{"TCS.NS", "TCS"},
	{"INFY.NS", "INFOSYS"},
	{"HDFCBANK.NS", "HDFC BANK"},
}

// Client pulls live quotes from the Yahoo Finance chart API, plus USD/INR
// from Finnhub when a token is configured. Symbols that fail are omitted
// rather than failing the whole strip.
type Client struct {
	yahooURL     string
	finnhubURL   string
	finnhubToken string
	client       *http.Client
}

func New(finnhubToken string) *Client {
	return &Client{
		yahooURL:     "https://query1.finance.yahoo.com",
		finnhubURL:   "https://finnhub.io",
		finnhubToken: finnhubToken,
		client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
				PreviousClose      float64 `json:"previousClose"`
			} `json:"meta"`
		} `json:"result"`
	} `json:"chart"`
}

type finnhubQuote struct {
	Current       float64 `json:"c"`
	PreviousClose float64 `json:"pc"`
}

// Quotes fetches every symbol in parallel and keeps display order for
// the ones that responded.
func (c *Client) Quotes(ctx context.Context) ([]Quote, error) {
	results := make([]*Quote, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	for i, s := range symbols {
		i, s := i, s
		g.Go(func() error {
			q, err := c.yahooQuote(gctx, s)
			if err != nil {
				logger.Debug("stock quote failed", "symbol", s.code, "error", err)
				return nil
			}
			results[i] = q
			return nil
		})
	}

	var forex *Quote
	var forexMu sync.Mutex
	if c.finnhubToken != "" {
		g.Go(func() error {
			q, err := c.usdinr(gctx)
			if err != nil {
				logger.Debug("forex quote failed", "error", err)
				return nil
			}
			forexMu.Lock()
			forex = q
			forexMu.Unlock()
			return nil
		})
	}
	g.Wait()

	quotes := make([]Quote, 0, len(results)+1)
	for _, q := range results {
		if q != nil {
			quotes = append(quotes, *q)
		}
	}
	if forex != nil {
		quotes = append(quotes, *forex)
	}
	if len(quotes) == 0 {
		return nil, fmt.Errorf("no live market data available")
	}
	return quotes, nil
}

func (c *Client) yahooQuote(ctx context.Context, s symbol) (*Quote, error) {
	url := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=2d", c.yahooURL, s.code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var chart yahooChart
	if err := json.NewDecoder(resp.Body).Decode(&chart); err != nil {
		return nil, err
	}
	if len(chart.Chart.Result) == 0 {
		return nil, fmt.Errorf("empty chart result")
	}

	meta := chart.Chart.Result[0].Meta
	price := meta.RegularMarketPrice
	prev := meta.ChartPreviousClose
	if prev == 0 {
		prev = meta.PreviousClose
	}
	if price == 0 || prev == 0 {
		return nil, fmt.Errorf("missing price data")
	}

	changePct := (price - prev) / prev * 100
	return &Quote{
		Name:   s.name,
		Price:  formatPrice(s.name, price),
		Change: formatChange(changePct),
		Up:     changePct >= 0,
	}, nil
}

func (c *Client) usdinr(ctx context.Context) (*Quote, error) {
	url := fmt.Sprintf("%s/api/v1/quote?symbol=OANDA:USD_INR&token=%s", c.finnhubURL, c.finnhubToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var fq finnhubQuote
	if err := json.NewDecoder(resp.Body).Decode(&fq); err != nil {
		return nil, err
	}
	if fq.Current == 0 {
		return nil, fmt.Errorf("missing quote")
	}

	prev := fq.PreviousClose
	if prev == 0 {
		prev = fq.Current
	}
	changePct := (fq.Current - prev) / prev * 100
	return &Quote{
		Name:   "USD/INR",
		Price:  fmt.Sprintf("₹%.2f", fq.Current),
		Change: formatChange(changePct),
		Up:     changePct >= 0,
	}, nil
}

// formatPrice mirrors the market strip convention: indices show grouped
// points, equities show rupees.
func formatPrice(name string, price float64) string {
	if strings.Contains(name, "NIFTY") || name == "SENSEX" {
		return groupThousands(fmt.Sprintf("%.2f", price))
	}
	return fmt.Sprintf("₹%.2f", price)
}

func formatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// groupThousands inserts commas into the integer part of a formatted number.
func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	var out []byte
	for i, d := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, d)
	}
	if frac != "" {
		return string(out) + "." + frac
	}
	return string(out)
}
