package fxrate

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rowenagold/CommoditiesPricesForwardCurve/internal/contracts"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/httputil"
	"github.com/rowenagold/CommoditiesPricesForwardCurve/pkg/logger"
)

// ErrPairMissing is returned when the feed answers without the requested currency
var ErrPairMissing = errors.New("fxrate: currency missing from response")

// Client handles communication with a Frankfurter-style exchange rate API
// ⭐ SSOT: 환율 API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	apiKey     string
}

// NewClient creates a new fx rate client
func NewClient(httpClient *httputil.Client, baseURL, apiKey string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("client", "fxrate"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// seriesResponse is the time series payload:
// {"base":"USD","start_date":"2019-01-02","end_date":"2019-01-31","rates":{"2019-01-02":{"EUR":0.8757}}}
type seriesResponse struct {
	Base      string                                `json:"base"`
	StartDate string                                `json:"start_date"`
	EndDate   string                                `json:"end_date"`
	Rates     map[string]map[string]decimal.Decimal `json:"rates"`
}

// FetchRates returns the published daily rates of from→to in [start, end], ordered by date.
// Days without publication (weekends, holidays) are absent; the full-year merge fills them.
func (c *Client) FetchRates(ctx context.Context, from, to string, start, end time.Time) ([]contracts.FxRate, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)

	params := url.Values{}
	params.Set("from", from)
	params.Set("to", to)
	fullURL := fmt.Sprintf("%s/%s..%s?%s", c.baseURL,
		start.Format(contracts.DateLayout), end.Format(contracts.DateLayout), params.Encode())

	var headers map[string]string
	if c.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + c.apiKey}
	}

	var resp seriesResponse
	if err := c.httpClient.GetJSON(ctx, fullURL, headers, &resp); err != nil {
		return nil, fmt.Errorf("fetch %s_%s rates: %w", from, to, err)
	}

	rates := make([]contracts.FxRate, 0, len(resp.Rates))
	for ds, byCurrency := range resp.Rates {
		date, err := time.Parse(contracts.DateLayout, ds)
		if err != nil {
			return nil, fmt.Errorf("parse rate date %q: %w", ds, err)
		}
		rate, ok := byCurrency[to]
		if !ok {
			return nil, fmt.Errorf("%w: %s on %s", ErrPairMissing, to, ds)
		}
		if date.Before(contracts.Day(start)) || date.After(contracts.Day(end)) {
			continue
		}
		rates = append(rates, contracts.FxRate{
			Date:         date,
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         rate,
		})
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].Date.Before(rates[j].Date) })

	c.logger.WithFields(map[string]interface{}{
		"pair":  from + "_" + to,
		"from":  start.Format(contracts.DateLayout),
		"to":    end.Format(contracts.DateLayout),
		"count": len(rates),
	}).Debug("Fetched fx rates")

	return rates, nil
}
