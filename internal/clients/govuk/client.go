// Package govuk fetches UK bank holidays from GOV.UK, caching the England &
// Wales division in Redis. The holiday feed is best-effort: any failure
// degrades to an empty set upstream.
package govuk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/availability"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

const (
	defaultTimeout = 20 * time.Second

	division = "england-and-wales"
	cacheKey = "govuk:bank-holidays:" + division
)

// Client fetches bank holidays from GOV.UK.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *logging.Logger
}

var _ availability.HolidaySource = (*Client)(nil)

// NewClient creates a GOV.UK bank holiday client. cache may be nil, in which
// case every call goes to GOV.UK.
func NewClient(baseURL string, cache *redis.Client, cacheTTL time.Duration, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger.Component("gov-uk"),
	}
}

type eventDTO struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

type feedDTO map[string]struct {
	Division string     `json:"division"`
	Events   []eventDTO `json:"events"`
}

// BankHolidays returns England & Wales bank holidays, from cache when fresh.
func (c *Client) BankHolidays(ctx context.Context) availability.Lookup[[]availability.BankHoliday] {
	if cached, ok := c.fromCache(ctx); ok {
		return availability.Found(cached)
	}

	events, err := c.fetch(ctx)
	if err != nil {
		return availability.Failed[[]availability.BankHoliday](err)
	}

	holidays, err := toHolidays(events)
	if err != nil {
		return availability.Failed[[]availability.BankHoliday](err)
	}

	c.store(ctx, events)
	return availability.Found(holidays)
}

func (c *Client) fetch(ctx context.Context) ([]eventDTO, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bank-holidays.json", nil)
	if err != nil {
		return nil, fmt.Errorf("govuk: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("govuk: bank-holidays: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("govuk: bank-holidays: status %d: %s", resp.StatusCode, snippet)
	}

	var feed feedDTO
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("govuk: bank-holidays: decode: %w", err)
	}
	return feed[division].Events, nil
}

func toHolidays(events []eventDTO) ([]availability.BankHoliday, error) {
	out := make([]availability.BankHoliday, 0, len(events))
	for _, e := range events {
		d, err := time.Parse(time.DateOnly, e.Date)
		if err != nil {
			return nil, fmt.Errorf("govuk: malformed holiday date %q: %w", e.Date, err)
		}
		out = append(out, availability.BankHoliday{Date: d, Title: e.Title})
	}
	return out, nil
}

func (c *Client) fromCache(ctx context.Context) ([]availability.BankHoliday, bool) {
	if c.cache == nil {
		return nil, false
	}
	data, err := c.cache.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("holiday cache read failed", "error", err)
		return nil, false
	}
	var events []eventDTO
	if err := json.Unmarshal(data, &events); err != nil {
		c.logger.Warn("holiday cache entry corrupt, refetching", "error", err)
		return nil, false
	}
	holidays, err := toHolidays(events)
	if err != nil {
		c.logger.Warn("holiday cache entry corrupt, refetching", "error", err)
		return nil, false
	}
	return holidays, true
}

func (c *Client) store(ctx context.Context, events []eventDTO) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey, data, c.cacheTTL).Err(); err != nil {
		c.logger.Warn("holiday cache write failed", "error", err)
	}
}
