// Package nhtsa is a client for the NHTSA vPIC GetParts API, which serves
// manufacturer defect-investigation letters as a paginated CSV listing
// with per-row document URLs.
package nhtsa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/VinayRevanuruBB/Vin-Decode/internal/core"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production vPIC API root.
const DefaultBaseURL = "https://vpic.nhtsa.dot.gov/api/vehicles"

// DefaultRecordType is the GetParts record type for defect-investigation
// letters.
const DefaultRecordType = 565

// Config controls a Client.
type Config struct {
	BaseURL           string
	RecordType        int
	MaxPages          int           // hard cap on pagination; 0 means no cap
	UserAgent         string
	RequestTimeout    time.Duration
	RequestsPerSecond float64 // outbound politeness limit
	Burst             int
}

// Client talks to the vPIC API. Safe for concurrent use.
type Client struct {
	hc         *http.Client
	baseURL    string
	recordType int
	maxPages   int
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient creates a Client, filling zero config values with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.RecordType == 0 {
		cfg.RecordType = DefaultRecordType
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "Vin-Decode/1.0 (+local)"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 2
	}
	return &Client{
		hc:         &http.Client{Timeout: cfg.RequestTimeout},
		baseURL:    cfg.BaseURL,
		recordType: cfg.RecordType,
		maxPages:   cfg.MaxPages,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
	}
}

// FetchListing retrieves every page of the year's listing, stopping at the
// first page with zero data rows. A transport, status or parse failure
// stops pagination and returns the rows accumulated so far alongside a
// *core.ListingFetchError. There is no retry.
func (c *Client) FetchListing(ctx context.Context, year int) (core.ListingTable, error) {
	var table core.ListingTable
	for page := 1; ; page++ {
		if c.maxPages > 0 && page > c.maxPages {
			return table, &core.ListingFetchError{
				Year: year,
				Page: page,
				Err:  fmt.Errorf("page cap %d exceeded without an empty page", c.maxPages),
			}
		}

		rows, err := c.fetchPage(ctx, year, page)
		if err != nil {
			return table, &core.ListingFetchError{Year: year, Page: page, Err: err}
		}
		if len(rows) == 0 {
			return table, nil
		}
		table = append(table, rows...)
	}
}

func (c *Client) fetchPage(ctx context.Context, year, page int) ([]core.ListingRow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("type", strconv.Itoa(c.recordType))
	q.Set("fromDate", fmt.Sprintf("1/1/%d", year))
	q.Set("toDate", fmt.Sprintf("12/31/%d", year))
	q.Set("format", "csv")
	q.Set("page", strconv.Itoa(page))
	reqURL := c.baseURL + "/GetParts?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get listing page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("listing page status %d", res.StatusCode)
	}

	return parseListingCSV(res.Body)
}

// FetchDocument performs a plain GET on a row's document URL. Non-200
// statuses become *core.FetchFailedError so callers can surface the status
// and fall back to the direct link.
func (c *Client) FetchDocument(ctx context.Context, docURL string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	res, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, &core.FetchFailedError{Status: res.StatusCode, URL: docURL}
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read document body: %w", err)
	}
	if len(body) == 0 {
		return nil, errors.New("document body is empty")
	}
	return body, nil
}
