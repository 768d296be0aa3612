// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nestauk/ai-research/internal/httputil"
	"github.com/nestauk/ai-research/internal/observability"
	"github.com/nestauk/ai-research/pkg/types"
)

// DefaultBaseURL is the Evaluate endpoint of the academic graph API.
const DefaultBaseURL = "https://api.labs.cognitive.microsoft.com/academic/v1.0/evaluate"

// maxErrorBody bounds how much of an error response is kept in RequestError.
const maxErrorBody = 4 << 10

// Request is one Evaluate call: an expression and a window of its results.
type Request struct {
	Expr       string
	Attributes []string
	Count      int
	Offset     int
}

// Body renders the form body sent to the API:
//
//	<expr>&count=<n>&offset=<o>&model=latest&attributes=<a,b,c>
//
// The expression already carries its "expr=" key and is sent verbatim; the
// service parses quotes and brackets itself.
func (r Request) Body() string {
	var b strings.Builder
	b.WriteString(r.Expr)
	b.WriteString("&count=")
	b.WriteString(strconv.Itoa(r.Count))
	b.WriteString("&offset=")
	b.WriteString(strconv.Itoa(r.Offset))
	b.WriteString("&model=latest&attributes=")
	b.WriteString(strings.Join(r.Attributes, ","))
	return b.String()
}

// Querier issues a single Evaluate request.
type Querier interface {
	Query(ctx context.Context, req Request) (Page, error)
}

// Client queries the Evaluate API over HTTP. It implements Querier.
type Client struct {
	BaseURL         string
	SubscriptionKey string
	UserAgent       string
	HTTP            *http.Client
	Limiter         *httputil.RateLimiter
	MaxRetries      int
	Metrics         *observability.Metrics
}

// NewClient builds a Client from cfg. A nil metrics disables recording.
func NewClient(cfg types.MAGConfig, metrics *observability.Metrics) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		BaseURL:         base,
		SubscriptionKey: cfg.SubscriptionKey,
		UserAgent:       cfg.UserAgent,
		HTTP:            &http.Client{Timeout: cfg.Timeout},
		Limiter:         httputil.NewRateLimiter(cfg.RateLimit, 1),
		MaxRetries:      cfg.MaxRetries,
		Metrics:         metrics,
	}
}

// Query posts req and decodes the returned entities. Transient statuses are
// retried by httputil.DoWithRetry; any other non-2xx status is returned as a
// *RequestError and an unexpected body as a *MalformedResponseError.
func (c *Client) Query(ctx context.Context, req Request) (Page, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return Page{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, strings.NewReader(req.Body()))
	if err != nil {
		return Page{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Ocp-Apim-Subscription-Key", c.SubscriptionKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.UserAgent != "" {
		httpReq.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, client, httpReq, c.MaxRetries)
	if err != nil {
		c.Metrics.RecordMAGRequest(0, time.Since(start).Seconds())
		return Page{}, fmt.Errorf("evaluate request: %w", err)
	}
	defer resp.Body.Close()
	c.Metrics.RecordMAGRequest(resp.StatusCode, time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Page{}, &RequestError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Page{}, fmt.Errorf("reading evaluate response: %w", err)
	}

	entities, err := DecodePage(body)
	if err != nil {
		return Page{}, err
	}
	c.Metrics.RecordMAGPage(len(entities))

	return Page{Expr: req.Expr, Offset: req.Offset, Entities: entities}, nil
}
