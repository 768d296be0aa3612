// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package geocode resolves affiliation names to places with the Google
// Places API: a find-place lookup yields a place id, and a details lookup
// yields the coordinates and address of that place.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nestauk/ai-research/internal/httputil"
	"github.com/nestauk/ai-research/pkg/types"
)

// Default endpoints of the Places API.
const (
	DefaultFindPlaceURL = "https://maps.googleapis.com/maps/api/place/findplacefromtext/json"
	DefaultDetailsURL   = "https://maps.googleapis.com/maps/api/place/details/json"
)

// detailsFields is the field mask requested from the details endpoint.
const detailsFields = "address_components,formatted_address,geometry,name,place_id,type,website"

// ErrNoMatch is returned by PlaceByName when the name matches no place.
var ErrNoMatch = errors.New("geocode: no matching place")

// RequestError is returned when the API answers with a non-2xx HTTP status
// or with an error status in the body (e.g. REQUEST_DENIED).
type RequestError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *RequestError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("geocode: places API returned HTTP %d status %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("geocode: places API returned HTTP %d: %s", e.StatusCode, e.Message)
}

// MalformedResponseError is returned when a response lacks required fields.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("geocode: malformed response: %s: %v", e.Reason, e.Err)
	}
	return "geocode: malformed response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// Geocoder resolves names to place details. Client implements it.
type Geocoder interface {
	PlaceByName(ctx context.Context, name string) (string, error)
	PlaceByID(ctx context.Context, placeID string) (*PlaceDetails, error)
}

// Client calls the Places API over HTTP.
type Client struct {
	FindPlaceURL string
	DetailsURL   string
	APIKey       string
	UserAgent    string
	HTTP         *http.Client
	Limiter      *httputil.RateLimiter
	MaxRetries   int
}

// NewClient builds a Client from cfg.
func NewClient(cfg types.GeocodeConfig) *Client {
	find := cfg.FindPlaceURL
	if find == "" {
		find = DefaultFindPlaceURL
	}
	details := cfg.DetailsURL
	if details == "" {
		details = DefaultDetailsURL
	}
	return &Client{
		FindPlaceURL: find,
		DetailsURL:   details,
		APIKey:       cfg.APIKey,
		UserAgent:    cfg.UserAgent,
		HTTP:         &http.Client{Timeout: cfg.Timeout},
		Limiter:      httputil.NewRateLimiter(cfg.RateLimit, 1),
		MaxRetries:   cfg.MaxRetries,
	}
}

// PlaceByName returns the place id of the best match for name. It returns
// ErrNoMatch when the API finds no candidate.
func (c *Client) PlaceByName(ctx context.Context, name string) (string, error) {
	params := url.Values{
		"input":     {name},
		"fields":    {"place_id"},
		"inputtype": {"textquery"},
		"key":       {c.APIKey},
	}

	var resp findPlaceResponse
	if err := c.get(ctx, c.FindPlaceURL, params, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].PlaceID == "" {
		return "", ErrNoMatch
	}
	return resp.Candidates[0].PlaceID, nil
}

// PlaceByID returns the details of a place.
func (c *Client) PlaceByID(ctx context.Context, placeID string) (*PlaceDetails, error) {
	params := url.Values{
		"place_id": {placeID},
		"fields":   {detailsFields},
		"key":      {c.APIKey},
	}

	var resp detailsResponse
	if err := c.get(ctx, c.DetailsURL, params, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, &MalformedResponseError{Reason: "missing result"}
	}
	return resp.Result, nil
}

// statusResponse is the status envelope shared by every Places response.
type statusResponse interface {
	status() (string, string)
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out statusResponse) error {
	if err := c.Limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, c.MaxRetries)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading places response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Reason: "decoding body", Err: err}
	}

	// ZERO_RESULTS carries an empty candidate list and is handled by the caller.
	switch status, msg := out.status(); status {
	case "", "OK", "ZERO_RESULTS":
		return nil
	default:
		return &RequestError{StatusCode: resp.StatusCode, Status: status, Message: msg}
	}
}

type findPlaceResponse struct {
	Candidates   []candidate `json:"candidates"`
	Status       string      `json:"status"`
	ErrorMessage string      `json:"error_message"`
}

func (r *findPlaceResponse) status() (string, string) { return r.Status, r.ErrorMessage }

type candidate struct {
	PlaceID string `json:"place_id"`
}

type detailsResponse struct {
	Result       *PlaceDetails `json:"result"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message"`
}

func (r *detailsResponse) status() (string, string) { return r.Status, r.ErrorMessage }
