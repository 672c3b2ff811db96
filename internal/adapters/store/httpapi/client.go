// Package httpapi provides the HTTP client implementation of the link store,
// speaking the exercise service's JSON API.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/app/dto"
	"github.com/aboimpinto/GetFitterGetBigger-sub005/internal/core/link"
)

const defaultTimeout = 30 * time.Second

// Client implements the link store against a remote exercise service.
// PRINCIPLES:
// - SRP: Only responsible for HTTP transport and status mapping
// - DIP: Implements the usecases.LinkStore interface
type Client struct {
	baseURL string
	client  *http.Client
}

// Config holds client configuration.
type Config struct {
	BaseURL    string        // Service root, e.g. "https://api.example.com"
	Timeout    time.Duration // Per-request timeout (default 30s)
	HTTPClient *http.Client  // Custom transport (optional)
}

// NewClient creates an HTTP link-store client.
func NewClient(config Config) *Client {
	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout == 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(config.BaseURL, "/"),
		client:  httpClient,
	}
}

// CreateLink creates a link via POST /api/exercises/{id}/links.
func (c *Client) CreateLink(ctx context.Context, exerciseID string, req dto.CreateExerciseLinkRequest) (*link.ExerciseLink, error) {
	var created link.ExerciseLink
	err := c.do(ctx, http.MethodPost, c.linksURL(exerciseID, ""), req, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// GetLinks fetches the link snapshot via GET /api/exercises/{id}/links.
func (c *Client) GetLinks(ctx context.Context, exerciseID string, query dto.LinkQuery) (*dto.ExerciseLinksResponse, error) {
	u := c.linksURL(exerciseID, "")
	params := url.Values{}
	if query.Type != nil {
		params.Set("linkType", query.Type.String())
	}
	if query.IncludeDetails {
		params.Set("includeExerciseDetails", "true")
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var resp dto.ExerciseLinksResponse
	if err := c.do(ctx, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSuggestedLinks fetches suggestions via GET /api/exercises/{id}/links/suggested.
func (c *Client) GetSuggestedLinks(ctx context.Context, exerciseID string, count int) ([]*link.ExerciseLink, error) {
	u := c.linksURL(exerciseID, "suggested") + "?count=" + strconv.Itoa(count)
	var out []*link.ExerciseLink
	if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateLink rewrites a link via PUT /api/exercises/{id}/links/{linkId}.
func (c *Client) UpdateLink(ctx context.Context, exerciseID, linkID string, req dto.UpdateExerciseLinkRequest) (*link.ExerciseLink, error) {
	var updated link.ExerciseLink
	if err := c.do(ctx, http.MethodPut, c.linksURL(exerciseID, linkID), req, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteLink removes a link via DELETE /api/exercises/{id}/links/{linkId}.
func (c *Client) DeleteLink(ctx context.Context, exerciseID, linkID string) error {
	return c.do(ctx, http.MethodDelete, c.linksURL(exerciseID, linkID), nil, nil)
}

func (c *Client) linksURL(exerciseID, suffix string) string {
	u := fmt.Sprintf("%s/api/exercises/%s/links", c.baseURL, url.PathEscape(exerciseID))
	if suffix != "" {
		u += "/" + url.PathEscape(suffix)
	}
	return u
}

// do issues one request and decodes the response into out (when non-nil).
func (c *Client) do(ctx context.Context, method, u string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return statusError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return dto.NewStoreError(dto.StoreErrServer, "malformed response body", err)
	}
	return nil
}

// transportError classifies a round-trip failure.
func transportError(err error) error {
	switch {
	case errors.Is(err, context.Canceled):
		return dto.NewStoreError(dto.StoreErrCanceled, "request canceled", err)
	case errors.Is(err, context.DeadlineExceeded):
		return dto.NewStoreError(dto.StoreErrTimeout, "request deadline exceeded", err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return dto.NewStoreError(dto.StoreErrTimeout, "request timed out", err)
	}
	return dto.NewStoreError(dto.StoreErrNetwork, err.Error(), err)
}

// statusError maps an HTTP status to a store error kind. The body is read
// for the service's message but never trusted beyond that.
func statusError(resp *http.Response) error {
	message := readErrorMessage(resp.Body)

	var kind dto.StoreErrorKind
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		kind = dto.StoreErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		kind = dto.StoreErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		kind = dto.StoreErrNotFound
	case resp.StatusCode == http.StatusRequestTimeout:
		kind = dto.StoreErrTimeout
	case resp.StatusCode == http.StatusTooManyRequests:
		kind = dto.StoreErrRateLimited
	case resp.StatusCode == http.StatusServiceUnavailable:
		kind = dto.StoreErrUnavailable
	case resp.StatusCode >= 500:
		kind = dto.StoreErrServer
	default:
		kind = dto.StoreErrInvalid
	}

	if message == "" {
		message = resp.Status
	}
	return dto.NewStoreError(kind, message, nil)
}

func readErrorMessage(body io.Reader) string {
	payload, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(payload, &envelope) == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}
	return strings.TrimSpace(string(payload))
}
