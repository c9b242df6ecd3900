// Package formsapi fetches published form definitions from the forms API.
package formsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	apperrors "github.com/felixgeelhaar/formrunner/internal/errors"
	"github.com/felixgeelhaar/formrunner/internal/form"
	"github.com/felixgeelhaar/formrunner/internal/log"
)

// Options configures a Client
type Options struct {
	BaseURL string
	// Token is sent in the X-API-Token header
	Token    string
	Timeout  time.Duration
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the backoff between attempts
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *log.Logger
}

// Client reads forms from GET {base}/api/v1/forms/{id}/{live|draft}, retrying
// connection errors and server errors
type Client struct {
	baseURL string
	token   string
	http    *retryablehttp.Client
}

// NewClient creates a forms API client
func NewClient(opts Options) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		rc.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		rc.RetryWaitMax = opts.RetryWaitMax
	}
	if opts.Timeout > 0 {
		rc.HTTPClient.Timeout = opts.Timeout
	}
	if opts.Logger != nil {
		rc.Logger = opts.Logger.With("component", "formsapi")
	} else {
		rc.Logger = nil
	}

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		token:   opts.Token,
		http:    rc,
	}
}

// URL returns the API location of a form version
func (c *Client) URL(id int64, mode form.Mode) string {
	version := "live"
	if mode.IsDraft() {
		version = "draft"
	}
	return fmt.Sprintf("%s/api/v1/forms/%d/%s", c.baseURL, id, version)
}

// Get fetches a form. A 404 from the API is reported as form.ErrFormNotFound.
func (c *Client) Get(ctx context.Context, id int64, mode form.Mode) (*form.Form, error) {
	url := c.URL(id, mode)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewFormAPIError(url, err)
	}
	req.Header.Set("X-API-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.NewFormAPIError(url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("form %d: %w", id, form.ErrFormNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, apperrors.NewFormAPIError(url, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var f form.Form
	if err := json.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, apperrors.NewFormAPIError(url, fmt.Errorf("decoding form: %w", err))
	}
	return f.Link(), nil
}

// Ping checks the API answers at all. Any HTTP response counts as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.HTTPClient.Do(req)
	if err != nil {
		return apperrors.NewFormAPIError(c.baseURL, err)
	}
	resp.Body.Close()
	return nil
}
