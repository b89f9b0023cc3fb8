// Package client is a typed HTTP client for the recipe API.
package client

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

	"recipebook/application/commands"
	"recipebook/application/queries"
	"recipebook/domain/filter"
	"recipebook/pkg/common"
)

// Wire types shared with the server
type (
	Recipe      = queries.RecipeView
	RecipeInput = commands.RecipeInput
	RecipeList  = queries.ListRecipesResult
)

const defaultTimeout = 30 * time.Second

// Client talks to a recipe API server
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	userAgent  string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithToken sends a bearer token with every request
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the server at baseURL, e.g. http://localhost:8080
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "recipebook-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListRecipes fetches one page of recipes matching f. A page or pageSize of
// 0 leaves the choice to the server.
func (c *Client) ListRecipes(ctx context.Context, f filter.Filter, page, pageSize int) (*RecipeList, error) {
	query := filter.Encode(f)
	if page > 0 {
		query.Set(common.QueryKeyPage, strconv.Itoa(page))
	}
	if pageSize > 0 {
		query.Set(common.QueryKeyPageSize, strconv.Itoa(pageSize))
	}

	var out RecipeList
	if err := c.do(ctx, http.MethodGet, "/api/recipes", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRecipe fetches a recipe by id
func (c *Client) GetRecipe(ctx context.Context, id string) (*Recipe, error) {
	var out Recipe
	if err := c.do(ctx, http.MethodGet, recipePath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateRecipe adds a recipe and returns it as stored
func (c *Client) CreateRecipe(ctx context.Context, in RecipeInput) (*Recipe, error) {
	var out Recipe
	if err := c.do(ctx, http.MethodPost, "/api/recipes", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceRecipe overwrites every field of a recipe
func (c *Client) ReplaceRecipe(ctx context.Context, id string, in RecipeInput) (*Recipe, error) {
	var out Recipe
	if err := c.do(ctx, http.MethodPut, recipePath(id), nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteRecipe removes a recipe
func (c *Client) DeleteRecipe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, recipePath(id), nil, nil, nil)
}

// ListTags returns every tag in use, sorted
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	var out queries.ListTagsResult
	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Tags, nil
}

func recipePath(id string) string {
	return "/api/recipes/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is an error response returned by the server
type APIError struct {
	StatusCode int                    `json:"-"`
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Type, e.Message)
}

// FieldErrors returns the per-field messages of a validation error
func (e *APIError) FieldErrors() map[string][]string {
	raw, ok := e.Details["fields"].(map[string]interface{})
	if !ok {
		return nil
	}

	out := make(map[string][]string, len(raw))
	for field, msgs := range raw {
		list, ok := msgs.([]interface{})
		if !ok {
			continue
		}
		for _, m := range list {
			if s, ok := m.(string); ok {
				out[field] = append(out[field], s)
			}
		}
	}
	return out
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err == nil && len(raw) > 0 && json.Unmarshal(raw, apiErr) == nil && apiErr.Message != "" {
		return apiErr
	}

	apiErr.Message = http.StatusText(resp.StatusCode)
	if len(raw) > 0 && !json.Valid(raw) {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// StatusCode returns the HTTP status of an API error, or 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}
