// Package subscribe registers the gateway's callback URL with the Graph API
// so the platform starts delivering webhooks to it.
package subscribe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL    = "https://graph.facebook.com"
	DefaultAPIVersion = "v19.0"

	maxResponseBytes = 1 << 20
)

// Subscription describes one webhook registration for an object type
type Subscription struct {
	Object      string   `url:"object" json:"object"`
	CallbackURL string   `url:"callback_url" json:"callback_url"`
	Fields      []string `url:"fields,comma" json:"-"`
	VerifyToken string   `url:"verify_token" json:"-"`

	IncludeValues bool `url:"include_values,omitempty" json:"-"`
}

// Validate reports missing fields
func (s Subscription) Validate() error {
	var missing []string
	if s.Object == "" {
		missing = append(missing, "object")
	}
	if s.CallbackURL == "" {
		missing = append(missing, "callback_url")
	}
	if len(s.Fields) == 0 {
		missing = append(missing, "fields")
	}
	if s.VerifyToken == "" {
		missing = append(missing, "verify_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("subscription missing: %s", strings.Join(missing, ", "))
	}

	u, err := url.Parse(s.CallbackURL)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("callback_url must be an absolute https URL: %s", s.CallbackURL)
	}
	return nil
}

// ActiveSubscription is a registration reported by the Graph API
type ActiveSubscription struct {
	Object      string  `json:"object"`
	CallbackURL string  `json:"callback_url"`
	Active      bool    `json:"active"`
	Fields      []Field `json:"fields"`
}

// Field is a subscribed field and the API version it was registered with
type Field struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// APIError is the error envelope returned by the Graph API
type APIError struct {
	StatusCode int    `json:"-"`
	Message    string `json:"message"`
	Type       string `json:"type"`
	Code       int    `json:"code"`
	TraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("graph api: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("graph api: HTTP %d: %s (type=%s code=%d)", e.StatusCode, e.Message, e.Type, e.Code)
}

// Client talks to the Graph API subscriptions edge
type Client struct {
	httpClient *http.Client
	baseURL    string
	version    string
}

// Option customizes a Client
type Option func(*Client)

// WithBaseURL overrides the Graph API host
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAPIVersion overrides the Graph API version path segment
func WithAPIVersion(version string) Option {
	return func(c *Client) {
		c.version = version
	}
}

// AppAccessToken builds the "{app-id}|{app-secret}" app token the
// subscriptions edge accepts
func AppAccessToken(appID, appSecret string) string {
	return appID + "|" + appSecret
}

// NewClient creates an authenticated Graph API client
func NewClient(ctx context.Context, accessToken string, opts ...Option) (*Client, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: accessToken},
	)

	c := &Client{
		httpClient: oauth2.NewClient(ctx, ts),
		baseURL:    DefaultBaseURL,
		version:    DefaultAPIVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) subscriptionsURL(appID string) string {
	return fmt.Sprintf("%s/%s/%s/subscriptions", c.baseURL, c.version, url.PathEscape(appID))
}

// Subscribe creates or updates the webhook subscription for appID
func (c *Client) Subscribe(ctx context.Context, appID string, sub Subscription) error {
	if appID == "" {
		return fmt.Errorf("app id is required")
	}
	if err := sub.Validate(); err != nil {
		return err
	}

	form, err := query.Values(sub)
	if err != nil {
		return fmt.Errorf("encoding subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.subscriptionsURL(appID), strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var result struct {
		Success bool `json:"success"`
	}
	if err := c.do(req, &result); err != nil {
		return err
	}
	if !result.Success {
		return fmt.Errorf("graph api: subscription not acknowledged")
	}
	return nil
}

// List returns the subscriptions registered for appID
func (c *Client) List(ctx context.Context, appID string) ([]ActiveSubscription, error) {
	if appID == "" {
		return nil, fmt.Errorf("app id is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.subscriptionsURL(appID), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	var result struct {
		Data []ActiveSubscription `json:"data"`
	}
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("calling graph api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading graph api response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		apiErr := &APIError{}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			apiErr = envelope.Error
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding graph api response: %w", err)
	}
	return nil
}
