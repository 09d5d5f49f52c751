package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aashari/go-content-dashboard/internal/apiclient"
	apperrors "github.com/aashari/go-content-dashboard/internal/errors"
	"github.com/aashari/go-content-dashboard/internal/logger"
	"github.com/aashari/go-content-dashboard/internal/types"
	"github.com/aashari/go-content-dashboard/internal/utils"
)

// DefaultBaseURL is the path prefix of the dashboard API
const DefaultBaseURL = "/api"

// MsgCallFailed is reported when an envelope says success:false without an error
const MsgCallFailed = "API call failed"

// Config selects where and how the facade talks to the dashboard API
type Config struct {
	BaseURL           string
	UseCircuitBreaker bool
}

// Identity is forwarded on every call so the server can resolve a session
type Identity struct {
	UserID string
	Email  string
}

// Client is a typed facade over the dashboard REST API
type Client struct {
	Content  *ContentService
	Auth     *AuthService
	User     *UserService
	Settings *SettingsService

	exec     *apiclient.Executor
	log      *logger.Logger
	baseURL  string
	breaker  bool
	identity Identity
}

// Option configures a Client
type Option func(*Client)

// WithLogger overrides the logger used for failed calls
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithIdentity attaches the caller's session identity to every request
func WithIdentity(id Identity) Option {
	return func(c *Client) { c.identity = id }
}

// New builds a facade that issues every call through exec
func New(exec *apiclient.Executor, cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}

	c := &Client{
		exec:    exec,
		log:     logger.Default(),
		baseURL: base,
		breaker: cfg.UseCircuitBreaker,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.Content = &ContentService{c: c}
	c.Auth = &AuthService{c: c}
	c.User = &UserService{c: c}
	c.Settings = &SettingsService{c: c}
	return c
}

// WithIdentity returns a copy of the client that calls as id
func (c *Client) WithIdentity(id Identity) *Client {
	return New(c.exec, Config{BaseURL: c.baseURL, UseCircuitBreaker: c.breaker}, WithLogger(c.log), WithIdentity(id))
}

// BaseURL returns the prefix every endpoint path is appended to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// call issues one request and unwraps the response envelope into out
func (c *Client) call(ctx context.Context, method, endpoint string, body any, out any) error {
	target := c.baseURL + endpoint

	req := apiclient.Request{
		Method:  method,
		Headers: c.headers(),
		Body:    body,
	}
	partial := &apiclient.CallContext{
		Endpoint: endpoint,
		Method:   method,
		UserID:   c.identity.UserID,
	}

	var envelope types.RawEnvelope
	var err error
	if c.breaker {
		err = c.exec.FetchWithCircuitBreaker(ctx, target, req, partial, &envelope)
	} else {
		err = c.exec.Fetch(ctx, target, req, partial, &envelope)
	}

	if err == nil {
		err = unwrap(envelope, out)
	}
	if err != nil {
		c.log.Error(ctx, fmt.Sprintf("API call failed for %s", endpoint), logger.ComponentNames.APIClient, logger.Metadata{
			"endpoint": endpoint,
			"method":   method,
		}, err)
		return err
	}
	return nil
}

func (c *Client) headers() map[string]string {
	h := map[string]string{}
	if c.identity.UserID != "" {
		h[utils.HeaderUserID] = c.identity.UserID
	}
	if c.identity.Email != "" {
		h[utils.HeaderUserEmail] = c.identity.Email
	}
	return h
}

func unwrap(envelope types.RawEnvelope, out any) error {
	if !envelope.Success {
		message := envelope.Error
		if message == "" {
			message = MsgCallFailed
		}
		return apperrors.New(message, http.StatusInternalServerError, false, nil)
	}
	if out == nil || len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return apperrors.New(fmt.Sprintf("failed to decode response data: %v", err), http.StatusInternalServerError, false, nil)
	}
	return nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
