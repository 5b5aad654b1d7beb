package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/client/models"
)

const (
	UserInfoPath = "/api/core/userinfo"
	LogoutPath   = "/api/auth/logout"

	maxBodySize = 1 << 20
)

type HTTPClient struct {
	baseURL *url.URL
	http    *http.Client
	bearer  string
}

// Option customises an HTTPClient.
type Option func(*HTTPClient)

// WithTimeout bounds every request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithSessionCookie preloads the OIDC session cookie for the server host.
func WithSessionCookie(name, value string) Option {
	return func(c *HTTPClient) {
		if name == "" || value == "" {
			return
		}
		c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{Name: name, Value: value, Path: "/"}})
	}
}

func WithBearerToken(token string) Option {
	return func(c *HTTPClient) { c.bearer = token }
}

// WithTransport replaces the base RoundTripper. Request ids and tracing are
// still layered on top.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *HTTPClient) { c.http.Transport = newTransport(rt) }
}

// NewHTTPClient builds a client for the backend at serverURL.
//
// Redirects are never followed: the logout endpoint answers with a redirect
// to a page the client serves itself, and a redirect from the userinfo
// endpoint means the session is missing.
func NewHTTPClient(serverURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("server url %q must be absolute", serverURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	c := &HTTPClient{
		baseURL: u,
		http: &http.Client{
			Jar:       jar,
			Timeout:   10 * time.Second,
			Transport: newTransport(http.DefaultTransport),
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) get(ctx context.Context, path string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL.JoinPath(path).String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return resp, nil
}

// UserInfo fetches the identity behind the current session.
//
// A JSON body and a signed application/jwt body are both accepted. 401, 403
// and redirects map to ErrUnauthorized.
func (c *HTTPClient) UserInfo(ctx context.Context) (*models.Identity, error) {
	resp, err := c.get(ctx, UserInfoPath, "application/json, application/jwt")
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return nil, ErrUnauthorized
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var id models.Identity
	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/jwt" {
		if id, err = models.ParseUnverifiedJWT(strings.TrimSpace(string(body))); err != nil {
			return nil, err
		}
	} else if err := json.Unmarshal(body, &id); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidIdentity, err)
	}

	resolved, err := models.Resolve(id)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

// Logout invalidates the backend session. The redirect the backend answers
// with is not followed; any 2xx or 3xx response counts as done.
func (c *HTTPClient) Logout(ctx context.Context) error {
	resp, err := c.get(ctx, LogoutPath, "*/*")
	if err != nil {
		return err
	}
	defer drain(resp)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
	_ = resp.Body.Close()
}
