package linkedin

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talent-ranker/internal/utils"
)

const (
	contentEncoding = "gzip"
	maxLogBody      = 300
)

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad status: %s", e.Status)
}

// authenticate logs in once per client and keeps the session cookies in the jar.
func (c *Client) authenticate(ctx context.Context) error {
	c.authMu.Lock()
	defer c.authMu.Unlock()

	if c.authenticated {
		return nil
	}

	if c.credentials.Email == "" || c.credentials.Password == "" {
		return fmt.Errorf("%w: email and password are required", ErrUnauthorized)
	}

	// The first request only collects the JSESSIONID cookie.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.AuthURL, nil)
	if err != nil {
		return err
	}
	c.setAuthHeaders(req)

	resp, err := c.request(req)
	if err != nil {
		return fmt.Errorf("request session cookie: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	sessionID := c.sessionID()
	if sessionID == "" {
		return fmt.Errorf("%w: no session cookie received", ErrUnauthorized)
	}

	form := url.Values{}
	form.Set("session_key", c.credentials.Email)
	form.Set("session_password", c.credentials.Password)
	form.Set("JSESSIONID", sessionID)

	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	c.setAuthHeaders(req)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err = c.request(req)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var result struct {
		LoginResult string `json:"login_result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	if result.LoginResult != "PASS" {
		return fmt.Errorf("%w: %s", ErrUnauthorized, result.LoginResult)
	}

	c.csrfToken = c.sessionID()
	c.authenticated = true
	c.logger.Debug("authenticated to linkedin")

	return nil
}

func (c *Client) sessionID() string {
	if c.HTTPClient.Jar == nil {
		return ""
	}

	u, err := url.Parse(c.AuthURL)
	if err != nil {
		return ""
	}

	for _, cookie := range c.HTTPClient.Jar.Cookies(u) {
		if cookie.Name == "JSESSIONID" {
			return strings.Trim(cookie.Value, `"`)
		}
	}

	return ""
}

// getJSON makes an authenticated GET request to the voyager API and decodes the body into target.
func (c *Client) getJSON(ctx context.Context, path, rawQuery string, target any) error {
	if err := c.authenticate(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.APIURL+path, nil)
	if err != nil {
		return err
	}

	c.setHeaders(req)
	req.URL.RawQuery = rawQuery

	resp, err := c.request(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Debug("unexpected response",
			zap.Int("status", resp.StatusCode),
			zap.String("body", utils.TruncateForLog(string(body), maxLogBody)),
		)
		return &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	var reader io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == contentEncoding {
		gzipReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return err
		}
		defer gzipReader.Close()
		reader = gzipReader
	}

	if target == nil {
		return nil
	}

	return json.NewDecoder(reader).Decode(target)
}

func (c *Client) request(req *http.Request) (*http.Response, error) {
	c.logger.Debug("make request", zap.String("url", req.URL.Redacted()))
	return c.HTTPClient.Do(req)
}

func (c *Client) setAuthHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("X-Li-User-Agent", liUserAgent)
	req.Header.Set("X-User-Language", "en")
	req.Header.Set("X-User-Locale", "en_US")
	req.Header.Set("Accept-Language", "en-us")
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept-Encoding", contentEncoding)
	req.Header.Set("Csrf-Token", c.csrfToken)
	req.Header.Set("X-Restli-Protocol-Version", restliVersion)
}
