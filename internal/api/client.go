package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

const DefaultBaseURL = "http://localhost:5000/api"

// Error is the structured error every failed request maps to.
//
// Status 0 means no response reached the client at all (network failure,
// timeout, cancellation). Any other status is the server's HTTP status with
// the server-provided message when one was present.
type Error struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func IsNetworkFailure(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == 0
}

func IsUnauthorized(err error) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Status == http.StatusUnauthorized
}

// Client talks to the crewdeck service. Authentication is session-cookie
// based, so the client owns a cookie jar; callers never see tokens.
type Client struct {
	baseURL string
	http    *http.Client
}

func BaseURLFromEnv() string {
	if v := strings.TrimSpace(os.Getenv("CREWDECK_API_URL")); v != "" {
		return v
	}
	return DefaultBaseURL
}

func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	// cookiejar.New never fails with nil options.
	jar, _ := cookiejar.New(nil)
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout: 15 * time.Second,
			Jar:     jar,
		},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the `{"data": ...}` wrapper every success response uses and the
// `{"message": ...}` shape error responses use.
type envelope struct {
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// do issues one request and decodes the success envelope into out (out may be
// nil when the caller only cares about success). All failures are returned as
// *Error.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return &Error{Status: 0, Message: fmt.Sprintf("encode request: %v", err)}
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return &Error{Status: 0, Message: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Status: 0, Message: "network error: no response from server"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: 0, Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := "request failed"
		var env envelope
		if json.Unmarshal(raw, &env) == nil && strings.TrimSpace(env.Message) != "" {
			msg = env.Message
		}
		return &Error{Status: resp.StatusCode, Message: msg, Data: raw}
	}

	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	if len(env.Data) == 0 {
		return &Error{Status: resp.StatusCode, Message: "response missing data"}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: fmt.Sprintf("decode response data: %v", err)}
	}
	return nil
}
