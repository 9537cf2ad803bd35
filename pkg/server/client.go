package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/vango-dev/toastkit/internal/errors"
)

// Client talks to the REST API of a running server.
type Client struct {
	base string
	http *http.Client
}

// NewClient returns a Client for the server at base (e.g.
// "http://localhost:7300"). A nil hc uses http.DefaultClient.
func NewClient(base string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	if !strings.Contains(base, "://") {
		base = "http://" + base
	}
	return &Client{base: strings.TrimRight(base, "/"), http: hc}
}

// Show creates a toast and returns its id.
func (c *Client) Show(ctx context.Context, req ToastRequest) (string, error) {
	var out CreatedResponse
	if err := c.do(ctx, http.MethodPost, "/api/toasts", req, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// List returns the active toasts in display order.
func (c *Client) List(ctx context.Context) ([]ToastResponse, error) {
	var out []ToastResponse
	if err := c.do(ctx, http.MethodGet, "/api/toasts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clear removes every toast.
func (c *Client) Clear(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/toasts", nil, nil)
}

// Dismiss removes one toast.
func (c *Client) Dismiss(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/toasts/"+url.PathEscape(id), nil, nil)
}

// Pause stops the toast's countdown.
func (c *Client) Pause(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/toasts/"+url.PathEscape(id)+"/pause", nil, nil)
}

// Resume restarts the toast's countdown.
func (c *Client) Resume(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/toasts/"+url.PathEscape(id)+"/resume", nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError turns an error response back into a coded error when the body
// carries a registered code.
func decodeError(resp *http.Response) error {
	var body errorBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Message == "" {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	if _, ok := errors.Lookup(body.Code); ok {
		e := errors.New(body.Code)
		if body.Detail != "" {
			e.WithDetail(body.Detail)
		}
		return e
	}
	return fmt.Errorf("server returned %s: %s", resp.Status, body.Message)
}
