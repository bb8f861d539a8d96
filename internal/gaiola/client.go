// Package gaiola is the concrete site adapter for the marine-reserve
// booking site. It drives one remote browser tab over the W3C WebDriver
// wire protocol; all page knowledge (selectors, form field ids, the
// confirmation URL shape) lives here, behind the site.Adapter surface.
package gaiola

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// webElementKey is the W3C WebDriver element identifier key.
const webElementKey = "element-6066-11e4-a52e-4f735466cecf"

// Element is an opaque element reference within the current session.
type Element string

// Client is a minimal WebDriver wire client covering the handful of
// commands the adapter needs. It owns exactly one session.
type Client struct {
	hc        *http.Client
	base      string
	sessionID string
}

func NewClient(baseURL string) *Client {
	return &Client{
		hc:   &http.Client{Timeout: 30 * time.Second},
		base: baseURL,
	}
}

type wireError struct {
	Err     string `json:"error"`
	Message string `json:"message"`
}

// IsNoSuchElement reports whether err is the driver's "no such element"
// response.
func IsNoSuchElement(err error) bool {
	var ce *commandError
	return errors.As(err, &ce) && ce.code == "no such element"
}

type commandError struct {
	code    string
	message string
	status  int
}

func (e *commandError) Error() string {
	if e.message != "" {
		return fmt.Sprintf("webdriver: %s: %s", e.code, e.message)
	}
	return fmt.Sprintf("webdriver: %s (status=%d)", e.code, e.status)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	} else if method == http.MethodPost {
		// WebDriver requires a JSON body on every POST
		body = bytes.NewReader([]byte("{}"))
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var envelope struct {
			Value wireError `json:"value"`
		}
		_ = json.Unmarshal(raw, &envelope)
		return &commandError{code: envelope.Value.Err, message: envelope.Value.Message, status: resp.StatusCode}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("webdriver: decode %s %s: %w", method, path, err)
		}
	}
	return nil
}

func (c *Client) session(path string) string {
	return "/session/" + c.sessionID + path
}

// StartSession creates the browser session all later commands run in.
func (c *Client) StartSession(ctx context.Context) error {
	in := map[string]any{
		"capabilities": map[string]any{
			"alwaysMatch": map[string]any{"browserName": "firefox"},
		},
	}
	var out struct {
		Value struct {
			SessionID string `json:"sessionId"`
		} `json:"value"`
	}
	if err := c.do(ctx, http.MethodPost, "/session", in, &out); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if out.Value.SessionID == "" {
		return fmt.Errorf("start session: empty session id")
	}
	c.sessionID = out.Value.SessionID
	return nil
}

func (c *Client) DeleteSession(ctx context.Context) error {
	if c.sessionID == "" {
		return nil
	}
	err := c.do(ctx, http.MethodDelete, c.session(""), nil, nil)
	c.sessionID = ""
	return err
}

func (c *Client) Navigate(ctx context.Context, url string) error {
	return c.do(ctx, http.MethodPost, c.session("/url"), map[string]string{"url": url}, nil)
}

func (c *Client) CurrentURL(ctx context.Context) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.session("/url"), nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (c *Client) Refresh(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, c.session("/refresh"), nil, nil)
}

type findRequest struct {
	Using string `json:"using"`
	Value string `json:"value"`
}

// Find locates the first element matching the CSS selector.
func (c *Client) Find(ctx context.Context, selector string) (Element, error) {
	var out struct {
		Value map[string]string `json:"value"`
	}
	err := c.do(ctx, http.MethodPost, c.session("/element"),
		findRequest{Using: "css selector", Value: selector}, &out)
	if err != nil {
		return "", err
	}
	return Element(out.Value[webElementKey]), nil
}

// FindAll locates every element matching the CSS selector.
func (c *Client) FindAll(ctx context.Context, selector string) ([]Element, error) {
	var out struct {
		Value []map[string]string `json:"value"`
	}
	err := c.do(ctx, http.MethodPost, c.session("/elements"),
		findRequest{Using: "css selector", Value: selector}, &out)
	if err != nil {
		return nil, err
	}
	els := make([]Element, 0, len(out.Value))
	for _, v := range out.Value {
		els = append(els, Element(v[webElementKey]))
	}
	return els, nil
}

func (c *Client) Click(ctx context.Context, el Element) error {
	return c.do(ctx, http.MethodPost, c.session("/element/"+string(el)+"/click"), nil, nil)
}

func (c *Client) Text(ctx context.Context, el Element) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.session("/element/"+string(el)+"/text"), nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (c *Client) Attribute(ctx context.Context, el Element, name string) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.session("/element/"+string(el)+"/attribute/"+name), nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

func (c *Client) SendKeys(ctx context.Context, el Element, text string) error {
	return c.do(ctx, http.MethodPost, c.session("/element/"+string(el)+"/value"),
		map[string]string{"text": text}, nil)
}

// Exec runs a synchronous script. Element arguments are passed as wire
// references.
func (c *Client) Exec(ctx context.Context, script string, args ...any) error {
	wired := make([]any, len(args))
	for i, a := range args {
		if el, ok := a.(Element); ok {
			wired[i] = map[string]string{webElementKey: string(el)}
			continue
		}
		wired[i] = a
	}
	return c.do(ctx, http.MethodPost, c.session("/execute/sync"),
		map[string]any{"script": script, "args": wired}, nil)
}
