// Package gateway is the client's only path to the backend: table reads and
// writes, photo uploads, function calls and change subscriptions.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"robinhoodarmy/internal/session"
)

const (
	defaultHttpConnectTimeout = 5 * time.Second
	defaultHttpTlsTimeout     = 5 * time.Second
)

// Filter restricts a query to rows whose columns equal the given values
type Filter map[string]string

// Order sorts query results by a column
type Order struct {
	Column     string
	Descending bool
}

// Gateway is the set of remote operations used by the repositories. Nothing
// here retries; every failure is returned to the caller.
type Gateway interface {
	Query(ctx context.Context, table string, filter Filter, order *Order, out interface{}) error
	Insert(ctx context.Context, table string, record interface{}, out interface{}) error
	Update(ctx context.Context, table, id string, patch interface{}, out interface{}) error
	UploadBinary(ctx context.Context, bucket, path, contentType string, data []byte) (string, error)
	InvokeFunction(ctx context.Context, name string, payload interface{}, out interface{}) error
	Subscribe(ctx context.Context, table, ownerID string, handler func(Change)) (*Subscription, error)
}

// Client talks to the backend over HTTP on behalf of one session
type Client struct {
	baseURL    string
	session    *session.Session
	httpClient *http.Client
}

// uploadResponse mirrors the backend upload response
type uploadResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func defaultClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout: defaultHttpConnectTimeout,
	}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		TLSHandshakeTimeout: defaultHttpTlsTimeout,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// NewClient creates a gateway for a signed-in session
func NewClient(baseURL string, s *session.Session, timeout time.Duration) (*Client, error) {
	if !s.Valid() {
		return nil, &AuthError{Message: session.ErrNoSession.Error()}
	}

	base := defaultClient(timeout)
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: s.AccessToken,
		TokenType:   "Bearer",
	}))
	httpClient.Timeout = timeout

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		session:    s,
		httpClient: httpClient,
	}, nil
}

// Session returns the session the client acts for
func (c *Client) Session() *session.Session {
	return c.session
}

// Query lists the rows of table owned by the session user that match filter
func (c *Client) Query(ctx context.Context, table string, filter Filter, order *Order, out interface{}) error {
	params := url.Values{}
	for column, value := range filter {
		params.Set(column, "eq."+value)
	}
	if order != nil {
		dir := "asc"
		if order.Descending {
			dir = "desc"
		}
		params.Set("order", order.Column+"."+dir)
	}

	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table)
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	resp, err := c.do(ctx, http.MethodGet, endpoint, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tableError(resp, table, "")
	}
	return decode(resp, out)
}

// Insert stores a new row and decodes the persisted row into out
func (c *Client) Insert(ctx context.Context, table string, record interface{}, out interface{}) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode %s record: %w", table, err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/rest/v1/"+url.PathEscape(table), "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return tableError(resp, table, "")
	}
	return decode(resp, out)
}

// Update applies a partial update and decodes the updated row into out
func (c *Client) Update(ctx context.Context, table, id string, patch interface{}, out interface{}) error {
	body, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode %s patch: %w", table, err)
	}

	endpoint := c.baseURL + "/rest/v1/" + url.PathEscape(table) + "/" + url.PathEscape(id)
	resp, err := c.do(ctx, http.MethodPatch, endpoint, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return tableError(resp, table, id)
	}
	return decode(resp, out)
}

// UploadBinary stores data in bucket under path and returns its public URL
func (c *Client) UploadBinary(ctx context.Context, bucket, path, contentType string, data []byte) (string, error) {
	endpoint := c.baseURL + "/storage/v1/object/" + url.PathEscape(bucket) + "/" + strings.TrimPrefix(path, "/")
	resp, err := c.do(ctx, http.MethodPost, endpoint, contentType, data)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", storageError(resp)
	}

	var uploaded uploadResponse
	if err := decode(resp, &uploaded); err != nil {
		return "", &StorageError{Status: resp.StatusCode, Message: err.Error()}
	}
	return uploaded.URL, nil
}

// InvokeFunction calls a backend function and decodes its result into out
func (c *Client) InvokeFunction(ctx context.Context, name string, payload interface{}, out interface{}) error {
	if payload == nil {
		payload = struct{}{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", name, err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/functions/v1/"+url.PathEscape(name), "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return functionError(resp)
	}
	return decode(resp, out)
}

func (c *Client) do(ctx context.Context, method, endpoint, contentType string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Op: method + " " + req.URL.Path, Err: err}
	}
	return resp, nil
}

func decode(resp *http.Response, out interface{}) error {
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{Status: resp.StatusCode, Message: fmt.Sprintf("invalid response body: %v", err)}
	}
	return nil
}
