package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/michaelklishin/rabbitmq-http-api-go/internal/logger"
)

// pathOf percent-encodes every segment, so that the default virtual host
// "/" becomes "%2F".
func pathOf(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	return strings.Join(escaped, "/")
}

func (c *Client) get(ctx context.Context, path string, query url.Values, accept ...int) (*http.Response, error) {
	return c.sendRequest(ctx, http.MethodGet, path, query, nil, accept...)
}

func (c *Client) put(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := jsonEncode(body)
	if err != nil {
		return nil, err
	}
	return c.sendRequest(ctx, http.MethodPut, path, nil, data)
}

func (c *Client) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := jsonEncode(body)
	if err != nil {
		return nil, err
	}
	return c.sendRequest(ctx, http.MethodPost, path, nil, data)
}

func (c *Client) postRaw(ctx context.Context, path string, body []byte) (*http.Response, error) {
	return c.sendRequest(ctx, http.MethodPost, path, nil, body)
}

func (c *Client) delete(ctx context.Context, path string, accept ...int) (*http.Response, error) {
	return c.sendRequest(ctx, http.MethodDelete, path, nil, nil, accept...)
}

// deleteResource deletes path. When idempotently is set a 404 is not an error.
func (c *Client) deleteResource(ctx context.Context, path string, idempotently bool) error {
	var accept []int
	if idempotently {
		accept = []int{http.StatusNotFound}
	}
	resp, err := c.delete(ctx, path, accept...)
	defer ensureReaderClosed(resp)
	return err
}

// getJSON fetches path and decodes the response body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.get(ctx, path, query)
	defer ensureReaderClosed(resp)
	if err != nil {
		return err
	}
	return decodeJSON(resp, out)
}

// putJSON is the common "declare a resource" request, the response body is discarded.
func (c *Client) putJSON(ctx context.Context, path string, body any) error {
	resp, err := c.put(ctx, path, body)
	defer ensureReaderClosed(resp)
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body any) error {
	resp, err := c.post(ctx, path, body)
	defer ensureReaderClosed(resp)
	return err
}

func (c *Client) buildRequest(ctx context.Context, method, path string, query url.Values, body []byte) (*http.Request, error) {
	target := c.endpoint.String() + "/" + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, r)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

// sendRequest performs a request, retrying transport errors and 502, 503
// and 504 responses according to the retry settings. Statuses listed in
// accept are returned without an error and are never retried.
func (c *Client) sendRequest(ctx context.Context, method, path string, query url.Values, body []byte, accept ...int) (*http.Response, error) {
	attempt := func() (*http.Response, error) {
		req, err := c.buildRequest(ctx, method, path, query, body)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			// do not decorate context errors, callers compare against them
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, backoff.Permanent(err)
			}
			return nil, &RequestError{Method: method, URL: req.URL.String(), Err: err}
		}
		if slices.Contains(accept, resp.StatusCode) {
			return resp, nil
		}
		if err := checkResponseErr(resp); err != nil {
			ensureReaderClosed(resp)
			if isRetryableStatus(resp.StatusCode) {
				return nil, err
			}
			return nil, backoff.Permanent(err)
		}
		return resp, nil
	}

	if c.retry.MaxAttempts <= 1 {
		resp, err := attempt()
		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			err = permanent.Unwrap()
		}
		return resp, err
	}
	return backoff.Retry(ctx, attempt,
		backoff.WithBackOff(backoff.NewConstantBackOff(c.retry.Delay)),
		backoff.WithMaxTries(c.retry.MaxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("retrying request", "method", method, "path", path, "err", err, "in", next)
		}),
	)
}

func isRetryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

const maxErrorBodySize = 1 * 1024 * 1024 // 1 MiB

func checkResponseErr(resp *http.Response) error {
	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusBadRequest {
		return nil
	}

	re := &ResponseError{StatusCode: resp.StatusCode}
	if resp.Request != nil {
		re.URL = resp.Request.URL.String()
	}
	if resp.Body != nil {
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		if err != nil {
			return fmt.Errorf("error reading response of %d: %w", resp.StatusCode, err)
		}
		re.Body = string(body)
		// plain text and HTML bodies from proxies leave the details blank
		_ = re.Details.UnmarshalJSON(body)
	}
	logger.Debug("API responded with an error", "status", resp.StatusCode, "url", re.URL, "body", re.Body)
	return re
}

func decodeJSON(resp *http.Response, out any) error {
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func jsonEncode(data any) ([]byte, error) {
	if data == nil {
		return nil, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request body: %w", err)
	}
	return b, nil
}

func ensureReaderClosed(resp *http.Response) {
	if resp != nil && resp.Body != nil {
		// drain up to 512 bytes so the transport can reuse the connection
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
		_ = resp.Body.Close()
	}
}

// loggingTransport logs requests at debug level.
type loggingTransport struct {
	next http.RoundTripper
}

func (t loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		logger.Debug("HTTP request failed", "method", req.Method, "url", req.URL.Redacted(), "err", err)
		return nil, err
	}
	logger.Debug("HTTP request", "method", req.Method, "url", req.URL.Redacted(),
		"status", resp.StatusCode, "duration", time.Since(start))
	return resp, nil
}
