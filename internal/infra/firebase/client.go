// Package firebase provides adapters for the Firebase Realtime Database
// REST API and the Firebase Auth REST API. Used as the real data backend
// for transactions, categories and savings goals.
package firebase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/pinee-app/pinee-api/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("firebase")

// Client wraps HTTP calls to the Realtime Database REST API. Every node
// is addressed as <databaseURL>/<path>.json; collection reads return a
// JSON object keyed by child ID, or the literal null when the node does
// not exist.
type Client struct {
	httpClient  *http.Client
	databaseURL string
	authSecret  string
	cb          *gobreaker.CircuitBreaker
	bulkhead    *resilience.Bulkhead
	cfg         resilience.Config
	logger      *zap.Logger
}

// NewClient creates a Realtime Database client.
func NewClient(httpClient *http.Client, databaseURL, authSecret string, cb *gobreaker.CircuitBreaker, bulkhead *resilience.Bulkhead, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		databaseURL: databaseURL,
		authSecret:  authSecret,
		cb:          cb,
		bulkhead:    bulkhead,
		cfg:         cfg,
		logger:      logger,
	}
}

// nodeURL builds the REST URL for a database path, appending the auth
// secret and any extra query parameters.
func (c *Client) nodeURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.authSecret != "" {
		query.Set("auth", c.authSecret)
	}
	return fmt.Sprintf("%s/%s.json?%s", c.databaseURL, path, query.Encode())
}

// isNull reports whether a response body is the RTDB null literal,
// meaning the node holds no data. Distinct from a request failure.
func isNull(body []byte) bool {
	return len(body) == 0 || string(body) == "null"
}

// doRequest executes one request against the database. A nil body with
// a nil error means the node exists but holds no data.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	if err := c.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer c.bulkhead.Release()

	var reqBody io.Reader
	if payload != nil {
		jsonBody, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.nodeURL(path, query), reqBody)
	if err != nil {
		c.logger.Error("firebase: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("firebase: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("firebase: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("firebase: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return nil, fmt.Errorf("firebase returned status %d: %s", resp.StatusCode, string(body))
	}

	c.logger.Debug("firebase: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	if isNull(body) {
		return nil, nil
	}
	return body, nil
}

// execute runs fn under the circuit breaker and retry policy shared by
// all store methods.
func (c *Client) execute(ctx context.Context, fn func() error) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, fn)
	})
	return err
}
