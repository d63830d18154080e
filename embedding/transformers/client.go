// Package transformers provides an embedding.Embedder backed by a
// transformers-style remote inference service. The service exposes a batched
// vectorization endpoint and a readiness probe; this client keeps the wire
// contract thin so any compatible inference container can serve it.
package transformers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/viant/neuromap/embedding"
)

// Client talks to a remote embedding service. It implements
// embedding.Embedder.
type Client struct {
	origin     string
	httpClient *http.Client
	logger     logrus.FieldLogger
	ready      atomic.Bool
}

// New creates a client for the service at origin, e.g.
// "http://localhost:8080".
func New(origin string, logger logrus.FieldLogger) *Client {
	return &Client{
		origin:     origin,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type vecRequest struct {
	Texts []string `json:"texts"`
}

type vecResponse struct {
	Vectors [][]float32 `json:"vectors"`
	Error   string      `json:"error"`
}

// Embed vectorizes texts in one batched call. The response preserves input
// order: vector i corresponds to texts[i].
func (c *Client) Embed(ctx context.Context, texts []string) ([]embedding.Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(vecRequest{Texts: texts})
	if err != nil {
		return nil, errors.Wrap(err, "marshal body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url("/vectors"), bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "create POST request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "send POST request")
	}
	defer res.Body.Close()

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response body")
	}

	var resBody vecResponse
	if err := json.Unmarshal(bodyBytes, &resBody); err != nil {
		return nil, errors.Wrap(err, "unmarshal response body")
	}

	if res.StatusCode > 399 {
		return nil, errors.Errorf("embed failed with status %d: %s", res.StatusCode, resBody.Error)
	}

	if len(resBody.Vectors) != len(texts) {
		return nil, errors.Errorf("embed returned %d vectors for %d texts", len(resBody.Vectors), len(texts))
	}

	out := make([]embedding.Vector, len(resBody.Vectors))
	for i, v := range resBody.Vectors {
		out[i] = embedding.Vector(v)
	}
	return out, nil
}

// Ready reports the last observed readiness of the remote service. It is
// cheap and safe to call on every query; the readiness flag is maintained by
// WaitForReady and by successful probes.
func (c *Client) Ready() bool {
	return c.ready.Load()
}

// WaitForReady polls the service readiness probe with exponential backoff
// until it responds, or until ctx expires.
func (c *Client) WaitForReady(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0 // rely on ctx for the deadline

	op := func() error {
		if err := c.checkReady(ctx); err != nil {
			c.logger.WithField("action", "remote_wait_for_ready").
				WithError(err).Warn("remote inference service not ready")
			return err
		}
		return nil
	}
	if err := backoff.Retry(op, backoff.WithContext(b, ctx)); err != nil {
		return errors.Wrap(err, "wait for remote inference service")
	}
	c.ready.Store(true)
	return nil
}

func (c *Client) checkReady(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/.well-known/ready"), nil)
	if err != nil {
		return errors.Wrap(err, "create readiness request")
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send readiness request")
	}
	defer res.Body.Close()
	if res.StatusCode > 299 {
		return errors.Errorf("readiness probe returned status %d", res.StatusCode)
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.origin + path
}

var _ embedding.Embedder = (*Client)(nil)
