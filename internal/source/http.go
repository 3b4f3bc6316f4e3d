package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"conversion-insights-go/internal/logger"
	"conversion-insights-go/internal/types"
)

// HTTP reads both collections from a JSON API serving GET {base}/assessments
// and GET {base}/appointments, each returning an array of documents.
type HTTP struct {
	base       string
	client     *http.Client
	maxElapsed time.Duration
	log        *logger.Logger
}

func NewHTTP(baseURL string, timeout time.Duration, log *logger.Logger) *HTTP {
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &HTTP{
		base:       strings.TrimRight(baseURL, "/"),
		client:     &http.Client{Timeout: timeout},
		maxElapsed: 12 * time.Second,
		log:        log.Component("source.http"),
	}
}

func (s *HTTP) Assessments(ctx context.Context) ([]any, error) {
	var docs []any
	if err := s.getJSON(ctx, "/assessments", &docs); err != nil {
		return nil, unavailable("assessments", err)
	}
	return docs, nil
}

func (s *HTTP) Appointments(ctx context.Context) ([]types.Appointment, error) {
	var docs []any
	if err := s.getJSON(ctx, "/appointments", &docs); err != nil {
		return nil, unavailable("appointments", err)
	}
	return Appointments(docs), nil
}

// getJSON retries transport failures and 5xx responses; other statuses and
// undecodable bodies fail at once.
func (s *HTTP) getJSON(ctx context.Context, path string, target any) error {
	endpoint := s.base + path
	attempt := 0
	op := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.log.WithError(err).WithField("attempt", attempt).Warn("request failed")
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 500 {
			s.log.WithField("status", resp.StatusCode).WithField("attempt", attempt).Warn("server error")
			return fmt.Errorf("server error: %d %s", resp.StatusCode, body)
		}
		if resp.StatusCode >= 300 {
			return backoff.Permanent(fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body))
		}
		if err := json.Unmarshal(body, target); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", path, err))
		}
		return nil
	}
	if err := backoff.Retry(op, newBackOff(ctx, s.maxElapsed)); err != nil {
		return err
	}
	s.log.WithField("path", path).WithField("attempts", attempt).Debug("fetched")
	return nil
}
