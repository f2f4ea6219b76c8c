// Package fetch retrieves reference pages for ingestion. It is the only
// component that talks to arbitrary external sites, so it carries the
// retry policy and circuit breaker rather than the store.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/pkg/circuitbreaker"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/retry"
)

// maxBodyBytes caps how much of a page is read; reference articles rarely
// exceed this and runaway downloads stall the ingest worker.
const maxBodyBytes = 5 << 20

type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	cb         *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
	detector   lingua.LanguageDetector
}

func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.English, lingua.Spanish, lingua.German, lingua.French, lingua.Portuguese).
		Build()

	cb := circuitbreaker.New("fetcher", circuitbreaker.Config{
		MaxRequests:      5,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 8,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
		cb:         cb,
		retryCfg: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   300 * time.Millisecond,
			MaxDelay:       3 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
		detector: detector,
	}
}

// Fetch downloads the raw markup of a page. Network and timeout errors
// propagate after the retry budget is exhausted.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	var body string

	err := f.cb.Execute(ctx, func() error {
		return retry.Do(ctx, f.retryCfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return fmt.Errorf("failed to create request: %w", err)
			}
			req.Header.Set("User-Agent", f.userAgent)
			req.Header.Set("Accept", "text/html,application/xhtml+xml")

			resp, err := f.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", url, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("fetch of %s returned status %d", url, resp.StatusCode)
			}

			data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			if err != nil {
				return fmt.Errorf("failed to read response body: %w", err)
			}

			body = string(data)
			return nil
		})
	})

	if err != nil {
		return "", err
	}

	logger.Debug("Page fetched", zap.String("url", url), zap.Int("bytes", len(body)))
	return body, nil
}

// DetectLanguage returns the ISO 639-1 code of the dominant language, or ""
// when detection is not confident.
func (f *Fetcher) DetectLanguage(text string) string {
	if len(text) > 2000 {
		text = text[:2000]
	}

	language, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
