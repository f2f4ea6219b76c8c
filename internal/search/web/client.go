// Package web wraps the external search provider. The store only ever sees
// the ranked result list; querying strategy lives here.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/pkg/circuitbreaker"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/retry"
)

// maxResults is the provider-side ceiling; a SERP snapshot holds the top 10
// positions at most.
const maxResults = 10

// CostPerSearchUSD is the provider's flat per-query price, recorded against
// the topic whenever a snapshot is refreshed.
const CostPerSearchUSD = 0.005

type Client struct {
	apiKey     string
	region     string
	httpClient *http.Client
	cb         *circuitbreaker.CircuitBreaker
	retryCfg   retry.Config
}

func NewClient(apiKey, region string, timeout time.Duration) *Client {
	cb := circuitbreaker.New("search", circuitbreaker.Config{
		MaxRequests:      3,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Logger:           logger.GetLogger(),
	})

	return &Client{
		apiKey:     apiKey,
		region:     region,
		httpClient: &http.Client{Timeout: timeout},
		cb:         cb,
		retryCfg: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   500 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

// Search returns the ranked organic results for a query, capped at limit
// (which itself is capped at 10). Positions are 1-based in rank order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.SERPResult, error) {
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	logger.Info("Performing web search", zap.String("query", query), zap.Int("limit", limit))

	params := url.Values{}
	params.Add("q", query)
	params.Add("api_key", c.apiKey)
	params.Add("num", fmt.Sprintf("%d", limit))
	if c.region != "" {
		params.Add("gl", c.region)
	}

	var body []byte
	err := c.cb.Execute(ctx, func() error {
		return retry.Do(ctx, c.retryCfg, func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet,
				fmt.Sprintf("https://serpapi.com/search?%s", params.Encode()), nil)
			if err != nil {
				return retry.Permanent(fmt.Errorf("failed to create search request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("failed to search: %w", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
				return retry.Permanent(fmt.Errorf("search returned status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("search returned status %d", resp.StatusCode)
			}

			body, err = io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read search response: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	var searchResp struct {
		OrganicResults []struct {
			Position int    `json:"position"`
			Title    string `json:"title"`
			Link     string `json:"link"`
			Snippet  string `json:"snippet"`
		} `json:"organic_results"`
	}

	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	results := make([]models.SERPResult, 0, limit)
	for i, r := range searchResp.OrganicResults {
		if i >= limit {
			break
		}

		position := r.Position
		if position == 0 {
			position = i + 1
		}

		results = append(results, models.SERPResult{
			SearchQuery: query,
			Position:    position,
			URL:         r.Link,
			Title:       r.Title,
			Snippet:     r.Snippet,
			Domain:      domainOf(r.Link),
		})
	}

	logger.Info("Web search completed", zap.Int("results", len(results)))
	return results, nil
}

func domainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
