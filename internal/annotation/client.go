// Package annotation fetches gene metadata from an Ensembl-style REST
// service, with rate limiting, a circuit breaker and layered caching.
package annotation

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/mendel-inheritance-server/internal/domain"
)

// geneLookupResponse is the JSON shape of the symbol lookup endpoint.
type geneLookupResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"display_name"`
	Description   string `json:"description"`
	Biotype       string `json:"biotype"`
	SeqRegionName string `json:"seq_region_name"`
	Start         int64  `json:"start"`
	End           int64  `json:"end"`
}

// Client queries the remote annotation service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	rateLimit  *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *logrus.Logger
}

// NewClient creates an annotation client from configuration, filling in
// sensible defaults for zero values.
func NewClient(cfg domain.AnnotationConfig, logger *logrus.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://rest.ensembl.org"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 10
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "GeneAnnotation",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		rateLimit: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		breaker:   breaker,
		logger:    logger,
	}
}

// Lookup fetches the annotation for a gene symbol. An unknown symbol returns
// domain.ErrNotFound.
func (c *Client) Lookup(ctx context.Context, symbol string) (*domain.GeneAnnotation, error) {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("gene symbol cannot be empty")
	}

	if err := c.rateLimit.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait failed: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.lookupSymbol(ctx, symbol)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("annotation service unavailable (circuit breaker open)")
		}
		return nil, err
	}
	return result.(*domain.GeneAnnotation), nil
}

func (c *Client) lookupSymbol(ctx context.Context, symbol string) (*domain.GeneAnnotation, error) {
	lookupURL := fmt.Sprintf("%s/lookup/symbol/homo_sapiens/%s", c.baseURL, symbol)

	req, err := http.NewRequestWithContext(ctx, "GET", lookupURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mendel-Inheritance-Server/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("gene symbol %s: %w", symbol, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("annotation lookup for %s returned %d: %s", symbol, resp.StatusCode, string(body))
	}

	var payload geneLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode annotation response: %w", err)
	}

	return &domain.GeneAnnotation{
		Symbol:      symbol,
		EnsemblID:   payload.ID,
		Description: payload.Description,
		Biotype:     payload.Biotype,
		Chromosome:  domain.NormalizeChromosome(payload.SeqRegionName),
		Start:       payload.Start,
		End:         payload.End,
		FetchedAt:   time.Now().UTC(),
	}, nil
}
