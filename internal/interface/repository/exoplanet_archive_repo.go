package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"nextplanet-service/internal/domain/entity"
	"nextplanet-service/internal/domain/repository"
	"nextplanet-service/internal/infrastructure/config"
	"nextplanet-service/pkg/logger"
)

// ArchiveRowLimit caps the number of rows requested per sync
const ArchiveRowLimit = 2000

// maxErrorBody bounds how much of a failed response is kept for diagnostics
const maxErrorBody = 64 << 10

// ExoplanetQuery is the TAP query issued against the planetary systems table
var ExoplanetQuery = fmt.Sprintf(`select top %d
  pl_name, hostname, sy_dist, pl_rade, pl_bmasse, disc_year
from ps
where default_flag = 1 and sy_dist is not null
order by sy_dist asc`, ArchiveRowLimit)

// ExoplanetArchiveRepository fetches planet rows from the NASA Exoplanet Archive TAP service
type ExoplanetArchiveRepository struct {
	logger  logger.Logger
	baseURL string
	client  *http.Client
}

// NewExoplanetArchiveRepository creates a new archive repository.
// A nil client falls back to a plain client with the given timeout.
func NewExoplanetArchiveRepository(baseURL string, client *http.Client, timeout time.Duration, logger logger.Logger) (*ExoplanetArchiveRepository, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, &config.ConfigurationError{Missing: []string{"EXO_API_BASE"}}
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid EXO_API_BASE: %w", err)
	}

	if client == nil {
		client = &http.Client{}
	}
	if timeout > 0 && client.Timeout == 0 {
		client.Timeout = timeout
	}

	return &ExoplanetArchiveRepository{
		logger:  logger,
		baseURL: baseURL,
		client:  client,
	}, nil
}

var _ repository.ExoplanetArchiveRepository = (*ExoplanetArchiveRepository)(nil)

// QueryURL returns the full TAP request URL
func (r *ExoplanetArchiveRepository) QueryURL() string {
	params := url.Values{}
	params.Set("query", ExoplanetQuery)
	params.Set("format", "json")

	sep := "?"
	if strings.Contains(r.baseURL, "?") {
		sep = "&"
	}
	return r.baseURL + sep + params.Encode()
}

// FetchRows issues the TAP query and decodes the JSON array response
func (r *ExoplanetArchiveRepository) FetchRows(ctx context.Context) ([]entity.ExoplanetRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.QueryURL(), nil)
	if err != nil {
		return nil, &entity.SourceFetchError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	r.logger.Info("Fetching exoplanets from archive", "baseURL", r.baseURL, "limit", ArchiveRowLimit)

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &entity.SourceFetchError{Err: fmt.Errorf("failed to send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &entity.SourceFetchError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}

	var rows []entity.ExoplanetRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &entity.SourceFetchError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Err:        fmt.Errorf("failed to decode response: %w", err),
		}
	}

	r.logger.Info("Received exoplanet rows",
		"count", len(rows),
		"elapsed", time.Since(start).String())

	return rows, nil
}
