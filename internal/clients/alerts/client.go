// Package alerts is a lightweight client for the prisoner alerts API.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/availability"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Client talks to the alerts API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	logger     *logging.Logger
}

var _ availability.AlertSource = (*Client)(nil)

// NewClient creates an alerts API client.
func NewClient(baseURL, authToken string, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		authToken: authToken,
		logger:    logger.Component("alerts-api"),
	}
}

type alertsPageDTO struct {
	Content []struct {
		AlertCode struct {
			Code string `json:"code"`
		} `json:"alertCode"`
		Active bool `json:"active"`
	} `json:"content"`
}

// ActiveAlertCodes returns the codes of the prisoner's active alerts. An
// unknown prisoner maps to NotFound.
func (c *Client) ActiveAlertCodes(ctx context.Context, prisonerID string) availability.Lookup[[]string] {
	path := "/prisoners/" + url.PathEscape(prisonerID) + "/alerts?activeOnly=true"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return availability.Failed[[]string](fmt.Errorf("alerts: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return availability.Failed[[]string](fmt.Errorf("alerts: %s: %w", path, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return availability.NotFound[[]string]()
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return availability.Failed[[]string](fmt.Errorf("alerts: %s: status %d: %s", path, resp.StatusCode, snippet))
	}

	var dto alertsPageDTO
	if err := json.NewDecoder(resp.Body).Decode(&dto); err != nil {
		return availability.Failed[[]string](fmt.Errorf("alerts: %s: decode: %w", path, err))
	}

	codes := make([]string, 0, len(dto.Content))
	for _, a := range dto.Content {
		if a.Active {
			codes = append(codes, a.AlertCode.Code)
		}
	}
	return availability.Found(codes)
}
