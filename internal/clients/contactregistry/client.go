// Package contactregistry is a lightweight client for the prisoner contact
// registry: restriction questions about a prisoner's approved social visitors.
package contactregistry

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

// Client talks to the prisoner contact registry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	logger     *logging.Logger
}

var _ availability.VisitorRestrictionSource = (*Client)(nil)

// NewClient creates a contact registry client.
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
		logger:    logger.Component("contact-registry"),
	}
}

type closedRestrictionDTO struct {
	ClosedRestriction bool `json:"closedRestriction"`
}

// HaveClosedRestriction reports whether any supplied visitor has an active
// closed-type restriction.
func (c *Client) HaveClosedRestriction(ctx context.Context, prisonerID string, visitorIDs []string) availability.Lookup[bool] {
	if len(visitorIDs) == 0 {
		return availability.Found(false)
	}
	q := url.Values{}
	q.Set("visitors", strings.Join(visitorIDs, ","))
	path := "/prisoners/" + url.PathEscape(prisonerID) + "/contacts/social/approved/restrictions/closed?" + q.Encode()

	var dto closedRestrictionDTO
	status, err := c.get(ctx, path, &dto)
	if err != nil {
		return availability.Failed[bool](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[bool]()
	}
	return availability.Found(dto.ClosedRestriction)
}

type reviewRestrictionDTO struct {
	ReviewRestriction bool `json:"reviewRestriction"`
}

// HaveReviewRestriction reports whether any supplied visitor has an active
// restriction of one of the given types.
func (c *Client) HaveReviewRestriction(ctx context.Context, prisonerID string, visitorIDs, restrictionTypes []string) availability.Lookup[bool] {
	if len(visitorIDs) == 0 || len(restrictionTypes) == 0 {
		return availability.Found(false)
	}
	q := url.Values{}
	q.Set("visitors", strings.Join(visitorIDs, ","))
	q.Set("restrictionTypes", strings.Join(restrictionTypes, ","))
	path := "/prisoners/" + url.PathEscape(prisonerID) + "/contacts/social/approved/restrictions/review?" + q.Encode()

	var dto reviewRestrictionDTO
	status, err := c.get(ctx, path, &dto)
	if err != nil {
		return availability.Failed[bool](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[bool]()
	}
	return availability.Found(dto.ReviewRestriction)
}

type dateRangeDTO struct {
	FromDate string `json:"fromDate"`
	ToDate   string `json:"toDate"`
}

// BannedRangeIntersection asks the registry for the tightest sub-range of
// window still bookable given any visitor BAN restrictions. A 404 means no
// ban constrains the window and maps to NotFound.
func (c *Client) BannedRangeIntersection(ctx context.Context, prisonerID string, visitorIDs []string, window availability.DateRange) availability.Lookup[availability.DateRange] {
	if len(visitorIDs) == 0 {
		return availability.NotFound[availability.DateRange]()
	}
	q := url.Values{}
	q.Set("visitors", strings.Join(visitorIDs, ","))
	q.Set("fromDate", window.From.Format(time.DateOnly))
	q.Set("toDate", window.To.Format(time.DateOnly))
	path := "/prisoners/" + url.PathEscape(prisonerID) + "/contacts/social/approved/restrictions/banned/dateRange?" + q.Encode()

	var dto dateRangeDTO
	status, err := c.get(ctx, path, &dto)
	if err != nil {
		return availability.Failed[availability.DateRange](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[availability.DateRange]()
	}

	from, err := time.Parse(time.DateOnly, dto.FromDate)
	if err != nil {
		return availability.Failed[availability.DateRange](fmt.Errorf("contactregistry: malformed fromDate %q: %w", dto.FromDate, err))
	}
	to, err := time.Parse(time.DateOnly, dto.ToDate)
	if err != nil {
		return availability.Failed[availability.DateRange](fmt.Errorf("contactregistry: malformed toDate %q: %w", dto.ToDate, err))
	}
	return availability.Found(availability.DateRange{From: from, To: to})
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("contactregistry: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("contactregistry: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("contactregistry: %s: status %d: %s", path, resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("contactregistry: %s: decode: %w", path, err)
	}
	return resp.StatusCode, nil
}
