// Package visitscheduler is a lightweight client for the visit scheduler API:
// session availability, prison booking policy, exclusion dates, and the
// booking write-path delegation calls.
package visitscheduler

import (
	"bytes"
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

// Client talks to the visit scheduler.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	logger     *logging.Logger
}

var _ availability.SessionSource = (*Client)(nil)
var _ availability.PrisonSource = (*Client)(nil)
var _ availability.ExclusionSource = (*Client)(nil)

// NewClient creates a visit scheduler client.
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
		logger:    logger.Component("visit-scheduler"),
	}
}

type sessionDTO struct {
	SessionTemplateReference string `json:"sessionTemplateReference"`
	SessionDate              string `json:"sessionDate"`
	SessionTimeSlot          struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
	} `json:"sessionTimeSlot"`
	SessionRestriction string `json:"sessionRestriction"`
}

// CandidateSessions returns the raw candidate slots for a prison over a date
// window under a restriction. A 404 means the scheduler has no template
// coverage for the window and maps to NotFound.
func (c *Client) CandidateSessions(ctx context.Context, prisonCode string, window availability.DateRange, restriction availability.Restriction) availability.Lookup[[]availability.SessionCandidate] {
	q := url.Values{}
	q.Set("prisonId", prisonCode)
	q.Set("fromDate", window.From.Format(time.DateOnly))
	q.Set("toDate", window.To.Format(time.DateOnly))
	q.Set("sessionRestriction", string(restriction))

	var dtos []sessionDTO
	status, err := c.get(ctx, "/visit-sessions/available?"+q.Encode(), &dtos)
	if err != nil {
		return availability.Failed[[]availability.SessionCandidate](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[[]availability.SessionCandidate]()
	}

	out := make([]availability.SessionCandidate, 0, len(dtos))
	for _, dto := range dtos {
		candidate, err := dto.toCandidate()
		if err != nil {
			return availability.Failed[[]availability.SessionCandidate](fmt.Errorf("visitscheduler: malformed session %q: %w", dto.SessionTemplateReference, err))
		}
		out = append(out, candidate)
	}
	return availability.Found(out)
}

func (dto sessionDTO) toCandidate() (availability.SessionCandidate, error) {
	date, err := time.Parse(time.DateOnly, dto.SessionDate)
	if err != nil {
		return availability.SessionCandidate{}, err
	}
	start, err := clockOn(date, dto.SessionTimeSlot.StartTime)
	if err != nil {
		return availability.SessionCandidate{}, err
	}
	end, err := clockOn(date, dto.SessionTimeSlot.EndTime)
	if err != nil {
		return availability.SessionCandidate{}, err
	}
	restriction, ok := availability.ParseRestriction(dto.SessionRestriction)
	if !ok {
		return availability.SessionCandidate{}, fmt.Errorf("unknown restriction %q", dto.SessionRestriction)
	}
	return availability.SessionCandidate{
		SessionTemplateRef: dto.SessionTemplateReference,
		Date:               date,
		Start:              start,
		End:                end,
		Restriction:        restriction,
	}, nil
}

func clockOn(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), parsed.Hour(), parsed.Minute(), 0, 0, time.UTC), nil
}

type prisonDTO struct {
	Code                string `json:"code"`
	PolicyNoticeDaysMin int    `json:"policyNoticeDaysMin"`
	PolicyNoticeDaysMax int    `json:"policyNoticeDaysMax"`
}

// Prison returns the prison's booking notice-day policy.
func (c *Client) Prison(ctx context.Context, prisonCode string) availability.Lookup[availability.Prison] {
	var dto prisonDTO
	status, err := c.get(ctx, "/admin/prisons/prison/"+url.PathEscape(prisonCode), &dto)
	if err != nil {
		return availability.Failed[availability.Prison](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[availability.Prison]()
	}
	return availability.Found(availability.Prison{
		Code:                dto.Code,
		PolicyNoticeDaysMin: dto.PolicyNoticeDaysMin,
		PolicyNoticeDaysMax: dto.PolicyNoticeDaysMax,
	})
}

type excludeDateDTO struct {
	ExcludeDate string `json:"excludeDate"`
}

// ExclusionDates returns prison-wide closure dates, optionally narrowed to a
// session template.
func (c *Client) ExclusionDates(ctx context.Context, prisonCode, sessionTemplateRef string) availability.Lookup[[]time.Time] {
	path := "/admin/prisons/prison/" + url.PathEscape(prisonCode) + "/exclude-dates"
	if sessionTemplateRef != "" {
		path += "?sessionTemplateReference=" + url.QueryEscape(sessionTemplateRef)
	}

	var dtos []excludeDateDTO
	status, err := c.get(ctx, path, &dtos)
	if err != nil {
		return availability.Failed[[]time.Time](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[[]time.Time]()
	}

	out := make([]time.Time, 0, len(dtos))
	for _, dto := range dtos {
		d, err := time.Parse(time.DateOnly, dto.ExcludeDate)
		if err != nil {
			return availability.Failed[[]time.Time](fmt.Errorf("visitscheduler: malformed exclude date %q: %w", dto.ExcludeDate, err))
		}
		out = append(out, d)
	}
	return availability.Found(out)
}

// ReserveVisit forwards a visit application reservation. Pure delegation; the
// scheduler's response body is passed back untouched.
func (c *Client) ReserveVisit(ctx context.Context, body json.RawMessage) (json.RawMessage, error) {
	return c.send(ctx, http.MethodPost, "/visits/application/reserve", body)
}

// BookVisit confirms a reserved visit application.
func (c *Client) BookVisit(ctx context.Context, applicationRef string, body json.RawMessage) (json.RawMessage, error) {
	return c.send(ctx, http.MethodPut, "/visits/"+url.PathEscape(applicationRef)+"/book", body)
}

// CancelVisit cancels a booked visit.
func (c *Client) CancelVisit(ctx context.Context, reference string, body json.RawMessage) (json.RawMessage, error) {
	return c.send(ctx, http.MethodPut, "/visits/"+url.PathEscape(reference)+"/cancel", body)
}

// get performs a GET and decodes a JSON body. A 404 is reported via the
// returned status with no decode, so callers can map it to NotFound.
func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("visitscheduler: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("visitscheduler: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("visitscheduler: %s: status %d: %s", path, resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("visitscheduler: %s: decode: %w", path, err)
	}
	return resp.StatusCode, nil
}

func (c *Client) send(ctx context.Context, method, path string, body json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("visitscheduler: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("visitscheduler: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("visitscheduler: %s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("visitscheduler: %s %s: status %d: %s", method, path, resp.StatusCode, payload)
	}
	return payload, nil
}
