// Package prisonapi is a lightweight client for the prison API endpoints the
// availability engine depends on: offender restrictions and scheduled events.
package prisonapi

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

const (
	defaultTimeout = 20 * time.Second

	closedRestrictionType = "CLOSED"

	eventTimeLayout = "2006-01-02T15:04:05"
)

// Client talks to the prison API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
	logger     *logging.Logger
}

var _ availability.PrisonerRestrictionSource = (*Client)(nil)
var _ availability.AppointmentSource = (*Client)(nil)

// NewClient creates a prison API client.
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
		logger:    logger.Component("prison-api"),
	}
}

type offenderRestrictionsDTO struct {
	BookingID            int64 `json:"bookingId"`
	OffenderRestrictions []struct {
		RestrictionType string `json:"restrictionType"`
		Active          bool   `json:"active"`
	} `json:"offenderRestrictions"`
}

// HasClosedRestriction reports whether the prisoner has an active CLOSED
// visiting restriction. An unknown prisoner maps to NotFound; absence of
// restriction data means "no restriction found", never CLOSED.
func (c *Client) HasClosedRestriction(ctx context.Context, prisonerID string) availability.Lookup[bool] {
	path := "/api/offenders/" + url.PathEscape(prisonerID) + "/offender-restrictions?activeRestrictionsOnly=true"

	var dto offenderRestrictionsDTO
	status, err := c.get(ctx, path, &dto)
	if err != nil {
		return availability.Failed[bool](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[bool]()
	}

	for _, r := range dto.OffenderRestrictions {
		if r.Active && r.RestrictionType == closedRestrictionType {
			return availability.Found(true)
		}
	}
	return availability.Found(false)
}

type scheduledEventDTO struct {
	EventID      int64  `json:"eventId"`
	EventType    string `json:"eventType"`
	EventSubType string `json:"eventSubType"`
	EventDate    string `json:"eventDate"`
	StartTime    string `json:"startTime"`
	EndTime      string `json:"endTime"`
}

// ScheduledEvents returns the prisoner's scheduled events over a date window.
// Events with no recorded start/end keep zero times, which the engine widens
// to the whole day.
func (c *Client) ScheduledEvents(ctx context.Context, prisonerID string, window availability.DateRange) availability.Lookup[[]availability.AppointmentEvent] {
	q := url.Values{}
	q.Set("fromDate", window.From.Format(time.DateOnly))
	q.Set("toDate", window.To.Format(time.DateOnly))
	path := "/api/offenders/" + url.PathEscape(prisonerID) + "/scheduled-events?" + q.Encode()

	var dtos []scheduledEventDTO
	status, err := c.get(ctx, path, &dtos)
	if err != nil {
		return availability.Failed[[]availability.AppointmentEvent](err)
	}
	if status == http.StatusNotFound {
		return availability.NotFound[[]availability.AppointmentEvent]()
	}

	out := make([]availability.AppointmentEvent, 0, len(dtos))
	for _, dto := range dtos {
		event, err := dto.toEvent()
		if err != nil {
			return availability.Failed[[]availability.AppointmentEvent](fmt.Errorf("prisonapi: malformed event %d: %w", dto.EventID, err))
		}
		out = append(out, event)
	}
	return availability.Found(out)
}

func (dto scheduledEventDTO) toEvent() (availability.AppointmentEvent, error) {
	date, err := time.Parse(time.DateOnly, dto.EventDate)
	if err != nil {
		return availability.AppointmentEvent{}, err
	}
	event := availability.AppointmentEvent{
		EventID:      dto.EventID,
		EventType:    dto.EventType,
		EventSubType: dto.EventSubType,
		Date:         date,
	}
	if dto.StartTime != "" {
		if event.Start, err = time.Parse(eventTimeLayout, dto.StartTime); err != nil {
			return availability.AppointmentEvent{}, err
		}
		event.Start = event.Start.UTC()
	}
	if dto.EndTime != "" {
		if event.End, err = time.Parse(eventTimeLayout, dto.EndTime); err != nil {
			return availability.AppointmentEvent{}, err
		}
		event.End = event.End.UTC()
	}
	return event, nil
}

func (c *Client) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("prisonapi: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("prisonapi: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return resp.StatusCode, nil
	}
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, fmt.Errorf("prisonapi: %s: status %d: %s", path, resp.StatusCode, snippet)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("prisonapi: %s: decode: %w", path, err)
	}
	return resp.StatusCode, nil
}
