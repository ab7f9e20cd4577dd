package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/internal/observability/metrics"
	"github.com/ministryofjustice/hmpps-manage-prison-visits-orchestration-sub001/pkg/logging"
)

var availabilityTracer = otel.Tracer("visits.internal.availability")

// ErrCollaborator marks a mandatory collaborator failure. Handlers map it to
// an upstream-failure status.
var ErrCollaborator = errors.New("availability: collaborator failure")

// ErrInvalidRequest marks a request missing required identifiers.
var ErrInvalidRequest = errors.New("availability: invalid request")

// Deps wires the collaborators the availability service fans out to.
type Deps struct {
	Sessions     SessionSource
	Prisons      PrisonSource
	Restrictions PrisonerRestrictionSource
	Visitors     VisitorRestrictionSource
	Appointments AppointmentSource
	Exclusions   ExclusionSource
	Holidays     HolidaySource
	Review       ReviewSignalSource
}

// Policy carries the operational knobs of the availability computation.
type Policy struct {
	HigherPrioritySubTypes  []string
	ReviewHolidayBufferDays int
	CollaboratorTimeout     time.Duration
}

// Service composes the restriction, range, and filtering stages over raw
// candidate slots. It holds no per-request state; every computation is built
// fresh from collaborator responses.
type Service struct {
	deps     Deps
	policy   Policy
	subTypes map[string]struct{}
	now      func() time.Time
	logger   *logging.Logger
	metrics  *metrics.AvailabilityMetrics
}

// NewService constructs the availability service.
func NewService(deps Deps, policy Policy, logger *logging.Logger, m *metrics.AvailabilityMetrics) *Service {
	if deps.Sessions == nil {
		panic("availability: session source required")
	}
	if deps.Prisons == nil {
		panic("availability: prison source required")
	}
	if deps.Restrictions == nil {
		panic("availability: prisoner restriction source required")
	}
	if deps.Visitors == nil {
		panic("availability: visitor restriction source required")
	}
	if deps.Appointments == nil {
		panic("availability: appointment source required")
	}
	if deps.Exclusions == nil {
		panic("availability: exclusion source required")
	}
	if deps.Holidays == nil {
		panic("availability: holiday source required")
	}
	if deps.Review == nil {
		panic("availability: review signal source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if policy.CollaboratorTimeout <= 0 {
		policy.CollaboratorTimeout = 10 * time.Second
	}
	subTypes := make(map[string]struct{}, len(policy.HigherPrioritySubTypes))
	for _, st := range policy.HigherPrioritySubTypes {
		subTypes[st] = struct{}{}
	}
	return &Service{
		deps:     deps,
		policy:   policy,
		subTypes: subTypes,
		now:      time.Now,
		logger:   logger,
		metrics:  m,
	}
}

// WithClock overrides the service clock. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AvailableVisitSessions returns the ordered, deduplicated bookable slot list
// for the prisoner/visitor pairing. An empty list is a legitimate answer;
// only mandatory collaborator failures surface as errors.
func (s *Service) AvailableVisitSessions(ctx context.Context, req Request) ([]AvailableVisitSession, error) {
	if req.PrisonCode == "" || req.PrisonerID == "" {
		return nil, fmt.Errorf("%w: prison code and prisoner id required", ErrInvalidRequest)
	}

	start := time.Now()
	ctx, span := availabilityTracer.Start(ctx, "availability.sessions")
	defer span.End()
	span.SetAttributes(
		attribute.String("visits.prison_code", req.PrisonCode),
		attribute.String("visits.prisoner_id", req.PrisonerID),
		attribute.Int("visits.visitor_count", len(req.VisitorIDs)),
	)

	gathered := s.gather(ctx, req)

	if err := gathered.prison.Err(); err != nil {
		return nil, s.hardFailure(span, start, "visit-scheduler", err)
	}
	if gathered.prison.NotFound() {
		return nil, s.hardFailure(span, start, "visit-scheduler", fmt.Errorf("prison %s not registered", req.PrisonCode))
	}
	if err := gathered.prisonerClosed.Err(); err != nil {
		return nil, s.hardFailure(span, start, "prison-api", err)
	}
	if err := gathered.visitorClosed.Err(); err != nil {
		return nil, s.hardFailure(span, start, "contact-registry", err)
	}
	if err := gathered.review.Err(); err != nil {
		return nil, s.hardFailure(span, start, "review-signal", err)
	}

	holidays := gathered.holidays.ValueOr(nil)
	if err := gathered.holidays.Err(); err != nil {
		s.logger.Warn("bank holiday lookup failed, continuing without holidays", "error", err)
		s.metrics.ObserveCollaboratorFailure("gov-uk", "soft")
	}
	exclusions := gathered.exclusions.ValueOr(nil)
	if err := gathered.exclusions.Err(); err != nil {
		s.logger.Warn("exclusion date lookup failed, continuing without exclusions", "error", err)
		s.metrics.ObserveCollaboratorFailure("visit-scheduler", "soft")
	}

	restriction := ResolveRestriction(
		gathered.prisonerClosed.ValueOr(false),
		gathered.visitorClosed.ValueOr(false),
		req.Requested,
	)
	span.SetAttributes(attribute.String("visits.restriction", string(restriction)))

	window := BookableRange(gathered.prison.Value(), s.now())

	if len(req.VisitorIDs) > 0 {
		cctx, cancel := s.callCtx(ctx)
		ban := s.deps.Visitors.BannedRangeIntersection(cctx, req.PrisonerID, req.VisitorIDs, window)
		cancel()
		if err := ban.Err(); err != nil {
			return nil, s.hardFailure(span, start, "contact-registry", err)
		}
		if ban.Found() {
			constrained, ok := ConstrainRange(window, ban.Value())
			if !ok {
				s.logger.Info("visitor ban leaves no bookable window",
					"prisoner_id", req.PrisonerID,
					"from", window.From.Format(time.DateOnly),
					"to", window.To.Format(time.DateOnly),
				)
				s.metrics.ObserveRequest("empty_ban", 0, time.Since(start).Seconds())
				return []AvailableVisitSession{}, nil
			}
			window = constrained
		}
	}

	var (
		wg            sync.WaitGroup
		sessionLookup Lookup[[]SessionCandidate]
		eventLookup   Lookup[[]AppointmentEvent]
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		sessionLookup = s.deps.Sessions.CandidateSessions(cctx, req.PrisonCode, window, restriction)
	}()
	if req.AppointmentCheck {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := s.callCtx(ctx)
			defer cancel()
			eventLookup = s.deps.Appointments.ScheduledEvents(cctx, req.PrisonerID, window)
		}()
	}
	wg.Wait()

	if err := sessionLookup.Err(); err != nil {
		return nil, s.hardFailure(span, start, "visit-scheduler", err)
	}
	if sessionLookup.NotFound() {
		s.logger.Info("no session template coverage for window",
			"prison_code", req.PrisonCode,
			"from", window.From.Format(time.DateOnly),
			"to", window.To.Format(time.DateOnly),
		)
		s.metrics.ObserveRequest("empty_no_range", 0, time.Since(start).Seconds())
		return []AvailableVisitSession{}, nil
	}

	candidates := s.withinWindow(sessionLookup.Value(), window)

	if req.AppointmentCheck {
		if err := eventLookup.Err(); err != nil {
			return nil, s.hardFailure(span, start, "prison-api", err)
		}
		events := HigherPriorityEvents(eventLookup.ValueOr(nil), s.subTypes)
		var dropped int
		candidates, dropped = FilterAppointmentConflicts(candidates, events, s.logger)
		s.metrics.ObserveDropped(metrics.DropAppointmentConflict, dropped)
	}

	var exclDropped int
	candidates, exclDropped = FilterExclusionDates(candidates, exclusions, s.logger)
	s.metrics.ObserveDropped(metrics.DropExclusionDate, exclDropped)

	reviewActive := gathered.review.ValueOr(false)
	out, weekendDropped, holidayDropped := AnnotateReview(candidates, reviewActive, holidays, s.policy.ReviewHolidayBufferDays, s.logger)
	s.metrics.ObserveDropped(metrics.DropReviewWeekend, weekendDropped)
	s.metrics.ObserveDropped(metrics.DropReviewHoliday, holidayDropped)

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		return a.End.Before(b.End)
	})

	out = dedupeSessions(out)

	s.logger.Info("availability computed",
		"prison_code", req.PrisonCode,
		"prisoner_id", req.PrisonerID,
		"restriction", restriction,
		"review_active", reviewActive,
		"sessions", len(out),
	)
	s.metrics.ObserveRequest("ok", len(out), time.Since(start).Seconds())
	return out, nil
}

// collaboratorResults joins the first fan-out phase. Each goroutine writes a
// distinct field; wg.Wait establishes the happens-before edge.
type collaboratorResults struct {
	prison         Lookup[Prison]
	prisonerClosed Lookup[bool]
	visitorClosed  Lookup[bool]
	review         Lookup[bool]
	holidays       Lookup[[]BankHoliday]
	exclusions     Lookup[[]time.Time]
}

func (s *Service) gather(ctx context.Context, req Request) collaboratorResults {
	var (
		res collaboratorResults
		wg  sync.WaitGroup
	)
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		res.prison = s.deps.Prisons.Prison(cctx, req.PrisonCode)
	})
	run(func() {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		res.prisonerClosed = s.deps.Restrictions.HasClosedRestriction(cctx, req.PrisonerID)
	})
	if len(req.VisitorIDs) > 0 {
		run(func() {
			cctx, cancel := s.callCtx(ctx)
			defer cancel()
			res.visitorClosed = s.deps.Visitors.HaveClosedRestriction(cctx, req.PrisonerID, req.VisitorIDs)
		})
	} else {
		res.visitorClosed = Found(false)
	}
	run(func() {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		res.review = s.deps.Review.IsReviewActive(cctx, req.PrisonerID, req.VisitorIDs)
	})
	run(func() {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		res.holidays = s.deps.Holidays.BankHolidays(cctx)
	})
	run(func() {
		cctx, cancel := s.callCtx(ctx)
		defer cancel()
		res.exclusions = s.deps.Exclusions.ExclusionDates(cctx, req.PrisonCode, "")
	})

	wg.Wait()
	return res
}

func (s *Service) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.policy.CollaboratorTimeout)
}

// withinWindow enforces the range-containment guarantee: the session source
// is only asked for the constrained window, but a stray candidate outside it
// must never be surfaced.
func (s *Service) withinWindow(candidates []SessionCandidate, window DateRange) []SessionCandidate {
	kept := make([]SessionCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !window.Contains(c.Date) {
			s.logger.Warn("session source returned candidate outside requested window",
				"session_template_ref", c.SessionTemplateRef,
				"date", DateOnly(c.Date).Format(time.DateOnly),
			)
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// dedupeSessions drops adjacent duplicates from an already-sorted list. The
// session source can repeat a slot when templates overlap.
func dedupeSessions(sessions []AvailableVisitSession) []AvailableVisitSession {
	if len(sessions) < 2 {
		return sessions
	}
	out := sessions[:1]
	for _, s := range sessions[1:] {
		prev := out[len(out)-1]
		if s.SessionTemplateRef == prev.SessionTemplateRef &&
			s.Date.Equal(prev.Date) && s.Start.Equal(prev.Start) && s.End.Equal(prev.End) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (s *Service) hardFailure(span trace.Span, start time.Time, collaborator string, err error) error {
	span.RecordError(err)
	s.metrics.ObserveCollaboratorFailure(collaborator, "hard")
	s.metrics.ObserveRequest("error", 0, time.Since(start).Seconds())
	s.logger.Error("mandatory collaborator failure", "collaborator", collaborator, "error", err)
	return fmt.Errorf("%w: %s: %w", ErrCollaborator, collaborator, err)
}
