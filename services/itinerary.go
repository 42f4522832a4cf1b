package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/sanjigen3D/logisticaint-app-sub000/internal/telemetry"
	"github.com/sanjigen3D/logisticaint-app-sub000/mappers"
	"github.com/sanjigen3D/logisticaint-app-sub000/models"
)

var ErrAllCarriersFailed = errors.New("all carriers failed")

// RouteSource is one carrier's schedule API together with its mapper.
type RouteSource interface {
	Carrier() string
	FetchRoutes(ctx context.Context, q models.RouteQuery) ([]models.UnifiedRoute, error)
}

// Failure records why a carrier contributed no routes.
type Failure struct {
	Carrier string `json:"carrier"`
	Stage   string `json:"stage"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

const (
	stageFetch = "fetch"
	stageMap   = "map"
	stagePanic = "panic"
)

type ItineraryAggregator struct {
	sources  []RouteSource
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer

	// in-flight notifications
	wg sync.WaitGroup
}

type AggregatorOption func(*ItineraryAggregator)

func WithNotifier(n Notifier) AggregatorOption {
	return func(a *ItineraryAggregator) { a.notifier = n }
}

// WithSourceTimeout bounds each carrier call independently of the caller's context.
func WithSourceTimeout(d time.Duration) AggregatorOption {
	return func(a *ItineraryAggregator) { a.timeout = d }
}

func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *ItineraryAggregator) { a.logger = l }
}

func NewItineraryAggregator(sources []RouteSource, opts ...AggregatorOption) *ItineraryAggregator {
	a := &ItineraryAggregator{
		sources: sources,
		logger:  slog.Default(),
		tracer:  otel.Tracer("itinerary"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Sources lists the configured carriers in query order.
func (a *ItineraryAggregator) Sources() []string {
	names := make([]string, len(a.sources))
	for i, s := range a.sources {
		names[i] = s.Carrier()
	}
	return names
}

// Search is one in-flight query against every carrier.
type Search struct {
	ID    string
	Query models.RouteQuery

	carriers []string
	done     chan struct{}

	mu       sync.Mutex
	pending  int
	settled  []bool
	routes   [][]models.UnifiedRoute
	failures []*Failure
}

func newSearch(q models.RouteQuery, carriers []string) *Search {
	s := &Search{
		ID:       uuid.NewString(),
		Query:    q,
		carriers: carriers,
		done:     make(chan struct{}),
		pending:  len(carriers),
		settled:  make([]bool, len(carriers)),
		routes:   make([][]models.UnifiedRoute, len(carriers)),
		failures: make([]*Failure, len(carriers)),
	}
	if s.pending == 0 {
		close(s.done)
	}
	return s
}

// Loading reports whether any carrier is still pending.
func (s *Search) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending > 0
}

// Done is closed once every carrier has settled.
func (s *Search) Done() <-chan struct{} { return s.done }

// Wait blocks until every carrier has settled or ctx ends.
func (s *Search) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Routes returns the routes of the carriers that have succeeded so far, in
// carrier order.
func (s *Search) Routes() []models.UnifiedRoute {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.UnifiedRoute{}
	for i, r := range s.routes {
		if s.settled[i] && s.failures[i] == nil {
			out = append(out, r...)
		}
	}
	return out
}

func (s *Search) Failures() []Failure {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Failure
	for _, f := range s.failures {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// Err is ErrAllCarriersFailed once every carrier has settled with a failure,
// and nil otherwise, including while the search is still loading.
func (s *Search) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending > 0 || len(s.carriers) == 0 {
		return nil
	}
	for _, f := range s.failures {
		if f == nil {
			return nil
		}
	}
	return ErrAllCarriersFailed
}

func (s *Search) contributing() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for i, f := range s.failures {
		if s.settled[i] && f == nil {
			out = append(out, s.carriers[i])
		}
	}
	return out
}

// settle stores one carrier's outcome and reports whether it was the last.
func (s *Search) settle(i int, routes []models.UnifiedRoute, f *Failure) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settled[i] = true
	s.routes[i] = routes
	s.failures[i] = f
	s.pending--
	return s.pending == 0
}

// Start queries every carrier concurrently and returns immediately. Cancelling
// ctx aborts the in-flight carrier requests.
func (a *ItineraryAggregator) Start(ctx context.Context, q models.RouteQuery) *Search {
	s := newSearch(q, a.Sources())

	ctx, span := a.tracer.Start(ctx, "itinerary.search", trace.WithAttributes(
		attribute.String("search.id", s.ID),
		attribute.String("origin", q.OriginCode),
		attribute.String("destination", q.DestinationCode),
		attribute.Int("carriers", len(a.sources)),
	))

	if len(a.sources) == 0 {
		span.End()
		return s
	}

	for i, src := range a.sources {
		go a.run(ctx, span, s, i, src)
	}
	return s
}

// Aggregate runs a search to completion.
func (a *ItineraryAggregator) Aggregate(ctx context.Context, q models.RouteQuery) (*Search, error) {
	s := a.Start(ctx, q)
	if err := s.Wait(ctx); err != nil {
		return s, err
	}
	return s, nil
}

func (a *ItineraryAggregator) run(ctx context.Context, span trace.Span, s *Search, i int, src RouteSource) {
	carrier := src.Carrier()
	start := time.Now()

	routes, failure := a.fetch(ctx, src, s.Query)

	if failure != nil {
		telemetry.CarrierFailures.Add(ctx, 1, metric.WithAttributes(
			attribute.String("carrier", carrier),
			attribute.String("stage", failure.Stage),
		))
		a.logger.Warn("carrier dropped from search",
			"search_id", s.ID, "carrier", carrier, "stage", failure.Stage,
			"error", failure.Err, "dur", time.Since(start))
		routes = nil
	} else {
		telemetry.RoutesMapped.Add(ctx, int64(len(routes)), metric.WithAttributes(
			attribute.String("carrier", carrier),
		))
		a.logger.Debug("carrier settled",
			"search_id", s.ID, "carrier", carrier, "routes", len(routes), "dur", time.Since(start))
	}

	if s.settle(i, routes, failure) {
		n := a.finish(ctx, span, s)
		if n != nil {
			a.wg.Add(1)
		}
		close(s.done)
		if n != nil {
			go a.notify(context.WithoutCancel(ctx), *n)
		}
	}
}

// Wait blocks until every pending search notification has been delivered.
func (a *ItineraryAggregator) Wait() {
	a.wg.Wait()
}

func (a *ItineraryAggregator) notify(ctx context.Context, n Notification) {
	defer a.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("search notifier panicked", "search_id", n.SearchID, "panic", r, "stack", string(debug.Stack()))
		}
	}()

	if err := a.notifier.Notify(ctx, n); err != nil {
		a.logger.Warn("search notification failed", "search_id", n.SearchID, "error", err)
	}
}

func (a *ItineraryAggregator) fetch(ctx context.Context, src RouteSource, q models.RouteQuery) (routes []models.UnifiedRoute, failure *Failure) {
	carrier := src.Carrier()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("%s: panic: %v", carrier, r)
			a.logger.Error("carrier source panicked", "carrier", carrier, "panic", r, "stack", string(debug.Stack()))
			routes = nil
			failure = &Failure{Carrier: carrier, Stage: stagePanic, Message: err.Error(), Err: err}
		}
	}()

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	routes, err := src.FetchRoutes(ctx, q)
	if err != nil {
		stage := stageFetch
		if errors.Is(err, mappers.ErrInvalidPayload) {
			stage = stageMap
		}
		return nil, &Failure{Carrier: carrier, Stage: stage, Message: err.Error(), Err: err}
	}
	return routes, nil
}

// finish records the outcome of a settled search and returns the notification
// to send, if any.
func (a *ItineraryAggregator) finish(ctx context.Context, span trace.Span, s *Search) *Notification {
	defer span.End()

	outcome := "ok"
	kind := NotificationSearched
	failures := s.Failures()
	if err := s.Err(); err != nil {
		outcome = "all_failed"
		kind = NotificationAllFailed
		telemetry.RecordError(span, err, telemetry.ErrorTypeNetwork, true)
	} else if len(failures) > 0 {
		outcome = "partial"
	}
	telemetry.Searches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	routes := s.Routes()
	span.SetAttributes(attribute.Int("routes", len(routes)), attribute.String("outcome", outcome))
	a.logger.Info("itinerary search finished",
		"search_id", s.ID, "outcome", outcome, "routes", len(routes), "failures", len(failures))

	if a.notifier == nil {
		return nil
	}
	return &Notification{
		Kind:       kind,
		SearchID:   s.ID,
		Query:      s.Query,
		RouteCount: len(routes),
		Carriers:   s.contributing(),
		Failures:   failures,
		At:         time.Now().UTC(),
	}
}
