package service

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"airport-service/internal/auth"
	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/repository/cache"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

type Catalog interface {
	ListAirports(ctx context.Context, actor policy.Actor, f repository.AirportFilter) ([]views.Airport, error)
	GetAirport(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.Airport, error)
	CreateAirport(ctx context.Context, actor policy.Actor, in AirportInput) (views.Airport, error)
	UpdateAirport(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirportInput, partial bool) (views.Airport, error)

	ListAirplaneTypes(ctx context.Context, actor policy.Actor, f repository.AirplaneTypeFilter) ([]views.AirplaneType, error)
	GetAirplaneType(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.AirplaneType, error)
	CreateAirplaneType(ctx context.Context, actor policy.Actor, in AirplaneTypeInput) (views.AirplaneType, error)
	UpdateAirplaneType(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirplaneTypeInput, partial bool) (views.AirplaneType, error)

	ListAirplanes(ctx context.Context, actor policy.Actor, f repository.AirplaneFilter) ([]views.AirplaneList, error)
	GetAirplane(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.AirplaneDetail, error)
	CreateAirplane(ctx context.Context, actor policy.Actor, in AirplaneInput) (views.AirplaneDetail, error)
	UpdateAirplane(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirplaneInput, partial bool) (views.AirplaneDetail, error)
	UploadAirplaneImage(ctx context.Context, actor policy.Actor, id uuid.UUID, filename string, src io.Reader) (views.AirplaneDetail, error)

	ListCrew(ctx context.Context, actor policy.Actor, f repository.CrewFilter) ([]views.CrewList, error)
	GetCrew(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.Crew, error)
	CreateCrew(ctx context.Context, actor policy.Actor, in CrewInput) (views.Crew, error)
	UpdateCrew(ctx context.Context, actor policy.Actor, id uuid.UUID, in CrewInput, partial bool) (views.Crew, error)

	ListRoutes(ctx context.Context, actor policy.Actor, f repository.RouteFilter) ([]views.RouteList, error)
	GetRoute(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.RouteDetail, error)
	CreateRoute(ctx context.Context, actor policy.Actor, in RouteInput) (views.RouteDetail, error)
	UpdateRoute(ctx context.Context, actor policy.Actor, id uuid.UUID, in RouteInput, partial bool) (views.RouteDetail, error)
}

type Flights interface {
	ListFlights(ctx context.Context, actor policy.Actor, f repository.FlightFilter) ([]views.FlightList, error)
	GetFlight(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.FlightDetail, error)
	CreateFlight(ctx context.Context, actor policy.Actor, in FlightInput) (views.FlightDetail, error)
	UpdateFlight(ctx context.Context, actor policy.Actor, id uuid.UUID, in FlightInput, partial bool) (views.FlightDetail, error)
}

type Bookings interface {
	ListOrders(ctx context.Context, actor policy.Actor, f repository.OrderFilter) ([]views.OrderList, error)
	GetOrder(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.OrderDetail, error)
	CreateOrder(ctx context.Context, actor policy.Actor, in OrderInput) (views.OrderDetail, error)
	UpdateOrder(ctx context.Context, actor policy.Actor, id uuid.UUID, in OrderInput) (views.OrderDetail, error)

	ListTickets(ctx context.Context, actor policy.Actor, f repository.TicketFilter) ([]views.TicketList, error)
	GetTicket(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.TicketDetail, error)
	CreateTicket(ctx context.Context, actor policy.Actor, in TicketInput) (views.TicketDetail, error)
	UpdateTicket(ctx context.Context, actor policy.Actor, id uuid.UUID, in TicketInput, partial bool) (views.TicketDetail, error)
}

type Users interface {
	Register(ctx context.Context, in RegisterInput) (views.User, error)
	Me(ctx context.Context, actor policy.Actor) (views.User, error)
	UpdateMe(ctx context.Context, actor policy.Actor, in UserInput, partial bool) (views.User, error)
	ObtainToken(ctx context.Context, email, password string) (auth.Pair, error)
	RefreshToken(ctx context.Context, refresh string) (string, error)
	VerifyToken(ctx context.Context, token string) error
	Logout(ctx context.Context, refresh string) error
	Authenticate(ctx context.Context, access string) (policy.Actor, error)
}

// API is everything the HTTP layer calls.
type API interface {
	Catalog
	Flights
	Bookings
	Users
	Delete(ctx context.Context, actor policy.Actor, res policy.Resource, id uuid.UUID) error
}

// EventHandler consumes mutation events published by other replicas.
type EventHandler interface {
	HandleMessage(ctx context.Context, payload []byte) error
}

type ViewCache interface {
	Load(ctx context.Context, key string, dst any) bool
	Put(ctx context.Context, key string, view any)
}

type Invalidator interface {
	Invalidate(ctx context.Context, kind models.Kind) error
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, payload []byte) error
}

type ImageStore interface {
	SaveAirplaneImage(airplaneName, filename string, src io.Reader) (string, error)
	Remove(rel string) error
}

type Service struct {
	repo   *repository.Repository
	tokens *auth.Manager

	views    ViewCache
	inval    Invalidator
	events   EventPublisher
	instance string

	images   ImageStore
	mediaURL string

	leadTime time.Duration
	now      func() time.Time
}

var _ API = (*Service)(nil)
var _ EventHandler = (*Service)(nil)

type Option func(*Service)

func WithCache(v ViewCache, inv Invalidator) Option {
	return func(s *Service) { s.views, s.inval = v, inv }
}

// WithEvents publishes every committed mutation; instance tags the events
// so a replica can skip its own.
func WithEvents(p EventPublisher, instance string) Option {
	return func(s *Service) { s.events, s.instance = p, instance }
}

func WithImages(store ImageStore, mediaURL string) Option {
	return func(s *Service) { s.images, s.mediaURL = store, mediaURL }
}

func WithLeadTime(d time.Duration) Option { return func(s *Service) { s.leadTime = d } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(repo *repository.Repository, tokens *auth.Manager, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		tokens:   tokens,
		instance: uuid.NewString(),
		leadTime: validation.DefaultLeadTime,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) allow(actor policy.Actor, action policy.Action, res policy.Resource, owner *uuid.UUID) error {
	return denied(policy.Authorize(actor, action, res, owner))
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// MutationEvent is published after a write commits. ID is nil when the
// event covers rows removed in bulk.
type MutationEvent struct {
	Kind   models.Kind `json:"kind"`
	ID     uuid.UUID   `json:"id"`
	Action string      `json:"action"`
	Origin string      `json:"origin"`
	At     time.Time   `json:"at"`
}

// committed runs the post-commit side effects of a write: local cache purge
// and event publication. Failures are logged; the write already succeeded.
func (s *Service) committed(ctx context.Context, kind models.Kind, id uuid.UUID, action string) {
	s.committedAll(ctx, kind, []uuid.UUID{id}, action)
}

// committedAll purges the namespaces of kind once and publishes one event
// per id. With no ids a single event with a nil id is published; it stands
// for rows removed in bulk, such as tickets deleted with their flight.
func (s *Service) committedAll(ctx context.Context, kind models.Kind, ids []uuid.UUID, action string) {
	log := logrus.WithFields(logrus.Fields{"kind": kind, "count": len(ids), "action": action})
	log.Debug("mutation committed")

	if s.inval != nil {
		if err := s.inval.Invalidate(ctx, kind); err != nil {
			log.WithError(err).Error("cache invalidation failed")
		}
	}
	if s.events == nil {
		return
	}
	if len(ids) == 0 {
		ids = []uuid.UUID{uuid.Nil}
	}
	at := s.now().UTC()
	for _, id := range ids {
		payload, err := json.Marshal(MutationEvent{Kind: kind, ID: id, Action: action, Origin: s.instance, At: at})
		if err != nil {
			log.WithError(err).Error("encode mutation event")
			return
		}
		if err := s.events.Publish(ctx, string(kind), payload); err != nil {
			log.WithError(err).WithField("id", id).Warn("publish mutation event failed")
		}
	}
}

// rejected logs a refused write at debug level and passes err through.
func rejected(res policy.Resource, err error) error {
	if err != nil {
		logrus.WithError(err).WithField("resource", res).Debug("write rejected")
	}
	return err
}

// cached serves key from the view cache or fills it from load. Failed loads
// (including authorization denials) are never cached.
func cached[V any](ctx context.Context, s *Service, key string, load func() (V, error)) (V, error) {
	var v V
	if s.views != nil && s.views.Load(ctx, key, &v) {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return v, err
	}
	if s.views != nil {
		s.views.Put(ctx, key, v)
	}
	return v, nil
}

// listKey derives a cache key from a listing's filter and page.
func listKey(ns, scope string, filter any) string {
	raw, err := json.Marshal(filter)
	if err != nil {
		raw = []byte(err.Error())
	}
	return cache.Key(ns, scope, "list", string(raw))
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

func normalize(p repository.Page) repository.Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// HandleMessage purges the local cache for a mutation made by another
// replica. Undecodable events wrap ErrDecode.
func (s *Service) HandleMessage(ctx context.Context, payload []byte) error {
	var ev MutationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return errors.Wrapf(ErrDecode, "mutation event: %v", err)
	}
	if ev.Kind == "" {
		return errors.Wrap(ErrDecode, "mutation event without kind")
	}
	if ev.Origin == s.instance || s.inval == nil {
		return nil
	}
	logrus.WithFields(logrus.Fields{"kind": ev.Kind, "id": ev.ID, "origin": ev.Origin}).Debug("remote mutation")
	return s.inval.Invalidate(ctx, ev.Kind)
}
