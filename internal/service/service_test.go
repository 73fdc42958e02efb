package service_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"airport-service/internal/auth"
	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/repository/cache"
	"airport-service/internal/repository/repotest"
	svc "airport-service/internal/service"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

var now = time.Date(2030, 3, 1, 12, 0, 0, 0, time.UTC)

type spyInvalidator struct {
	mu    sync.Mutex
	kinds []models.Kind
	err   error
}

func (s *spyInvalidator) Invalidate(_ context.Context, kind models.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, kind)
	return s.err
}

func (s *spyInvalidator) seen() []models.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Kind(nil), s.kinds...)
}

type env struct {
	t     *testing.T
	ctx   context.Context
	s     *svc.Service
	db    *repotest.DB
	repo  *repository.Repository
	inval *spyInvalidator

	staff, alice, bob policy.Actor
}

func newEnv(t *testing.T, opts ...svc.Option) *env {
	t.Helper()
	repo, db := repotest.New()
	inval := &spyInvalidator{}
	tokens := auth.NewManager("test-secret", 5*time.Minute, time.Hour)

	base := []svc.Option{
		svc.WithClock(func() time.Time { return now }),
		svc.WithCache(nil, inval),
	}
	e := &env{
		t:     t,
		ctx:   context.Background(),
		s:     svc.NewService(repo, tokens, append(base, opts...)...),
		db:    db,
		repo:  repo,
		inval: inval,
	}
	e.staff = e.user(true)
	e.alice = e.user(false)
	e.bob = e.user(false)
	return e
}

func (e *env) user(staff bool) policy.Actor {
	e.t.Helper()
	u := models.User{
		Email:     gofakeit.Email(),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		IsStaff:   staff,
		IsActive:  true,
	}
	require.NoError(e.t, e.repo.CreateUser(&u))
	return policy.UserActor(u.ID, staff)
}

func ptr[T any](v T) *T { return &v }

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Fields
	}
	var cerr *svc.ConflictError
	require.True(t, errors.As(err, &cerr), "expected field error, got %T: %v", err, err)
	return cerr.Fields()
}

type world struct {
	jfk, lax views.Airport
	route    views.RouteDetail
	plane    views.AirplaneDetail
	crew     views.Crew
	flight   views.FlightDetail
}

// seed builds a bookable flight departing in departIn.
func (e *env) seed(departIn time.Duration) world {
	e.t.Helper()
	var (
		w   world
		err error
	)
	w.jfk, err = e.s.CreateAirport(e.ctx, e.staff, svc.AirportInput{Name: ptr("JFK"), ClosestBigCity: ptr("New York")})
	require.NoError(e.t, err)
	w.lax, err = e.s.CreateAirport(e.ctx, e.staff, svc.AirportInput{Name: ptr("LAX"), ClosestBigCity: ptr("Los Angeles")})
	require.NoError(e.t, err)
	w.route, err = e.s.CreateRoute(e.ctx, e.staff, svc.RouteInput{Source: &w.jfk.ID, Destination: &w.lax.ID, Distance: ptr(4000)})
	require.NoError(e.t, err)

	typ, err := e.s.CreateAirplaneType(e.ctx, e.staff, svc.AirplaneTypeInput{Name: ptr("Narrow body")})
	require.NoError(e.t, err)
	w.plane, err = e.s.CreateAirplane(e.ctx, e.staff, svc.AirplaneInput{
		Name: ptr("A320-1"), Rows: ptr(20), SeatsInRow: ptr(6), AirplaneType: &typ.ID,
	})
	require.NoError(e.t, err)

	w.crew, err = e.s.CreateCrew(e.ctx, e.staff, svc.CrewInput{FirstName: ptr("Ann"), LastName: ptr("Pilot")})
	require.NoError(e.t, err)

	dep := now.Add(departIn)
	w.flight, err = e.s.CreateFlight(e.ctx, e.staff, svc.FlightInput{
		Route:         &w.route.ID,
		Airplane:      &w.plane.ID,
		DepartureTime: &dep,
		ArrivalTime:   ptr(dep.Add(5 * time.Hour)),
		Crew:          &[]uuid.UUID{w.crew.ID},
	})
	require.NoError(e.t, err)
	return w
}

func (e *env) order(actor policy.Actor, flight uuid.UUID, seats ...[2]int) (views.OrderDetail, error) {
	in := svc.OrderInput{}
	for _, s := range seats {
		in.Tickets = append(in.Tickets, svc.TicketInput{Row: ptr(s[0]), Seat: ptr(s[1]), Flight: &flight})
	}
	return e.s.CreateOrder(e.ctx, actor, in)
}

func TestRoutes_EndToEnd(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	require.Equal(t, "JFK", w.route.Source.Name)

	_, err := e.s.CreateRoute(e.ctx, e.alice, svc.RouteInput{Source: &w.jfk.ID, Destination: &w.lax.ID, Distance: ptr(4000)})
	require.True(t, errors.Is(err, svc.ErrConflict), "got %v", err)
	require.Contains(t, fieldsOf(t, err), "destination")

	_, err = e.s.CreateRoute(e.ctx, e.alice, svc.RouteInput{Source: &w.jfk.ID, Destination: &w.jfk.ID, Distance: ptr(10)})
	require.Equal(t, "Source and destination airports cannot be the same.", fieldsOf(t, err)["destination"])

	_, err = e.s.CreateRoute(e.ctx, e.alice, svc.RouteInput{Source: &w.lax.ID, Destination: &w.jfk.ID, Distance: ptr(20001)})
	require.Contains(t, fieldsOf(t, err), "distance")

	missing := uuid.New()
	_, err = e.s.CreateRoute(e.ctx, e.alice, svc.RouteInput{Source: &missing, Destination: &w.jfk.ID, Distance: ptr(10)})
	require.Contains(t, fieldsOf(t, err)["source"], "object does not exist")

	_, err = e.s.CreateRoute(e.ctx, e.alice, svc.RouteInput{Source: &w.lax.ID})
	f := fieldsOf(t, err)
	require.Equal(t, "This field is required.", f["destination"])
	require.Equal(t, "This field is required.", f["distance"])
}

func TestFlights_TimesAndCrew(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)

	_, err := e.s.UpdateFlight(e.ctx, e.staff, w.flight.ID, svc.FlightInput{ArrivalTime: &w.flight.DepartureTime}, true)
	require.Contains(t, fieldsOf(t, err), "arrival_time")

	_, err = e.s.UpdateFlight(e.ctx, e.staff, w.flight.ID, svc.FlightInput{Crew: &[]uuid.UUID{w.crew.ID, uuid.New()}}, true)
	require.Contains(t, fieldsOf(t, err), "crew")

	got, err := e.s.UpdateFlight(e.ctx, e.staff, w.flight.ID, svc.FlightInput{Crew: &[]uuid.UUID{}}, true)
	require.NoError(t, err)
	require.Empty(t, got.Crew)
	require.Equal(t, 120, got.AvailableSeats)

	_, err = e.s.UpdateFlight(e.ctx, e.alice, w.flight.ID, svc.FlightInput{}, true)
	require.Equal(t, svc.ErrForbidden, err)

	_, err = e.s.CreateFlight(e.ctx, policy.AnonymousActor(), svc.FlightInput{})
	require.Equal(t, svc.ErrUnauthenticated, err)
}

func TestTickets_PositionAndTiming(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	o, err := e.order(e.alice, w.flight.ID, [2]int{1, 1})
	require.NoError(t, err)

	_, err = e.s.CreateTicket(e.ctx, e.alice, svc.TicketInput{Row: ptr(21), Seat: ptr(1), Flight: &w.flight.ID, Order: &o.ID})
	require.Equal(t, "row must be between 1 and 20.", fieldsOf(t, err)["row"])

	_, err = e.s.CreateTicket(e.ctx, e.alice, svc.TicketInput{Row: ptr(2), Seat: ptr(7), Flight: &w.flight.ID, Order: &o.ID})
	require.Equal(t, "seat must be between 1 and 6.", fieldsOf(t, err)["seat"])

	ticket, err := e.s.CreateTicket(e.ctx, e.alice, svc.TicketInput{Row: ptr(2), Seat: ptr(2), Flight: &w.flight.ID, Order: &o.ID})
	require.NoError(t, err)
	require.Equal(t, "2-2", ticket.SeatNumber)
	require.Equal(t, o.ID, ticket.Order)
	require.Equal(t, 118, ticket.Flight.AvailableSeats)
}

func TestTickets_TooCloseToDeparture(t *testing.T) {
	for name, departIn := range map[string]time.Duration{
		"departed":      -time.Hour,
		"five minutes":  5 * time.Minute,
		"exactly lead":  10 * time.Minute,
	} {
		t.Run(name, func(t *testing.T) {
			e := newEnv(t)
			w := e.seed(departIn)

			_, err := e.order(e.alice, w.flight.ID, [2]int{1, 1})
			require.Contains(t, fieldsOf(t, err), "tickets.0.flight")

			_, err = e.order(e.alice, w.flight.ID, [2]int{99, 99})
			f := fieldsOf(t, err)
			require.Contains(t, f, "tickets.0.flight", "timing fails regardless of seat validity")
			require.Contains(t, f, "tickets.0.row")
		})
	}
}

func TestTickets_SameSeatConcurrently(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	o, err := e.order(e.alice, w.flight.ID, [2]int{1, 1})
	require.NoError(t, err)

	const n = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok, dupes int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.s.CreateTicket(e.ctx, e.alice, svc.TicketInput{Row: ptr(5), Seat: ptr(5), Flight: &w.flight.ID, Order: &o.ID})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, svc.ErrConflict):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, dupes)
}

func TestOrders_AllOrNothing(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	before := e.db.Counts()

	_, err := e.order(e.alice, w.flight.ID, [2]int{1, 1}, [2]int{1, 2}, [2]int{30, 1})
	require.Equal(t, map[string]string{"tickets.2.row": "row must be between 1 and 20."}, fieldsOf(t, err))
	require.Equal(t, before, e.db.Counts())

	_, err = e.order(e.alice, w.flight.ID, [2]int{3, 3}, [2]int{3, 3})
	require.True(t, errors.Is(err, svc.ErrConflict))
	require.Contains(t, fieldsOf(t, err), "tickets.1.seat")
	require.Equal(t, before, e.db.Counts())

	_, err = e.s.CreateOrder(e.ctx, e.alice, svc.OrderInput{})
	require.Contains(t, fieldsOf(t, err), "tickets")

	_, err = e.s.CreateOrder(e.ctx, e.alice, svc.OrderInput{Tickets: []svc.TicketInput{{Row: ptr(1)}}})
	f := fieldsOf(t, err)
	require.Contains(t, f, "tickets.0.seat")
	require.Contains(t, f, "tickets.0.flight")

	o, err := e.order(e.alice, w.flight.ID, [2]int{3, 3}, [2]int{3, 4})
	require.NoError(t, err)
	require.Len(t, o.Tickets, 2)
	require.Equal(t, before["orders"]+1, e.db.Counts()["orders"])
	require.Equal(t, before["tickets"]+2, e.db.Counts()["tickets"])
}

func TestOrders_UpdateReplacesTickets(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)

	o, err := e.order(e.staff, w.flight.ID, [2]int{1, 1})
	require.NoError(t, err)

	updated, err := e.s.UpdateOrder(e.ctx, e.staff, o.ID, svc.OrderInput{Tickets: []svc.TicketInput{
		{Row: ptr(1), Seat: ptr(1), Flight: &w.flight.ID},
		{Row: ptr(1), Seat: ptr(2), Flight: &w.flight.ID},
	}})
	require.NoError(t, err)
	require.Len(t, updated.Tickets, 2)

	_, err = e.s.UpdateOrder(e.ctx, e.alice, o.ID, svc.OrderInput{})
	require.Equal(t, svc.ErrForbidden, err, "regular users never update orders")

	mine, err := e.order(e.alice, w.flight.ID, [2]int{9, 1})
	require.NoError(t, err)
	_, err = e.s.UpdateOrder(e.ctx, e.staff, mine.ID, svc.OrderInput{})
	require.Equal(t, svc.ErrNotFound, err, "staff only update their own orders")
}

func TestAuthorization_Matrix(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	anon := policy.AnonymousActor()

	_, err := e.s.ListAirports(e.ctx, anon, repository.AirportFilter{})
	require.NoError(t, err)
	_, err = e.s.CreateAirport(e.ctx, anon, svc.AirportInput{Name: ptr("SFO"), ClosestBigCity: ptr("San Francisco")})
	require.Equal(t, svc.ErrUnauthenticated, err)
	_, err = e.s.ListOrders(e.ctx, anon, repository.OrderFilter{})
	require.Equal(t, svc.ErrUnauthenticated, err)

	_, err = e.s.CreateAirport(e.ctx, e.alice, svc.AirportInput{Name: ptr("SFO"), ClosestBigCity: ptr("San Francisco")})
	require.NoError(t, err)
	require.Equal(t, svc.ErrForbidden, e.s.Delete(e.ctx, e.alice, policy.Airport, w.jfk.ID))
	_, err = e.s.UpdateAirport(e.ctx, e.alice, w.jfk.ID, svc.AirportInput{Name: ptr("X")}, true)
	require.Equal(t, svc.ErrForbidden, err)

	bobs, err := e.order(e.bob, w.flight.ID, [2]int{4, 4})
	require.NoError(t, err)
	_, err = e.s.GetTicket(e.ctx, e.alice, bobs.Tickets[0].ID)
	require.Equal(t, svc.ErrNotFound, err)
	_, err = e.s.GetOrder(e.ctx, e.alice, bobs.ID)
	require.Equal(t, svc.ErrNotFound, err)

	staffView, err := e.s.GetTicket(e.ctx, e.staff, bobs.Tickets[0].ID)
	require.NoError(t, err)
	require.Equal(t, bobs.ID, staffView.Order)

	_, err = e.s.CreateTicket(e.ctx, e.staff, svc.TicketInput{Row: ptr(6), Seat: ptr(1), Flight: &w.flight.ID, Order: &bobs.ID})
	require.Equal(t, "Order does not exist or belongs to another user.", fieldsOf(t, err)["order"])
	_, err = e.s.CreateTicket(e.ctx, e.alice, svc.TicketInput{Row: ptr(6), Seat: ptr(1), Flight: &w.flight.ID, Order: ptr(uuid.New())})
	require.Equal(t, "Order does not exist or belongs to another user.", fieldsOf(t, err)["order"])

	_, err = e.s.UpdateTicket(e.ctx, e.staff, bobs.Tickets[0].ID, svc.TicketInput{Seat: ptr(5)}, true)
	require.NoError(t, err)
	_, err = e.s.UpdateTicket(e.ctx, e.bob, bobs.Tickets[0].ID, svc.TicketInput{Seat: ptr(6)}, true)
	require.Equal(t, svc.ErrForbidden, err)

	require.Equal(t, svc.ErrForbidden, e.s.Delete(e.ctx, e.staff, policy.Airport, w.jfk.ID))
	require.Equal(t, svc.ErrForbidden, e.s.Delete(e.ctx, e.staff, policy.Order, bobs.ID))
	require.Equal(t, svc.ErrForbidden, e.s.Delete(e.ctx, e.staff, policy.Ticket, bobs.Tickets[0].ID))
	require.Equal(t, svc.ErrUnauthenticated, e.s.Delete(e.ctx, anon, policy.Flight, w.flight.ID))
	require.Equal(t, svc.ErrForbidden, e.s.Delete(e.ctx, e.alice, policy.Flight, w.flight.ID))
	require.NoError(t, e.s.Delete(e.ctx, e.staff, policy.Flight, w.flight.ID))
	require.Equal(t, svc.ErrNotFound, e.s.Delete(e.ctx, e.staff, policy.Flight, w.flight.ID))
}

func TestListings_NarrowedToOwner(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)

	_, err := e.order(e.alice, w.flight.ID, [2]int{1, 1})
	require.NoError(t, err)
	_, err = e.order(e.bob, w.flight.ID, [2]int{1, 2}, [2]int{1, 3})
	require.NoError(t, err)

	tickets, err := e.s.ListTickets(e.ctx, e.alice, repository.TicketFilter{OwnerID: &e.bob.UserID})
	require.NoError(t, err)
	require.Len(t, tickets, 1, "owner filter cannot be widened by the caller")

	all, err := e.s.ListTickets(e.ctx, e.staff, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	orders, err := e.s.ListOrders(e.ctx, e.staff, repository.OrderFilter{})
	require.NoError(t, err)
	require.Empty(t, orders, "staff list only their own orders")

	orders, err = e.s.ListOrders(e.ctx, e.bob, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 2, orders[0].TicketsCount)
}

func TestUpdates_PartialAndFull(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)

	got, err := e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{Rows: ptr(30)}, true)
	require.NoError(t, err)
	require.Equal(t, "A320-1", got.Name)
	require.Equal(t, 180, got.TotalSeats)

	_, err = e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{Rows: ptr(30)}, false)
	require.Contains(t, fieldsOf(t, err), "name")

	_, err = e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{SeatsInRow: ptr(0)}, true)
	require.Contains(t, fieldsOf(t, err), "seats_in_row")

	_, err = e.s.UpdateAirport(e.ctx, e.staff, uuid.New(), svc.AirportInput{}, true)
	require.Equal(t, svc.ErrNotFound, err)

	_, err = e.s.UpdateAirport(e.ctx, e.staff, w.lax.ID, svc.AirportInput{Name: ptr("JFK")}, true)
	require.Equal(t, "airport with this name already exists.", fieldsOf(t, err)["name"])
}

func TestInvalidation_AfterCommitOnly(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	e.inval.kinds = nil

	_, err := e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{Rows: ptr(0)}, true)
	require.Error(t, err)
	_, err = e.order(e.alice, w.flight.ID, [2]int{1, 1}, [2]int{1, 1})
	require.Error(t, err)
	require.Empty(t, e.inval.seen(), "failed writes must not purge caches")

	_, err = e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{Rows: ptr(25)}, true)
	require.NoError(t, err)
	_, err = e.order(e.alice, w.flight.ID, [2]int{1, 1})
	require.NoError(t, err)
	require.Equal(t, []models.Kind{models.KindAirplane, models.KindOrder, models.KindTicket}, e.inval.seen())
}

func TestCachedReads(t *testing.T) {
	c := cache.NewShardedCache()
	t.Cleanup(c.Close)
	store := cache.NewMemoryStore(c)
	e := newEnv(t, svc.WithCache(cache.NewViewCache(store), cache.NewInvalidator(store)))
	w := e.seed(48 * time.Hour)

	list, err := e.s.ListRoutes(e.ctx, policy.AnonymousActor(), repository.RouteFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)

	planes, err := e.s.ListAirplanes(e.ctx, policy.AnonymousActor(), repository.AirplaneFilter{})
	require.NoError(t, err)
	require.Equal(t, 120, planes[0].TotalSeats)

	// Writes behind the service's back are invisible until a purge.
	raw, err := e.repo.GetAirplane(w.plane.ID)
	require.NoError(t, err)
	raw.Rows = 10
	require.NoError(t, e.repo.SaveAirplane(&raw))
	planes, err = e.s.ListAirplanes(e.ctx, policy.AnonymousActor(), repository.AirplaneFilter{})
	require.NoError(t, err)
	require.Equal(t, 120, planes[0].TotalSeats)

	_, err = e.s.UpdateAirplane(e.ctx, e.staff, w.plane.ID, svc.AirplaneInput{Rows: ptr(11)}, true)
	require.NoError(t, err)
	planes, err = e.s.ListAirplanes(e.ctx, policy.AnonymousActor(), repository.AirplaneFilter{})
	require.NoError(t, err)
	require.Equal(t, 66, planes[0].TotalSeats)

	before := c.Len()
	require.Positive(t, before)
	_, ok, err := store.Get(e.ctx, cache.Key("route", cache.PublicScope, "list", `{"Limit":50,"Offset":0,"SourceName":"","DestinationName":"","DistanceGt":0,"DistanceLt":0}`))
	require.NoError(t, err)
	require.True(t, ok, "route views survive an airplane mutation")

	// Hidden objects are never cached for the caller that was denied.
	bobs, err := e.order(e.bob, w.flight.ID, [2]int{2, 2})
	require.NoError(t, err)
	_, err = e.s.GetOrder(e.ctx, e.alice, bobs.ID)
	require.Equal(t, svc.ErrNotFound, err)
	_, ok, err = store.Get(e.ctx, cache.Key("order", cache.UserScope(e.alice.UserID), bobs.ID))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFlightDelete_PurgesTicketViews(t *testing.T) {
	c := cache.NewShardedCache()
	t.Cleanup(c.Close)
	store := cache.NewMemoryStore(c)
	e := newEnv(t, svc.WithCache(cache.NewViewCache(store), cache.NewInvalidator(store)))
	w := e.seed(48 * time.Hour)

	o, err := e.order(e.alice, w.flight.ID, [2]int{3, 4})
	require.NoError(t, err)
	ticketID := o.Tickets[0].ID

	_, err = e.s.GetTicket(e.ctx, e.alice, ticketID)
	require.NoError(t, err)
	list, err := e.s.ListTickets(e.ctx, e.alice, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	order, err := e.s.GetOrder(e.ctx, e.alice, o.ID)
	require.NoError(t, err)
	require.Len(t, order.Tickets, 1)

	require.NoError(t, e.s.Delete(e.ctx, e.staff, policy.Flight, w.flight.ID))

	_, err = e.s.GetTicket(e.ctx, e.alice, ticketID)
	require.Equal(t, svc.ErrNotFound, err)
	list, err = e.s.ListTickets(e.ctx, e.alice, repository.TicketFilter{})
	require.NoError(t, err)
	require.Empty(t, list)
	order, err = e.s.GetOrder(e.ctx, e.alice, o.ID)
	require.NoError(t, err)
	require.Empty(t, order.Tickets)
}

func TestCommitted_LogsInvalidationFailure(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	e := newEnv(t)
	e.inval.err = errors.New("redis down")

	_, err := e.s.CreateAirport(e.ctx, e.alice, svc.AirportInput{Name: ptr("SFO"), ClosestBigCity: ptr("San Francisco")})
	require.NoError(t, err, "the write succeeded; the purge failure is only logged")

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == log.ErrorLevel && entry.Message == "cache invalidation failed" {
			found = true
		}
	}
	require.True(t, found)
}

type capturePublisher struct {
	mu   sync.Mutex
	keys []string
	msgs [][]byte
}

func (c *capturePublisher) Publish(_ context.Context, key string, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys = append(c.keys, key)
	c.msgs = append(c.msgs, payload)
	return nil
}

func TestEvents_PublishAndHandle(t *testing.T) {
	pub := &capturePublisher{}
	e := newEnv(t, svc.WithEvents(pub, "replica-a"))

	a, err := e.s.CreateAirport(e.ctx, e.alice, svc.AirportInput{Name: ptr("SFO"), ClosestBigCity: ptr("San Francisco")})
	require.NoError(t, err)
	require.Equal(t, []string{"airport"}, pub.keys)

	var ev svc.MutationEvent
	require.NoError(t, json.Unmarshal(pub.msgs[0], &ev))
	require.Equal(t, models.KindAirport, ev.Kind)
	require.Equal(t, a.ID, ev.ID)
	require.Equal(t, svc.ActionCreated, ev.Action)
	require.Equal(t, "replica-a", ev.Origin)

	e.inval.kinds = nil
	require.NoError(t, e.s.HandleMessage(e.ctx, pub.msgs[0]))
	require.Empty(t, e.inval.seen(), "own events are skipped")

	ev.Origin = "replica-b"
	foreign, err := json.Marshal(ev)
	require.NoError(t, err)
	require.NoError(t, e.s.HandleMessage(e.ctx, foreign))
	require.Equal(t, []models.Kind{models.KindAirport}, e.inval.seen())

	require.True(t, errors.Is(e.s.HandleMessage(e.ctx, []byte("{")), svc.ErrDecode))
	require.True(t, errors.Is(e.s.HandleMessage(e.ctx, []byte(`{"id":"`+uuid.NewString()+`"}`)), svc.ErrDecode))
}

func TestEvents_TicketIDs(t *testing.T) {
	e := newEnv(t)
	w := e.seed(48 * time.Hour)
	pub := &capturePublisher{}
	e.s = svc.NewService(e.repo, nil, svc.WithClock(func() time.Time { return now }), svc.WithEvents(pub, "replica-a"))

	o, err := e.order(e.alice, w.flight.ID, [2]int{1, 1}, [2]int{1, 2})
	require.NoError(t, err)
	require.Equal(t, []string{"order", "ticket", "ticket"}, pub.keys)

	decode := func(i int) svc.MutationEvent {
		var ev svc.MutationEvent
		require.NoError(t, json.Unmarshal(pub.msgs[i], &ev))
		return ev
	}
	require.Equal(t, o.ID, decode(0).ID)
	require.ElementsMatch(t, []uuid.UUID{o.Tickets[0].ID, o.Tickets[1].ID}, []uuid.UUID{decode(1).ID, decode(2).ID})

	require.NoError(t, e.s.Delete(e.ctx, e.staff, policy.Flight, w.flight.ID))
	require.Equal(t, []string{"order", "ticket", "ticket", "flight", "ticket"}, pub.keys)
	require.Equal(t, w.flight.ID, decode(3).ID)
	cascaded := decode(4)
	require.Equal(t, models.KindTicket, cascaded.Kind)
	require.Equal(t, uuid.Nil, cascaded.ID)
	require.Equal(t, svc.ActionDeleted, cascaded.Action)
}

func TestStorageFailure_Surfaces(t *testing.T) {
	e := newEnv(t)
	e.db.Fail = errors.New("connection reset")

	_, err := e.s.ListFlights(e.ctx, policy.AnonymousActor(), repository.FlightFilter{})
	require.EqualError(t, err, "connection reset")
}
