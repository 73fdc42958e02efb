// Package repotest provides an in-memory Repository for tests. It honors
// the unique constraints and cascades of the postgres schema and rolls back
// Atomic blocks that fail.
package repotest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

type state struct {
	airports   map[uuid.UUID]models.Airport
	types      map[uuid.UUID]models.AirplaneType
	airplanes  map[uuid.UUID]models.Airplane
	crew       map[uuid.UUID]models.Crew
	routes     map[uuid.UUID]models.Route
	flights    map[uuid.UUID]models.Flight
	flightCrew map[uuid.UUID][]uuid.UUID
	orders     map[uuid.UUID]models.Order
	tickets    map[uuid.UUID]models.Ticket
	users      map[uuid.UUID]models.User
	tokens     map[string]models.BlacklistedToken
}

func newState() state {
	return state{
		airports:   map[uuid.UUID]models.Airport{},
		types:      map[uuid.UUID]models.AirplaneType{},
		airplanes:  map[uuid.UUID]models.Airplane{},
		crew:       map[uuid.UUID]models.Crew{},
		routes:     map[uuid.UUID]models.Route{},
		flights:    map[uuid.UUID]models.Flight{},
		flightCrew: map[uuid.UUID][]uuid.UUID{},
		orders:     map[uuid.UUID]models.Order{},
		tickets:    map[uuid.UUID]models.Ticket{},
		users:      map[uuid.UUID]models.User{},
		tokens:     map[string]models.BlacklistedToken{},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s state) clone() state {
	return state{
		airports:   cloneMap(s.airports),
		types:      cloneMap(s.types),
		airplanes:  cloneMap(s.airplanes),
		crew:       cloneMap(s.crew),
		routes:     cloneMap(s.routes),
		flights:    cloneMap(s.flights),
		flightCrew: cloneMap(s.flightCrew),
		orders:     cloneMap(s.orders),
		tickets:    cloneMap(s.tickets),
		users:      cloneMap(s.users),
		tokens:     cloneMap(s.tokens),
	}
}

// DB is the in-memory store behind New. Setting Fail makes every call
// return that error.
type DB struct {
	mu   sync.Mutex
	s    state
	Fail error
	now  func() time.Time
}

func New() (*repository.Repository, *DB) {
	db := &DB{s: newState(), now: time.Now}
	return db.Repository(), db
}

func (db *DB) Repository() *repository.Repository {
	return &repository.Repository{
		Airports:      db,
		AirplaneTypes: db,
		Airplanes:     db,
		Crews:         db,
		Routes:        db,
		Flights:       db,
		Orders:        db,
		Tickets:       db,
		Users:         db,
		Tokens:        db,
		Transactor:    db,
	}
}

// Atomic restores the state captured before fn when fn fails.
func (db *DB) Atomic(fn func(tx *repository.Repository) error) error {
	db.mu.Lock()
	snapshot := db.s.clone()
	db.mu.Unlock()

	if err := fn(db.Repository()); err != nil {
		db.mu.Lock()
		db.s = snapshot
		db.mu.Unlock()
		return err
	}
	return nil
}

func (db *DB) lock() (func(), error) {
	db.mu.Lock()
	if db.Fail != nil {
		db.mu.Unlock()
		return nil, db.Fail
	}
	return db.mu.Unlock, nil
}

func (db *DB) stamp(b *models.Base, create bool) {
	now := db.now()
	if create {
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		b.CreatedAt = now
	}
	b.UpdatedAt = now
}

func dup(constraint string) error {
	return &repository.DuplicateError{Constraint: constraint}
}

func like(value, fragment string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(fragment))
}

func page[T any](items []T, p repository.Page) []T {
	if p.Offset >= len(items) {
		return []T{}
	}
	items = items[p.Offset:]
	if p.Limit > 0 && p.Limit < len(items) {
		items = items[:p.Limit]
	}
	return items
}

func values[T any](m map[uuid.UUID]T, keep func(T) bool, less func(a, b T) bool) []T {
	out := []T{}
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// Airports

func (db *DB) CreateAirport(a *models.Airport) error { return db.putAirport(a, true) }
func (db *DB) SaveAirport(a *models.Airport) error   { return db.putAirport(a, false) }

func (db *DB) putAirport(a *models.Airport, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for _, o := range db.s.airports {
		if o.ID != a.ID && o.Name == a.Name {
			return dup("uq_airports_name")
		}
	}
	db.stamp(&a.Base, create)
	db.s.airports[a.ID] = *a
	return nil
}

func (db *DB) GetAirport(id uuid.UUID) (models.Airport, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Airport{}, err
	}
	defer unlock()
	a, ok := db.s.airports[id]
	if !ok {
		return a, repository.ErrNotFound
	}
	return a, nil
}

func (db *DB) ListAirports(f repository.AirportFilter) ([]models.Airport, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.airports, func(a models.Airport) bool {
		return like(a.Name, f.Name) && like(a.ClosestBigCity, f.ClosestBigCity)
	}, func(a, b models.Airport) bool { return a.Name < b.Name })
	return page(out, f.Page), nil
}

// Airplane types

func (db *DB) CreateAirplaneType(t *models.AirplaneType) error { return db.putType(t, true) }
func (db *DB) SaveAirplaneType(t *models.AirplaneType) error   { return db.putType(t, false) }

func (db *DB) putType(t *models.AirplaneType, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for _, o := range db.s.types {
		if o.ID != t.ID && o.Name == t.Name {
			return dup("uq_airplane_types_name")
		}
	}
	db.stamp(&t.Base, create)
	db.s.types[t.ID] = *t
	return nil
}

func (db *DB) typeLocked(id uuid.UUID) models.AirplaneType {
	t := db.s.types[id]
	t.AirplanesCount = 0
	for _, a := range db.s.airplanes {
		if a.AirplaneTypeID == id {
			t.AirplanesCount++
		}
	}
	return t
}

func (db *DB) GetAirplaneType(id uuid.UUID) (models.AirplaneType, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.AirplaneType{}, err
	}
	defer unlock()
	if _, ok := db.s.types[id]; !ok {
		return models.AirplaneType{}, repository.ErrNotFound
	}
	return db.typeLocked(id), nil
}

func (db *DB) ListAirplaneTypes(f repository.AirplaneTypeFilter) ([]models.AirplaneType, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.types, func(t models.AirplaneType) bool { return like(t.Name, f.Name) },
		func(a, b models.AirplaneType) bool { return a.Name < b.Name })
	for i := range out {
		out[i] = db.typeLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

// Airplanes

func (db *DB) CreateAirplane(a *models.Airplane) error { return db.putAirplane(a, true) }
func (db *DB) SaveAirplane(a *models.Airplane) error   { return db.putAirplane(a, false) }

func (db *DB) putAirplane(a *models.Airplane, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for _, o := range db.s.airplanes {
		if o.ID != a.ID && o.Name == a.Name && o.AirplaneTypeID == a.AirplaneTypeID {
			return dup("uq_airplanes_name_type")
		}
	}
	db.stamp(&a.Base, create)
	stored := *a
	stored.AirplaneType = models.AirplaneType{}
	db.s.airplanes[a.ID] = stored
	return nil
}

func (db *DB) airplaneLocked(id uuid.UUID) models.Airplane {
	a := db.s.airplanes[id]
	a.AirplaneType = db.typeLocked(a.AirplaneTypeID)
	return a
}

func (db *DB) GetAirplane(id uuid.UUID) (models.Airplane, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Airplane{}, err
	}
	defer unlock()
	if _, ok := db.s.airplanes[id]; !ok {
		return models.Airplane{}, repository.ErrNotFound
	}
	return db.airplaneLocked(id), nil
}

func (db *DB) ListAirplanes(f repository.AirplaneFilter) ([]models.Airplane, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.airplanes, func(a models.Airplane) bool {
		return like(a.Name, f.Name) &&
			like(db.s.types[a.AirplaneTypeID].Name, f.AirplaneTypeName) &&
			(f.RowsGt == 0 || a.Rows > f.RowsGt) &&
			(f.RowsLt == 0 || a.Rows < f.RowsLt)
	}, func(a, b models.Airplane) bool { return a.Name < b.Name })
	for i := range out {
		out[i] = db.airplaneLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

// Crew

func (db *DB) CreateCrew(c *models.Crew) error { return db.putCrew(c, true) }
func (db *DB) SaveCrew(c *models.Crew) error   { return db.putCrew(c, false) }

func (db *DB) putCrew(c *models.Crew, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	db.stamp(&c.Base, create)
	db.s.crew[c.ID] = *c
	return nil
}

func (db *DB) crewLocked(id uuid.UUID) models.Crew {
	c := db.s.crew[id]
	c.FlightsCount = 0
	for _, ids := range db.s.flightCrew {
		for _, cid := range ids {
			if cid == id {
				c.FlightsCount++
			}
		}
	}
	return c
}

func crewOrder(a, b models.Crew) bool {
	if a.LastName != b.LastName {
		return a.LastName < b.LastName
	}
	return a.FirstName < b.FirstName
}

func (db *DB) GetCrew(id uuid.UUID) (models.Crew, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Crew{}, err
	}
	defer unlock()
	if _, ok := db.s.crew[id]; !ok {
		return models.Crew{}, repository.ErrNotFound
	}
	return db.crewLocked(id), nil
}

func (db *DB) ListCrew(f repository.CrewFilter) ([]models.Crew, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.crew, func(c models.Crew) bool {
		return like(c.FirstName, f.FirstName) && like(c.LastName, f.LastName)
	}, crewOrder)
	for i := range out {
		out[i] = db.crewLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

func (db *DB) FindCrew(ids []uuid.UUID) ([]models.Crew, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	want := map[uuid.UUID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return values(db.s.crew, func(c models.Crew) bool { return want[c.ID] }, crewOrder), nil
}

// Routes

func (db *DB) CreateRoute(r *models.Route) error { return db.putRoute(r, true) }
func (db *DB) SaveRoute(r *models.Route) error   { return db.putRoute(r, false) }

func (db *DB) putRoute(r *models.Route, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for _, o := range db.s.routes {
		if o.ID != r.ID && o.SourceID == r.SourceID && o.DestinationID == r.DestinationID {
			return dup("uq_routes_source_destination")
		}
	}
	db.stamp(&r.Base, create)
	stored := *r
	stored.Source, stored.Destination = models.Airport{}, models.Airport{}
	db.s.routes[r.ID] = stored
	return nil
}

func (db *DB) routeLocked(id uuid.UUID) models.Route {
	r := db.s.routes[id]
	r.Source = db.s.airports[r.SourceID]
	r.Destination = db.s.airports[r.DestinationID]
	return r
}

func (db *DB) GetRoute(id uuid.UUID) (models.Route, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Route{}, err
	}
	defer unlock()
	if _, ok := db.s.routes[id]; !ok {
		return models.Route{}, repository.ErrNotFound
	}
	return db.routeLocked(id), nil
}

func (db *DB) ListRoutes(f repository.RouteFilter) ([]models.Route, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.routes, func(r models.Route) bool {
		return like(db.s.airports[r.SourceID].Name, f.SourceName) &&
			like(db.s.airports[r.DestinationID].Name, f.DestinationName) &&
			(f.DistanceGt == 0 || r.Distance > f.DistanceGt) &&
			(f.DistanceLt == 0 || r.Distance < f.DistanceLt)
	}, func(a, b models.Route) bool { return a.CreatedAt.Before(b.CreatedAt) })
	for i := range out {
		out[i] = db.routeLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

// Flights

func (db *DB) CreateFlight(f *models.Flight) error { return db.putFlight(f, true) }
func (db *DB) SaveFlight(f *models.Flight) error   { return db.putFlight(f, false) }

func (db *DB) putFlight(f *models.Flight, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	db.stamp(&f.Base, create)
	stored := *f
	stored.Route, stored.Airplane, stored.Crew = models.Route{}, models.Airplane{}, nil
	db.s.flights[f.ID] = stored
	db.s.flightCrew[f.ID] = f.CrewIDs()
	return nil
}

func (db *DB) flightLocked(id uuid.UUID) models.Flight {
	f := db.s.flights[id]
	f.Route = db.routeLocked(f.RouteID)
	f.Airplane = db.airplaneLocked(f.AirplaneID)
	f.Crew = []models.Crew{}
	for _, cid := range db.s.flightCrew[id] {
		f.Crew = append(f.Crew, db.s.crew[cid])
	}
	sort.Slice(f.Crew, func(i, j int) bool { return crewOrder(f.Crew[i], f.Crew[j]) })
	f.TicketsCount = 0
	for _, t := range db.s.tickets {
		if t.FlightID == id {
			f.TicketsCount++
		}
	}
	return f
}

func (db *DB) GetFlight(id uuid.UUID) (models.Flight, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Flight{}, err
	}
	defer unlock()
	if _, ok := db.s.flights[id]; !ok {
		return models.Flight{}, repository.ErrNotFound
	}
	return db.flightLocked(id), nil
}

func (db *DB) airportMatches(id uuid.UUID, ref string) bool {
	if ref == "" {
		return true
	}
	if want, err := uuid.Parse(ref); err == nil {
		return want == id
	}
	return like(db.s.airports[id].Name, ref)
}

func (db *DB) ListFlights(f repository.FlightFilter) ([]models.Flight, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.flights, func(fl models.Flight) bool {
		r := db.s.routes[fl.RouteID]
		if !db.airportMatches(r.SourceID, f.SourceAirport) || !db.airportMatches(r.DestinationID, f.DestinationAirport) {
			return false
		}
		if f.DepartureDate != nil && fl.DepartureTime.Format("2006-01-02") != f.DepartureDate.Format("2006-01-02") {
			return false
		}
		if f.AirplaneType != nil && db.s.airplanes[fl.AirplaneID].AirplaneTypeID != *f.AirplaneType {
			return false
		}
		if len(f.Crew) > 0 {
			for _, want := range f.Crew {
				for _, cid := range db.s.flightCrew[fl.ID] {
					if cid == want {
						return true
					}
				}
			}
			return false
		}
		return true
	}, func(a, b models.Flight) bool { return a.DepartureTime.Before(b.DepartureTime) })
	for i := range out {
		out[i] = db.flightLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

func (db *DB) DeleteFlight(id uuid.UUID) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := db.s.flights[id]; !ok {
		return repository.ErrNotFound
	}
	delete(db.s.flights, id)
	delete(db.s.flightCrew, id)
	for tid, t := range db.s.tickets {
		if t.FlightID == id {
			delete(db.s.tickets, tid)
		}
	}
	return nil
}

// Orders

func (db *DB) CreateOrder(o *models.Order) error { return db.putOrder(o, true) }
func (db *DB) SaveOrder(o *models.Order) error   { return db.putOrder(o, false) }

func (db *DB) putOrder(o *models.Order, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	db.stamp(&o.Base, create)
	stored := *o
	stored.User, stored.Tickets = models.User{}, nil
	db.s.orders[o.ID] = stored
	return nil
}

func ticketOrder(a, b models.Ticket) bool {
	if a.Row != b.Row {
		return a.Row < b.Row
	}
	return a.Seat < b.Seat
}

func (db *DB) orderLocked(id uuid.UUID) models.Order {
	o := db.s.orders[id]
	o.User = db.s.users[o.UserID]
	o.Tickets = values(db.s.tickets, func(t models.Ticket) bool { return t.OrderID == id }, ticketOrder)
	for i := range o.Tickets {
		o.Tickets[i].Flight = db.flightLocked(o.Tickets[i].FlightID)
	}
	return o
}

func (db *DB) GetOrder(id uuid.UUID) (models.Order, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Order{}, err
	}
	defer unlock()
	if _, ok := db.s.orders[id]; !ok {
		return models.Order{}, repository.ErrNotFound
	}
	return db.orderLocked(id), nil
}

func (db *DB) ListOrders(f repository.OrderFilter) ([]models.Order, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.orders, func(o models.Order) bool {
		return (f.UserID == nil || o.UserID == *f.UserID) &&
			(f.CreatedAtGt == nil || o.CreatedAt.After(*f.CreatedAtGt)) &&
			(f.CreatedAtLt == nil || o.CreatedAt.Before(*f.CreatedAtLt))
	}, func(a, b models.Order) bool { return a.CreatedAt.After(b.CreatedAt) })
	for i := range out {
		out[i] = db.orderLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

// Tickets

func (db *DB) CreateTicket(t *models.Ticket) error { return db.putTicket(t, true) }
func (db *DB) SaveTicket(t *models.Ticket) error   { return db.putTicket(t, false) }

func (db *DB) putTicket(t *models.Ticket, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for _, o := range db.s.tickets {
		if o.ID != t.ID && o.FlightID == t.FlightID && o.Row == t.Row && o.Seat == t.Seat {
			return dup("uq_tickets_flight_row_seat")
		}
	}
	db.stamp(&t.Base, create)
	stored := *t
	stored.Flight, stored.Order = models.Flight{}, models.Order{}
	db.s.tickets[t.ID] = stored
	return nil
}

func (db *DB) ticketLocked(id uuid.UUID) models.Ticket {
	t := db.s.tickets[id]
	t.Flight = db.flightLocked(t.FlightID)
	t.Order = db.s.orders[t.OrderID]
	return t
}

func (db *DB) GetTicket(id uuid.UUID) (models.Ticket, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.Ticket{}, err
	}
	defer unlock()
	if _, ok := db.s.tickets[id]; !ok {
		return models.Ticket{}, repository.ErrNotFound
	}
	return db.ticketLocked(id), nil
}

func (db *DB) ListTickets(f repository.TicketFilter) ([]models.Ticket, error) {
	unlock, err := db.lock()
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := values(db.s.tickets, func(t models.Ticket) bool {
		return (f.OwnerID == nil || db.s.orders[t.OrderID].UserID == *f.OwnerID) &&
			(f.Row == 0 || t.Row == f.Row) &&
			(f.Seat == 0 || t.Seat == f.Seat)
	}, ticketOrder)
	for i := range out {
		out[i] = db.ticketLocked(out[i].ID)
	}
	return page(out, f.Page), nil
}

func (db *DB) DeleteOrderTickets(orderID uuid.UUID) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	for id, t := range db.s.tickets {
		if t.OrderID == orderID {
			delete(db.s.tickets, id)
		}
	}
	return nil
}

// Users

func (db *DB) CreateUser(u *models.User) error { return db.putUser(u, true) }
func (db *DB) SaveUser(u *models.User) error   { return db.putUser(u, false) }

func (db *DB) putUser(u *models.User, create bool) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	u.Email = models.NormalizeEmail(u.Email)
	for _, o := range db.s.users {
		if o.ID != u.ID && o.Email == u.Email {
			return dup("uq_users_email")
		}
	}
	db.stamp(&u.Base, create)
	db.s.users[u.ID] = *u
	return nil
}

func (db *DB) GetUser(id uuid.UUID) (models.User, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.User{}, err
	}
	defer unlock()
	u, ok := db.s.users[id]
	if !ok {
		return u, repository.ErrNotFound
	}
	return u, nil
}

func (db *DB) GetUserByEmail(email string) (models.User, error) {
	unlock, err := db.lock()
	if err != nil {
		return models.User{}, err
	}
	defer unlock()
	email = models.NormalizeEmail(email)
	for _, u := range db.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrNotFound
}

// Tokens

func (db *DB) BlacklistToken(t *models.BlacklistedToken) error {
	unlock, err := db.lock()
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := db.s.tokens[t.JTI]; ok {
		return nil
	}
	db.stamp(&t.Base, true)
	db.s.tokens[t.JTI] = *t
	return nil
}

func (db *DB) IsBlacklisted(jti string) (bool, error) {
	unlock, err := db.lock()
	if err != nil {
		return false, err
	}
	defer unlock()
	_, ok := db.s.tokens[jti]
	return ok, nil
}

// Counts reports stored rows per table, for assertions on rollbacks.
func (db *DB) Counts() map[string]int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return map[string]int{
		"orders":  len(db.s.orders),
		"tickets": len(db.s.tickets),
		"flights": len(db.s.flights),
		"routes":  len(db.s.routes),
	}
}
