package repository

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"airport-service/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate key")
)

// DuplicateError names the unique constraint a write violated.
type DuplicateError struct {
	Constraint string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicate, e.Constraint)
}

func (e *DuplicateError) Is(target error) bool { return target == ErrDuplicate }

type Page struct {
	Limit  int
	Offset int
}

type AirportFilter struct {
	Page
	Name           string
	ClosestBigCity string
}

type AirplaneTypeFilter struct {
	Page
	Name string
}

type AirplaneFilter struct {
	Page
	Name             string
	AirplaneTypeName string
	RowsGt           int
	RowsLt           int
}

type CrewFilter struct {
	Page
	FirstName string
	LastName  string
}

type RouteFilter struct {
	Page
	SourceName      string
	DestinationName string
	DistanceGt      int
	DistanceLt      int
}

// FlightFilter: airport filters hold either an airport id or a name fragment.
type FlightFilter struct {
	Page
	SourceAirport      string
	DestinationAirport string
	DepartureDate      *time.Time
	Crew               []uuid.UUID
	AirplaneType       *uuid.UUID
}

type OrderFilter struct {
	Page
	UserID      *uuid.UUID
	CreatedAtGt *time.Time
	CreatedAtLt *time.Time
}

type TicketFilter struct {
	Page
	OwnerID *uuid.UUID
	Row     int
	Seat    int
}

type Airports interface {
	CreateAirport(a *models.Airport) error
	SaveAirport(a *models.Airport) error
	GetAirport(id uuid.UUID) (models.Airport, error)
	ListAirports(f AirportFilter) ([]models.Airport, error)
}

type AirplaneTypes interface {
	CreateAirplaneType(t *models.AirplaneType) error
	SaveAirplaneType(t *models.AirplaneType) error
	GetAirplaneType(id uuid.UUID) (models.AirplaneType, error)
	ListAirplaneTypes(f AirplaneTypeFilter) ([]models.AirplaneType, error)
}

type Airplanes interface {
	CreateAirplane(a *models.Airplane) error
	SaveAirplane(a *models.Airplane) error
	GetAirplane(id uuid.UUID) (models.Airplane, error)
	ListAirplanes(f AirplaneFilter) ([]models.Airplane, error)
}

type Crews interface {
	CreateCrew(c *models.Crew) error
	SaveCrew(c *models.Crew) error
	GetCrew(id uuid.UUID) (models.Crew, error)
	ListCrew(f CrewFilter) ([]models.Crew, error)
	FindCrew(ids []uuid.UUID) ([]models.Crew, error)
}

type Routes interface {
	CreateRoute(r *models.Route) error
	SaveRoute(r *models.Route) error
	GetRoute(id uuid.UUID) (models.Route, error)
	ListRoutes(f RouteFilter) ([]models.Route, error)
}

// Flights persists the crew assignment together with the flight row.
type Flights interface {
	CreateFlight(f *models.Flight) error
	SaveFlight(f *models.Flight) error
	GetFlight(id uuid.UUID) (models.Flight, error)
	ListFlights(f FlightFilter) ([]models.Flight, error)
	DeleteFlight(id uuid.UUID) error
}

type Orders interface {
	CreateOrder(o *models.Order) error
	SaveOrder(o *models.Order) error
	GetOrder(id uuid.UUID) (models.Order, error)
	ListOrders(f OrderFilter) ([]models.Order, error)
}

type Tickets interface {
	CreateTicket(t *models.Ticket) error
	SaveTicket(t *models.Ticket) error
	GetTicket(id uuid.UUID) (models.Ticket, error)
	ListTickets(f TicketFilter) ([]models.Ticket, error)
	DeleteOrderTickets(orderID uuid.UUID) error
}

type Users interface {
	CreateUser(u *models.User) error
	SaveUser(u *models.User) error
	GetUser(id uuid.UUID) (models.User, error)
	GetUserByEmail(email string) (models.User, error)
}

type Tokens interface {
	BlacklistToken(t *models.BlacklistedToken) error
	IsBlacklisted(jti string) (bool, error)
}

// Transactor runs fn against a Repository bound to one transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	Atomic(fn func(tx *Repository) error) error
}

type Repository struct {
	Airports
	AirplaneTypes
	Airplanes
	Crews
	Routes
	Flights
	Orders
	Tickets
	Users
	Tokens
	Transactor
}
