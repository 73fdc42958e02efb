// Package views projects entities into the read shapes served by the API.
// Each entity has a list and a detail projection; lists carry flattened
// names and derived counters, details embed the related views.
package views

import (
	"time"

	"github.com/google/uuid"

	"airport-service/internal/models"
)

type Airport struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	ClosestBigCity string    `json:"closest_big_city"`
}

func NewAirport(a models.Airport) Airport {
	return Airport{ID: a.ID, Name: a.Name, ClosestBigCity: a.ClosestBigCity}
}

type AirplaneType struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	AirplanesCount int       `json:"airplanes_count"`
}

func NewAirplaneType(t models.AirplaneType) AirplaneType {
	return AirplaneType{ID: t.ID, Name: t.Name, AirplanesCount: t.AirplanesCount}
}

type AirplaneList struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	Rows             int       `json:"rows"`
	SeatsInRow       int       `json:"seats_in_row"`
	AirplaneTypeName string    `json:"airplane_type_name"`
	TotalSeats       int       `json:"total_seats"`
	Image            string    `json:"image"`
}

func NewAirplaneList(a models.Airplane, mediaURL string) AirplaneList {
	return AirplaneList{
		ID:               a.ID,
		Name:             a.Name,
		Rows:             a.Rows,
		SeatsInRow:       a.SeatsInRow,
		AirplaneTypeName: a.AirplaneType.Name,
		TotalSeats:       a.TotalSeats(),
		Image:            imageURL(mediaURL, a.Image),
	}
}

type AirplaneDetail struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Rows         int          `json:"rows"`
	SeatsInRow   int          `json:"seats_in_row"`
	TotalSeats   int          `json:"total_seats"`
	AirplaneType AirplaneType `json:"airplane_type"`
	Image        string       `json:"image"`
}

func NewAirplaneDetail(a models.Airplane, mediaURL string) AirplaneDetail {
	return AirplaneDetail{
		ID:           a.ID,
		Name:         a.Name,
		Rows:         a.Rows,
		SeatsInRow:   a.SeatsInRow,
		TotalSeats:   a.TotalSeats(),
		AirplaneType: NewAirplaneType(a.AirplaneType),
		Image:        imageURL(mediaURL, a.Image),
	}
}

func imageURL(mediaURL, path string) string {
	if path == "" {
		return ""
	}
	return mediaURL + path
}

type Crew struct {
	ID        uuid.UUID `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

func NewCrew(c models.Crew) Crew {
	return Crew{ID: c.ID, FirstName: c.FirstName, LastName: c.LastName}
}

type CrewList struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	FlightsCount int       `json:"flights_count"`
}

func NewCrewList(c models.Crew) CrewList {
	return CrewList{ID: c.ID, FullName: c.FullName(), FlightsCount: c.FlightsCount}
}

type RouteList struct {
	ID              uuid.UUID `json:"id"`
	SourceName      string    `json:"source_name"`
	DestinationName string    `json:"destination_name"`
	Distance        int       `json:"distance"`
}

func NewRouteList(r models.Route) RouteList {
	return RouteList{
		ID:              r.ID,
		SourceName:      r.Source.Name,
		DestinationName: r.Destination.Name,
		Distance:        r.Distance,
	}
}

type RouteDetail struct {
	ID          uuid.UUID `json:"id"`
	Source      Airport   `json:"source"`
	Destination Airport   `json:"destination"`
	Distance    int       `json:"distance"`
}

func NewRouteDetail(r models.Route) RouteDetail {
	return RouteDetail{
		ID:          r.ID,
		Source:      NewAirport(r.Source),
		Destination: NewAirport(r.Destination),
		Distance:    r.Distance,
	}
}

type FlightList struct {
	ID                 uuid.UUID `json:"id"`
	SourceAirport      string    `json:"source_airport"`
	DestinationAirport string    `json:"destination_airport"`
	AirplaneName       string    `json:"airplane_name"`
	DepartureTime      time.Time `json:"departure_time"`
	ArrivalTime        time.Time `json:"arrival_time"`
	AvailableSeats     int       `json:"available_seats"`
	CrewNames          []string  `json:"crew_names"`
}

func NewFlightList(f models.Flight) FlightList {
	names := make([]string, 0, len(f.Crew))
	for _, c := range f.Crew {
		names = append(names, c.FullName())
	}
	return FlightList{
		ID:                 f.ID,
		SourceAirport:      f.Route.Source.Name,
		DestinationAirport: f.Route.Destination.Name,
		AirplaneName:       f.Airplane.Name,
		DepartureTime:      f.DepartureTime,
		ArrivalTime:        f.ArrivalTime,
		AvailableSeats:     f.AvailableSeats(),
		CrewNames:          names,
	}
}

type FlightDetail struct {
	ID             uuid.UUID    `json:"id"`
	Route          RouteDetail  `json:"route"`
	Airplane       AirplaneList `json:"airplane"`
	DepartureTime  time.Time    `json:"departure_time"`
	ArrivalTime    time.Time    `json:"arrival_time"`
	AvailableSeats int          `json:"available_seats"`
	Crew           []CrewList   `json:"crew"`
}

func NewFlightDetail(f models.Flight, mediaURL string) FlightDetail {
	crew := make([]CrewList, 0, len(f.Crew))
	for _, c := range f.Crew {
		crew = append(crew, NewCrewList(c))
	}
	return FlightDetail{
		ID:             f.ID,
		Route:          NewRouteDetail(f.Route),
		Airplane:       NewAirplaneList(f.Airplane, mediaURL),
		DepartureTime:  f.DepartureTime,
		ArrivalTime:    f.ArrivalTime,
		AvailableSeats: f.AvailableSeats(),
		Crew:           crew,
	}
}

type TicketList struct {
	ID              uuid.UUID `json:"id"`
	Row             int       `json:"row"`
	Seat            int       `json:"seat"`
	SeatNumber      string    `json:"seat_number"`
	Flight          uuid.UUID `json:"flight"`
	SourceCity      string    `json:"source_city"`
	DestinationCity string    `json:"destination_city"`
}

func NewTicketList(t models.Ticket) TicketList {
	return TicketList{
		ID:              t.ID,
		Row:             t.Row,
		Seat:            t.Seat,
		SeatNumber:      t.SeatNumber(),
		Flight:          t.FlightID,
		SourceCity:      t.Flight.Route.Source.ClosestBigCity,
		DestinationCity: t.Flight.Route.Destination.ClosestBigCity,
	}
}

type TicketDetail struct {
	ID         uuid.UUID    `json:"id"`
	Row        int          `json:"row"`
	Seat       int          `json:"seat"`
	SeatNumber string       `json:"seat_number"`
	Flight     FlightDetail `json:"flight"`
	Order      uuid.UUID    `json:"order"`
}

func NewTicketDetail(t models.Ticket, mediaURL string) TicketDetail {
	return TicketDetail{
		ID:         t.ID,
		Row:        t.Row,
		Seat:       t.Seat,
		SeatNumber: t.SeatNumber(),
		Flight:     NewFlightDetail(t.Flight, mediaURL),
		Order:      t.OrderID,
	}
}

type OrderList struct {
	ID           uuid.UUID `json:"id"`
	UserFullName string    `json:"user_full_name"`
	TicketsCount int       `json:"tickets_count"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewOrderList(o models.Order) OrderList {
	return OrderList{
		ID:           o.ID,
		UserFullName: o.User.FullName(),
		TicketsCount: len(o.Tickets),
		CreatedAt:    o.CreatedAt,
	}
}

type OrderDetail struct {
	ID        uuid.UUID      `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Tickets   []TicketDetail `json:"tickets"`
}

func NewOrderDetail(o models.Order, mediaURL string) OrderDetail {
	tickets := make([]TicketDetail, 0, len(o.Tickets))
	for _, t := range o.Tickets {
		tickets = append(tickets, NewTicketDetail(t, mediaURL))
	}
	return OrderDetail{ID: o.ID, CreatedAt: o.CreatedAt, Tickets: tickets}
}

type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
}

func NewUser(u models.User) User {
	return User{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName, IsStaff: u.IsStaff}
}

// Map projects every element of in with fn.
func Map[E, V any](in []E, fn func(E) V) []V {
	out := make([]V, 0, len(in))
	for _, e := range in {
		out = append(out, fn(e))
	}
	return out
}
