package http

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"airport-service/internal/repository"
	"airport-service/internal/validation"
)

type pageQuery struct {
	Limit  int `form:"limit" binding:"min=0"`
	Offset int `form:"offset" binding:"min=0"`
}

func (q pageQuery) page() repository.Page {
	return repository.Page{Limit: q.Limit, Offset: q.Offset}
}

type airportQuery struct {
	pageQuery
	Name           string `form:"name"`
	ClosestBigCity string `form:"closest_big_city"`
}

func (q airportQuery) filter() (repository.AirportFilter, error) {
	return repository.AirportFilter{Page: q.page(), Name: q.Name, ClosestBigCity: q.ClosestBigCity}, nil
}

type airplaneTypeQuery struct {
	pageQuery
	Name string `form:"name"`
}

func (q airplaneTypeQuery) filter() (repository.AirplaneTypeFilter, error) {
	return repository.AirplaneTypeFilter{Page: q.page(), Name: q.Name}, nil
}

type airplaneQuery struct {
	pageQuery
	Name             string `form:"name"`
	AirplaneTypeName string `form:"airplane_type_name"`
	RowsGt           int    `form:"rows__gt" binding:"min=0"`
	RowsLt           int    `form:"rows__lt" binding:"min=0"`
}

func (q airplaneQuery) filter() (repository.AirplaneFilter, error) {
	return repository.AirplaneFilter{
		Page:             q.page(),
		Name:             q.Name,
		AirplaneTypeName: q.AirplaneTypeName,
		RowsGt:           q.RowsGt,
		RowsLt:           q.RowsLt,
	}, nil
}

type crewQuery struct {
	pageQuery
	FirstName string `form:"first_name"`
	LastName  string `form:"last_name"`
}

func (q crewQuery) filter() (repository.CrewFilter, error) {
	return repository.CrewFilter{Page: q.page(), FirstName: q.FirstName, LastName: q.LastName}, nil
}

type routeQuery struct {
	pageQuery
	SourceName      string `form:"source_name"`
	DestinationName string `form:"destination_name"`
	DistanceGt      int    `form:"distance__gt" binding:"min=0"`
	DistanceLt      int    `form:"distance__lt" binding:"min=0"`
}

func (q routeQuery) filter() (repository.RouteFilter, error) {
	return repository.RouteFilter{
		Page:            q.page(),
		SourceName:      q.SourceName,
		DestinationName: q.DestinationName,
		DistanceGt:      q.DistanceGt,
		DistanceLt:      q.DistanceLt,
	}, nil
}

type flightQuery struct {
	pageQuery
	SourceAirport      string `form:"source_airport"`
	DestinationAirport string `form:"destination_airport"`
	DepartureDate      string `form:"departure_date"`
	Crew               string `form:"crew"`
	AirplaneType       string `form:"airplane_type"`
}

func (q flightQuery) filter() (repository.FlightFilter, error) {
	verr := &validation.Error{}
	f := repository.FlightFilter{
		Page:               q.page(),
		SourceAirport:      strings.TrimSpace(q.SourceAirport),
		DestinationAirport: strings.TrimSpace(q.DestinationAirport),
	}
	if q.DepartureDate != "" {
		day, err := time.Parse(time.DateOnly, q.DepartureDate)
		if err != nil {
			verr.Add("departure_date", "Enter a valid date (YYYY-MM-DD).")
		} else {
			f.DepartureDate = &day
		}
	}
	for _, raw := range strings.Split(q.Crew, ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			verr.Add("crew", "Enter a comma-separated list of crew ids.")
			break
		}
		f.Crew = append(f.Crew, id)
	}
	if q.AirplaneType != "" {
		id, err := uuid.Parse(q.AirplaneType)
		if err != nil {
			verr.Add("airplane_type", "Enter a valid airplane type id.")
		} else {
			f.AirplaneType = &id
		}
	}
	return f, verr.OrNil()
}

type orderQuery struct {
	pageQuery
	CreatedAtGt string `form:"created_at__gt"`
	CreatedAtLt string `form:"created_at__lt"`
}

func (q orderQuery) filter() (repository.OrderFilter, error) {
	verr := &validation.Error{}
	f := repository.OrderFilter{Page: q.page()}
	for _, b := range []struct {
		field, raw string
		dst        **time.Time
	}{
		{"created_at__gt", q.CreatedAtGt, &f.CreatedAtGt},
		{"created_at__lt", q.CreatedAtLt, &f.CreatedAtLt},
	} {
		if b.raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, b.raw)
		if err != nil {
			verr.Add(b.field, "Enter a valid RFC3339 timestamp.")
			continue
		}
		*b.dst = &t
	}
	return f, verr.OrNil()
}

type ticketQuery struct {
	pageQuery
	Row  int `form:"row" binding:"min=0"`
	Seat int `form:"seat" binding:"min=0"`
}

func (q ticketQuery) filter() (repository.TicketFilter, error) {
	return repository.TicketFilter{Page: q.page(), Row: q.Row, Seat: q.Seat}, nil
}
