package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/repository/cache"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

type FlightInput struct {
	Route         *uuid.UUID   `json:"route"`
	Airplane      *uuid.UUID   `json:"airplane"`
	DepartureTime *time.Time   `json:"departure_time"`
	ArrivalTime   *time.Time   `json:"arrival_time"`
	Crew          *[]uuid.UUID `json:"crew"`
}

// present leaves crew out: a flight may be created without crew.
func (in FlightInput) present() map[string]bool {
	return map[string]bool{
		"route":          in.Route != nil,
		"airplane":       in.Airplane != nil,
		"departure_time": in.DepartureTime != nil,
		"arrival_time":   in.ArrivalTime != nil,
	}
}

func (in FlightInput) apply(s *Service, f *models.Flight) error {
	if in.Route != nil {
		if _, err := s.repo.GetRoute(*in.Route); err != nil {
			return reference(err, "route", *in.Route)
		}
		f.RouteID = *in.Route
	}
	if in.Airplane != nil {
		if _, err := s.repo.GetAirplane(*in.Airplane); err != nil {
			return reference(err, "airplane", *in.Airplane)
		}
		f.AirplaneID = *in.Airplane
	}
	assign(&f.DepartureTime, in.DepartureTime)
	assign(&f.ArrivalTime, in.ArrivalTime)
	if in.Crew != nil {
		crew, err := s.resolveCrew(*in.Crew)
		if err != nil {
			return err
		}
		f.Crew = crew
	}
	return validation.FlightTimes(f.DepartureTime, f.ArrivalTime)
}

// resolveCrew loads the distinct crew members named by ids and fails on
// the first id that does not exist.
func (s *Service) resolveCrew(ids []uuid.UUID) ([]models.Crew, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	crew, err := s.repo.FindCrew(unique)
	if err != nil {
		return nil, err
	}
	found := make(map[uuid.UUID]bool, len(crew))
	for _, c := range crew {
		found[c.ID] = true
	}
	for _, id := range unique {
		if !found[id] {
			return nil, validation.Field("crew", fmt.Sprintf("Invalid pk \"%s\" - object does not exist.", id))
		}
	}
	return crew, nil
}

func (s *Service) flights() entity[models.Flight] {
	return entity[models.Flight]{
		res: policy.Flight, kind: models.KindFlight,
		get: s.repo.GetFlight, create: s.repo.CreateFlight, save: s.repo.SaveFlight,
	}
}

func (s *Service) ListFlights(ctx context.Context, actor policy.Actor, f repository.FlightFilter) ([]views.FlightList, error) {
	if err := s.allow(actor, policy.Read, policy.Flight, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("flight", cache.PublicScope, f), func() ([]views.FlightList, error) {
		items, err := s.repo.ListFlights(f)
		return views.Map(items, views.NewFlightList), err
	})
}

func (s *Service) GetFlight(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.FlightDetail, error) {
	if err := s.allow(actor, policy.Read, policy.Flight, nil); err != nil {
		return views.FlightDetail{}, err
	}
	return cached(ctx, s, cache.Key("flight", cache.PublicScope, id), func() (views.FlightDetail, error) {
		f, err := s.repo.GetFlight(id)
		return views.NewFlightDetail(f, s.mediaURL), notFound(err)
	})
}

func (s *Service) CreateFlight(ctx context.Context, actor policy.Actor, in FlightInput) (views.FlightDetail, error) {
	f, err := create(ctx, s, actor, s.flights(), in)
	return views.NewFlightDetail(f, s.mediaURL), err
}

func (s *Service) UpdateFlight(ctx context.Context, actor policy.Actor, id uuid.UUID, in FlightInput, partial bool) (views.FlightDetail, error) {
	f, err := update(ctx, s, actor, s.flights(), id, in, partial)
	return views.NewFlightDetail(f, s.mediaURL), err
}
