package service

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/repository/cache"
	"airport-service/internal/storage"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

func trimmed(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func assign[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Airports

type AirportInput struct {
	Name           *string `json:"name" binding:"omitempty,max=255"`
	ClosestBigCity *string `json:"closest_big_city" binding:"omitempty,max=255"`
}

func (in AirportInput) present() map[string]bool {
	return map[string]bool{"name": in.Name != nil, "closest_big_city": in.ClosestBigCity != nil}
}

func (in AirportInput) apply(_ *Service, a *models.Airport) error {
	trimmed(&a.Name, in.Name)
	trimmed(&a.ClosestBigCity, in.ClosestBigCity)
	return validation.Airport(a.Name, a.ClosestBigCity)
}

func (s *Service) airports() entity[models.Airport] {
	return entity[models.Airport]{
		res: policy.Airport, kind: models.KindAirport,
		get: s.repo.GetAirport, create: s.repo.CreateAirport, save: s.repo.SaveAirport,
	}
}

func (s *Service) ListAirports(ctx context.Context, actor policy.Actor, f repository.AirportFilter) ([]views.Airport, error) {
	if err := s.allow(actor, policy.Read, policy.Airport, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("airport", cache.PublicScope, f), func() ([]views.Airport, error) {
		items, err := s.repo.ListAirports(f)
		return views.Map(items, views.NewAirport), err
	})
}

func (s *Service) GetAirport(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.Airport, error) {
	if err := s.allow(actor, policy.Read, policy.Airport, nil); err != nil {
		return views.Airport{}, err
	}
	return cached(ctx, s, cache.Key("airport", cache.PublicScope, id), func() (views.Airport, error) {
		a, err := s.repo.GetAirport(id)
		return views.NewAirport(a), notFound(err)
	})
}

func (s *Service) CreateAirport(ctx context.Context, actor policy.Actor, in AirportInput) (views.Airport, error) {
	a, err := create(ctx, s, actor, s.airports(), in)
	return views.NewAirport(a), err
}

func (s *Service) UpdateAirport(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirportInput, partial bool) (views.Airport, error) {
	a, err := update(ctx, s, actor, s.airports(), id, in, partial)
	return views.NewAirport(a), err
}

// Airplane types

type AirplaneTypeInput struct {
	Name *string `json:"name" binding:"omitempty,max=255"`
}

func (in AirplaneTypeInput) present() map[string]bool {
	return map[string]bool{"name": in.Name != nil}
}

func (in AirplaneTypeInput) apply(_ *Service, t *models.AirplaneType) error {
	trimmed(&t.Name, in.Name)
	return validation.AirplaneType(t.Name)
}

func (s *Service) airplaneTypes() entity[models.AirplaneType] {
	return entity[models.AirplaneType]{
		res: policy.AirplaneType, kind: models.KindAirplaneType,
		get: s.repo.GetAirplaneType, create: s.repo.CreateAirplaneType, save: s.repo.SaveAirplaneType,
	}
}

func (s *Service) ListAirplaneTypes(ctx context.Context, actor policy.Actor, f repository.AirplaneTypeFilter) ([]views.AirplaneType, error) {
	if err := s.allow(actor, policy.Read, policy.AirplaneType, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("airplane_type", cache.PublicScope, f), func() ([]views.AirplaneType, error) {
		items, err := s.repo.ListAirplaneTypes(f)
		return views.Map(items, views.NewAirplaneType), err
	})
}

func (s *Service) GetAirplaneType(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.AirplaneType, error) {
	if err := s.allow(actor, policy.Read, policy.AirplaneType, nil); err != nil {
		return views.AirplaneType{}, err
	}
	return cached(ctx, s, cache.Key("airplane_type", cache.PublicScope, id), func() (views.AirplaneType, error) {
		t, err := s.repo.GetAirplaneType(id)
		return views.NewAirplaneType(t), notFound(err)
	})
}

func (s *Service) CreateAirplaneType(ctx context.Context, actor policy.Actor, in AirplaneTypeInput) (views.AirplaneType, error) {
	t, err := create(ctx, s, actor, s.airplaneTypes(), in)
	return views.NewAirplaneType(t), err
}

func (s *Service) UpdateAirplaneType(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirplaneTypeInput, partial bool) (views.AirplaneType, error) {
	t, err := update(ctx, s, actor, s.airplaneTypes(), id, in, partial)
	return views.NewAirplaneType(t), err
}

// Airplanes

type AirplaneInput struct {
	Name         *string    `json:"name" binding:"omitempty,max=255"`
	Rows         *int       `json:"rows"`
	SeatsInRow   *int       `json:"seats_in_row"`
	AirplaneType *uuid.UUID `json:"airplane_type"`
}

func (in AirplaneInput) present() map[string]bool {
	return map[string]bool{
		"name":          in.Name != nil,
		"rows":          in.Rows != nil,
		"seats_in_row":  in.SeatsInRow != nil,
		"airplane_type": in.AirplaneType != nil,
	}
}

func (in AirplaneInput) apply(s *Service, a *models.Airplane) error {
	trimmed(&a.Name, in.Name)
	assign(&a.Rows, in.Rows)
	assign(&a.SeatsInRow, in.SeatsInRow)
	if in.AirplaneType != nil {
		if _, err := s.repo.GetAirplaneType(*in.AirplaneType); err != nil {
			return reference(err, "airplane_type", *in.AirplaneType)
		}
		a.AirplaneTypeID = *in.AirplaneType
	}
	return validation.Airplane(a.Name, a.Rows, a.SeatsInRow)
}

func (s *Service) airplanes() entity[models.Airplane] {
	return entity[models.Airplane]{
		res: policy.Airplane, kind: models.KindAirplane,
		get: s.repo.GetAirplane, create: s.repo.CreateAirplane, save: s.repo.SaveAirplane,
	}
}

func (s *Service) ListAirplanes(ctx context.Context, actor policy.Actor, f repository.AirplaneFilter) ([]views.AirplaneList, error) {
	if err := s.allow(actor, policy.Read, policy.Airplane, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("airplane", cache.PublicScope, f), func() ([]views.AirplaneList, error) {
		items, err := s.repo.ListAirplanes(f)
		return views.Map(items, func(a models.Airplane) views.AirplaneList {
			return views.NewAirplaneList(a, s.mediaURL)
		}), err
	})
}

func (s *Service) GetAirplane(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.AirplaneDetail, error) {
	if err := s.allow(actor, policy.Read, policy.Airplane, nil); err != nil {
		return views.AirplaneDetail{}, err
	}
	return cached(ctx, s, cache.Key("airplane", cache.PublicScope, id), func() (views.AirplaneDetail, error) {
		a, err := s.repo.GetAirplane(id)
		return views.NewAirplaneDetail(a, s.mediaURL), notFound(err)
	})
}

func (s *Service) CreateAirplane(ctx context.Context, actor policy.Actor, in AirplaneInput) (views.AirplaneDetail, error) {
	a, err := create(ctx, s, actor, s.airplanes(), in)
	return views.NewAirplaneDetail(a, s.mediaURL), err
}

func (s *Service) UpdateAirplane(ctx context.Context, actor policy.Actor, id uuid.UUID, in AirplaneInput, partial bool) (views.AirplaneDetail, error) {
	a, err := update(ctx, s, actor, s.airplanes(), id, in, partial)
	return views.NewAirplaneDetail(a, s.mediaURL), err
}

// UploadAirplaneImage stores a new picture for the airplane and drops the
// previous file. It is an airplane update for authorization purposes.
func (s *Service) UploadAirplaneImage(ctx context.Context, actor policy.Actor, id uuid.UUID, filename string, src io.Reader) (views.AirplaneDetail, error) {
	if err := s.allow(actor, policy.Update, policy.Airplane, nil); err != nil {
		return views.AirplaneDetail{}, err
	}
	if s.images == nil {
		return views.AirplaneDetail{}, errors.New("image storage is not configured")
	}
	a, err := s.repo.GetAirplane(id)
	if err != nil {
		return views.AirplaneDetail{}, notFound(err)
	}
	rel, err := s.images.SaveAirplaneImage(a.Name, filename, src)
	if err != nil {
		return views.AirplaneDetail{}, rejected(policy.Airplane, imageError(err))
	}

	previous := a.Image
	a.Image = rel
	if err := s.repo.SaveAirplane(&a); err != nil {
		_ = s.images.Remove(rel)
		return views.AirplaneDetail{}, err
	}
	if err := s.images.Remove(previous); err != nil {
		logrus.WithError(err).WithField("path", previous).Warn("stale airplane image left on disk")
	}
	s.committed(ctx, models.KindAirplane, id, ActionUpdated)

	a, err = s.repo.GetAirplane(id)
	return views.NewAirplaneDetail(a, s.mediaURL), notFound(err)
}

func imageError(err error) error {
	if errors.Is(err, storage.ErrUnsupportedImage) || errors.Is(err, storage.ErrImageTooLarge) {
		return validation.Field("image", err.Error())
	}
	return err
}

// Crew

type CrewInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
}

func (in CrewInput) present() map[string]bool {
	return map[string]bool{"first_name": in.FirstName != nil, "last_name": in.LastName != nil}
}

func (in CrewInput) apply(_ *Service, c *models.Crew) error {
	trimmed(&c.FirstName, in.FirstName)
	trimmed(&c.LastName, in.LastName)
	return validation.Crew(c.FirstName, c.LastName)
}

func (s *Service) crew() entity[models.Crew] {
	return entity[models.Crew]{
		res: policy.Crew, kind: models.KindCrew,
		get: s.repo.GetCrew, create: s.repo.CreateCrew, save: s.repo.SaveCrew,
	}
}

func (s *Service) ListCrew(ctx context.Context, actor policy.Actor, f repository.CrewFilter) ([]views.CrewList, error) {
	if err := s.allow(actor, policy.Read, policy.Crew, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("crew", cache.PublicScope, f), func() ([]views.CrewList, error) {
		items, err := s.repo.ListCrew(f)
		return views.Map(items, views.NewCrewList), err
	})
}

func (s *Service) GetCrew(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.Crew, error) {
	if err := s.allow(actor, policy.Read, policy.Crew, nil); err != nil {
		return views.Crew{}, err
	}
	return cached(ctx, s, cache.Key("crew", cache.PublicScope, id), func() (views.Crew, error) {
		c, err := s.repo.GetCrew(id)
		return views.NewCrew(c), notFound(err)
	})
}

func (s *Service) CreateCrew(ctx context.Context, actor policy.Actor, in CrewInput) (views.Crew, error) {
	c, err := create(ctx, s, actor, s.crew(), in)
	return views.NewCrew(c), err
}

func (s *Service) UpdateCrew(ctx context.Context, actor policy.Actor, id uuid.UUID, in CrewInput, partial bool) (views.Crew, error) {
	c, err := update(ctx, s, actor, s.crew(), id, in, partial)
	return views.NewCrew(c), err
}

// Routes

type RouteInput struct {
	Source      *uuid.UUID `json:"source"`
	Destination *uuid.UUID `json:"destination"`
	Distance    *int       `json:"distance"`
}

func (in RouteInput) present() map[string]bool {
	return map[string]bool{"source": in.Source != nil, "destination": in.Destination != nil, "distance": in.Distance != nil}
}

func (in RouteInput) apply(s *Service, r *models.Route) error {
	for _, ref := range []struct {
		field string
		id    *uuid.UUID
		dst   *uuid.UUID
	}{
		{"source", in.Source, &r.SourceID},
		{"destination", in.Destination, &r.DestinationID},
	} {
		if ref.id == nil {
			continue
		}
		if _, err := s.repo.GetAirport(*ref.id); err != nil {
			return reference(err, ref.field, *ref.id)
		}
		*ref.dst = *ref.id
	}
	assign(&r.Distance, in.Distance)
	return validation.Route(r.SourceID, r.DestinationID, r.Distance)
}

func (s *Service) routes() entity[models.Route] {
	return entity[models.Route]{
		res: policy.Route, kind: models.KindRoute,
		get: s.repo.GetRoute, create: s.repo.CreateRoute, save: s.repo.SaveRoute,
	}
}

func (s *Service) ListRoutes(ctx context.Context, actor policy.Actor, f repository.RouteFilter) ([]views.RouteList, error) {
	if err := s.allow(actor, policy.Read, policy.Route, nil); err != nil {
		return nil, err
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("route", cache.PublicScope, f), func() ([]views.RouteList, error) {
		items, err := s.repo.ListRoutes(f)
		return views.Map(items, views.NewRouteList), err
	})
}

func (s *Service) GetRoute(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.RouteDetail, error) {
	if err := s.allow(actor, policy.Read, policy.Route, nil); err != nil {
		return views.RouteDetail{}, err
	}
	return cached(ctx, s, cache.Key("route", cache.PublicScope, id), func() (views.RouteDetail, error) {
		r, err := s.repo.GetRoute(id)
		return views.NewRouteDetail(r), notFound(err)
	})
}

func (s *Service) CreateRoute(ctx context.Context, actor policy.Actor, in RouteInput) (views.RouteDetail, error) {
	r, err := create(ctx, s, actor, s.routes(), in)
	return views.NewRouteDetail(r), err
}

func (s *Service) UpdateRoute(ctx context.Context, actor policy.Actor, id uuid.UUID, in RouteInput, partial bool) (views.RouteDetail, error) {
	r, err := update(ctx, s, actor, s.routes(), id, in, partial)
	return views.NewRouteDetail(r), err
}
