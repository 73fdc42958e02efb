package service

import (
	"context"

	"github.com/google/uuid"

	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/validation"
)

type record interface {
	Identity() uuid.UUID
}

// entity binds a model type to its repository calls.
type entity[M record] struct {
	res    policy.Resource
	kind   models.Kind
	get    func(id uuid.UUID) (M, error)
	create func(m *M) error
	save   func(m *M) error
}

// input is a write payload. apply merges the present fields into m,
// resolves references and runs the domain rules on the merged state.
type input[M any] interface {
	present() map[string]bool
	apply(s *Service, m *M) error
}

// create is the single write path for new records: policy, required
// fields, rules, insert, post-commit effects, reload.
func create[M record, I input[M]](ctx context.Context, s *Service, actor policy.Actor, e entity[M], in I) (M, error) {
	var m M
	if err := s.allow(actor, policy.Create, e.res, nil); err != nil {
		return m, err
	}
	if err := validation.Required(in.present()); err != nil {
		return m, rejected(e.res, err)
	}
	if err := in.apply(s, &m); err != nil {
		return m, rejected(e.res, err)
	}
	if err := e.create(&m); err != nil {
		return m, rejected(e.res, conflict(err))
	}
	s.committed(ctx, e.kind, m.Identity(), ActionCreated)
	return e.get(m.Identity())
}

// update replaces (partial=false) or patches an existing record.
func update[M record, I input[M]](ctx context.Context, s *Service, actor policy.Actor, e entity[M], id uuid.UUID, in I, partial bool) (M, error) {
	var zero M
	if err := s.allow(actor, policy.Update, e.res, nil); err != nil {
		return zero, err
	}
	m, err := e.get(id)
	if err != nil {
		return zero, notFound(err)
	}
	if !partial {
		if err := validation.Required(in.present()); err != nil {
			return zero, rejected(e.res, err)
		}
	}
	if err := in.apply(s, &m); err != nil {
		return zero, rejected(e.res, err)
	}
	if err := e.save(&m); err != nil {
		return zero, rejected(e.res, conflict(err))
	}
	s.committed(ctx, e.kind, id, ActionUpdated)
	return e.get(id)
}

// Delete removes a record when policy allows it. Only flights can be
// deleted, by staff; every other resource is refused.
func (s *Service) Delete(ctx context.Context, actor policy.Actor, res policy.Resource, id uuid.UUID) error {
	if err := s.allow(actor, policy.Delete, res, nil); err != nil {
		return err
	}
	if res != policy.Flight {
		return ErrForbidden
	}
	if err := s.repo.DeleteFlight(id); err != nil {
		return notFound(err)
	}
	s.committed(ctx, models.KindFlight, id, ActionDeleted)
	// Tickets go with the flight.
	s.committedAll(ctx, models.KindTicket, nil, ActionDeleted)
	return nil
}
