package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/repository/cache"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

type TicketInput struct {
	Row    *int       `json:"row"`
	Seat   *int       `json:"seat"`
	Flight *uuid.UUID `json:"flight"`
	// Order is read on ticket creation only; a ticket never changes order.
	Order *uuid.UUID `json:"order,omitempty"`
}

func (in TicketInput) present() map[string]bool {
	return map[string]bool{"row": in.Row != nil, "seat": in.Seat != nil, "flight": in.Flight != nil}
}

// apply checks the seat against the flight's airplane and the departure
// against the boarding lead time. Both failures are reported together.
func (in TicketInput) apply(s *Service, t *models.Ticket) error {
	assign(&t.Row, in.Row)
	assign(&t.Seat, in.Seat)
	if in.Flight != nil {
		f, err := s.repo.GetFlight(*in.Flight)
		if err != nil {
			return reference(err, "flight", *in.Flight)
		}
		t.FlightID, t.Flight = f.ID, f
	}
	return validation.Join(
		validation.TicketPosition(t.Row, t.Seat, t.Flight.Airplane),
		validation.TicketTiming(t.Flight.DepartureTime, s.now(), s.leadTime),
	)
}

type OrderInput struct {
	Tickets []TicketInput `json:"tickets"`
}

const foreignOrderMessage = "Order does not exist or belongs to another user."

func (s *Service) tickets() entity[models.Ticket] {
	return entity[models.Ticket]{
		res: policy.Ticket, kind: models.KindTicket,
		get: s.repo.GetTicket, create: s.repo.CreateTicket, save: s.repo.SaveTicket,
	}
}

func (s *Service) ListTickets(ctx context.Context, actor policy.Actor, f repository.TicketFilter) ([]views.TicketList, error) {
	if err := s.allow(actor, policy.Read, policy.Ticket, nil); err != nil {
		return nil, err
	}
	f.OwnerID = nil
	if policy.OwnedOnly(actor, policy.Ticket) {
		f.OwnerID = &actor.UserID
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("ticket", cache.UserScope(actor.UserID), f), func() ([]views.TicketList, error) {
		items, err := s.repo.ListTickets(f)
		return views.Map(items, views.NewTicketList), err
	})
}

func (s *Service) GetTicket(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.TicketDetail, error) {
	if err := s.allow(actor, policy.Read, policy.Ticket, nil); err != nil {
		return views.TicketDetail{}, err
	}
	return cached(ctx, s, cache.Key("ticket", cache.UserScope(actor.UserID), id), func() (views.TicketDetail, error) {
		t, err := s.repo.GetTicket(id)
		if err != nil {
			return views.TicketDetail{}, notFound(err)
		}
		if err := s.allow(actor, policy.Read, policy.Ticket, &t.Order.UserID); err != nil {
			return views.TicketDetail{}, err
		}
		return views.NewTicketDetail(t, s.mediaURL), nil
	})
}

// CreateTicket books one seat on an order owned by the actor. Staff get
// no exemption: a ticket is never attached to somebody else's order.
func (s *Service) CreateTicket(ctx context.Context, actor policy.Actor, in TicketInput) (views.TicketDetail, error) {
	if err := s.allow(actor, policy.Create, policy.Ticket, nil); err != nil {
		return views.TicketDetail{}, err
	}
	present := in.present()
	present["order"] = in.Order != nil
	if err := validation.Required(present); err != nil {
		return views.TicketDetail{}, rejected(policy.Ticket, err)
	}
	if err := s.ownOrder(actor, *in.Order); err != nil {
		return views.TicketDetail{}, rejected(policy.Ticket, err)
	}

	t := models.Ticket{OrderID: *in.Order}
	if err := in.apply(s, &t); err != nil {
		return views.TicketDetail{}, rejected(policy.Ticket, err)
	}
	if err := s.repo.CreateTicket(&t); err != nil {
		return views.TicketDetail{}, rejected(policy.Ticket, conflict(err))
	}
	s.committed(ctx, models.KindTicket, t.ID, ActionCreated)

	created, err := s.repo.GetTicket(t.ID)
	return views.NewTicketDetail(created, s.mediaURL), notFound(err)
}

func (s *Service) ownOrder(actor policy.Actor, id uuid.UUID) error {
	o, err := s.repo.GetOrder(id)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil || !policy.Authorize(actor, policy.Create, policy.Ticket, &o.UserID).Allowed() {
		return validation.Field("order", foreignOrderMessage)
	}
	return nil
}

func (s *Service) UpdateTicket(ctx context.Context, actor policy.Actor, id uuid.UUID, in TicketInput, partial bool) (views.TicketDetail, error) {
	in.Order = nil
	t, err := update(ctx, s, actor, s.tickets(), id, in, partial)
	return views.NewTicketDetail(t, s.mediaURL), err
}

func (s *Service) ListOrders(ctx context.Context, actor policy.Actor, f repository.OrderFilter) ([]views.OrderList, error) {
	if err := s.allow(actor, policy.Read, policy.Order, nil); err != nil {
		return nil, err
	}
	f.UserID = nil
	if policy.OwnedOnly(actor, policy.Order) {
		f.UserID = &actor.UserID
	}
	f.Page = normalize(f.Page)
	return cached(ctx, s, listKey("order", cache.UserScope(actor.UserID), f), func() ([]views.OrderList, error) {
		items, err := s.repo.ListOrders(f)
		return views.Map(items, views.NewOrderList), err
	})
}

func (s *Service) GetOrder(ctx context.Context, actor policy.Actor, id uuid.UUID) (views.OrderDetail, error) {
	if err := s.allow(actor, policy.Read, policy.Order, nil); err != nil {
		return views.OrderDetail{}, err
	}
	return cached(ctx, s, cache.Key("order", cache.UserScope(actor.UserID), id), func() (views.OrderDetail, error) {
		o, err := s.repo.GetOrder(id)
		if err != nil {
			return views.OrderDetail{}, notFound(err)
		}
		if err := s.allow(actor, policy.Read, policy.Order, &o.UserID); err != nil {
			return views.OrderDetail{}, err
		}
		return views.NewOrderDetail(o, s.mediaURL), nil
	})
}

// orderTickets validates every nested ticket payload and stops at the
// first failing one; fields are reported as tickets.<index>.<field>.
func (s *Service) orderTickets(in OrderInput) ([]models.Ticket, error) {
	if len(in.Tickets) == 0 {
		return nil, validation.Field("tickets", "An order must contain at least one ticket.")
	}
	out := make([]models.Ticket, len(in.Tickets))
	for i, ti := range in.Tickets {
		ti.Order = nil
		if err := validation.Required(ti.present()); err != nil {
			return nil, prefixed(err, ticketPrefix(i))
		}
		if err := ti.apply(s, &out[i]); err != nil {
			return nil, prefixed(err, ticketPrefix(i))
		}
	}
	return out, nil
}

func ticketPrefix(i int) string {
	return fmt.Sprintf("tickets.%d.", i)
}

func insertTickets(tx *repository.Repository, orderID uuid.UUID, tickets []models.Ticket) error {
	for i := range tickets {
		tickets[i].OrderID = orderID
		if err := tx.CreateTicket(&tickets[i]); err != nil {
			return prefixed(conflict(err), ticketPrefix(i))
		}
	}
	return nil
}

func ticketIDs(tickets []models.Ticket) []uuid.UUID {
	ids := make([]uuid.UUID, len(tickets))
	for i, t := range tickets {
		ids[i] = t.ID
	}
	return ids
}

// CreateOrder stores the order and all of its tickets in one transaction.
func (s *Service) CreateOrder(ctx context.Context, actor policy.Actor, in OrderInput) (views.OrderDetail, error) {
	if err := s.allow(actor, policy.Create, policy.Order, nil); err != nil {
		return views.OrderDetail{}, err
	}
	tickets, err := s.orderTickets(in)
	if err != nil {
		return views.OrderDetail{}, rejected(policy.Order, err)
	}

	o := models.Order{UserID: actor.UserID}
	err = s.repo.Atomic(func(tx *repository.Repository) error {
		if err := tx.CreateOrder(&o); err != nil {
			return err
		}
		return insertTickets(tx, o.ID, tickets)
	})
	if err != nil {
		return views.OrderDetail{}, rejected(policy.Order, err)
	}
	s.committed(ctx, models.KindOrder, o.ID, ActionCreated)
	s.committedAll(ctx, models.KindTicket, ticketIDs(tickets), ActionCreated)

	created, err := s.repo.GetOrder(o.ID)
	return views.NewOrderDetail(created, s.mediaURL), notFound(err)
}

// UpdateOrder replaces the order's tickets with the given set, atomically.
func (s *Service) UpdateOrder(ctx context.Context, actor policy.Actor, id uuid.UUID, in OrderInput) (views.OrderDetail, error) {
	if err := s.allow(actor, policy.Update, policy.Order, nil); err != nil {
		return views.OrderDetail{}, err
	}
	o, err := s.repo.GetOrder(id)
	if err != nil {
		return views.OrderDetail{}, notFound(err)
	}
	if err := s.allow(actor, policy.Update, policy.Order, &o.UserID); err != nil {
		return views.OrderDetail{}, err
	}
	tickets, err := s.orderTickets(in)
	if err != nil {
		return views.OrderDetail{}, rejected(policy.Order, err)
	}

	err = s.repo.Atomic(func(tx *repository.Repository) error {
		if err := tx.DeleteOrderTickets(id); err != nil {
			return err
		}
		if err := insertTickets(tx, id, tickets); err != nil {
			return err
		}
		return tx.SaveOrder(&o)
	})
	if err != nil {
		return views.OrderDetail{}, rejected(policy.Order, err)
	}
	s.committed(ctx, models.KindOrder, id, ActionUpdated)
	s.committedAll(ctx, models.KindTicket, ticketIDs(tickets), ActionCreated)

	updated, err := s.repo.GetOrder(id)
	return views.NewOrderDetail(updated, s.mediaURL), notFound(err)
}
