package postgres

import (
	"github.com/google/uuid"
	"github.com/jinzhu/gorm"

	"airport-service/internal/models"
	"airport-service/internal/repository"
)

// ticketFlight preloads the flight graph every ticket projection needs.
func ticketFlight(q *gorm.DB, prefix string) *gorm.DB {
	return q.
		Preload(prefix + "Flight").
		Preload(prefix + "Flight.Route").
		Preload(prefix + "Flight.Route.Source").
		Preload(prefix + "Flight.Route.Destination").
		Preload(prefix + "Flight.Airplane").
		Preload(prefix + "Flight.Airplane.AirplaneType").
		Preload(prefix + "Flight.Crew")
}

type OrderRepo struct {
	db *gorm.DB
}

func (r *OrderRepo) CreateOrder(o *models.Order) error {
	return translate(r.db.Create(o).Error)
}

func (r *OrderRepo) SaveOrder(o *models.Order) error {
	return translate(r.db.Save(o).Error)
}

func (r *OrderRepo) GetOrder(id uuid.UUID) (models.Order, error) {
	var o models.Order
	q := ticketFlight(r.db.Preload("User").Preload("Tickets", orderedTickets), "Tickets.")
	err := q.Where("id = ?", id).First(&o).Error
	return o, translate(err)
}

func (r *OrderRepo) ListOrders(f repository.OrderFilter) ([]models.Order, error) {
	q := r.db.Preload("User").Preload("Tickets", orderedTickets).Order("created_at DESC")
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.CreatedAtGt != nil {
		q = q.Where("created_at > ?", *f.CreatedAtGt)
	}
	if f.CreatedAtLt != nil {
		q = q.Where("created_at < ?", *f.CreatedAtLt)
	}
	out := []models.Order{}
	err := paginate(q, f.Page).Find(&out).Error
	return out, translate(err)
}

func orderedTickets(db *gorm.DB) *gorm.DB {
	return db.Order(`tickets."row", tickets.seat`)
}

type TicketRepo struct {
	db *gorm.DB
}

func (r *TicketRepo) CreateTicket(t *models.Ticket) error {
	return translate(r.db.Create(t).Error)
}

func (r *TicketRepo) SaveTicket(t *models.Ticket) error {
	return translate(r.db.Save(t).Error)
}

func (r *TicketRepo) GetTicket(id uuid.UUID) (models.Ticket, error) {
	var t models.Ticket
	err := ticketFlight(r.db.Preload("Order"), "").Where("id = ?", id).First(&t).Error
	return t, translate(err)
}

func (r *TicketRepo) ListTickets(f repository.TicketFilter) ([]models.Ticket, error) {
	q := r.db.
		Preload("Order").
		Preload("Flight").
		Preload("Flight.Route").
		Preload("Flight.Route.Source").
		Preload("Flight.Route.Destination").
		Order(`created_at DESC, "row", seat`)
	if f.OwnerID != nil {
		q = q.Where("order_id IN (SELECT id FROM orders WHERE user_id = ?)", *f.OwnerID)
	}
	if f.Row > 0 {
		q = q.Where(`"row" = ?`, f.Row)
	}
	if f.Seat > 0 {
		q = q.Where("seat = ?", f.Seat)
	}
	out := []models.Ticket{}
	err := paginate(q, f.Page).Find(&out).Error
	return out, translate(err)
}

func (r *TicketRepo) DeleteOrderTickets(orderID uuid.UUID) error {
	return translate(r.db.Where("order_id = ?", orderID).Delete(&models.Ticket{}).Error)
}
