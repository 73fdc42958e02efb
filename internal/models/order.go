package models

import (
	"fmt"

	"github.com/google/uuid"
)

type Order struct {
	Base
	UserID  uuid.UUID `gorm:"type:uuid;not null;index"`
	User    User      `gorm:"foreignkey:UserID"`
	Tickets []Ticket  `gorm:"foreignkey:OrderID"`
}

type Ticket struct {
	Base
	Row      int       `gorm:"not null;unique_index:uq_tickets_flight_row_seat"`
	Seat     int       `gorm:"not null;unique_index:uq_tickets_flight_row_seat"`
	FlightID uuid.UUID `gorm:"type:uuid;not null;unique_index:uq_tickets_flight_row_seat"`
	Flight   Flight    `gorm:"foreignkey:FlightID"`
	OrderID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Order    Order     `gorm:"foreignkey:OrderID"`
}

// SeatNumber formats the position as "row-seat".
func (t Ticket) SeatNumber() string {
	return fmt.Sprintf("%d-%d", t.Row, t.Seat)
}
