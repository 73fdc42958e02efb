package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/gorm"
)

// Kind names an entity kind. Cache invalidation and mutation events are keyed by it.
type Kind string

const (
	KindAirport      Kind = "airport"
	KindAirplaneType Kind = "airplane_type"
	KindAirplane     Kind = "airplane"
	KindCrew         Kind = "crew"
	KindRoute        Kind = "route"
	KindFlight       Kind = "flight"
	KindOrder        Kind = "order"
	KindTicket       Kind = "ticket"
	KindUser         Kind = "user"
)

type Base struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (b Base) Identity() uuid.UUID { return b.ID }

func (b *Base) BeforeCreate(scope *gorm.Scope) error {
	if b.ID == uuid.Nil {
		return scope.SetColumn("ID", uuid.New())
	}
	return nil
}
