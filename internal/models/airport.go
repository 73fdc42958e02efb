package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Airport struct {
	Base
	Name           string `gorm:"type:varchar(255);not null;unique_index:uq_airports_name"`
	ClosestBigCity string `gorm:"type:varchar(255);not null;index"`
}

func (a Airport) String() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.ClosestBigCity)
}

type AirplaneType struct {
	Base
	Name string `gorm:"type:varchar(255);not null;unique_index:uq_airplane_types_name"`

	AirplanesCount int `gorm:"-"`
}

type Airplane struct {
	Base
	Name           string       `gorm:"type:varchar(255);not null;unique_index:uq_airplanes_name_type"`
	Rows           int          `gorm:"not null"`
	SeatsInRow     int          `gorm:"not null"`
	AirplaneTypeID uuid.UUID    `gorm:"type:uuid;not null;unique_index:uq_airplanes_name_type"`
	AirplaneType   AirplaneType `gorm:"foreignkey:AirplaneTypeID"`
	Image          string       `gorm:"type:varchar(512)"`
}

func (a Airplane) TotalSeats() int {
	return a.Rows * a.SeatsInRow
}

type Crew struct {
	Base
	FirstName string `gorm:"type:varchar(255);not null;index"`
	LastName  string `gorm:"type:varchar(255);not null;index"`

	FlightsCount int `gorm:"-"`
}

func (Crew) TableName() string { return "crew" }

func (c Crew) FullName() string {
	return c.FirstName + " " + c.LastName
}

type Route struct {
	Base
	SourceID      uuid.UUID `gorm:"type:uuid;not null;unique_index:uq_routes_source_destination"`
	Source        Airport   `gorm:"foreignkey:SourceID"`
	DestinationID uuid.UUID `gorm:"type:uuid;not null;unique_index:uq_routes_source_destination"`
	Destination   Airport   `gorm:"foreignkey:DestinationID"`
	// Distance in kilometers.
	Distance int `gorm:"not null"`
}

func (r Route) String() string {
	return fmt.Sprintf("%s → %s (%d km)", r.Source.Name, r.Destination.Name, r.Distance)
}

type Flight struct {
	Base
	RouteID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Route         Route     `gorm:"foreignkey:RouteID"`
	AirplaneID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Airplane      Airplane  `gorm:"foreignkey:AirplaneID"`
	DepartureTime time.Time `gorm:"not null;index"`
	ArrivalTime   time.Time `gorm:"not null"`
	Crew          []Crew    `gorm:"many2many:flight_crew"`

	TicketsCount int `gorm:"-"`
}

func (f Flight) AvailableSeats() int {
	return f.Airplane.TotalSeats() - f.TicketsCount
}

func (f Flight) CrewIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.Crew))
	for _, c := range f.Crew {
		ids = append(ids, c.ID)
	}
	return ids
}
