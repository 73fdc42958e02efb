package views_test

import (
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"airport-service/internal/models"
	"airport-service/internal/views"
)

func flight() models.Flight {
	src := models.Airport{Name: "JFK", ClosestBigCity: "New York"}
	dst := models.Airport{Name: "LAX", ClosestBigCity: "Los Angeles"}
	plane := models.Airplane{Name: "A320", Rows: 10, SeatsInRow: 4, AirplaneType: models.AirplaneType{Name: "Narrow"}}
	dep := time.Date(2030, 5, 1, 10, 0, 0, 0, time.UTC)
	f := models.Flight{
		Route:         models.Route{Source: src, Destination: dst, Distance: 4000},
		Airplane:      plane,
		DepartureTime: dep,
		ArrivalTime:   dep.Add(5 * time.Hour),
		Crew:          []models.Crew{{FirstName: "Ann", LastName: "Lee"}},
		TicketsCount:  3,
	}
	f.ID = uuid.New()
	return f
}

func TestFlightProjections(t *testing.T) {
	f := flight()

	list := views.NewFlightList(f)
	require.Equal(t, "JFK", list.SourceAirport)
	require.Equal(t, "LAX", list.DestinationAirport)
	require.Equal(t, 37, list.AvailableSeats)
	require.Equal(t, []string{"Ann Lee"}, list.CrewNames)

	detail := views.NewFlightDetail(f, "/media/")
	require.Equal(t, "New York", detail.Route.Source.ClosestBigCity)
	require.Equal(t, 40, detail.Airplane.TotalSeats)
	require.Len(t, detail.Crew, 1)
}

func TestTicketAndOrderProjections(t *testing.T) {
	f := flight()
	tk := models.Ticket{Row: 4, Seat: 2, FlightID: f.ID, Flight: f}
	tk.OrderID = uuid.New()

	list := views.NewTicketList(tk)
	require.Equal(t, "4-2", list.SeatNumber)
	require.Equal(t, "New York", list.SourceCity)
	require.Equal(t, "Los Angeles", list.DestinationCity)

	o := models.Order{User: models.User{FirstName: gofakeit.FirstName(), LastName: "Smith"}, Tickets: []models.Ticket{tk, tk}}
	ol := views.NewOrderList(o)
	require.Equal(t, 2, ol.TicketsCount)
	require.Contains(t, ol.UserFullName, "Smith")

	od := views.NewOrderDetail(o, "")
	require.Len(t, od.Tickets, 2)
	require.Equal(t, tk.OrderID, od.Tickets[0].Order)
}

func TestAirplaneImageURL(t *testing.T) {
	a := models.Airplane{Name: "B737", Rows: 2, SeatsInRow: 3}
	require.Empty(t, views.NewAirplaneList(a, "/media/").Image)

	a.Image = "uploads/airplanes/b737-x.png"
	require.Equal(t, "/media/uploads/airplanes/b737-x.png", views.NewAirplaneDetail(a, "/media/").Image)
	require.Equal(t, 6, views.NewAirplaneDetail(a, "/media/").TotalSeats)
}

func TestMap(t *testing.T) {
	crew := []models.Crew{{FirstName: "A", LastName: "B", FlightsCount: 2}}
	out := views.Map(crew, views.NewCrewList)
	require.Equal(t, "A B", out[0].FullName)
	require.Equal(t, 2, out[0].FlightsCount)
	require.NotNil(t, views.Map([]models.Crew{}, views.NewCrewList))
}
