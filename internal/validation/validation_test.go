package validation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"airport-service/internal/models"
	"airport-service/internal/validation"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.Error(t, err)
	verr, ok := err.(*validation.Error)
	require.True(t, ok, "expected *validation.Error, got %T", err)
	return verr.Fields
}

func TestRoute(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	require.NoError(t, validation.Route(a, b, 4000))
	require.NoError(t, validation.Route(a, b, validation.MaxRouteDistance))

	require.Contains(t, fields(t, validation.Route(a, a, 10)), "destination")
	require.Contains(t, fields(t, validation.Route(a, b, 20001)), "distance")
	require.Contains(t, fields(t, validation.Route(a, b, 0)), "distance")
}

func TestFlightTimes(t *testing.T) {
	dep := time.Date(2030, 1, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, validation.FlightTimes(dep, dep.Add(time.Minute)))
	require.Contains(t, fields(t, validation.FlightTimes(dep, dep)), "arrival_time")
	require.Contains(t, fields(t, validation.FlightTimes(dep, dep.Add(-time.Hour))), "arrival_time")
}

func TestTicketPosition(t *testing.T) {
	plane := models.Airplane{Rows: 20, SeatsInRow: 6}

	cases := []struct {
		name      string
		row, seat int
		field     string
	}{
		{"first seat", 1, 1, ""},
		{"last seat", 20, 6, ""},
		{"row zero", 0, 1, "row"},
		{"row too big", 21, 1, "row"},
		{"seat zero", 1, 0, "seat"},
		{"seat too big", 1, 7, "seat"},
		{"both bad reports row", 50, 50, "row"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validation.TicketPosition(tc.row, tc.seat, plane)
			if tc.field == "" {
				require.NoError(t, err)
				return
			}
			f := fields(t, err)
			require.Len(t, f, 1)
			require.Contains(t, f, tc.field)
		})
	}

	f := fields(t, validation.TicketPosition(1, 9, plane))
	require.Equal(t, "seat must be between 1 and 6.", f["seat"])
}

func TestTicketTiming(t *testing.T) {
	now := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	lead := validation.DefaultLeadTime

	require.NoError(t, validation.TicketTiming(now.Add(11*time.Minute), now, lead))

	departed := fields(t, validation.TicketTiming(now.Add(-time.Minute), now, lead))
	require.Contains(t, departed["flight"], "already departed")

	require.Contains(t, fields(t, validation.TicketTiming(now, now, lead)), "flight")

	soon := fields(t, validation.TicketTiming(now.Add(5*time.Minute), now, lead))
	require.Contains(t, soon["flight"], "less than 10 minutes")

	require.Contains(t, fields(t, validation.TicketTiming(now.Add(lead), now, lead)), "flight")
}

func TestUserNames(t *testing.T) {
	require.NoError(t, validation.UserNames("Ada", "Lovelace"))

	f := fields(t, validation.UserNames("  ", "Lovelace"))
	require.Contains(t, f, "first_name")
	require.NotContains(t, f, "last_name")

	f = fields(t, validation.UserNames("", ""))
	require.Len(t, f, 2)

	require.Contains(t, fields(t, validation.UserNames("Ada1", "Lovelace")), "first_name")
}

func TestCatalogRules(t *testing.T) {
	require.NoError(t, validation.Airport("JFK", "New York"))
	require.Contains(t, fields(t, validation.Airport("", "New York")), "name")

	require.NoError(t, validation.Airplane("A320-1", 30, 6))
	f := fields(t, validation.Airplane("A320-1", 0, -1))
	require.Contains(t, f, "rows")
	require.Contains(t, f, "seats_in_row")

	require.Contains(t, fields(t, validation.Crew("Ann", " ")), "last_name")
	require.Contains(t, fields(t, validation.AirplaneType("")), "name")
}

func TestError_PrefixedAndRequired(t *testing.T) {
	verr := validation.Field("row", "bad").Prefixed("tickets.2.")
	require.Equal(t, map[string]string{"tickets.2.row": "bad"}, verr.Fields)

	require.NoError(t, validation.Required(map[string]bool{"name": true}))
	f := fields(t, validation.Required(map[string]bool{"name": false, "city": true}))
	require.Equal(t, map[string]string{"name": "This field is required."}, f)

	var empty *validation.Error
	require.NoError(t, empty.OrNil())
}

func TestJoin(t *testing.T) {
	require.NoError(t, validation.Join(nil, nil))

	f := fields(t, validation.Join(validation.Field("row", "a"), nil, validation.Field("flight", "b")))
	require.Equal(t, map[string]string{"row": "a", "flight": "b"}, f)

	plain := errors.New("db down")
	require.Equal(t, plain, validation.Join(validation.Field("row", "a"), plain))
}
