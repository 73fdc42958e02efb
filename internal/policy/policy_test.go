package policy_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"airport-service/internal/policy"
)

var (
	anon    = policy.AnonymousActor()
	regular = policy.UserActor(uuid.New(), false)
	staff   = policy.UserActor(uuid.New(), true)
)

func TestAuthorize_Catalog(t *testing.T) {
	for _, res := range []policy.Resource{policy.Airport, policy.AirplaneType, policy.Airplane, policy.Crew, policy.Route} {
		t.Run(string(res), func(t *testing.T) {
			require.Equal(t, policy.Allow, policy.Authorize(anon, policy.Read, res, nil))
			require.Equal(t, policy.DenyUnauthenticated, policy.Authorize(anon, policy.Create, res, nil))
			require.Equal(t, policy.DenyUnauthenticated, policy.Authorize(anon, policy.Delete, res, nil))

			require.Equal(t, policy.Allow, policy.Authorize(regular, policy.Read, res, nil))
			require.Equal(t, policy.Allow, policy.Authorize(regular, policy.Create, res, nil))
			require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Update, res, nil))
			require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Delete, res, nil))

			require.Equal(t, policy.Allow, policy.Authorize(staff, policy.Update, res, nil))
			require.Equal(t, policy.DenyForbidden, policy.Authorize(staff, policy.Delete, res, nil))
		})
	}
}

func TestAuthorize_Flight(t *testing.T) {
	require.Equal(t, policy.Allow, policy.Authorize(anon, policy.Read, policy.Flight, nil))
	require.Equal(t, policy.DenyUnauthenticated, policy.Authorize(anon, policy.Create, policy.Flight, nil))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Create, policy.Flight, nil))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Delete, policy.Flight, nil))
	for _, a := range []policy.Action{policy.Read, policy.Create, policy.Update, policy.Delete} {
		require.Equal(t, policy.Allow, policy.Authorize(staff, a, policy.Flight, nil), a)
	}
}

func TestAuthorize_Order(t *testing.T) {
	mine := regular.UserID
	other := uuid.New()

	require.Equal(t, policy.DenyUnauthenticated, policy.Authorize(anon, policy.Read, policy.Order, nil))
	require.Equal(t, policy.Allow, policy.Authorize(regular, policy.Read, policy.Order, &mine))
	require.Equal(t, policy.DenyHidden, policy.Authorize(regular, policy.Read, policy.Order, &other))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Update, policy.Order, nil))

	staffOwn := staff.UserID
	require.Equal(t, policy.Allow, policy.Authorize(staff, policy.Update, policy.Order, &staffOwn))
	require.Equal(t, policy.DenyHidden, policy.Authorize(staff, policy.Read, policy.Order, &other))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(staff, policy.Delete, policy.Order, nil))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(staff, policy.Delete, policy.Order, &staffOwn))
}

func TestAuthorize_Ticket(t *testing.T) {
	other := uuid.New()
	mine := regular.UserID

	require.Equal(t, policy.DenyUnauthenticated, policy.Authorize(anon, policy.Create, policy.Ticket, nil))
	require.Equal(t, policy.Allow, policy.Authorize(regular, policy.Create, policy.Ticket, &mine))
	require.Equal(t, policy.DenyHidden, policy.Authorize(regular, policy.Read, policy.Ticket, &other))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(regular, policy.Update, policy.Ticket, nil))

	require.Equal(t, policy.Allow, policy.Authorize(staff, policy.Read, policy.Ticket, &other))
	require.Equal(t, policy.Allow, policy.Authorize(staff, policy.Update, policy.Ticket, &other))
	require.Equal(t, policy.DenyHidden, policy.Authorize(staff, policy.Create, policy.Ticket, &other))
	require.Equal(t, policy.DenyForbidden, policy.Authorize(staff, policy.Delete, policy.Ticket, nil))
}

func TestOwnedOnly(t *testing.T) {
	require.True(t, policy.OwnedOnly(regular, policy.Ticket))
	require.False(t, policy.OwnedOnly(staff, policy.Ticket))
	require.True(t, policy.OwnedOnly(staff, policy.Order))
	require.False(t, policy.OwnedOnly(anon, policy.Airport))
}
