package service_test

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"airport-service/internal/policy"
	svc "airport-service/internal/service"
)

func TestUsers_RegisterAndLogin(t *testing.T) {
	e := newEnv(t)

	u, err := e.s.Register(e.ctx, svc.RegisterInput{
		Email: "  Grace@Example.COM ", FirstName: "Grace", LastName: "Hopper", Password: "s3cretpass",
	})
	require.NoError(t, err)
	require.Equal(t, "grace@example.com", u.Email)
	require.False(t, u.IsStaff)

	_, err = e.s.Register(e.ctx, svc.RegisterInput{
		Email: "GRACE@example.com", FirstName: "Grace", LastName: "Hopper", Password: "s3cretpass",
	})
	require.True(t, errors.Is(err, svc.ErrConflict))
	require.Contains(t, fieldsOf(t, err), "email")

	_, err = e.s.Register(e.ctx, svc.RegisterInput{Email: "x@example.com", FirstName: "R2D2", LastName: " ", Password: "short"})
	f := fieldsOf(t, err)
	require.Equal(t, "First name should only contain letters.", f["first_name"])
	require.Equal(t, "Last name is required.", f["last_name"])
	require.Contains(t, f, "password")

	_, err = e.s.ObtainToken(e.ctx, "grace@example.com", "wrong-password")
	require.True(t, errors.Is(err, svc.ErrUnauthenticated))

	pair, err := e.s.ObtainToken(e.ctx, "Grace@example.com", "s3cretpass")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	actor, err := e.s.Authenticate(e.ctx, pair.Access)
	require.NoError(t, err)
	require.Equal(t, u.ID, actor.UserID)
	require.Equal(t, policy.Regular, actor.Tier)

	_, err = e.s.Authenticate(e.ctx, pair.Refresh)
	require.True(t, errors.Is(err, svc.ErrUnauthenticated), "refresh tokens are not bearer credentials")

	me, err := e.s.Me(e.ctx, actor)
	require.NoError(t, err)
	require.Equal(t, "Grace", me.FirstName)

	_, err = e.s.Me(e.ctx, policy.AnonymousActor())
	require.Equal(t, svc.ErrUnauthenticated, err)
}

func TestUsers_RefreshAndLogout(t *testing.T) {
	e := newEnv(t)
	_, err := e.s.Register(e.ctx, svc.RegisterInput{Email: "ada@example.com", FirstName: "Ada", LastName: "Lovelace", Password: "analytical"})
	require.NoError(t, err)
	pair, err := e.s.ObtainToken(e.ctx, "ada@example.com", "analytical")
	require.NoError(t, err)

	access, err := e.s.RefreshToken(e.ctx, pair.Refresh)
	require.NoError(t, err)
	_, err = e.s.Authenticate(e.ctx, access)
	require.NoError(t, err)

	_, err = e.s.RefreshToken(e.ctx, pair.Access)
	require.True(t, errors.Is(err, svc.ErrUnauthenticated))

	require.NoError(t, e.s.VerifyToken(e.ctx, pair.Access))
	require.NoError(t, e.s.VerifyToken(e.ctx, pair.Refresh))
	require.True(t, errors.Is(e.s.VerifyToken(e.ctx, "not-a-token"), svc.ErrUnauthenticated))

	require.NoError(t, e.s.Logout(e.ctx, pair.Refresh))
	_, err = e.s.RefreshToken(e.ctx, pair.Refresh)
	require.True(t, errors.Is(err, svc.ErrUnauthenticated))
	require.True(t, errors.Is(e.s.VerifyToken(e.ctx, pair.Refresh), svc.ErrUnauthenticated))
	require.True(t, errors.Is(e.s.Logout(e.ctx, pair.Refresh), svc.ErrUnauthenticated))
}

func TestUsers_UpdateMe(t *testing.T) {
	e := newEnv(t)

	got, err := e.s.UpdateMe(e.ctx, e.alice, svc.UserInput{FirstName: ptr("  Alice ")}, true)
	require.NoError(t, err)
	require.Equal(t, "Alice", got.FirstName)

	_, err = e.s.UpdateMe(e.ctx, e.alice, svc.UserInput{FirstName: ptr("Alice")}, false)
	f := fieldsOf(t, err)
	require.Contains(t, f, "email")
	require.Contains(t, f, "last_name")

	_, err = e.s.UpdateMe(e.ctx, e.alice, svc.UserInput{Email: ptr("not-an-email")}, true)
	require.Equal(t, "Enter a valid email address.", fieldsOf(t, err)["email"])

	_, err = e.s.UpdateMe(e.ctx, policy.AnonymousActor(), svc.UserInput{}, true)
	require.Equal(t, svc.ErrUnauthenticated, err)
}

func TestUsers_CreateSuperuser(t *testing.T) {
	e := newEnv(t)
	u, err := e.s.CreateSuperuser(e.ctx, svc.RegisterInput{Email: "root@example.com", FirstName: "Root", LastName: "Admin", Password: "changeme1"})
	require.NoError(t, err)
	require.True(t, u.IsStaff)

	pair, err := e.s.ObtainToken(e.ctx, "root@example.com", "changeme1")
	require.NoError(t, err)
	actor, err := e.s.Authenticate(e.ctx, pair.Access)
	require.NoError(t, err)
	require.Equal(t, policy.Staff, actor.Tier)
}
