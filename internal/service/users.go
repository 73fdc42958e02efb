package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"airport-service/internal/auth"
	"airport-service/internal/models"
	"airport-service/internal/policy"
	"airport-service/internal/repository"
	"airport-service/internal/validation"
	"airport-service/internal/views"
)

var validate = validator.New()

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	FirstName string `json:"first_name" binding:"required,notblank,max=255"`
	LastName  string `json:"last_name" binding:"required,notblank,max=255"`
	Password  string `json:"password" binding:"required"`
}

type UserInput struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" binding:"omitempty,max=255"`
	LastName  *string `json:"last_name" binding:"omitempty,max=255"`
	Password  *string `json:"password"`
}

func (in UserInput) present() map[string]bool {
	return map[string]bool{
		"email":      in.Email != nil,
		"first_name": in.FirstName != nil,
		"last_name":  in.LastName != nil,
	}
}

func (in UserInput) apply(u *models.User) error {
	trimmed(&u.FirstName, in.FirstName)
	trimmed(&u.LastName, in.LastName)

	var emailErr, passwordErr error
	if in.Email != nil {
		u.Email = models.NormalizeEmail(*in.Email)
		if validate.Var(u.Email, "required,email") != nil {
			emailErr = validation.Field("email", "Enter a valid email address.")
		}
	}
	if in.Password != nil {
		passwordErr = validation.Password(*in.Password)
	}
	err := validation.Join(emailErr, validation.UserNames(u.FirstName, u.LastName), passwordErr)
	if err != nil || in.Password == nil {
		return err
	}
	u.Password, err = auth.HashPassword(*in.Password)
	return err
}

func (in RegisterInput) user() UserInput {
	return UserInput{Email: &in.Email, FirstName: &in.FirstName, LastName: &in.LastName, Password: &in.Password}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (views.User, error) {
	return s.createUser(ctx, models.User{IsActive: true}, in)
}

// CreateSuperuser registers an active staff account with superuser rights.
func (s *Service) CreateSuperuser(ctx context.Context, in RegisterInput) (views.User, error) {
	return s.createUser(ctx, models.User{IsActive: true, IsStaff: true, IsSuperuser: true}, in)
}

func (s *Service) createUser(ctx context.Context, u models.User, in RegisterInput) (views.User, error) {
	if err := in.user().apply(&u); err != nil {
		return views.User{}, rejected("user", err)
	}
	if err := s.repo.CreateUser(&u); err != nil {
		return views.User{}, rejected("user", conflict(err))
	}
	s.committed(ctx, models.KindUser, u.ID, ActionCreated)
	return views.NewUser(u), nil
}

func (s *Service) currentUser(actor policy.Actor) (models.User, error) {
	if !actor.IsAuthenticated() {
		return models.User{}, ErrUnauthenticated
	}
	u, err := s.repo.GetUser(actor.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return u, ErrUnauthenticated
	}
	return u, err
}

func (s *Service) Me(_ context.Context, actor policy.Actor) (views.User, error) {
	u, err := s.currentUser(actor)
	return views.NewUser(u), err
}

func (s *Service) UpdateMe(ctx context.Context, actor policy.Actor, in UserInput, partial bool) (views.User, error) {
	u, err := s.currentUser(actor)
	if err != nil {
		return views.User{}, err
	}
	if !partial {
		if err := validation.Required(in.present()); err != nil {
			return views.User{}, err
		}
	}
	if err := in.apply(&u); err != nil {
		return views.User{}, err
	}
	if err := s.repo.SaveUser(&u); err != nil {
		return views.User{}, conflict(err)
	}
	s.committed(ctx, models.KindUser, u.ID, ActionUpdated)
	return views.NewUser(u), nil
}

func (s *Service) ObtainToken(_ context.Context, email, password string) (auth.Pair, error) {
	u, err := s.repo.GetUserByEmail(strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		return auth.Pair{}, ErrNoActiveAccount
	}
	if err != nil {
		return auth.Pair{}, err
	}
	if !u.IsActive || !auth.CheckPassword(u.Password, password) {
		return auth.Pair{}, ErrNoActiveAccount
	}
	return s.tokens.IssuePair(u)
}

// refreshClaims parses a refresh token and rejects revoked ones.
func (s *Service) refreshClaims(token string) (*auth.Claims, error) {
	claims, err := s.tokens.Parse(token, auth.Refresh)
	if err != nil {
		return nil, errors.Wrap(ErrUnauthenticated, err.Error())
	}
	revoked, err := s.repo.IsBlacklisted(claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errors.Wrap(ErrUnauthenticated, "token is blacklisted")
	}
	return claims, nil
}

func (s *Service) RefreshToken(_ context.Context, refresh string) (string, error) {
	claims, err := s.refreshClaims(refresh)
	if err != nil {
		return "", err
	}
	id, _ := claims.UserID()
	u, err := s.repo.GetUser(id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !u.IsActive) {
		return "", ErrNoActiveAccount
	}
	if err != nil {
		return "", err
	}
	return s.tokens.IssueAccess(claims)
}

func (s *Service) VerifyToken(_ context.Context, token string) error {
	claims, err := s.tokens.Parse(token, "")
	if err != nil {
		return errors.Wrap(ErrUnauthenticated, err.Error())
	}
	if claims.Kind == auth.Refresh {
		_, err = s.refreshClaims(token)
	}
	return err
}

// Logout revokes the refresh token until it would have expired anyway.
func (s *Service) Logout(_ context.Context, refresh string) error {
	claims, err := s.refreshClaims(refresh)
	if err != nil {
		return err
	}
	id, _ := claims.UserID()
	expires := time.Time{}
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}
	return s.repo.BlacklistToken(&models.BlacklistedToken{JTI: claims.ID, UserID: id, ExpiresAt: expires})
}

// Authenticate resolves a bearer access token to an actor. The user must
// still exist and be active.
func (s *Service) Authenticate(_ context.Context, access string) (policy.Actor, error) {
	claims, err := s.tokens.Parse(access, auth.Access)
	if err != nil {
		return policy.AnonymousActor(), errors.Wrap(ErrUnauthenticated, err.Error())
	}
	id, _ := claims.UserID()
	u, err := s.repo.GetUser(id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !u.IsActive) {
		return policy.AnonymousActor(), errors.Wrap(ErrUnauthenticated, "user not found or inactive")
	}
	if err != nil {
		return policy.AnonymousActor(), err
	}
	return policy.UserActor(u.ID, u.IsStaff), nil
}
