// internal/domain/auth/service.go
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/your-org/bakery-storefront/internal/api"
	"github.com/your-org/bakery-storefront/internal/session"
)

// Validation failures raised before any API call
var (
	ErrEmailRequired    = api.Validation("Email is required")
	ErrPasswordRequired = api.Validation("Password is required")
	ErrPasswordMismatch = api.Validation("Password confirmation does not match")
	ErrUnknownActor     = api.Validation("Unknown account type")
)

// Credentials is the login form
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login form
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return ErrEmailRequired
	}
	if c.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// ValidatePasswordConfirmation rejects a confirmation that differs from password
func ValidatePasswordConfirmation(password, confirmation string) error {
	if password == "" {
		return ErrPasswordRequired
	}
	if password != confirmation {
		return ErrPasswordMismatch
	}
	return nil
}

type loginResponse struct {
	User        *session.User `json:"user"`
	AccessToken string        `json:"access_token"`
	Token       string        `json:"token"`
}

func (r loginResponse) token() string {
	if r.AccessToken != "" {
		return r.AccessToken
	}
	return r.Token
}

type actorEndpoints struct {
	login  api.Endpoint
	logout api.Endpoint
	user   api.Endpoint
}

var endpoints = map[session.Actor]actorEndpoints{
	session.ActorStaff:    {api.StaffLogin, api.StaffLogout, api.StaffUser},
	session.ActorCustomer: {api.CustomerLogin, api.CustomerLogout, api.CustomerUser},
}

// Service signs staff and customers in and out of a device session
type Service struct {
	client   *api.Client
	sessions *session.Manager
	logger   *logrus.Logger
}

// NewService creates a new auth service
func NewService(client *api.Client, sessions *session.Manager, logger *logrus.Logger) *Service {
	return &Service{
		client:   client,
		sessions: sessions,
		logger:   logger,
	}
}

// Login authenticates against the API and fills the actor's slot
func (s *Service) Login(ctx context.Context, device string, actor session.Actor, creds Credentials) (*session.User, error) {
	eps, ok := endpoints[actor]
	if !ok {
		return nil, ErrUnknownActor
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	creds.Email = strings.TrimSpace(creds.Email)

	var resp loginResponse
	if err := s.client.Do(ctx, api.NoTokens{}, api.Call{Endpoint: eps.login, Body: creds}, &resp); err != nil {
		return nil, fmt.Errorf("failed to sign in %s: %w", actor, err)
	}

	token := resp.token()
	if token == "" {
		return nil, &api.Error{Kind: api.KindServer, Message: "Login response carried no token", Endpoint: eps.login.Name}
	}

	user := resp.User
	if user == nil {
		profile, err := s.fetchProfile(ctx, actor, token)
		if err != nil {
			return nil, err
		}
		user = profile
	}
	user.Token = token

	if err := s.sessions.SignIn(ctx, device, actor, *user); err != nil {
		return nil, fmt.Errorf("failed to store %s session: %w", actor, err)
	}

	s.logger.WithFields(logrus.Fields{
		"device":  device,
		"actor":   actor,
		"user_id": user.ID,
	}).Info("Signed in")
	return user, nil
}

// Logout signs the actor out on the API and always clears the local slot.
// The API error, if any, is still returned so it can be reported.
func (s *Service) Logout(ctx context.Context, device string, actor session.Actor) error {
	eps, ok := endpoints[actor]
	if !ok {
		return ErrUnknownActor
	}

	sc, err := s.sessions.Context(ctx, device)
	if err != nil {
		return err
	}

	var apiErr error
	if sc.Token(actor) != "" {
		apiErr = s.client.Do(ctx, sc, api.Call{Endpoint: eps.logout}, nil)
	}

	if err := s.sessions.SignOut(ctx, device, actor); err != nil {
		return fmt.Errorf("failed to clear %s session: %w", actor, err)
	}

	if apiErr != nil {
		s.logger.WithError(apiErr).WithField("actor", actor).Warn("Logout call failed, session cleared anyway")
		return fmt.Errorf("failed to sign out %s: %w", actor, apiErr)
	}
	s.logger.WithFields(logrus.Fields{"device": device, "actor": actor}).Info("Signed out")
	return nil
}

// Refresh reloads the profile of a signed-in actor
func (s *Service) Refresh(ctx context.Context, device string, actor session.Actor) (*session.User, error) {
	sc, err := s.sessions.Context(ctx, device)
	if err != nil {
		return nil, err
	}
	token := sc.Token(actor)
	if token == "" {
		return nil, &api.Error{Kind: api.KindUnauthorized, Message: "Please sign in to continue"}
	}

	profile, err := s.fetchProfile(ctx, actor, token)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.UpdateProfile(ctx, device, actor, *profile); err != nil {
		return nil, fmt.Errorf("failed to store %s profile: %w", actor, err)
	}
	return sc.User(actor), nil
}

// Reset signs both actors out locally without calling the API
func (s *Service) Reset(ctx context.Context, device string) error {
	return s.sessions.Reset(ctx, device)
}

func (s *Service) fetchProfile(ctx context.Context, actor session.Actor, token string) (*session.User, error) {
	tokens := slotTokens{actor: actor, token: token}

	var user session.User
	if err := s.client.Do(ctx, tokens, api.Call{Endpoint: endpoints[actor].user}, &user); err != nil {
		return nil, fmt.Errorf("failed to fetch %s profile: %w", actor, err)
	}
	return &user, nil
}

// slotTokens exposes a single token in the actor's slot
type slotTokens struct {
	actor session.Actor
	token string
}

func (t slotTokens) StaffToken() string {
	if t.actor == session.ActorStaff {
		return t.token
	}
	return ""
}

func (t slotTokens) CustomerToken() string {
	if t.actor == session.ActorCustomer {
		return t.token
	}
	return ""
}
