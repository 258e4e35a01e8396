// Package client is a small SDK for the projecthub API that keeps the
// caller's token and identity between runs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iliyamo/projecthub/internal/auth"
)

// Result is the outcome of a session operation.  Failures carry the
// server's message when it sent one.
type Result struct {
	Success bool
	Message string
}

func failed(msg, fallback string) Result {
	if msg == "" {
		msg = fallback
	}
	return Result{Success: false, Message: msg}
}

// Registration is the body of POST /api/auth/register.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType,omitempty"`
	Timezone  string `json:"timezone,omitempty"`
}

// ProfileUpdate is the body of PUT /api/users/profile.  Nil fields are left
// unchanged.
type ProfileUpdate struct {
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	Timezone  *string `json:"timezone,omitempty"`
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type authData struct {
	User  auth.Identity `json:"user"`
	Token string        `json:"token"`
}

type userData struct {
	User auth.Identity `json:"user"`
}

var errRejected = errors.New("request rejected")

// Session talks to the API on behalf of one user.
type Session struct {
	http  *resty.Client
	store Store

	mu    sync.Mutex
	state State
}

// New returns a session against baseURL, e.g. http://localhost:8080.
func New(baseURL string, store Store) *Session {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(15*time.Second).
		SetHeader("Accept", "application/json")
	return &Session{http: c, store: store}
}

// Token returns the current bearer token, empty when signed out.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// Identity returns the signed-in user.
func (s *Session) Identity() (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return auth.Identity{}, false
	}
	return *s.state.User, true
}

// IsAuthenticated reports whether both a token and an identity are held.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.complete()
}

// HasPermission answers from the held identity only.
func (s *Session) HasPermission(perm string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return auth.HasPermission(s.state.User, perm)
}

func (s *Session) set(st State) error {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return s.store.Save(st)
}

// call sends one request and decodes the data member of a successful
// envelope into out.  A non-2xx status or success=false returns the
// server's message with errRejected.
func (s *Session) call(ctx context.Context, method, path string, body, out any) (string, error) {
	var env envelope
	req := s.http.R().SetContext(ctx).SetResult(&env).SetError(&env)
	if tok := s.Token(); tok != "" {
		req.SetAuthToken(tok)
	}
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return "", err
	}
	if resp.IsError() || !env.Success {
		return env.Message, fmt.Errorf("%w: status %d", errRejected, resp.StatusCode())
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", err
		}
	}
	return env.Message, nil
}

// Restore loads persisted state and confirms it with GET /api/auth/me.
// Anything short of a confirmed identity leaves the session signed out.
func (s *Session) Restore(ctx context.Context) bool {
	st, err := s.store.Load()
	if err != nil || !st.complete() {
		// unreadable or partial state is dropped so it cannot fail every run
		s.Logout()
		return false
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	var me userData
	if _, err := s.call(ctx, http.MethodGet, "/api/auth/me", nil, &me); err != nil {
		s.Logout()
		return false
	}
	st.User = &me.User
	return s.set(st) == nil
}

func (s *Session) signIn(ctx context.Context, path string, body any, ok, fallback string) Result {
	var data authData
	msg, err := s.call(ctx, http.MethodPost, path, body, &data)
	if err != nil {
		return failed(msg, fallback)
	}
	if err := s.set(State{Token: data.Token, User: &data.User}); err != nil {
		return failed("", fmt.Sprintf("%s: %v", fallback, err))
	}
	return Result{Success: true, Message: firstNonEmpty(msg, ok)}
}

// Login signs in with email and password.
func (s *Session) Login(ctx context.Context, email, password string) Result {
	return s.signIn(ctx, "/api/auth/login",
		map[string]string{"email": email, "password": password},
		"Login successful", "Login failed")
}

// Register creates an account and signs in as it.
func (s *Session) Register(ctx context.Context, r Registration) Result {
	return s.signIn(ctx, "/api/auth/register", r, "Registration successful", "Registration failed")
}

// Logout forgets the token and identity locally.  It never fails.
func (s *Session) Logout() {
	s.mu.Lock()
	s.state = State{}
	s.mu.Unlock()
	_ = s.store.Clear()
}

// Refresh swaps the token for a fresh one.  Any failure signs the session
// out.
func (s *Session) Refresh(ctx context.Context) Result {
	if s.Token() == "" {
		return failed("", "Not authenticated")
	}
	var data authData
	msg, err := s.call(ctx, http.MethodPost, "/api/auth/refresh", nil, &data)
	if err == nil {
		err = s.set(State{Token: data.Token, User: &data.User})
	}
	if err != nil {
		s.Logout()
		return failed(msg, "Token refresh failed")
	}
	return Result{Success: true, Message: firstNonEmpty(msg, "Token refreshed")}
}

// UpdateProfile changes the signed-in user's profile and keeps the
// returned identity.
func (s *Session) UpdateProfile(ctx context.Context, p ProfileUpdate) Result {
	if s.Token() == "" {
		return failed("", "Not authenticated")
	}
	var data userData
	msg, err := s.call(ctx, http.MethodPut, "/api/users/profile", p, &data)
	if err != nil {
		return failed(msg, "Profile update failed")
	}
	if err := s.set(State{Token: s.Token(), User: &data.User}); err != nil {
		return failed("", fmt.Sprintf("Profile update failed: %v", err))
	}
	return Result{Success: true, Message: firstNonEmpty(msg, "Profile updated successfully")}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
