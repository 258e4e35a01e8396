package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/apperr"
	"github.com/iliyamo/projecthub/internal/auth"
	"github.com/iliyamo/projecthub/internal/config"
	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
	"github.com/iliyamo/projecthub/internal/utils"
)

// UserStore is the user persistence the auth and user endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, p repository.ProfileUpdate) error
}

// AuthHandler serves /api/auth and /api/users.
type AuthHandler struct {
	Cfg   config.Config
	Users UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users}
}

// MsgBadLogin is returned for an unknown email and a wrong password alike.
const MsgBadLogin = "Invalid email or password"

type registerReq struct {
	Email     string `json:"email" validate:"required,email,max=255"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	UserType  string `json:"userType" validate:"omitempty,oneof=individual company"`
	Timezone  string `json:"timezone" validate:"omitempty,timezone"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type authData struct {
	User      auth.Identity `json:"user"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func (h *AuthHandler) issue(id auth.Identity) (authData, error) {
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, id.UserID, h.Cfg.TokenTTL)
	if err != nil {
		return authData{}, err
	}
	return authData{User: id, Token: tok.Token, ExpiresAt: tok.Exp}, nil
}

// Register creates an account and signs the caller in.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u := model.User{
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		UserType:     req.UserType,
		Timezone:     req.Timezone,
	}
	if err := h.Users.Create(ctx, &u); err != nil {
		return err // duplicate email becomes 409 with field "email"
	}
	data, err := h.issue(auth.IdentityFromUser(u))
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "User registered successfully", data)
}

// Login exchanges email and password for a token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(http.StatusUnauthorized, MsgBadLogin)
	}
	if err != nil {
		return err
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apperr.New(http.StatusUnauthorized, MsgBadLogin)
	}
	if !u.IsActive {
		return auth.ErrInactiveSubject
	}
	data, err := h.issue(auth.IdentityFromUser(u))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Login successful", data)
}

// Refresh issues a new token for a caller whose current token still
// verifies.
func (h *AuthHandler) Refresh(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	data, err := h.issue(id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Token refreshed", data)
}

// Me returns the verified caller.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", echo.Map{"user": id})
}

// Session never fails: it reports whether the request carried a usable
// token.
func (h *AuthHandler) Session(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return respond(c, http.StatusOK, "", echo.Map{"authenticated": false})
	}
	return respond(c, http.StatusOK, "", echo.Map{"authenticated": true, "user": id})
}

type profileReq struct {
	FirstName *string `json:"firstName" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,min=1,max=100"`
	Timezone  *string `json:"timezone" validate:"omitempty,timezone"`
}

// UpdateProfile changes the caller's name or timezone and returns the
// fresh identity.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	id, err := currentIdentity(c)
	if err != nil {
		return err
	}
	var req profileReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestCtx(c)
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, id.UserID, repository.ProfileUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Timezone:  req.Timezone,
	}); err != nil {
		return err
	}
	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		return notFound(err, "User not found")
	}
	return respond(c, http.StatusOK, "Profile updated successfully", echo.Map{"user": auth.IdentityFromUser(u)})
}
