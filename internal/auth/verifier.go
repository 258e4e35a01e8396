package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
	"github.com/iliyamo/projecthub/internal/utils"
)

const bearerPrefix = "Bearer "

// UserFinder resolves a token subject to a stored user.  Implementations
// return repository.ErrNotFound when no user exists.
type UserFinder interface {
	GetByID(ctx context.Context, id string) (model.User, error)
}

// Verifier checks bearer credentials against the signing secret and the
// user store.  It holds no per-request state and is safe for concurrent use.
type Verifier struct {
	secret string
	users  UserFinder
}

// NewVerifier returns a Verifier signing with secret and resolving subjects
// through users.
func NewVerifier(secret string, users UserFinder) *Verifier {
	return &Verifier{secret: secret, users: users}
}

// Verify validates the Authorization header value and returns the caller's
// identity.  Failures are one of the Err*Credential / Err*Subject sentinels,
// or a wrapped lookup error for anything the store reports beyond "not
// found".
func (v *Verifier) Verify(ctx context.Context, header string) (Identity, error) {
	raw, ok := bearerToken(header)
	if !ok {
		return Identity{}, ErrMissingCredential
	}

	claims, err := utils.ParseAccessToken(v.secret, raw)
	if err != nil {
		// the signature is checked before exp, so an expired token with a
		// bad signature still reports as invalid
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrExpiredCredential
		}
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	sub := claims.SubjectID()
	if sub == "" {
		return Identity{}, ErrInvalidCredential
	}

	u, err := v.users.GetByID(ctx, sub)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Identity{}, ErrUnknownSubject
		}
		return Identity{}, fmt.Errorf("lookup token subject: %w", err)
	}
	if !u.IsActive {
		return Identity{}, ErrInactiveSubject
	}
	return IdentityFromUser(u), nil
}

// VerifyOptional is Verify with every failure collapsed into "no identity".
func (v *Verifier) VerifyOptional(ctx context.Context, header string) (Identity, bool) {
	id, err := v.Verify(ctx, header)
	if err != nil {
		return Identity{}, false
	}
	return id, true
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	return raw, raw != ""
}
