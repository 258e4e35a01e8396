package auth // package auth verifies bearer credentials and carries the caller's identity

import (
	"context"

	"github.com/iliyamo/projecthub/internal/model"
)

// Identity is the public projection of an authenticated user.  It never
// carries the password hash and is built fresh for every request.
type Identity struct {
	UserID    string `json:"userId"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserType  string `json:"userType"`
	Timezone  string `json:"timezone"`
}

// IdentityFromUser copies the public fields of u.
func IdentityFromUser(u model.User) Identity {
	return Identity{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		UserType:  u.UserType,
		Timezone:  u.Timezone,
	}
}

type ctxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, if any.
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
