package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/projecthub/internal/model"
	"github.com/iliyamo/projecthub/internal/repository"
	"github.com/iliyamo/projecthub/internal/utils"
)

const secret = "test-secret"

type fakeUsers map[string]model.User

func (f fakeUsers) GetByID(_ context.Context, id string) (model.User, error) {
	if id == "boom" {
		return model.User{}, errors.New("db down")
	}
	u, ok := f[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func users() fakeUsers {
	return fakeUsers{
		"u1": {ID: "u1", Email: "a@example.com", FirstName: "Ada", LastName: "L", UserType: model.UserTypeIndividual, Timezone: "UTC", IsActive: true, PasswordHash: "hash"},
		"u2": {ID: "u2", Email: "b@example.com", UserType: model.UserTypeCompany, IsActive: false},
	}
}

func bearer(t *testing.T, sub string, ttl time.Duration, key string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(key, sub, ttl)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func TestVerify_MissingCredential(t *testing.T) {
	v := NewVerifier(secret, users())
	for _, h := range []string{"", "Bearer", "Bearer ", "Bearer    ", "Basic abc", "bearer xyz", "Token abc"} {
		_, err := v.Verify(context.Background(), h)
		assert.ErrorIs(t, err, ErrMissingCredential, "header %q", h)

		_, ok := v.VerifyOptional(context.Background(), h)
		assert.False(t, ok, "header %q", h)
	}
}

func TestVerify_Success(t *testing.T) {
	v := NewVerifier(secret, users())
	id, err := v.Verify(context.Background(), bearer(t, "u1", time.Hour, secret))
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: "u1", Email: "a@example.com", FirstName: "Ada", LastName: "L", UserType: "individual", Timezone: "UTC"}, id)

	opt, ok := v.VerifyOptional(context.Background(), bearer(t, "u1", time.Hour, secret))
	assert.True(t, ok)
	assert.Equal(t, id, opt)
}

func TestVerify_ExpiredIsDistinctFromInvalid(t *testing.T) {
	v := NewVerifier(secret, users())

	_, err := v.Verify(context.Background(), bearer(t, "u1", -time.Minute, secret))
	assert.ErrorIs(t, err, ErrExpiredCredential)
	assert.NotErrorIs(t, err, ErrInvalidCredential)

	_, err = v.Verify(context.Background(), bearer(t, "u1", time.Hour, "other-secret"))
	assert.ErrorIs(t, err, ErrInvalidCredential)
	assert.NotErrorIs(t, err, ErrExpiredCredential)

	_, err = v.Verify(context.Background(), "Bearer garbage")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_RejectsNonHMAC(t *testing.T) {
	v := NewVerifier(secret, users())
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, utils.Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "Bearer "+raw)
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerify_Subjects(t *testing.T) {
	v := NewVerifier(secret, users())

	_, err := v.Verify(context.Background(), bearer(t, "ghost", time.Hour, secret))
	assert.ErrorIs(t, err, ErrUnknownSubject)

	_, err = v.Verify(context.Background(), bearer(t, "u2", time.Hour, secret))
	assert.ErrorIs(t, err, ErrInactiveSubject)

	_, err = v.Verify(context.Background(), bearer(t, "boom", time.Hour, secret))
	require.Error(t, err)
	for _, s := range []error{ErrMissingCredential, ErrInvalidCredential, ErrExpiredCredential, ErrUnknownSubject, ErrInactiveSubject} {
		assert.NotErrorIs(t, err, s)
	}

	_, ok := v.VerifyOptional(context.Background(), bearer(t, "u2", time.Hour, secret))
	assert.False(t, ok)
}

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFrom(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), Identity{UserID: "u1"})
	id, ok := IdentityFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", id.UserID)
}

func TestAuthorize(t *testing.T) {
	ind := &Identity{UserID: "u1", UserType: model.UserTypeIndividual}
	co := &Identity{UserID: "u2", UserType: model.UserTypeCompany}

	assert.NoError(t, Authorize(ind))
	assert.NoError(t, Authorize(co))
	assert.ErrorIs(t, Authorize(ind, model.UserTypeCompany), ErrForbidden)
	assert.NoError(t, Authorize(co, model.UserTypeCompany))
	assert.NoError(t, Authorize(ind, model.UserTypeIndividual, model.UserTypeCompany))

	assert.ErrorIs(t, Authorize(nil), ErrUnauthenticated)
	assert.ErrorIs(t, Authorize(nil, model.UserTypeCompany), ErrUnauthenticated)
}

func TestHasPermission(t *testing.T) {
	ind := &Identity{UserType: model.UserTypeIndividual}
	co := &Identity{UserType: model.UserTypeCompany}

	assert.False(t, HasPermission(nil, PermCreateProject))
	assert.False(t, HasPermission(nil, "anything"))
	assert.True(t, HasPermission(ind, PermCreateProject))
	assert.True(t, HasPermission(co, PermCreateProject))
	assert.False(t, HasPermission(ind, PermManageCompany))
	assert.True(t, HasPermission(co, PermManageCompany))
	assert.True(t, HasPermission(ind, "view_reports"))
	assert.False(t, HasPermission(&Identity{UserType: "guest"}, PermCreateProject))
}
