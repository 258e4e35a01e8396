package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/projecthub/internal/auth"
)

func TestNormalize_Duplicate(t *testing.T) {
	cases := []struct {
		msg   string
		field string
	}{
		{"Duplicate entry 'a@b.c' for key 'users.uk_users__email'", "email"},
		{"Duplicate entry 'a@b.c' for key 'uk_users__email'", "email"},
		{"Duplicate entry 'c-u' for key 'company_members.uk_company_members__user_id'", "userId"},
		{"Duplicate entry 'x' for key 'PRIMARY'", ""},
		{"something unexpected", ""},
	}
	for _, tc := range cases {
		err := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: tc.msg})
		status, resp := Normalize(err, false)
		assert.Equal(t, http.StatusConflict, status, tc.msg)
		assert.Equal(t, MsgDuplicate, resp.Message)
		assert.Equal(t, tc.field, resp.Field, tc.msg)
		assert.False(t, resp.Success)
	}
}

func TestNormalize_ForeignKey(t *testing.T) {
	for _, n := range []uint16{1451, 1452} {
		status, resp := Normalize(&mysql.MySQLError{Number: n, Message: "Cannot add or update a child row: fk_tasks_assignee"}, true)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, MsgBadReference, resp.Message)
		assert.Empty(t, resp.Field)
		assert.Empty(t, resp.Stack)
	}
}

func TestNormalize_ColumnLimits(t *testing.T) {
	cases := []struct {
		number uint16
		msg    string
		field  string
	}{
		{1406, "Data too long for column 'description' at row 1", "description"},
		{1264, "Out of range value for column 'estimated_hours' at row 1", "estimatedHours"},
		{1264, "Out of range value", ""},
	}
	for _, tc := range cases {
		err := fmt.Errorf("update task: %w", &mysql.MySQLError{Number: tc.number, Message: tc.msg})
		status, resp := Normalize(err, true)
		assert.Equal(t, http.StatusBadRequest, status, tc.msg)
		assert.Equal(t, MsgBadValue, resp.Message)
		assert.Equal(t, tc.field, resp.Field, tc.msg)
		assert.Empty(t, resp.Stack)
	}
}

func TestNormalize_Credentials(t *testing.T) {
	cases := map[error]struct {
		status int
		msg    string
	}{
		auth.ErrMissingCredential: {401, MsgMissingToken},
		auth.ErrInvalidCredential: {401, MsgInvalidToken},
		auth.ErrExpiredCredential: {401, MsgExpiredToken},
		auth.ErrUnknownSubject:    {401, MsgUserNotFound},
		auth.ErrInactiveSubject:   {401, MsgInactiveAccount},
		auth.ErrUnauthenticated:   {401, MsgUnauthenticated},
		auth.ErrForbidden:         {403, MsgForbidden},
	}
	for err, want := range cases {
		status, resp := Normalize(fmt.Errorf("%w: detail", err), false)
		assert.Equal(t, want.status, status, err.Error())
		assert.Equal(t, want.msg, resp.Message, err.Error())
	}
}

func TestNormalize_Tagged(t *testing.T) {
	status, resp := Normalize(NotFound("Project not found"), true)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Project not found", resp.Message)
	assert.Empty(t, resp.Stack)

	status, resp = Normalize(Validation(FieldError{Field: "endDate", Message: "bad"}), false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgValidation, resp.Message)
	assert.Len(t, resp.Errors, 1)

	wrapped := fmt.Errorf("outer: %w", Wrap(http.StatusTooManyRequests, "Too many requests", errors.New("bucket empty")))
	status, resp = Normalize(wrapped, false)
	assert.Equal(t, http.StatusTooManyRequests, status)
	assert.Equal(t, "Too many requests", resp.Message)
}

func TestNormalize_Internal(t *testing.T) {
	err := errors.New("dial tcp: connection refused")

	status, resp := Normalize(err, false)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, MsgInternal, resp.Message)
	assert.Empty(t, resp.Stack)

	_, resp = Normalize(err, true)
	assert.Equal(t, "dial tcp: connection refused", resp.Stack)
}

func TestNormalize_EchoHTTPError(t *testing.T) {
	status, resp := Normalize(echo.ErrNotFound, false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not Found", resp.Message)

	status, resp = Normalize(echo.NewHTTPError(http.StatusBadRequest, "bad json"), false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "bad json", resp.Message)
}

type signup struct {
	Email     string  `json:"email" validate:"required,email"`
	Password  string  `json:"password" validate:"required,min=6"`
	UserType  string  `json:"userType" validate:"omitempty,oneof=individual company"`
	FirstName string  `json:"firstName" validate:"required"`
	Hours     float64 `json:"hours" validate:"gte=0,lte=999.99"`
}

func TestNormalize_ValidationErrors(t *testing.T) {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string { return jsonName(f) })

	err := v.Struct(signup{Email: "nope", Password: "123", UserType: "alien", Hours: 1000})
	require.Error(t, err)

	status, resp := Normalize(err, false)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, MsgValidation, resp.Message)

	got := map[string]string{}
	for _, fe := range resp.Errors {
		got[fe.Field] = fe.Message
	}
	assert.Equal(t, map[string]string{
		"email":     "Valid email is required",
		"password":  "password must be at least 6 characters",
		"userType":  "userType must be one of: individual, company",
		"firstName": "firstName is required",
		"hours":     "hours must be less than or equal to 999.99",
	}, got)
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
