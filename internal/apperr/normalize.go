package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/auth"
)

// Envelope messages.
const (
	MsgValidation       = "Validation error"
	MsgDuplicate        = "Resource already exists"
	MsgBadReference     = "Invalid reference to related resource"
	MsgBadValue         = "Value too long or out of range"
	MsgInvalidToken     = "Invalid token"
	MsgExpiredToken     = "Token expired"
	MsgMissingToken     = "Access token required"
	MsgUserNotFound     = "User not found"
	MsgInactiveAccount  = "Account is deactivated"
	MsgUnauthenticated  = "Authentication required"
	MsgForbidden        = "Insufficient permissions"
	MsgInternal         = "Internal server error"
	mysqlDuplicateEntry = 1062
	mysqlRowReferenced  = 1451
	mysqlNoReferenced   = 1452
	mysqlOutOfRange     = 1264
	mysqlDataTooLong    = 1406
)

// Response is the failure envelope written for every error.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Field   string       `json:"field,omitempty"`
	Stack   string       `json:"stack,omitempty"`
}

var credentialMessages = []struct {
	err error
	msg string
}{
	{auth.ErrMissingCredential, MsgMissingToken},
	{auth.ErrExpiredCredential, MsgExpiredToken},
	{auth.ErrInvalidCredential, MsgInvalidToken},
	{auth.ErrUnknownSubject, MsgUserNotFound},
	{auth.ErrInactiveSubject, MsgInactiveAccount},
	{auth.ErrUnauthenticated, MsgUnauthenticated},
}

// Normalize maps err to a status and envelope.  With debug set, causes that
// fall through to 500 carry the error text in Stack.
func Normalize(err error, debug bool) (int, Response) {
	fail := func(status int, msg string) (int, Response) {
		return status, Response{Message: msg}
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return http.StatusBadRequest, Response{Message: MsgValidation, Errors: fieldErrors(verrs)}
	}

	var ae *Error
	if errors.As(err, &ae) {
		return ae.Status, Response{Message: ae.Message, Errors: ae.Fields}
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDuplicateEntry:
			return http.StatusConflict, Response{Message: MsgDuplicate, Field: duplicateField(me.Message)}
		case mysqlRowReferenced, mysqlNoReferenced:
			return fail(http.StatusBadRequest, MsgBadReference)
		case mysqlDataTooLong, mysqlOutOfRange:
			return http.StatusBadRequest, Response{Message: MsgBadValue, Field: columnField(me.Message)}
		}
	}

	for _, cm := range credentialMessages {
		if errors.Is(err, cm.err) {
			return fail(http.StatusUnauthorized, cm.msg)
		}
	}
	if errors.Is(err, auth.ErrForbidden) {
		return fail(http.StatusForbidden, MsgForbidden)
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok && s != "" {
			msg = s
		}
		if he.Code >= http.StatusInternalServerError {
			msg = MsgInternal
		}
		return fail(he.Code, msg)
	}

	status, resp := fail(http.StatusInternalServerError, MsgInternal)
	if debug && err != nil {
		resp.Stack = err.Error()
	}
	return status, resp
}

// duplicateField pulls the column out of a MySQL duplicate-entry message.
// Unique keys are named uk_<table>__<column>; any other key name yields "".
//
//	Duplicate entry 'a@b.c' for key 'users.uk_users__email' -> email
func duplicateField(msg string) string {
	i := strings.LastIndex(msg, "for key '")
	if i < 0 {
		return ""
	}
	key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
	j := strings.LastIndex(key, "__")
	if j < 0 || j+2 >= len(key) {
		return ""
	}
	return camel(key[j+2:])
}

// columnField pulls the column out of a data-too-long or out-of-range
// message.
//
//	Data too long for column 'description' at row 1 -> description
//	Out of range value for column 'estimated_hours' at row 1 -> estimatedHours
func columnField(msg string) string {
	i := strings.Index(msg, "column '")
	if i < 0 {
		return ""
	}
	rest := msg[i+len("column '"):]
	j := strings.IndexByte(rest, '\'')
	if j <= 0 {
		return ""
	}
	return camel(rest[:j])
}

func camel(s string) string {
	var b strings.Builder
	up := false
	for _, r := range s {
		if r == '_' {
			up = true
			continue
		}
		if up {
			r = unicode.ToUpper(r)
			up = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func fieldErrors(verrs validator.ValidationErrors) []FieldError {
	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "Valid email is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid", "uuid4":
		return fe.Field() + " must be a valid UUID"
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " is invalid"
	}
}
