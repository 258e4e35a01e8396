package handler // package handler implements the HTTP endpoints of the API

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/projecthub/internal/apperr"
	"github.com/iliyamo/projecthub/internal/auth"
	"github.com/iliyamo/projecthub/internal/middleware"
	"github.com/iliyamo/projecthub/internal/queue"
	"github.com/iliyamo/projecthub/internal/repository"
)

// dbTimeout bounds every repository call made while serving a request.
const dbTimeout = 5 * time.Second

// Events receives activity events.  *queue.Emitter implements it.
type Events interface {
	Emit(ev queue.ActivityEvent)
}

type noEvents struct{}

func (noEvents) Emit(queue.ActivityEvent) {}

func eventsOrNop(e Events) Events {
	if e == nil {
		return noEvents{}
	}
	return e
}

// Validator adapts go-playground/validator to echo.  Field names in
// errors are taken from the json tag.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bindAndValidate decodes the body into req and runs the echo validator.
func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(http.StatusBadRequest, "Invalid request body", err)
	}
	return c.Validate(req)
}

// currentIdentity returns the caller or ErrUnauthenticated.
func currentIdentity(c echo.Context) (auth.Identity, error) {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return auth.Identity{}, auth.ErrUnauthenticated
	}
	return id, nil
}

func requestCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// notFound turns repository.ErrNotFound into a 404 with msg.
func notFound(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return err
}

// queryInt reads a positive integer query parameter, falling back to def
// and capping at max when max > 0.
func queryInt(c echo.Context, name string, def, max int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil || n < 1 {
		return def
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

// parseDate accepts YYYY-MM-DD or RFC 3339.  Nil or empty input yields nil.
func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.DateOnly, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.Validation(apperr.FieldError{Field: field, Message: field + " must be a date (YYYY-MM-DD or RFC 3339)"})
}

// checkUUID accepts nil, blank or a well-formed UUID.
func checkUUID(field string, s *string) error {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	if _, err := uuid.Parse(strings.TrimSpace(*s)); err != nil {
		return apperr.Validation(apperr.FieldError{Field: field, Message: field + " must be a valid UUID"})
	}
	return nil
}
