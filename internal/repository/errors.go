// Package repository holds the MySQL data access layer.  Repositories
// return model values and the sentinel errors below; constraint violations
// are returned as the driver's *mysql.MySQLError so the HTTP layer can
// classify them.
package repository

import "errors"

// ErrNotFound is returned when a row does not exist or is not visible to
// the caller (for example a project owned by someone else).  Handlers
// translate it into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
