// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// services to distinguish between different failure scenarios without
// inspecting driver errors themselves.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// Not-found sentinels, one per table.
var (
	ErrCityNotFound        = errors.New("city not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTokenNotFound       = errors.New("access token not found")
	ErrReservationNotFound = errors.New("reservation not found")
)

// ErrDuplicate is returned when an insert or update violates a unique
// key, e.g. a second city with the same name.
var ErrDuplicate = errors.New("duplicate entry")

// ErrAlreadyReserved is returned when a (user, event) reservation
// already exists.  The primary key of event_user guarantees this even
// when two requests race past the service's existence check.
var ErrAlreadyReserved = errors.New("already reserved")

// MySQL server error numbers the repositories react to.
const (
	mysqlDuplicateEntry  = 1062
	mysqlNoReferencedRow = 1452
)

func mysqlErrNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// isDuplicate reports whether err is a unique key violation.
func isDuplicate(err error) bool { return mysqlErrNumber(err) == mysqlDuplicateEntry }

// isMissingReference reports whether err is a foreign key violation on
// insert (the referenced parent row does not exist).
func isMissingReference(err error) bool { return mysqlErrNumber(err) == mysqlNoReferencedRow }
