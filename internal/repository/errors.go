// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as the
// lifecycle service and handlers to distinguish between different failure
// scenarios. ErrNightTaken in particular is the expected signal of a lost
// allocation race: it is produced by mapping the MySQL duplicate-key
// error (1062) on the active (room, night) uniqueness constraint.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNightTaken is returned when inserting night allocations violates the
// active (room_id, night) uniqueness constraint: another booking already
// holds one of the requested nights. Callers should treat this as the
// normal outcome of a check-then-act race, not as an unexpected failure.
var ErrNightTaken = errors.New("room night already allocated")

// ErrRoomNotFound is returned when a room does not exist or does not
// belong to the property named by the caller.
var ErrRoomNotFound = errors.New("room not found")

// ErrBookingNotFound is returned when a booking does not exist.
var ErrBookingNotFound = errors.New("booking not found")

// ErrPlanNotFound is returned when a rate plan does not exist for the
// property.
var ErrPlanNotFound = errors.New("rate plan not found")

// dateLayout is the storage format for DATE columns. All date-only values
// are written and compared in this form, in UTC.
const dateLayout = "2006-01-02"

// isDuplicateKey reports whether err is the MySQL duplicate-entry error.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
