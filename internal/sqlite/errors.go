package sqlite

import (
	"errors"
	"strings"

	driver "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// constraintCode returns the extended result code of a constraint failure,
// or 0 when err is not one.
func constraintCode(err error) int {
	var serr *driver.Error
	if !errors.As(err, &serr) {
		return 0
	}
	if serr.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return 0
	}
	return serr.Code()
}

func isForeignKeyViolation(err error) bool {
	switch constraintCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "FOREIGN KEY")
	}
	return false
}

func isUniqueViolation(err error) bool {
	switch constraintCode(err) {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(err.Error(), "UNIQUE")
	}
	return false
}
