// Package repository implements data access over MySQL.  Repositories
// translate driver errors into the application's error taxonomy at the
// edge: absent rows become apperr.NotFound, duplicate keys become
// apperr.Conflict, anything else is wrapped as apperr.Internal so that
// driver details never leak past this package.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL error numbers the repositories care about.
const (
	mysqlDupEntry     = 1062 // unique key violation
	mysqlRowReferred  = 1451 // cannot delete, row is referenced by a foreign key
)

// isDuplicateKey reports whether err is a unique constraint violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlDupEntry
	}
	// Some pooled drivers flatten the error; fall back to the error code text.
	return err != nil && strings.Contains(err.Error(), "1062")
}

// isForeignKeyViolation reports whether err is a restricted-delete failure.
func isForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == mysqlRowReferred
	}
	return err != nil && strings.Contains(err.Error(), "1451")
}
