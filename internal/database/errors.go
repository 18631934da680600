package database

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// erDupEntry is MariaDB's ER_DUP_ENTRY, raised on unique key violations.
const erDupEntry = 1062

// IsDuplicateEntry reports whether err, anywhere in its chain, is a
// unique key violation.
func IsDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == erDupEntry
}
