package errors

import (
	stderrs "errors"

	"github.com/mattn/go-sqlite3"
)

// SQLiteCode maps a go-sqlite3 error to an ErrorCode; ok is false for other errors
func SQLiteCode(err error) (ErrorCode, bool) {
	var se sqlite3.Error
	if !stderrs.As(err, &se) {
		return ErrorCodeUnknown, false
	}
	switch se.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return ErrorCodeUnavailable, true
	case sqlite3.ErrConstraint, sqlite3.ErrTooBig, sqlite3.ErrMismatch:
		return ErrorCodeValidation, true
	}
	return ErrorCodeDB, true
}
