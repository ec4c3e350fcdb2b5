package zdb

import "errors"

var (
	ErrInvalidDatabase     = errors.New("invalid database file")
	ErrLockBusy            = errors.New("database file locked by another process")
	ErrTransactionActive   = errors.New("transaction already active")
	ErrNoActiveTransaction = errors.New("no active transaction")
	ErrPageOutOfBounds     = errors.New("page id out of bounds")
	ErrCannotFreeMetaPage  = errors.New("cannot free metadata page")
)
