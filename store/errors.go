// Package store holds the MongoDB data access layer. Write paths that
// back an invariant use single conditional updates so concurrent callers
// cannot both win; the sentinel errors below tell callers which taxonomy
// bucket (404/409/400) a failure belongs to.
package store

import "errors"

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("record already exists")
	ErrNotPending        = errors.New("payment is not pending")
	ErrAlreadySubscribed = errors.New("already subscribed to this service")
	ErrNotSubscribed     = errors.New("not subscribed to this service")
)
