package app

import "errors"

var (
	ErrNotLoggedIn  = errors.New("no scanner session")
	ErrFetchFailed  = errors.New("activity fetch failed")
	ErrSubmitFailed = errors.New("activity submit failed")
	ErrBusy         = errors.New("another request is in flight")
)
