package openmat

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrUnavailable  = errors.New("backend unavailable")
)

func IsErrNotFound(err error) bool    { return errors.Is(err, ErrNotFound) }
func IsErrBadRequest(err error) bool  { return errors.Is(err, ErrBadRequest) }
func IsErrUnavailable(err error) bool { return errors.Is(err, ErrUnavailable) }
