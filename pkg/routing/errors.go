package routing

import "errors"

var (
	ErrInvalidPattern   = errors.New("routing: invalid pattern")
	ErrDuplicateParam   = errors.New("routing: duplicate parameter name")
	ErrDuplicatePattern = errors.New("routing: duplicate pattern")
)
