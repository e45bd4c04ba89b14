package contagion

import "errors"

var (
	ErrMalformedNetwork = errors.New("malformed network")
	ErrUnknownBank      = errors.New("unknown bank")
	ErrInvalidStep      = errors.New("invalid search step")
	ErrInvalidFund      = errors.New("invalid fund limit")
)
