package provider

import "errors"

var (
	// ErrFetch is returned when the data source cannot be reached or refuses the request.
	ErrFetch = errors.New("fetch games")

	// ErrDecode is returned when the data source answers with a payload that is not a game list.
	ErrDecode = errors.New("decode games")
)
