package types

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks caller errors such as out-of-range parameters.
var ErrInvalidRequest = errors.New("invalid request")

// NoPriceDataError is returned when neither a live quote nor a stored close exists.
type NoPriceDataError struct {
	Symbol string
}

func (e *NoPriceDataError) Error() string {
	return fmt.Sprintf("no price data for %s", e.Symbol)
}
