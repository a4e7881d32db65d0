package types

import (
	"errors"
	"fmt"
)

// ErrAuthConfig means exchange credentials are missing. Fatal at startup,
// before any session begins.
var ErrAuthConfig = errors.New("exchange API credentials are required: set COINBASE_API_KEY and COINBASE_API_SECRET")

// MalformedResponseError is returned when the oracle's reply cannot be parsed
// into a Decision. It is never downgraded to an implicit hold.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("oracle returned a malformed response: %v (raw: %.200s)", e.Err, e.Raw)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// OrderFailedError means the exchange accepted the request but reported a
// non-success order. The trade must not reach the ledger.
type OrderFailedError struct {
	ProductID string
	Status    string
	Message   string
}

func (e *OrderFailedError) Error() string {
	return fmt.Sprintf("order for %s failed with status %q: %s", e.ProductID, e.Status, e.Message)
}
