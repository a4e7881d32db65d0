package interfaces

import "context"

// Session runs the trading loop until a stop condition is met or a
// cycle-fatal error aborts it.
type Session interface {
	Run(ctx context.Context) error
}
