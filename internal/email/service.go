package email

import (
	"context"
)

// Service is the mail transport boundary. Implementations deliver a single
// rendered message; retry policy lives with the caller.
type Service interface {
	Send(ctx context.Context, to string, subject string, html string) error
}
