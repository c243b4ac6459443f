package domain

import "errors"

// Fetch errors. Each is scoped to one fetch group and never aborts the loop.
var (
	ErrLink             = errors.New("network link down")
	ErrAuth             = errors.New("api credentials rejected")
	ErrRateLimited      = errors.New("api rate limit exceeded")
	ErrTransport        = errors.New("transport failure")
	ErrMalformedPayload = errors.New("malformed payload")
	ErrMissingField     = errors.New("missing field")
)

// ErrIrrecoverable is returned by the main loop after the link stayed down for
// too many consecutive fetch cycles. The caller restarts the process.
var ErrIrrecoverable = errors.New("fetch cycle irrecoverable")

// Retryable reports whether err may clear up without operator action.
func Retryable(err error) bool {
	return err != nil && !errors.Is(err, ErrAuth)
}
