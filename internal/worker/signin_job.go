package worker

import (
	"context"

	"github.com/strafemod/paintkit/internal/metrics"
)

// SignInClient builds a login URL for a player.
type SignInClient interface {
	LoginURL(ctx context.Context, userID uint64) (string, error)
}

// SignInJob obtains a login URL off the simulation thread and hands the
// outcome to Deliver. The creator wraps Deliver so it marshals back onto the
// simulation thread before touching any live object.
type SignInJob struct {
	Client  SignInClient
	UserID  uint64
	Deliver func(url string, err error)
}

// Process performs the sign-in. Errors are delivered, not returned: the only
// consumer of a failure is the "login failed" message to the player.
func (j SignInJob) Process(ctx context.Context) error {
	url, err := j.Client.LoginURL(ctx, j.UserID)
	if err != nil {
		metrics.SignIns.WithLabelValues(metrics.ResultError).Inc()
	} else {
		metrics.SignIns.WithLabelValues(metrics.ResultOK).Inc()
	}
	j.Deliver(url, err)
	return nil
}
